package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tds-course/virtual-ta-backend/internal/http/response"
	"github.com/tds-course/virtual-ta-backend/internal/store"
)

type StatusHandler struct {
	store         *store.Store
	apiConfigured bool
}

func NewStatusHandler(st *store.Store, apiConfigured bool) *StatusHandler {
	return &StatusHandler{store: st, apiConfigured: apiConfigured}
}

// GET /
func (h *StatusHandler) Root(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"message":                "TDS Virtual Teaching Assistant API",
		"status":                 "running",
		"course_content_loaded":  h.store.CourseCount(),
		"discourse_posts_loaded": h.store.TopicCount(),
	})
}

// GET /health
func (h *StatusHandler) Health(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"status":                "healthy",
		"timestamp":             time.Now().Format(time.RFC3339),
		"openai_configured":     h.apiConfigured,
		"course_content_count":  h.store.CourseCount(),
		"discourse_posts_count": h.store.TopicCount(),
		"discourse_post_total":  h.store.PostCount(),
	})
}
