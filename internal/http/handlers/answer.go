package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tds-course/virtual-ta-backend/internal/domain"
	"github.com/tds-course/virtual-ta-backend/internal/http/response"
	"github.com/tds-course/virtual-ta-backend/internal/pkg/httpx"
	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
	"github.com/tds-course/virtual-ta-backend/internal/services"
)

type AnswerHandler struct {
	log      *logger.Logger
	answerer services.Answerer
}

func NewAnswerHandler(log *logger.Logger, answerer services.Answerer) *AnswerHandler {
	return &AnswerHandler{log: log.With("handler", "Answer"), answerer: answerer}
}

var errEmptyQuestion = errors.New("question cannot be empty")

// POST /api/
func (h *AnswerHandler) Answer(c *gin.Context) {
	var req domain.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		response.RespondError(c, http.StatusBadRequest, "empty_question", errEmptyQuestion)
		return
	}

	h.log.Info("Processing question", "question", truncateForLog(req.Question, 100))

	resp, err := h.answerer.Answer(c.Request.Context(), req.Question, req.Image)
	if err != nil {
		var upstream *services.UpstreamError
		if errors.As(err, &upstream) {
			h.log.Warn("Upstream chat-completion failure", "upstream_status", httpx.StatusCodeOf(err), "error", err)
			response.RespondError(c, http.StatusBadGateway, "upstream_error", upstream)
			return
		}
		// Internal causes are logged, not exposed.
		h.log.Error("Answering failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
		return
	}

	response.RespondOK(c, resp)
}

func truncateForLog(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
