package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/tds-course/virtual-ta-backend/internal/http/handlers"
	httpMW "github.com/tds-course/virtual-ta-backend/internal/http/middleware"
	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AnswerHandler *httpH.AnswerHandler
	StatusHandler *httpH.StatusHandler

	CORSAllowOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSAllowOrigins))

	if cfg.StatusHandler != nil {
		r.GET("/", cfg.StatusHandler.Root)
		r.GET("/health", cfg.StatusHandler.Health)
	}

	api := r.Group("/api")
	{
		if cfg.AnswerHandler != nil {
			api.POST("/", cfg.AnswerHandler.Answer)
		}
	}

	return r
}
