package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tds-course/virtual-ta-backend/internal/clients/gcp"
	"github.com/tds-course/virtual-ta-backend/internal/clients/openai"
	internalhttp "github.com/tds-course/virtual-ta-backend/internal/http"
	httpH "github.com/tds-course/virtual-ta-backend/internal/http/handlers"
	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
	"github.com/tds-course/virtual-ta-backend/internal/services"
	"github.com/tds-course/virtual-ta-backend/internal/store"
	"github.com/tds-course/virtual-ta-backend/internal/tokens"
)

// App holds everything built during the explicit startup phase. Nothing here
// mutates after New returns; request handlers only read through it.
type App struct {
	Log    *logger.Logger
	Cfg    Config
	Store  *store.Store
	Router *gin.Engine

	srv *internalhttp.Server
	ocr gcp.Vision
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	st := store.Load(cfg.DataDir, log)

	var chat openai.Client
	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		chat, err = openai.NewClient(cfg.OpenAI, log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init openai client: %w", err)
		}
	} else {
		log.Warn("OPENAI_API_KEY not set, answer endpoint will fail until configured")
	}

	var ocr gcp.Vision
	if cfg.OCREnabled {
		ocr, err = gcp.NewVision(log)
		if err != nil {
			log.Warn("Vision OCR unavailable, image text extraction disabled", "error", err)
			ocr = nil
		}
	}

	estimator := tokens.NewCounter(cfg.OpenAI.Model, log)

	answerer := services.NewAnswerService(log, st, chat, ocr, estimator)

	log.Info("Wiring handlers...")
	srv := internalhttp.NewServer(internalhttp.RouterConfig{
		Log:              log,
		AnswerHandler:    httpH.NewAnswerHandler(log, answerer),
		StatusHandler:    httpH.NewStatusHandler(st, chat != nil),
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	return &App{
		Log:    log,
		Cfg:    cfg,
		Store:  st,
		Router: srv.Engine,
		srv:    srv,
		ocr:    ocr,
	}, nil
}

func (a *App) Run() error {
	addr := fmt.Sprintf("%s:%d", a.Cfg.Host, a.Cfg.Port)
	a.Log.Info("Starting HTTP server", "addr", addr)
	return a.srv.Run(addr)
}

func (a *App) Close() {
	if a.ocr != nil {
		if err := a.ocr.Close(); err != nil {
			a.Log.Warn("Closing OCR client failed", "error", err)
		}
	}
	a.Log.Sync()
}
