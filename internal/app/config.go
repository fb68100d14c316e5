package app

import (
	"strings"
	"time"

	"github.com/tds-course/virtual-ta-backend/internal/clients/openai"
	"github.com/tds-course/virtual-ta-backend/internal/pkg/logger"
	"github.com/tds-course/virtual-ta-backend/internal/utils"
)

type Config struct {
	Host    string
	Port    int
	DataDir string

	OpenAI openai.Config

	CORSAllowOrigins []string
	OCREnabled       bool
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Host:    utils.GetEnv("HOST", "0.0.0.0", log),
		Port:    utils.GetEnvAsInt("PORT", 8000, log),
		DataDir: utils.GetEnv("DATA_DIR", "data", log),
		OpenAI: openai.Config{
			APIKey:      utils.GetEnv("OPENAI_API_KEY", "", nil),
			BaseURL:     utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log),
			Model:       utils.GetEnv("OPENAI_MODEL", "gpt-3.5-turbo-0125", log),
			MaxTokens:   utils.GetEnvAsInt("OPENAI_MAX_TOKENS", 500, log),
			Temperature: utils.GetEnvAsFloat("OPENAI_TEMPERATURE", 0.1, log),
			Timeout:     time.Duration(utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 60, log)) * time.Second,
		},
		CORSAllowOrigins: splitOrigins(utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)),
		OCREnabled:       utils.GetEnvAsBool("OCR_ENABLED", true, log),
	}
}

func splitOrigins(raw string) []string {
	out := []string{}
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
