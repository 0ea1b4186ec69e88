package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	HTTPPort       string
	DatabaseURL    string
	AllowedOrigins []string
	LogsPath       string

	JWT JWTConfig
	LLM LLMConfig
}

type JWTConfig struct {
	Secret    string
	Algorithm string
	TokenTTL  time.Duration
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// MustLoad reads configuration from the environment, after loading .env
// if one is present. It panics on missing required values so that a
// misconfigured deploy fails at startup instead of at first request.
func MustLoad() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("ENV", "local"),
		HTTPPort:       getEnv("HTTP_PORT", "8000"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		LogsPath:       getEnv("LOGS_PATH", "app.log"),
		JWT: JWTConfig{
			Secret:    os.Getenv("JWT_SECRET"),
			Algorithm: getEnv("JWT_ALGORITHM", "HS256"),
			TokenTTL:  time.Duration(getEnvInt("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 10080)) * time.Minute,
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("GOOGLE_API_KEY"),
			BaseURL: os.Getenv("LLM_BASE_URL"),
			Model:   os.Getenv("LLM_MODEL"),
		},
	}

	if cfg.DatabaseURL == "" {
		panic("DATABASE_URL is not set")
	}
	if cfg.JWT.Secret == "" {
		panic("JWT_SECRET is not set")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		panic(fmt.Sprintf("%s: expected integer, got %q", key, raw))
	}
	return v
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
