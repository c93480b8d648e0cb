package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string

	FreeMonthlyQuota int

	PromptProvider string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	ImageProvider  string
	ImageModel     string
	QwenAPIKey     string
	QwenBaseURL    string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	OpenAIOrg      string

	StripeSecretKey string
	StripeBaseURL   string
	StripePriceID   string

	PaymentPollAttempts int
	PaymentPollInterval time.Duration

	CORSOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		FreeMonthlyQuota: getEnvInt("FREE_MONTHLY_QUOTA", 3),

		PromptProvider: getEnv("PROMPT_PROVIDER", "gemini"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:  getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ImageProvider:  getEnv("IMAGE_PROVIDER", "gemini"),
		ImageModel:     getEnv("IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation"),
		QwenAPIKey:     os.Getenv("QWEN_API_KEY"),
		QwenBaseURL:    getEnv("QWEN_BASE_URL", "https://dashscope-intl.aliyuncs.com/api/v1"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:      os.Getenv("OPENAI_ORG"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripeBaseURL:   getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
		StripePriceID:   os.Getenv("STRIPE_PRICE_ID"),

		PaymentPollAttempts: getEnvInt("PAYMENT_POLL_ATTEMPTS", 5),
		PaymentPollInterval: time.Second * time.Duration(getEnvInt("PAYMENT_POLL_INTERVAL_SECONDS", 2)),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.FreeMonthlyQuota < 1 {
		return nil, fmt.Errorf("FREE_MONTHLY_QUOTA must be at least 1")
	}

	if cfg.PaymentPollAttempts < 1 {
		return nil, fmt.Errorf("PAYMENT_POLL_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
