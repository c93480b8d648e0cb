package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("FREE_MONTHLY_QUOTA", "")
	t.Setenv("PAYMENT_POLL_ATTEMPTS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8080")
	}
	if cfg.FreeMonthlyQuota != 3 {
		t.Fatalf("FreeMonthlyQuota mismatch: got %d want 3", cfg.FreeMonthlyQuota)
	}
	if cfg.PaymentPollAttempts != 5 {
		t.Fatalf("PaymentPollAttempts mismatch: got %d want 5", cfg.PaymentPollAttempts)
	}
	if cfg.PaymentPollInterval != 2*time.Second {
		t.Fatalf("PaymentPollInterval mismatch: got %s", cfg.PaymentPollInterval)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoadConfigRejectsZeroQuota(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FREE_MONTHLY_QUOTA", "0")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for zero FREE_MONTHLY_QUOTA")
	}
}

func TestLoadConfigSplitsCORSOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://staging.example.com" {
		t.Fatalf("CORSOrigins mismatch: %#v", cfg.CORSOrigins)
	}
}
