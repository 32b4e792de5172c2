package config

import (
	"errors"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGODB_URI", "DB_NAME", "SITE_DOMAIN", "CLIENT_ORIGINS", "REQUEST_TIMEOUT", "PAYMENT_CURRENCY"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.Port != "5000" {
		t.Fatalf("expected default port 5000, got %q", cfg.Port)
	}
	if cfg.DBName != "BloodDonationAppDB" {
		t.Fatalf("unexpected db name %q", cfg.DBName)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.RequestTimeout)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != cfg.SiteDomain {
		t.Fatalf("expected origins to default to site domain, got %v", cfg.AllowedOrigins)
	}
	if cfg.Currency != "usd" {
		t.Fatalf("unexpected currency %q", cfg.Currency)
	}
}

func TestFromEnvParsesListsAndDurations(t *testing.T) {
	t.Setenv("CLIENT_ORIGINS", " https://a.example/ , ,https://b.example")
	t.Setenv("REQUEST_TIMEOUT", "12")

	cfg := FromEnv()
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.RequestTimeout != 12*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.RequestTimeout)
	}

	t.Setenv("REQUEST_TIMEOUT", "-3")
	if got := FromEnv().RequestTimeout; got != 5*time.Second {
		t.Fatalf("expected fallback on invalid timeout, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	err := Config{}.Validate()
	if !errors.Is(err, ErrMissingMongoURI) || !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("expected both errors, got %v", err)
	}
	if err := (Config{MongoURI: "mongodb://x", JWTSecret: "s"}).Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
