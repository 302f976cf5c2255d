package config

import (
	"testing"
	"time"
)

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("PRESSQ_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("PRESSQ_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBDSN == "" {
		t.Fatal("expected DB DSN to be set")
	}
	if cfg.PublishInterval != time.Hour {
		t.Fatalf("unexpected default publish interval: %v", cfg.PublishInterval)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("unexpected default location: %v", cfg.Location())
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("PRESSQ_DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail without a DSN")
	}
}

func TestLoadValidatesSiteTimezone(t *testing.T) {
	t.Setenv("PRESSQ_DB_DSN", "file::memory:?cache=shared")
	t.Setenv("PRESSQ_DB_BACKEND", "sqlite")
	t.Setenv("PRESSQ_SITE_TZ", "Not/AZone")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail with an invalid timezone")
	}

	t.Setenv("PRESSQ_SITE_TZ", "Europe/London")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Location().String() != "Europe/London" {
		t.Fatalf("unexpected location: %v", cfg.Location())
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("PRESSQ_DB_DSN", "whatever")
	t.Setenv("PRESSQ_DB_BACKEND", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail with an unknown backend")
	}
}
