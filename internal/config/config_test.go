package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != ModeDev {
		t.Fatalf("Mode: want=%q got=%q", ModeDev, cfg.Mode)
	}
	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Fatalf("APIBaseURL: want=%q got=%q", "http://localhost:8080", cfg.APIBaseURL)
	}
	if cfg.FeedbackDelay != 800*time.Millisecond {
		t.Fatalf("FeedbackDelay: want=%v got=%v", 800*time.Millisecond, cfg.FeedbackDelay)
	}
	if cfg.SessionSecret == "" {
		t.Fatalf("expected a dev session secret")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUIZ_API_BASE_URL", "https://quiz.example.com")
	t.Setenv("QUIZ_FEEDBACK_DELAY", "0s")
	t.Setenv("QUIZ_IDENTITY", "uuid")
	t.Setenv("QUIZ_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://quiz.example.com" {
		t.Fatalf("APIBaseURL: got=%q", cfg.APIBaseURL)
	}
	if cfg.FeedbackDelay != 0 {
		t.Fatalf("FeedbackDelay: want=0 got=%v", cfg.FeedbackDelay)
	}
	if cfg.Identity != "uuid" {
		t.Fatalf("Identity: want=%q got=%q", "uuid", cfg.Identity)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins: got=%v", cfg.CORSOrigins)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quiz.yaml")
	body := "api_base_url: http://backend:9090\nhttp_addr: \":4000\"\nsession_ttl: 30m\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://backend:9090" || cfg.HTTPAddr != ":4000" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("SessionTTL: want=30m got=%v", cfg.SessionTTL)
	}
}

func TestLoadRejectsRelativeBaseURL(t *testing.T) {
	t.Setenv("QUIZ_API_BASE_URL", "localhost:8080")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-absolute base url")
	}
}

func TestLoadProdRequiresLongSecret(t *testing.T) {
	t.Setenv("QUIZ_MODE", "prod")
	t.Setenv("QUIZ_SESSION_SECRET", "short")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for short prod secret")
	}
}
