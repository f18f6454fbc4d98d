package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("OBJECT_STORE", "")

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.SessionTTL)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local object store, got %q", cfg.ObjectStoreType)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("expected dev config to be dev-like")
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	t.Setenv("ENV", "Prod")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("CORS_ALLOW_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.IsDevLike() {
		t.Fatalf("production must not be dev-like")
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected s3, got %q", cfg.ObjectStoreType)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowOrigin)
	}
	if cfg.RateLimitRPS != 20 {
		t.Fatalf("expected fallback rps 20, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadEnvFilesDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("AARI_TEST_KEEP=file\nAARI_TEST_NEW=\"from-file\"\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("AARI_TEST_KEEP", "process")
	t.Setenv("AARI_TEST_NEW", "")
	os.Unsetenv("AARI_TEST_NEW")

	loadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("AARI_TEST_KEEP"); got != "process" {
		t.Fatalf("expected process value to win, got %q", got)
	}
	if got := os.Getenv("AARI_TEST_NEW"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
