package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/publishplane")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 7070 {
		t.Errorf("got HTTPPort %d, want 7070", cfg.HTTPPort)
	}
	if cfg.WorkerPollInterval != 30*time.Second {
		t.Errorf("got WorkerPollInterval %v, want 30s", cfg.WorkerPollInterval)
	}
	if cfg.Publisher != "wordpress" {
		t.Errorf("got Publisher %q, want wordpress", cfg.Publisher)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected an error without DATABASE_URL")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/publishplane")
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_POLL_INTERVAL", "5s")
	t.Setenv("PUBLISHER", "webhook")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("got HTTPPort %d, want 9090", cfg.HTTPPort)
	}
	if cfg.WorkerPollInterval != 5*time.Second {
		t.Errorf("got WorkerPollInterval %v, want 5s", cfg.WorkerPollInterval)
	}
	if cfg.Publisher != "webhook" {
		t.Errorf("got Publisher %q, want webhook", cfg.Publisher)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/publishplane")
	t.Setenv("PORT", "not-a-number")

	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for an invalid PORT")
	}
}

func TestLoad_YAMLFileUnderEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishplane.yaml")
	content := []byte("database_url: postgres://file/db\nhttp_port: 8081\nwordpress_url: https://cms.example.com\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("PORT", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Env wins over the file; file wins over defaults.
	if cfg.DatabaseURL != "postgres://env/db" {
		t.Errorf("got DatabaseURL %q, want env value", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 8081 {
		t.Errorf("got HTTPPort %d, want file value 8081", cfg.HTTPPort)
	}
	if cfg.WordPressURL != "https://cms.example.com" {
		t.Errorf("got WordPressURL %q, want file value", cfg.WordPressURL)
	}
}
