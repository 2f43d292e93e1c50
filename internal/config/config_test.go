package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "PORT", "LISTEN_ADDR", "DATABASE_PATH", "SESSION_SECRET",
	"GIN_MODE", "TASK_CACHE_TTL", "ADOPTION_THRESHOLD", "MAX_DEADLINE_ITEMS",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":8080" || cfg.DatabasePath != "dayboard.db" || cfg.GinMode != "release" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TaskCacheTTL != 5*time.Minute || cfg.AdoptionThreshold != 7 || cfg.MaxDeadlineItems != -1 {
		t.Fatalf("unexpected numeric defaults: %+v", cfg)
	}
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "dayboard.yml")
	content := []byte("port: \"9090\"\ndatabase_path: data/board.db\ntask_cache_ttl: 30s\nadoption_threshold: \"21\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_PATH", " /tmp/override.db ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Fatalf("expected listen addr from file port, got %s", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "/tmp/override.db" {
		t.Fatalf("expected env to override file, got %s", cfg.DatabasePath)
	}
	if cfg.TaskCacheTTL != 30*time.Second || cfg.AdoptionThreshold != 21 {
		t.Fatalf("unexpected values from file: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TASK_CACHE_TTL", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}

	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
