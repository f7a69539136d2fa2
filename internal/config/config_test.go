package config

import (
	"os"
	"path/filepath"
	"testing"
)

// resetGlobalConfig restores globalConfig to its default values so tests
// don't leak state into each other through the package-level singleton.
func resetGlobalConfig(t *testing.T) {
	t.Helper()
	saved := *globalConfig
	t.Cleanup(func() { *globalConfig = saved })
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	resetGlobalConfig(t)
	globalConfig.Database.URL = ""
	if _, err := Load(""); err == nil {
		t.Error("expected an error when database.url is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	resetGlobalConfig(t)
	globalConfig.Database.URL = ""
	t.Setenv("DATABASE_URL", "postgres://localhost/solidx")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("expected default MaxConns=10, got %d", cfg.Database.MaxConns)
	}
	if cfg.Firehose.InitialBackoffMs != 1000 || cfg.Firehose.MaxBackoffMs != 30_000 {
		t.Errorf("unexpected default backoff: %+v", cfg.Firehose)
	}
	if cfg.API.ListenPort != 8080 {
		t.Errorf("expected default API port 8080, got %d", cfg.API.ListenPort)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	resetGlobalConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
database:
  url: postgres://localhost/from_yaml
  maxConnections: 42
firehose:
  endpoint: ws://localhost:9999/blocks
  fromSlot: 1000
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/from_yaml" {
		t.Errorf("expected url from yaml, got %q", cfg.Database.URL)
	}
	if cfg.Database.MaxConns != 42 {
		t.Errorf("expected maxConnections from yaml, got %d", cfg.Database.MaxConns)
	}
	if cfg.Firehose.FromSlot != 1000 {
		t.Errorf("expected fromSlot from yaml, got %d", cfg.Firehose.FromSlot)
	}
}

func TestLoadEnvOverlaysYAML(t *testing.T) {
	resetGlobalConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("database:\n  url: postgres://localhost/from_yaml\n"), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/from_env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/from_env" {
		t.Errorf("expected env var to override yaml value, got %q", cfg.Database.URL)
	}
}

func TestGetConfigReturnsSingleton(t *testing.T) {
	resetGlobalConfig(t)
	globalConfig.Database.URL = "postgres://localhost/solidx"
	if GetConfig() != globalConfig {
		t.Error("expected GetConfig to return the package singleton")
	}
}
