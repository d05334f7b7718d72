package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Backend != "memory" || cfg.Currency != "INR" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestTOMLFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fintrack.toml")
	content := []byte("addr = \":9000\"\ncurrency = \"EUR\"\nbackend = \"sqlite\"\nsqlite_path = \"/tmp/test.db\"\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CURRENCY", "USD")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("file value not applied: %q", cfg.Addr)
	}
	if cfg.Currency != "USD" {
		t.Fatalf("env must override file, got %q", cfg.Currency)
	}
	if cfg.Backend != "sqlite" || cfg.SQLitePath != "/tmp/test.db" {
		t.Fatalf("unexpected backend config: %+v", cfg)
	}
}

func TestPortEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Fatalf("PORT not applied: %q", cfg.Addr)
	}
}

func TestUnknownBackendRejected(t *testing.T) {
	t.Setenv("DATA_BACKEND", "mainframe")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestMissingFileIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Backend != "memory" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
