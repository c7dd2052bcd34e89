package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.MaxCoverBytes != DefaultMaxCoverBytes {
		t.Errorf("expected default cover limit, got %d", cfg.MaxCoverBytes)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KNJIZNICA_DB", "/tmp/test.sqlite3")
	t.Setenv("KNJIZNICA_ADDR", ":9090")
	t.Setenv("KNJIZNICA_MAX_COVER_BYTES", "1024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/test.sqlite3" {
		t.Errorf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.MaxCoverBytes != 1024 {
		t.Errorf("expected cover limit 1024, got %d", cfg.MaxCoverBytes)
	}
}

func TestLoadRejectsInvalidCoverLimit(t *testing.T) {
	t.Setenv("KNJIZNICA_MAX_COVER_BYTES", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid cover limit")
	}
}
