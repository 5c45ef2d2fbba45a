package config

import (
	"testing"
	"time"
)

func getenvFrom(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(getenvFrom(map[string]string{
		"JWT_SECRET": "test-secret",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "./data/splitledger.db" {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.HTTPAddress() != ":8080" {
		t.Errorf("HTTPAddress() = %q, want :8080", cfg.HTTPAddress())
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(getenvFrom(map[string]string{
		"JWT_SECRET":    "test-secret",
		"PORT":          "9000",
		"DB_PATH":       "/tmp/test.db",
		"JWT_TTL_HOURS": "2",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want /tmp/test.db", cfg.DBPath)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Errorf("JWTTTL = %v, want 2h", cfg.JWTTTL)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	if _, err := Load(getenvFrom(nil)); err == nil {
		t.Error("Load() without JWT_SECRET returned nil error")
	}
}

func TestLoadBadTTLFallsBack(t *testing.T) {
	cfg, err := Load(getenvFrom(map[string]string{
		"JWT_SECRET":    "test-secret",
		"JWT_TTL_HOURS": "not-a-number",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h fallback", cfg.JWTTTL)
	}
}
