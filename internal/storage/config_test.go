package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServerConfig(t *testing.T) {
	t.Run("CreatesDefaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatalf("LoadServerConfig() error = %v", err)
		}
		if len(cfg.JWTSecret) != 32 {
			t.Errorf("JWTSecret length = %d, want 32", len(cfg.JWTSecret))
		}
		if cfg.CacheTTLSeconds != 60 {
			t.Errorf("CacheTTLSeconds = %d, want 60", cfg.CacheTTLSeconds)
		}
		if _, err := os.Stat(filepath.Join(dir, "server_config.json")); err != nil {
			t.Errorf("server_config.json not created: %v", err)
		}
	})

	t.Run("PersistsSecret", func(t *testing.T) {
		dir := t.TempDir()
		first, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatalf("LoadServerConfig() error = %v", err)
		}
		second, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatalf("LoadServerConfig() second call error = %v", err)
		}
		if !bytes.Equal(first.JWTSecret, second.JWTSecret) {
			t.Error("JWT secret changed between loads")
		}
	})

	t.Run("KeepsExistingValues", func(t *testing.T) {
		dir := t.TempDir()
		raw := `{"jwt_secret":"c2VjcmV0c2VjcmV0c2VjcmV0c2VjcmV0c2VjcmV0cw==","cache_ttl_seconds":120,"nats":{"url":"nats://localhost:4222","bucket":"docs"}}`
		if err := os.WriteFile(filepath.Join(dir, "server_config.json"), []byte(raw), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadServerConfig(dir)
		if err != nil {
			t.Fatalf("LoadServerConfig() error = %v", err)
		}
		if cfg.CacheTTLSeconds != 120 {
			t.Errorf("CacheTTLSeconds = %d, want 120", cfg.CacheTTLSeconds)
		}
		if cfg.NATS.URL != "nats://localhost:4222" || cfg.NATS.Bucket != "docs" {
			t.Errorf("NATS = %+v, want url and bucket preserved", cfg.NATS)
		}
	})

	t.Run("RejectsInvalid", func(t *testing.T) {
		dir := t.TempDir()
		raw := `{"jwt_secret":"c2VjcmV0","cache_ttl_seconds":-1}`
		if err := os.WriteFile(filepath.Join(dir, "server_config.json"), []byte(raw), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadServerConfig(dir); err == nil {
			t.Error("LoadServerConfig() error = nil, want validation error")
		}
	})
}
