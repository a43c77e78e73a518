// Manages server configuration stored in server_config.json.

// Package storage holds configuration shared by the storage-backed services.
package storage

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slateview/slateview/internal/storage/infra"
)

// ServerConfig stores all server-wide configuration.
// Loaded from server_config.json, created with defaults if missing.
type ServerConfig struct {
	// JWTSecret is the secret used to sign bearer tokens.
	// Auto-generated if empty on first load.
	JWTSecret []byte `json:"jwt_secret"`

	// CacheTTLSeconds is how long cached documents stay valid.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`

	// NATS selects the JetStream ObjectStore backend when URL is non-empty;
	// otherwise documents are stored on the local filesystem.
	NATS NATSConfig `json:"nats"`
}

// NATSConfig configures the optional NATS backend.
type NATSConfig struct {
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
}

// CacheTTL returns the configured TTL as a duration.
func (c *ServerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks the loaded configuration.
func (c *ServerConfig) Validate() error {
	if c.CacheTTLSeconds < 0 {
		return errors.New("cache_ttl_seconds must be non-negative")
	}
	if c.NATS.URL != "" && c.NATS.Bucket == "" {
		return errors.New("nats.bucket is required when nats.url is set")
	}
	return nil
}

// Save writes the configuration to server_config.json in dataDir.
func (c *ServerConfig) Save(dataDir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode server_config.json: %w", err)
	}
	path := filepath.Join(dataDir, "server_config.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write server_config.json: %w", err)
	}
	return nil
}

// LoadServerConfig reads server_config.json from dataDir, creating it with
// defaults (and a fresh JWT secret) if missing.
func LoadServerConfig(dataDir string) (*ServerConfig, error) {
	path := filepath.Join(dataDir, "server_config.json")
	cfg := ServerConfig{
		CacheTTLSeconds: int(infra.DefaultTTL / time.Second),
		NATS:            NATSConfig{Bucket: "slateview"},
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from dataDir, not user input
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read server_config.json: %w", err)
		}
		// File doesn't exist, will create with defaults.
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse server_config.json: %w", err)
		}
	}

	modified := false
	if len(cfg.JWTSecret) == 0 {
		cfg.JWTSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.JWTSecret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		modified = true
	}

	if modified || errors.Is(err, os.ErrNotExist) {
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server_config.json: %w", err)
	}
	return &cfg, nil
}
