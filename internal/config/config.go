package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string `json:"listen_addr"`
	Debug      bool   `json:"debug"`

	// Directories
	DataDirectory   string `json:"data_directory"`
	BackupDirectory string `json:"backup_directory"`

	// Cache TTLs in seconds
	RecordCacheTTLSeconds   int `json:"record_cache_ttl_seconds"`
	SettingsCacheTTLSeconds int `json:"settings_cache_ttl_seconds"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:              ":8080",
		Debug:                   false,
		DataDirectory:           filepath.Join(wd, "data"),
		BackupDirectory:         filepath.Join(wd, "data", "backups"),
		RecordCacheTTLSeconds:   30,
		SettingsCacheTTLSeconds: 300,
	}
}

// Load loads configuration from an optional JSON file and environment
// variables, in that order.
func Load() *Config {
	cfg := DefaultConfig()

	if path := os.Getenv("EARNTRACK_CONFIG"); path != "" {
		if data, err := os.ReadFile(path); err != nil {
			log.Printf("Warning: could not read config file %s: %v", path, err)
		} else if err := json.Unmarshal(data, cfg); err != nil {
			log.Printf("Warning: could not parse config file %s: %v", path, err)
		}
	}

	if addr := os.Getenv("EARNTRACK_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := os.Getenv("EARNTRACK_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}
	if dataDir := os.Getenv("EARNTRACK_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
		cfg.BackupDirectory = filepath.Join(dataDir, "backups")
	}
	if ttl := os.Getenv("EARNTRACK_RECORD_CACHE_TTL"); ttl != "" {
		if n, err := strconv.Atoi(ttl); err == nil && n >= 0 {
			cfg.RecordCacheTTLSeconds = n
		}
	}
	if ttl := os.Getenv("EARNTRACK_SETTINGS_CACHE_TTL"); ttl != "" {
		if n, err := strconv.Atoi(ttl); err == nil && n >= 0 {
			cfg.SettingsCacheTTLSeconds = n
		}
	}

	cfg.ensureDirectories()

	return cfg
}

// RecordCacheTTL returns the income record cache TTL as a duration.
func (c *Config) RecordCacheTTL() time.Duration {
	return time.Duration(c.RecordCacheTTLSeconds) * time.Second
}

// SettingsCacheTTL returns the base income settings cache TTL as a duration.
func (c *Config) SettingsCacheTTL() time.Duration {
	return time.Duration(c.SettingsCacheTTLSeconds) * time.Second
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories() {
	for _, dir := range []string{c.DataDirectory, c.BackupDirectory} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Warning: could not create directory %s: %v", dir, err)
		}
	}
}
