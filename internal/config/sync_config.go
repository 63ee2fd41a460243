package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// SyncConfig holds the data-synchronization knobs. Loaded from an optional
// JSON file so a deployment can tune cadence and routes without a rebuild.
type SyncConfig struct {
	// ============ CACHE ============
	CacheTimeoutSec int `json:"cache_timeout"` // seconds, read-through cache validity

	// ============ SCHEDULING ============
	BackgroundRefreshSec int  `json:"background_refresh"` // seconds between background re-fetches, 0 disables
	RefreshOnStartup     bool `json:"refresh_on_startup"`

	// ============ RETRY ============
	MaxAttempts  int `json:"max_attempts"`
	BaseDelayMs  int `json:"base_delay_ms"`
	MaxDelayMs   int `json:"max_delay_ms"`
	ReadyWaitSec int `json:"ready_wait"` // bound on any single readiness wait

	// ============ ROUTES ============
	// FallbackURL is the secondary REST surface consulted when the primary
	// datastore is reachable but permission-denied.
	FallbackURL        string `json:"fallback_url"`
	FallbackTimeoutSec int    `json:"fallback_timeout"`

	// ============ COLLECTIONS ============
	Collections map[string]CollectionSyncConfig `json:"collections"`
}

// CollectionSyncConfig holds per-collection sync settings.
type CollectionSyncConfig struct {
	Enabled  bool `json:"enabled"`
	Priority int  `json:"priority"` // 1-10, 10 = highest; products should stay on top
}

// CacheTimeout returns the cache validity window as a duration.
func (c *SyncConfig) CacheTimeout() time.Duration {
	return time.Duration(c.CacheTimeoutSec) * time.Second
}

// BackgroundRefresh returns the background refresh cadence, 0 if disabled.
func (c *SyncConfig) BackgroundRefresh() time.Duration {
	return time.Duration(c.BackgroundRefreshSec) * time.Second
}

// BaseDelay returns the first retry delay.
func (c *SyncConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// MaxDelay returns the retry delay cap.
func (c *SyncConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMs) * time.Millisecond
}

// ReadyWait returns the readiness wait bound.
func (c *SyncConfig) ReadyWait() time.Duration {
	return time.Duration(c.ReadyWaitSec) * time.Second
}

// DefaultSyncConfig returns the built-in sync configuration.
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		CacheTimeoutSec:      15 * 60,
		BackgroundRefreshSec: 10 * 60,
		RefreshOnStartup:     true,
		MaxAttempts:          3,
		BaseDelayMs:          1000,
		MaxDelayMs:           5000,
		ReadyWaitSec:         30,
		FallbackTimeoutSec:   10,
		Collections: map[string]CollectionSyncConfig{
			"products":    {Enabled: true, Priority: 10},
			"clients":     {Enabled: true, Priority: 7},
			"salespeople": {Enabled: true, Priority: 5},
			"colors":      {Enabled: true, Priority: 4},
			"styles":      {Enabled: true, Priority: 4},
			"quotes":      {Enabled: true, Priority: 6},
			"orders":      {Enabled: true, Priority: 6},
		},
	}
}

// LoadSyncConfig loads the sync configuration from SYNC_CONFIG_PATH if set,
// falling back to defaults. A broken file logs a warning and keeps defaults
// rather than refusing to start.
func LoadSyncConfig() *SyncConfig {
	cfg := DefaultSyncConfig()

	configPath := os.Getenv("SYNC_CONFIG_PATH")
	if configPath == "" {
		return cfg
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("⚠️ Sync config: cannot read %s: %v, using defaults", configPath, err)
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		log.Printf("⚠️ Sync config: invalid JSON in %s: %v, using defaults", configPath, err)
		return DefaultSyncConfig()
	}

	if err := cfg.validate(); err != nil {
		log.Printf("⚠️ Sync config: %v, using defaults", err)
		return DefaultSyncConfig()
	}

	log.Printf("✅ Sync config loaded from %s", configPath)
	return cfg
}

// validate rejects values the executor and orchestrator cannot work with.
func (c *SyncConfig) validate() error {
	if c.CacheTimeoutSec <= 0 {
		return fmt.Errorf("cache_timeout must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if c.BaseDelayMs < 0 || c.MaxDelayMs < c.BaseDelayMs {
		return fmt.Errorf("max_delay_ms must be >= base_delay_ms >= 0")
	}
	if c.ReadyWaitSec <= 0 {
		return fmt.Errorf("ready_wait must be positive")
	}
	return nil
}
