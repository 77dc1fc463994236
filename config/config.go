package config

import (
	"time"

	"github.com/hearthhq/datacache/cache"
)

// Config represents the complete application configuration
type Config struct {
	// Application
	App AppConfig `yaml:"app" json:"app" mapstructure:"app"`

	// Cache behavior
	Cache CacheConfig `yaml:"cache" json:"cache" mapstructure:"cache"`

	// Simulated household workload
	Demo DemoConfig `yaml:"demo" json:"demo" mapstructure:"demo"`

	// User Interface
	UI UIConfig `yaml:"ui" json:"ui" mapstructure:"ui"`
}

// AppConfig contains general application settings
type AppConfig struct {
	Name     string `yaml:"name" json:"name" mapstructure:"name"`
	Version  string `yaml:"version" json:"version" mapstructure:"version"`
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file" mapstructure:"log_file"`
	Verbose  bool   `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
}

// CacheConfig contains cache tuning settings. Fields map onto the
// cache package's Config; DisableBackgroundRefresh keeps the zero
// value meaning "proactive refresh on".
type CacheConfig struct {
	DefaultTTL               time.Duration `yaml:"default_ttl" json:"default_ttl" mapstructure:"default_ttl"`
	MaxEntries               int           `yaml:"max_entries" json:"max_entries" mapstructure:"max_entries"`
	RefreshThreshold         float64       `yaml:"refresh_threshold" json:"refresh_threshold" mapstructure:"refresh_threshold"`
	DisableBackgroundRefresh bool          `yaml:"disable_background_refresh" json:"disable_background_refresh" mapstructure:"disable_background_refresh"`
}

// CacheOptions maps the cache section onto the cache package's Config.
// The logger is left for the caller to inject.
func (c *Config) CacheOptions() cache.Config {
	return cache.Config{
		DefaultTTL:               c.Cache.DefaultTTL,
		MaxEntries:               c.Cache.MaxEntries,
		RefreshThreshold:         c.Cache.RefreshThreshold,
		DisableBackgroundRefresh: c.Cache.DisableBackgroundRefresh,
	}
}

// DemoConfig drives the simulated family workload that exercises the cache.
type DemoConfig struct {
	Users            []string      `yaml:"users" json:"users" mapstructure:"users"`
	GroceryLists     []string      `yaml:"grocery_lists" json:"grocery_lists" mapstructure:"grocery_lists"`
	DocFolders       []string      `yaml:"doc_folders" json:"doc_folders" mapstructure:"doc_folders"`
	FetchLatency     time.Duration `yaml:"fetch_latency" json:"fetch_latency" mapstructure:"fetch_latency"`
	FailureRate      float64       `yaml:"failure_rate" json:"failure_rate" mapstructure:"failure_rate"`
	ReadInterval     time.Duration `yaml:"read_interval" json:"read_interval" mapstructure:"read_interval"`
	WriteInterval    time.Duration `yaml:"write_interval" json:"write_interval" mapstructure:"write_interval"`
	ScheduleInterval time.Duration `yaml:"schedule_interval" json:"schedule_interval" mapstructure:"schedule_interval"`
	EventLog         string        `yaml:"event_log" json:"event_log" mapstructure:"event_log"`
}

// UIConfig contains user interface settings
type UIConfig struct {
	Theme         string        `yaml:"theme" json:"theme" mapstructure:"theme"`
	RefreshRate   time.Duration `yaml:"refresh_rate" json:"refresh_rate" mapstructure:"refresh_rate"`
	CompactMode   bool          `yaml:"compact_mode" json:"compact_mode" mapstructure:"compact_mode"`
	TablePageSize int           `yaml:"table_page_size" json:"table_page_size" mapstructure:"table_page_size"`
	TimeFormat    string        `yaml:"time_format" json:"time_format" mapstructure:"time_format"`
}

// Format represents configuration file format
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatTOML
)

// ConfigPaths returns the default configuration file paths in order of precedence
func ConfigPaths() []string {
	return []string{
		"./hearthcache.yaml",
		"$HOME/.config/hearthcache/config.yaml",
		"$HOME/.hearthcache/config.yaml",
		"/etc/hearthcache/config.yaml",
	}
}

// Version will be set at build time
var Version = "dev"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "HearthCache",
			Version:  Version,
			LogLevel: "info",
			LogFile:  "hearthcache.log",
		},
		Cache: CacheConfig{
			DefaultTTL:       5 * time.Minute,
			MaxEntries:       100,
			RefreshThreshold: 0.5,
		},
		Demo: DemoConfig{
			Users:            []string{"alice", "ben", "casey"},
			GroceryLists:     []string{"weekly", "party"},
			DocFolders:       []string{"school", "medical"},
			FetchLatency:     150 * time.Millisecond,
			FailureRate:      0.15,
			ReadInterval:     400 * time.Millisecond,
			WriteInterval:    3 * time.Second,
			ScheduleInterval: 5 * time.Second,
		},
		UI: UIConfig{
			Theme:         "dark",
			RefreshRate:   time.Second,
			CompactMode:   false,
			TablePageSize: 20,
			TimeFormat:    "15:04:05",
		},
	}
}

// MinimalConfig returns a minimal configuration for basic operation
func MinimalConfig() *Config {
	cfg := DefaultConfig()
	cfg.Demo.Users = []string{"alice"}
	cfg.Demo.GroceryLists = nil
	cfg.Demo.DocFolders = nil
	cfg.Demo.FailureRate = 0
	cfg.UI.CompactMode = true
	return cfg
}

// DevelopmentConfig returns a configuration optimized for development
func DevelopmentConfig() *Config {
	cfg := DefaultConfig()
	cfg.App.LogLevel = "debug"
	cfg.Cache.DefaultTTL = 30 * time.Second
	cfg.Demo.ScheduleInterval = 2 * time.Second
	cfg.UI.RefreshRate = 500 * time.Millisecond
	return cfg
}
