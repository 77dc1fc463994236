package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Source represents a configuration source
type Source interface {
	Name() string
	Load() (*Config, error)
	Priority() int
}

// Validator validates configuration
type Validator interface {
	Validate(cfg *Config) error
}

// Merger merges configurations from multiple sources
type Merger interface {
	Merge(base, override *Config) *Config
}

// Loader loads configuration from multiple sources
type Loader struct {
	sources    []Source
	validators []Validator
	merger     Merger
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		sources:    make([]Source, 0),
		validators: make([]Validator, 0),
		merger:     &DefaultMerger{},
	}
}

// AddSource adds a configuration source
func (l *Loader) AddSource(source Source) {
	l.sources = append(l.sources, source)
}

// AddValidator adds a configuration validator
func (l *Loader) AddValidator(validator Validator) {
	l.validators = append(l.validators, validator)
}

// SetMerger sets the configuration merger
func (l *Loader) SetMerger(merger Merger) {
	l.merger = merger
}

// Load loads configuration from all sources
func (l *Loader) Load() (*Config, error) {
	// Sort sources by priority, keeping registration order within a tier
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	var config *Config
	for _, source := range l.sources {
		cfg, err := source.Load()
		if err != nil {
			// Log error but continue with other sources
			continue
		}

		if config == nil {
			config = cfg
		} else {
			config = l.merger.Merge(config, cfg)
		}
	}

	if config == nil {
		return nil, fmt.Errorf("no valid configuration sources found")
	}

	// Validate final configuration
	for _, validator := range l.validators {
		if err := validator.Validate(config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return config, nil
}

// LoadWithDefaults loads configuration with defaults as base
func (l *Loader) LoadWithDefaults() (*Config, error) {
	defaultConfig := DefaultConfig()

	// Sort sources by priority, keeping registration order within a tier
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	config := defaultConfig
	for _, source := range l.sources {
		cfg, err := source.Load()
		if err != nil {
			// Log error but continue with other sources
			continue
		}

		config = l.merger.Merge(config, cfg)
	}

	// Validate final configuration
	for _, validator := range l.validators {
		if err := validator.Validate(config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return config, nil
}

// FileSource loads configuration from a file
type FileSource struct {
	path   string
	format Format
}

// NewFileSource creates a new file configuration source
func NewFileSource(path string) *FileSource {
	format := FormatYAML
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		format = FormatJSON
	case ".toml":
		format = FormatTOML
	case ".yaml", ".yml":
		format = FormatYAML
	}

	return &FileSource{
		path:   path,
		format: format,
	}
}

// Name returns the source name
func (f *FileSource) Name() string {
	return fmt.Sprintf("file:%s", f.path)
}

// Priority returns the source priority (lower = higher priority)
func (f *FileSource) Priority() int {
	return 100
}

// Load loads configuration from the file
func (f *FileSource) Load() (*Config, error) {
	// Expand environment variables in path
	expandedPath := os.ExpandEnv(f.path)

	// Check if file exists
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", expandedPath)
	}

	v := viper.New()
	v.SetConfigFile(expandedPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", expandedPath, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config from %s: %w", expandedPath, err)
	}

	return &config, nil
}

// EnvSource loads configuration from environment variables
type EnvSource struct {
	prefix string
}

// NewEnvSource creates a new environment variable configuration source
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{
		prefix: prefix,
	}
}

// Name returns the source name
func (e *EnvSource) Name() string {
	return fmt.Sprintf("env:%s", e.prefix)
}

// Priority returns the source priority (lower = higher priority)
func (e *EnvSource) Priority() int {
	return 200
}

// Load loads configuration from environment variables
func (e *EnvSource) Load() (*Config, error) {
	config := &Config{}

	mapper := NewEnvMapper(e.prefix)
	if err := mapper.Apply(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	return config, nil
}

// FlagSource loads configuration from command-line flags
type FlagSource struct {
	flags *pflag.FlagSet
}

// NewFlagSource creates a new flag configuration source
func NewFlagSource(flags *pflag.FlagSet) *FlagSource {
	return &FlagSource{
		flags: flags,
	}
}

// Name returns the source name
func (f *FlagSource) Name() string {
	return "flags"
}

// Priority returns the source priority (lower = higher priority)
func (f *FlagSource) Priority() int {
	return 300
}

// Load loads configuration from command-line flags
func (f *FlagSource) Load() (*Config, error) {
	config := &Config{}

	// Handle flags that are bound to nested config fields
	f.flags.VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			return
		}

		switch flag.Name {
		case "log-level":
			if val, err := f.flags.GetString("log-level"); err == nil {
				config.App.LogLevel = val
			}
		case "log-file":
			if val, err := f.flags.GetString("log-file"); err == nil {
				config.App.LogFile = val
			}
		case "verbose":
			if val, err := f.flags.GetBool("verbose"); err == nil {
				config.App.Verbose = val
			}
		case "ttl":
			if val, err := f.flags.GetDuration("ttl"); err == nil {
				config.Cache.DefaultTTL = val
			}
		case "max-entries":
			if val, err := f.flags.GetInt("max-entries"); err == nil {
				config.Cache.MaxEntries = val
			}
		case "refresh-threshold":
			if val, err := f.flags.GetFloat64("refresh-threshold"); err == nil {
				config.Cache.RefreshThreshold = val
			}
		case "no-refresh":
			if val, err := f.flags.GetBool("no-refresh"); err == nil {
				config.Cache.DisableBackgroundRefresh = val
			}
		case "theme":
			if val, err := f.flags.GetString("theme"); err == nil {
				config.UI.Theme = val
			}
		case "refresh":
			if val, err := f.flags.GetDuration("refresh"); err == nil {
				config.UI.RefreshRate = val
			}
		case "compact":
			if val, err := f.flags.GetBool("compact"); err == nil {
				config.UI.CompactMode = val
			}
		}
	})

	return config, nil
}

// DefaultMerger is the default configuration merger
type DefaultMerger struct{}

// Merge merges two configurations, with override taking precedence.
// Zero values in the override count as unset; boolean toggles merge
// with OR so a later source cannot clear them.
func (m *DefaultMerger) Merge(base, override *Config) *Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	// Merge App config
	if override.App.Name != "" {
		result.App.Name = override.App.Name
	}
	if override.App.Version != "" {
		result.App.Version = override.App.Version
	}
	if override.App.LogLevel != "" {
		result.App.LogLevel = override.App.LogLevel
	}
	if override.App.LogFile != "" {
		result.App.LogFile = override.App.LogFile
	}
	if override.App.Verbose {
		result.App.Verbose = true
	}

	// Merge Cache config
	if override.Cache.DefaultTTL > 0 {
		result.Cache.DefaultTTL = override.Cache.DefaultTTL
	}
	if override.Cache.MaxEntries > 0 {
		result.Cache.MaxEntries = override.Cache.MaxEntries
	}
	if override.Cache.RefreshThreshold > 0 {
		result.Cache.RefreshThreshold = override.Cache.RefreshThreshold
	}
	if override.Cache.DisableBackgroundRefresh {
		result.Cache.DisableBackgroundRefresh = true
	}

	// Merge Demo config
	if len(override.Demo.Users) > 0 {
		result.Demo.Users = override.Demo.Users
	}
	if len(override.Demo.GroceryLists) > 0 {
		result.Demo.GroceryLists = override.Demo.GroceryLists
	}
	if len(override.Demo.DocFolders) > 0 {
		result.Demo.DocFolders = override.Demo.DocFolders
	}
	if override.Demo.FetchLatency > 0 {
		result.Demo.FetchLatency = override.Demo.FetchLatency
	}
	if override.Demo.FailureRate > 0 {
		result.Demo.FailureRate = override.Demo.FailureRate
	}
	if override.Demo.ReadInterval > 0 {
		result.Demo.ReadInterval = override.Demo.ReadInterval
	}
	if override.Demo.WriteInterval > 0 {
		result.Demo.WriteInterval = override.Demo.WriteInterval
	}
	if override.Demo.ScheduleInterval > 0 {
		result.Demo.ScheduleInterval = override.Demo.ScheduleInterval
	}
	if override.Demo.EventLog != "" {
		result.Demo.EventLog = override.Demo.EventLog
	}

	// Merge UI config
	if override.UI.Theme != "" {
		result.UI.Theme = override.UI.Theme
	}
	if override.UI.RefreshRate > 0 {
		result.UI.RefreshRate = override.UI.RefreshRate
	}
	if override.UI.CompactMode {
		result.UI.CompactMode = true
	}
	if override.UI.TablePageSize > 0 {
		result.UI.TablePageSize = override.UI.TablePageSize
	}
	if override.UI.TimeFormat != "" {
		result.UI.TimeFormat = override.UI.TimeFormat
	}

	return &result
}
