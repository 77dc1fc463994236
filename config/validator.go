package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ValidationRule represents a single custom validation rule
type ValidationRule struct {
	Field string
	Check func(cfg *Config) error
}

// StandardValidator provides standard configuration validation
type StandardValidator struct {
	rules []ValidationRule
}

// NewStandardValidator creates a new standard validator with built-in rules
func NewStandardValidator() *StandardValidator {
	return &StandardValidator{
		rules: make([]ValidationRule, 0),
	}
}

// AddRule adds a custom validation rule
func (v *StandardValidator) AddRule(rule ValidationRule) {
	v.rules = append(v.rules, rule)
}

// Validate validates the entire configuration
func (v *StandardValidator) Validate(cfg *Config) error {
	var errors []string

	// Validate App config
	if err := v.validateApp(&cfg.App); err != nil {
		errors = append(errors, fmt.Sprintf("app: %v", err))
	}

	// Validate Cache config
	if err := v.validateCache(&cfg.Cache); err != nil {
		errors = append(errors, fmt.Sprintf("cache: %v", err))
	}

	// Validate Demo config
	if err := v.validateDemo(&cfg.Demo); err != nil {
		errors = append(errors, fmt.Sprintf("demo: %v", err))
	}

	// Validate UI config
	if err := v.validateUI(&cfg.UI); err != nil {
		errors = append(errors, fmt.Sprintf("ui: %v", err))
	}

	// Apply custom rules
	for _, rule := range v.rules {
		if err := rule.Check(cfg); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", rule.Field, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// validateApp validates application configuration
func (v *StandardValidator) validateApp(app *AppConfig) error {
	var errors []string

	// Validate log level
	if err := ValidateLogLevel(app.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("log_level: %v", err))
	}

	// Validate log file path if specified
	if app.LogFile != "" {
		dir := filepath.Dir(app.LogFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("log_file: directory does not exist: %s", dir))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// validateCache validates cache configuration
func (v *StandardValidator) validateCache(c *CacheConfig) error {
	var errors []string

	// Validate default TTL
	if c.DefaultTTL < time.Second {
		errors = append(errors, "default_ttl: must be at least 1s")
	}
	if c.DefaultTTL > 24*time.Hour {
		errors = append(errors, "default_ttl: must not exceed 24h")
	}

	// Validate max entries
	if c.MaxEntries < 1 {
		errors = append(errors, "max_entries: must be at least 1")
	}
	if c.MaxEntries > 100000 {
		errors = append(errors, "max_entries: must not exceed 100000")
	}

	// Validate refresh threshold
	if err := ValidateRefreshThreshold(c.RefreshThreshold); err != nil {
		errors = append(errors, fmt.Sprintf("refresh_threshold: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// validateDemo validates demo workload configuration
func (v *StandardValidator) validateDemo(demo *DemoConfig) error {
	var errors []string

	// The workload needs at least one key family to operate on
	if len(demo.Users)+len(demo.GroceryLists)+len(demo.DocFolders) == 0 {
		errors = append(errors, "at least one of users, grocery_lists or doc_folders must be set")
	}

	// Validate failure rate
	if demo.FailureRate < 0 || demo.FailureRate > 1 {
		errors = append(errors, "failure_rate: must be between 0 and 1")
	}

	// Validate fetch latency
	if demo.FetchLatency < 0 {
		errors = append(errors, "fetch_latency: must be non-negative")
	}
	if demo.FetchLatency > 10*time.Second {
		errors = append(errors, "fetch_latency: must not exceed 10s")
	}

	// Validate loop intervals
	if demo.ReadInterval < 10*time.Millisecond {
		errors = append(errors, "read_interval: must be at least 10ms")
	}
	if demo.WriteInterval < 10*time.Millisecond {
		errors = append(errors, "write_interval: must be at least 10ms")
	}
	if demo.ScheduleInterval < 10*time.Millisecond {
		errors = append(errors, "schedule_interval: must be at least 10ms")
	}

	// Validate event log path if specified
	if demo.EventLog != "" {
		dir := filepath.Dir(demo.EventLog)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("event_log: directory does not exist: %s", dir))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// validateUI validates UI configuration
func (v *StandardValidator) validateUI(ui *UIConfig) error {
	var errors []string

	// Validate theme
	if err := ValidateTheme(ui.Theme); err != nil {
		errors = append(errors, fmt.Sprintf("theme: %v", err))
	}

	// Validate refresh rate
	if ui.RefreshRate < 100*time.Millisecond {
		errors = append(errors, "refresh_rate: must be at least 100ms")
	}
	if ui.RefreshRate > time.Minute {
		errors = append(errors, "refresh_rate: must not exceed 1 minute")
	}

	// Validate table page size
	if ui.TablePageSize < 1 {
		errors = append(errors, "table_page_size: must be at least 1")
	}
	if ui.TablePageSize > 1000 {
		errors = append(errors, "table_page_size: must not exceed 1000")
	}

	// Validate time format
	if ui.TimeFormat != "" {
		if _, err := time.Parse(ui.TimeFormat, "15:04:05"); err != nil {
			errors = append(errors, fmt.Sprintf("time_format: invalid format: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// Built-in validation functions

// ValidateLogLevel validates log level
func ValidateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", level)
	}
	return nil
}

// ValidateTheme validates UI theme
func ValidateTheme(theme string) error {
	validThemes := map[string]bool{
		"dark":  true,
		"light": true,
		"auto":  true,
	}

	if !validThemes[theme] {
		return fmt.Errorf("invalid theme: %s (valid: dark, light, auto)", theme)
	}
	return nil
}

// ValidateRefreshThreshold validates the proactive refresh threshold
func ValidateRefreshThreshold(threshold float64) error {
	if threshold <= 0 || threshold > 1 {
		return fmt.Errorf("invalid threshold: %g (must be in (0, 1])", threshold)
	}
	return nil
}
