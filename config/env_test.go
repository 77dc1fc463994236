package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvWithDefault(t *testing.T) {
	key := "TEST_ENV_STRING"
	defaultValue := "default"
	customValue := "custom"

	// Test with env var not set
	result := GetEnvWithDefault(key, defaultValue)
	assert.Equal(t, defaultValue, result)

	// Test with env var set
	os.Setenv(key, customValue)
	defer os.Unsetenv(key)
	result = GetEnvWithDefault(key, defaultValue)
	assert.Equal(t, customValue, result)
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_ENV_BOOL"
	defaultValue := false

	// Test with env var not set
	result := GetEnvBool(key, defaultValue)
	assert.Equal(t, defaultValue, result)

	// Test with valid bool values
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{"invalid", defaultValue}, // Should return default for invalid values
	}

	for _, tt := range tests {
		os.Setenv(key, tt.value)
		result := GetEnvBool(key, defaultValue)
		assert.Equal(t, tt.expected, result)
	}

	os.Unsetenv(key)
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_ENV_INT"
	defaultValue := 42

	// Test with env var not set
	result := GetEnvInt(key, defaultValue)
	assert.Equal(t, defaultValue, result)

	// Test with valid int values
	tests := []struct {
		value    string
		expected int
	}{
		{"123", 123},
		{"0", 0},
		{"-456", -456},
		{"invalid", defaultValue}, // Should return default for invalid values
	}

	for _, tt := range tests {
		os.Setenv(key, tt.value)
		result := GetEnvInt(key, defaultValue)
		assert.Equal(t, tt.expected, result)
	}

	os.Unsetenv(key)
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_ENV_FLOAT"
	defaultValue := 3.14

	// Test with env var not set
	result := GetEnvFloat(key, defaultValue)
	assert.Equal(t, defaultValue, result)

	// Test with valid float values
	tests := []struct {
		value    string
		expected float64
	}{
		{"1.23", 1.23},
		{"0.0", 0.0},
		{"-4.56", -4.56},
		{"invalid", defaultValue}, // Should return default for invalid values
	}

	for _, tt := range tests {
		os.Setenv(key, tt.value)
		result := GetEnvFloat(key, defaultValue)
		assert.Equal(t, tt.expected, result)
	}

	os.Unsetenv(key)
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"
	defaultValue := 5 * time.Second

	// Test with env var not set
	result := GetEnvDuration(key, defaultValue)
	assert.Equal(t, defaultValue, result)

	// Test with valid duration values
	tests := []struct {
		value    string
		expected time.Duration
	}{
		{"1s", time.Second},
		{"5m", 5 * time.Minute},
		{"100ms", 100 * time.Millisecond},
		{"invalid", defaultValue}, // Should return default for invalid values
	}

	for _, tt := range tests {
		os.Setenv(key, tt.value)
		result := GetEnvDuration(key, defaultValue)
		assert.Equal(t, tt.expected, result)
	}

	os.Unsetenv(key)
}

func TestGetEnvSlice(t *testing.T) {
	key := "TEST_ENV_SLICE"
	defaultValue := []string{"default"}

	// Test with env var not set
	result := GetEnvSlice(key, defaultValue)
	assert.Equal(t, defaultValue, result)

	// Test with comma-separated values
	tests := []struct {
		value    string
		expected []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{"single", []string{"single"}},
		{"a, b, c", []string{"a", "b", "c"}}, // Test trimming spaces
	}

	for _, tt := range tests {
		os.Setenv(key, tt.value)
		result := GetEnvSlice(key, defaultValue)
		assert.Equal(t, tt.expected, result)
	}

	os.Unsetenv(key)
}

func TestEnvMapper_ToCamelCase(t *testing.T) {
	mapper := NewEnvMapper("TEST")

	tests := []struct {
		input    string
		expected string
	}{
		{"log_level", "LogLevel"},
		{"default_ttl", "DefaultTTL"},
		{"ui", "UI"},
		{"table_page_size", "TablePageSize"},
		{"simple", "Simple"},
		{"", ""},
	}

	for _, tt := range tests {
		result := mapper.toCamelCase(tt.input)
		assert.Equal(t, tt.expected, result)
	}
}

func TestEnvMapper_Apply(t *testing.T) {
	// Set up test environment variables
	testEnvVars := map[string]string{
		"HEARTHCACHE_LOG_LEVEL":    "debug",
		"HEARTHCACHE_THEME":        "light",
		"HEARTHCACHE_DEFAULT_TTL":  "90s",
		"HEARTHCACHE_MAX_ENTRIES":  "25",
		"HEARTHCACHE_FAILURE_RATE": "0.3",
		"HEARTHCACHE_USERS":        "dana, eli",
	}

	for key, value := range testEnvVars {
		os.Setenv(key, value)
		defer os.Unsetenv(key)
	}

	// Create config and apply environment variables
	cfg := DefaultConfig()
	mapper := NewEnvMapper("HEARTHCACHE")
	err := mapper.Apply(cfg)

	assert.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, 90*time.Second, cfg.Cache.DefaultTTL)
	assert.Equal(t, 25, cfg.Cache.MaxEntries)
	assert.Equal(t, 0.3, cfg.Demo.FailureRate)
	assert.Equal(t, []string{"dana", "eli"}, cfg.Demo.Users)
}

func TestEnvMapper_CustomMapping(t *testing.T) {
	os.Setenv("HEARTHCACHE_PAGE_SIZE", "7")
	defer os.Unsetenv("HEARTHCACHE_PAGE_SIZE")

	cfg := DefaultConfig()
	mapper := NewEnvMapper("HEARTHCACHE")
	mapper.Map("PAGE_SIZE", "ui.table_page_size")

	assert.NoError(t, mapper.Apply(cfg))
	assert.Equal(t, 7, cfg.UI.TablePageSize)
}

func TestEnvMapper_InvalidValue(t *testing.T) {
	os.Setenv("HEARTHCACHE_MAX_ENTRIES", "not-a-number")
	defer os.Unsetenv("HEARTHCACHE_MAX_ENTRIES")

	cfg := DefaultConfig()
	mapper := NewEnvMapper("HEARTHCACHE")
	assert.Error(t, mapper.Apply(cfg))
}

func TestLoadFromEnv(t *testing.T) {
	// Set up test environment variables
	os.Setenv("HEARTHCACHE_LOG_LEVEL", "warn")
	os.Setenv("HEARTHCACHE_COMPACT_MODE", "true")
	defer os.Unsetenv("HEARTHCACHE_LOG_LEVEL")
	defer os.Unsetenv("HEARTHCACHE_COMPACT_MODE")

	cfg := DefaultConfig()
	err := LoadFromEnv(cfg)

	assert.NoError(t, err)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.True(t, cfg.UI.CompactMode)
}

func TestStandardEnvMappings(t *testing.T) {
	// Test that all standard mappings are present
	expectedMappings := []string{
		"HEARTHCACHE_LOG_LEVEL",
		"HEARTHCACHE_DEFAULT_TTL",
		"HEARTHCACHE_MAX_ENTRIES",
		"HEARTHCACHE_REFRESH_THRESHOLD",
		"HEARTHCACHE_THEME",
		"HEARTHCACHE_EVENT_LOG",
	}

	for _, key := range expectedMappings {
		_, exists := StandardEnvMappings[key]
		assert.True(t, exists, "Missing standard mapping for %s", key)
	}
}
