package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	for _, key := range []string{"ASSISTANT_MIN_DELAY_MS", "ASSISTANT_MAX_DELAY_MS", "SESSION_IDLE_TTL_MINUTES", "REDIS_URL", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.MinThinkingDelay != 800*time.Millisecond || cfg.MaxThinkingDelay != 2000*time.Millisecond {
		t.Errorf("Expected 800ms-2000ms thinking delay, got %s-%s", cfg.MinThinkingDelay, cfg.MaxThinkingDelay)
	}
	if cfg.SessionIdleTTL != 30*time.Minute {
		t.Errorf("Expected 30m idle TTL, got %s", cfg.SessionIdleTTL)
	}
	if cfg.RedisURL != "" || cfg.DatabaseURL != "" {
		t.Errorf("Expected optional backends to be disabled by default")
	}
}

func TestLoad_ClampsInvertedDelayRange(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("ASSISTANT_MIN_DELAY_MS", "1500")
	t.Setenv("ASSISTANT_MAX_DELAY_MS", "100")

	cfg := Load()

	if cfg.MaxThinkingDelay != cfg.MinThinkingDelay {
		t.Errorf("Expected max delay clamped to %s, got %s", cfg.MinThinkingDelay, cfg.MaxThinkingDelay)
	}
}
