package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_FromEnvironmentVariables(t *testing.T) {
	os.Setenv("DB_HOST", "testhost")
	os.Setenv("DB_PORT", "5433")
	os.Setenv("DB_NAME", "testdb")
	os.Setenv("API_PORT", "9090")
	os.Setenv("CRM_API_URL", "https://crm.test/api")
	os.Setenv("CRM_API_LEGACY_URL", "https://crm-old.test/api")
	os.Setenv("CRM_API_TOKEN", "test_token")
	os.Setenv("CRM_API_TIMEOUT", "10s")
	os.Setenv("WORKER_POLL_INTERVAL", "10s")
	os.Setenv("JOB_RETENTION", "72h")
	os.Setenv("MAX_RETRY_ATTEMPTS", "3")
	os.Setenv("RETRY_BACKOFF_BASE", "15s")
	os.Setenv("ENABLE_AUTH", "true")
	os.Setenv("SHARED_SECRET", "test_secret")

	defer func() {
		os.Unsetenv("DB_HOST")
		os.Unsetenv("DB_PORT")
		os.Unsetenv("DB_NAME")
		os.Unsetenv("API_PORT")
		os.Unsetenv("CRM_API_URL")
		os.Unsetenv("CRM_API_LEGACY_URL")
		os.Unsetenv("CRM_API_TOKEN")
		os.Unsetenv("CRM_API_TIMEOUT")
		os.Unsetenv("WORKER_POLL_INTERVAL")
		os.Unsetenv("JOB_RETENTION")
		os.Unsetenv("MAX_RETRY_ATTEMPTS")
		os.Unsetenv("RETRY_BACKOFF_BASE")
		os.Unsetenv("ENABLE_AUTH")
		os.Unsetenv("SHARED_SECRET")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Host != "testhost" {
		t.Errorf("Expected DB_HOST=testhost, got %s", cfg.Database.Host)
	}
	if cfg.Database.DBName != "testdb" {
		t.Errorf("Expected DB_NAME=testdb, got %s", cfg.Database.DBName)
	}

	if cfg.API.Port != "9090" {
		t.Errorf("Expected API_PORT=9090, got %s", cfg.API.Port)
	}

	if cfg.CRMAPI.URL != "https://crm.test/api" {
		t.Errorf("Expected CRM_API_URL, got %s", cfg.CRMAPI.URL)
	}
	if cfg.CRMAPI.LegacyURL != "https://crm-old.test/api" {
		t.Errorf("Expected CRM_API_LEGACY_URL, got %s", cfg.CRMAPI.LegacyURL)
	}
	if cfg.CRMAPI.Token != "test_token" {
		t.Errorf("Expected CRM_API_TOKEN=test_token, got %s", cfg.CRMAPI.Token)
	}
	if cfg.CRMAPI.Timeout != 10*time.Second {
		t.Errorf("Expected CRM_API_TIMEOUT=10s, got %v", cfg.CRMAPI.Timeout)
	}

	if cfg.Worker.PollInterval != 10*time.Second {
		t.Errorf("Expected WORKER_POLL_INTERVAL=10s, got %v", cfg.Worker.PollInterval)
	}
	if cfg.Worker.JobRetention != 72*time.Hour {
		t.Errorf("Expected JOB_RETENTION=72h, got %v", cfg.Worker.JobRetention)
	}

	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Expected MAX_RETRY_ATTEMPTS=3, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BackoffBase != 15*time.Second {
		t.Errorf("Expected RETRY_BACKOFF_BASE=15s, got %v", cfg.Retry.BackoffBase)
	}

	if !cfg.Auth.Enabled {
		t.Error("Expected ENABLE_AUTH=true")
	}
	if cfg.Auth.SharedSecret != "test_secret" {
		t.Errorf("Expected SHARED_SECRET=test_secret, got %s", cfg.Auth.SharedSecret)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	os.Unsetenv("DB_HOST")
	os.Unsetenv("API_PORT")
	os.Unsetenv("WORKER_POLL_INTERVAL")
	os.Unsetenv("JOB_RETENTION")
	os.Unsetenv("ENABLE_AUTH")
	os.Unsetenv("CRM_API_LEGACY_URL")

	os.Setenv("CRM_API_URL", "https://crm.test/api")
	os.Setenv("CRM_API_TOKEN", "required_token")

	defer func() {
		os.Unsetenv("CRM_API_URL")
		os.Unsetenv("CRM_API_TOKEN")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected default DB_HOST=localhost, got %s", cfg.Database.Host)
	}
	if cfg.API.Port != "8080" {
		t.Errorf("Expected default API_PORT=8080, got %s", cfg.API.Port)
	}
	if cfg.Worker.PollInterval != 5*time.Second {
		t.Errorf("Expected default WORKER_POLL_INTERVAL=5s, got %v", cfg.Worker.PollInterval)
	}
	if cfg.Worker.JobRetention != 7*24*time.Hour {
		t.Errorf("Expected default JOB_RETENTION=168h, got %v", cfg.Worker.JobRetention)
	}
	if cfg.CRMAPI.LegacyURL != "" {
		t.Errorf("Expected no legacy tier by default, got %s", cfg.CRMAPI.LegacyURL)
	}
	if cfg.Auth.Enabled {
		t.Error("Expected default ENABLE_AUTH=false")
	}
}

func TestValidate_MissingCRMAPIURL(t *testing.T) {
	cfg := &Config{
		CRMAPI: CRMAPIConfig{
			URL:   "",
			Token: "test_token",
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Error("Expected validation error for missing CRM_API_URL")
	}
	if err != nil && err.Error() != "CRM_API_URL is required" {
		t.Errorf("Expected error message 'CRM_API_URL is required', got %v", err)
	}
}

func TestValidate_MissingCRMAPIToken(t *testing.T) {
	cfg := &Config{
		CRMAPI: CRMAPIConfig{
			URL:   "https://crm.test/api",
			Token: "",
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Error("Expected validation error for missing CRM_API_TOKEN")
	}
	if err != nil && err.Error() != "CRM_API_TOKEN is required" {
		t.Errorf("Expected error message 'CRM_API_TOKEN is required', got %v", err)
	}
}

func TestValidate_MissingSharedSecretWhenAuthEnabled(t *testing.T) {
	cfg := &Config{
		CRMAPI: CRMAPIConfig{
			URL:   "https://crm.test/api",
			Token: "test_token",
		},
		Auth: AuthConfig{
			Enabled:      true,
			SharedSecret: "",
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Error("Expected validation error for missing SHARED_SECRET when auth enabled")
	}
}

func TestValidate_Success(t *testing.T) {
	cfg := &Config{
		CRMAPI: CRMAPIConfig{
			URL:   "https://crm.test/api",
			Token: "test_token",
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected validation to pass, got error: %v", err)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"invalid", false},
	}

	for _, tt := range tests {
		if got := parseBool(tt.input); got != tt.expected {
			t.Errorf("parseBool(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input        string
		defaultValue time.Duration
		expected     time.Duration
	}{
		{"5s", 10 * time.Second, 5 * time.Second},
		{"1m", 10 * time.Second, 1 * time.Minute},
		{"invalid", 10 * time.Second, 10 * time.Second},
		{"", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		if got := parseDuration(tt.input, tt.defaultValue); got != tt.expected {
			t.Errorf("parseDuration(%q, %v) = %v, expected %v", tt.input, tt.defaultValue, got, tt.expected)
		}
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		input        string
		defaultValue int
		expected     int
	}{
		{"42", 10, 42},
		{"0", 10, 0},
		{"invalid", 10, 10},
		{"", 10, 10},
	}

	for _, tt := range tests {
		if got := parseInt(tt.input, tt.defaultValue); got != tt.expected {
			t.Errorf("parseInt(%q, %d) = %d, expected %d", tt.input, tt.defaultValue, got, tt.expected)
		}
	}
}
