package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv() {
	os.Setenv("IP_HASH_SECRET", "test-ip-secret-32-characters-ok!")
	os.Setenv("SERVICE_TOKEN_SECRET", "test-svc-secret-32-characters-!!")
	os.Setenv("DB_PASSWORD", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv()
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"MXLookupTimeout", cfg.Validation.MXLookupTimeout, 5 * time.Second},
		{"BreachTimeout", cfg.Validation.BreachTimeout, 5 * time.Second},
		{"SweepInterval", cfg.Correlation.SweepInterval, 5 * time.Minute},
		{"LoginRetention", cfg.Correlation.LoginRetention, 90 * 24 * time.Hour},
		{"BanStatusTTL", cfg.Redis.BanStatusTTL, 30 * time.Second},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}

	if cfg.Validation.BreachBaseURL != "https://api.pwnedpasswords.com" {
		t.Errorf("BreachBaseURL: got %q", cfg.Validation.BreachBaseURL)
	}
	if cfg.Correlation.QueueSize != 256 {
		t.Errorf("QueueSize: got %d, want 256", cfg.Correlation.QueueSize)
	}
}

func TestLoad_MissingIPHashSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("SERVICE_TOKEN_SECRET", "test-svc-secret-32-characters-!!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing IP_HASH_SECRET")
	}
}

func TestLoad_WeakSecretRejected(t *testing.T) {
	setRequiredEnv()
	os.Setenv("IP_HASH_SECRET", "changeme")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for weak secret")
	}
}

func TestLoad_ProductionRequiresLongerSecrets(t *testing.T) {
	setRequiredEnv()
	os.Setenv("ENV", "production")
	os.Setenv("IP_HASH_SECRET", "only-20-chars-long!!")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for short secret in production")
	}
}

func TestLoad_CustomDurations(t *testing.T) {
	setRequiredEnv()
	os.Setenv("MX_LOOKUP_TIMEOUT", "2s")
	os.Setenv("BAN_SWEEP_INTERVAL", "1m")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Validation.MXLookupTimeout != 2*time.Second {
		t.Errorf("MXLookupTimeout: got %v, want 2s", cfg.Validation.MXLookupTimeout)
	}
	if cfg.Correlation.SweepInterval != time.Minute {
		t.Errorf("SweepInterval: got %v, want 1m", cfg.Correlation.SweepInterval)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequiredEnv()
	os.Setenv("MX_LOOKUP_TIMEOUT", "not-a-duration")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Validation.MXLookupTimeout != 5*time.Second {
		t.Errorf("MXLookupTimeout with invalid value: got %v, want 5s", cfg.Validation.MXLookupTimeout)
	}
}

func TestLoad_AlertsRequireAddresses(t *testing.T) {
	setRequiredEnv()
	os.Setenv("ALERTS_ENABLED", "true")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error when alerts enabled without addresses")
	}
}
