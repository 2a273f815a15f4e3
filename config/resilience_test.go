package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultResilienceConfig(t *testing.T) {
	cfg := DefaultResilienceConfig()

	if cfg.CBFailureThreshold != 5 {
		t.Errorf("Expected CBFailureThreshold=5, got %d", cfg.CBFailureThreshold)
	}
	if cfg.CBTimeout != 30*time.Second {
		t.Errorf("Expected CBTimeout=30s, got %v", cfg.CBTimeout)
	}
	if cfg.CBHalfOpenRequests != 1 {
		t.Errorf("Expected CBHalfOpenRequests=1, got %d", cfg.CBHalfOpenRequests)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestResilienceConfig_ApplyEnv(t *testing.T) {
	t.Setenv("CB_FAILURE_THRESHOLD", "10")
	t.Setenv("CB_TIMEOUT", "45s")
	t.Setenv("CB_HALF_OPEN_REQUESTS", "3")

	cfg := DefaultResilienceConfig()
	p := &envParser{}
	cfg.applyEnv(p)

	if err := p.err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CBFailureThreshold != 10 {
		t.Errorf("Expected CBFailureThreshold=10, got %d", cfg.CBFailureThreshold)
	}
	if cfg.CBTimeout != 45*time.Second {
		t.Errorf("Expected CBTimeout=45s, got %v", cfg.CBTimeout)
	}
	if cfg.CBHalfOpenRequests != 3 {
		t.Errorf("Expected CBHalfOpenRequests=3, got %d", cfg.CBHalfOpenRequests)
	}
}

func TestResilienceConfig_ApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		name    string
		envName string
		value   string
		errText string
	}{
		{"non-numeric threshold", "CB_FAILURE_THRESHOLD", "many", "must be a valid integer"},
		{"zero threshold", "CB_FAILURE_THRESHOLD", "0", "must be positive"},
		{"bad timeout", "CB_TIMEOUT", "soon", "invalid duration format"},
		{"negative timeout", "CB_TIMEOUT", "-5s", "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envName, tt.value)

			cfg := DefaultResilienceConfig()
			p := &envParser{}
			cfg.applyEnv(p)

			err := p.err()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("expected error containing %q, got %v", tt.errText, err)
			}
		})
	}
}

func TestResilienceConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ResilienceConfig)
		wantErr bool
	}{
		{"defaults", func(c *ResilienceConfig) {}, false},
		{"zero threshold", func(c *ResilienceConfig) { c.CBFailureThreshold = 0 }, true},
		{"zero timeout", func(c *ResilienceConfig) { c.CBTimeout = 0 }, true},
		{"zero half-open requests", func(c *ResilienceConfig) { c.CBHalfOpenRequests = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultResilienceConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvParser_OptionalDuration(t *testing.T) {
	t.Setenv("PAUSE", "0s")
	t.Setenv("NEGATIVE", "-1s")

	d := time.Second
	p := &envParser{}
	p.parseOptionalDuration("PAUSE", &d)
	if d != 0 {
		t.Errorf("expected zero to be accepted, got %v", d)
	}

	p.parseOptionalDuration("NEGATIVE", &d)
	if p.err() == nil {
		t.Error("expected negative duration to be rejected")
	}
}
