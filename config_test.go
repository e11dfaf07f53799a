package authcore

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Credential.PasswordHash = "$2a$12$notarealhashbutnonempty000000000000000000000000000000"
	return cfg
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Security.MaxLoginAttempts != 3 {
		t.Fatalf("MaxLoginAttempts = %d", cfg.Security.MaxLoginAttempts)
	}
	if cfg.Security.LockoutDuration != 30*time.Minute {
		t.Fatalf("LockoutDuration = %v", cfg.Security.LockoutDuration)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("Session TTL = %v", cfg.Session.TTL)
	}
	if cfg.Security.LoginDelay != 500*time.Millisecond {
		t.Fatalf("LoginDelay = %v", cfg.Security.LoginDelay)
	}
	if cfg.Password.Cost != 12 {
		t.Fatalf("bcrypt cost = %d", cfg.Password.Cost)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"missing hash", func(c *Config) { c.Credential.PasswordHash = "" }, "password hash"},
		{"missing username", func(c *Config) { c.Credential.Username = "" }, "username"},
		{"low cost", func(c *Config) { c.Password.Cost = 10 }, "cost"},
		{"zero attempts", func(c *Config) { c.Security.MaxLoginAttempts = 0 }, "attempts"},
		{"zero lockout", func(c *Config) { c.Security.LockoutDuration = 0 }, "lockout"},
		{"negative delay", func(c *Config) { c.Security.LoginDelay = -time.Second }, "delay"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "ttl"},
		{"no session key", func(c *Config) { c.Session.StorageKey = "" }, "storage key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestProductionModeRequiresCustomPepper(t *testing.T) {
	cfg := validTestConfig()
	cfg.Security.ProductionMode = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("default pepper must be rejected in production mode")
	}

	cfg.Password.Pepper = "deployment-specific-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestPresets(t *testing.T) {
	dev := DevelopmentPreset()
	if !dev.Audit.Enabled || !dev.Metrics.EnableLatencyHistograms {
		t.Fatal("development preset must enable audit and latency histograms")
	}
	if dev.Security.ProductionMode {
		t.Fatal("development preset must not set production mode")
	}

	prod := ProductionPreset()
	if !prod.Security.ProductionMode || !prod.Audit.Enabled {
		t.Fatal("production preset must set production mode and auditing")
	}
}
