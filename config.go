package authcore

import (
	"fmt"
	"time"
)

// DefaultPepper is the development-only pepper. Production configurations
// must replace it; Validate enforces that when ProductionMode is set.
const DefaultPepper = "default-pepper-value"

// CredentialConfig holds the single static admin identity. The plaintext
// password never appears here, only its bcrypt hash.
type CredentialConfig struct {
	Username     string
	PasswordHash string
	Email        string
}

// PasswordConfig holds hashing parameters.
type PasswordConfig struct {
	Cost   int
	Pepper string
}

// SecurityConfig holds throttling and hardening knobs.
type SecurityConfig struct {
	// MaxLoginAttempts is the failure count that triggers a lockout.
	MaxLoginAttempts int

	// LockoutDuration is both the lockout length and the sliding window
	// after which stale attempt counts reset.
	LockoutDuration time.Duration

	// SuspicionDuration is how long a lockout-triggering IP stays
	// quarantined.
	SuspicionDuration time.Duration

	// LoginDelay is the artificial pause before credentials are checked.
	// It slows automated guessing; zero disables it (tests).
	LoginDelay time.Duration

	// ProductionMode tightens Validate (non-default pepper required).
	ProductionMode bool
}

// SessionConfig holds session parameters.
type SessionConfig struct {
	TTL        time.Duration
	StorageKey string
}

// ClientInfoConfig configures the public-IP lookup.
type ClientInfoConfig struct {
	LookupURL     string
	LookupTimeout time.Duration
}

// StorageConfig names the keys used in the key-value store.
type StorageConfig struct {
	AttemptKeyPrefix string
	SuspiciousIPsKey string
	KnownDevicesKey  string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metric store.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Config is the full engine configuration. Start from DefaultConfig or a
// preset and override what you need; the zero value does not validate.
type Config struct {
	Credential CredentialConfig
	Password   PasswordConfig
	Security   SecurityConfig
	Session    SessionConfig
	ClientInfo ClientInfoConfig
	Storage    StorageConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

// DefaultConfig returns the baseline configuration. The credential
// password hash must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Credential: CredentialConfig{
			Username: "adminmps",
			Email:    "admin@example.com",
		},
		Password: PasswordConfig{
			Cost:   12,
			Pepper: DefaultPepper,
		},
		Security: SecurityConfig{
			MaxLoginAttempts:  3,
			LockoutDuration:   30 * time.Minute,
			SuspicionDuration: 30 * time.Minute,
			LoginDelay:        500 * time.Millisecond,
		},
		Session: SessionConfig{
			TTL:        24 * time.Hour,
			StorageKey: "admin_session",
		},
		ClientInfo: ClientInfoConfig{
			LookupURL:     "https://api.ipify.org?format=json",
			LookupTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			AttemptKeyPrefix: "login_attempts:",
			SuspiciousIPsKey: "suspicious_ips",
			KnownDevicesKey:  "known_devices",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DevelopmentPreset enables auditing and latency histograms on top of the
// defaults. Not for production.
func DevelopmentPreset() Config {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

// ProductionPreset enables auditing and production validation. The caller
// must still set the pepper and the credential hash.
func ProductionPreset() Config {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Security.ProductionMode = true
	return cfg
}

// Validate checks internal consistency. It is called by Builder.Build.
func (c *Config) Validate() error {
	if c.Credential.Username == "" {
		return fmt.Errorf("config: credential username is required")
	}
	if c.Credential.PasswordHash == "" {
		return fmt.Errorf("config: credential password hash is required")
	}
	if c.Password.Cost < 12 {
		return fmt.Errorf("config: bcrypt cost %d below minimum 12", c.Password.Cost)
	}
	if c.Security.MaxLoginAttempts < 1 {
		return fmt.Errorf("config: max login attempts must be at least 1")
	}
	if c.Security.LockoutDuration <= 0 {
		return fmt.Errorf("config: lockout duration must be positive")
	}
	if c.Security.SuspicionDuration <= 0 {
		return fmt.Errorf("config: suspicion duration must be positive")
	}
	if c.Security.LoginDelay < 0 {
		return fmt.Errorf("config: login delay cannot be negative")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session ttl must be positive")
	}
	if c.Session.StorageKey == "" {
		return fmt.Errorf("config: session storage key is required")
	}
	if c.Storage.AttemptKeyPrefix == "" {
		return fmt.Errorf("config: attempt key prefix is required")
	}
	if c.Storage.SuspiciousIPsKey == "" {
		return fmt.Errorf("config: suspicious ip key is required")
	}
	if c.Storage.KnownDevicesKey == "" {
		return fmt.Errorf("config: known devices key is required")
	}
	if c.Security.ProductionMode && c.Password.Pepper == DefaultPepper {
		return fmt.Errorf("config: production mode requires a non-default pepper")
	}
	return nil
}
