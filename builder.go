package authcore

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mpsstore/authcore/attempts"
	"github.com/mpsstore/authcore/clientinfo"
	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/devices"
	"github.com/mpsstore/authcore/kv"
	"github.com/mpsstore/authcore/password"
	"github.com/mpsstore/authcore/session"
	"github.com/mpsstore/authcore/suspicion"

	internalaudit "github.com/mpsstore/authcore/internal/audit"
)

// Builder assembles an [Engine]. Collaborators left unset get working
// defaults: an in-memory store, the system clock, and the HTTP IP
// resolver from the configuration.
type Builder struct {
	cfg      Config
	store    kv.Store
	resolver clientinfo.Resolver
	clk      clock.Clock
	sink     AuditSink
}

// New starts a Builder from [DefaultConfig].
func New() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithCredential sets the static admin identity.
func (b *Builder) WithCredential(username, passwordHash, email string) *Builder {
	b.cfg.Credential = CredentialConfig{
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
	}
	return b
}

// WithPepper overrides the hashing pepper.
func (b *Builder) WithPepper(pepper string) *Builder {
	b.cfg.Password.Pepper = pepper
	return b
}

// WithStore injects the key-value store backing all engine state.
func (b *Builder) WithStore(store kv.Store) *Builder {
	b.store = store
	return b
}

// WithRedis backs the engine with Redis under the given key prefix.
func (b *Builder) WithRedis(client redis.UniversalClient, prefix string) *Builder {
	b.store = kv.NewRedisStore(client, prefix)
	return b
}

// WithResolver injects the client IP resolver.
func (b *Builder) WithResolver(resolver clientinfo.Resolver) *Builder {
	b.resolver = resolver
	return b
}

// WithClock injects the time source. Tests use a mock clock here.
func (b *Builder) WithClock(clk clock.Clock) *Builder {
	b.clk = clk
	return b
}

// WithAuditSink injects the audit sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	b.cfg.Audit.Enabled = true
	return b
}

// Build validates the configuration, fills in default collaborators, and
// wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		store = kv.NewMemoryStore()
	}
	clk := b.clk
	if clk == nil {
		clk = clock.System()
	}
	resolver := b.resolver
	if resolver == nil {
		resolver = clientinfo.NewHTTPResolver(b.cfg.ClientInfo.LookupURL, b.cfg.ClientInfo.LookupTimeout)
	}

	hasher, err := password.NewHasher(password.Config{
		Cost:   b.cfg.Password.Cost,
		Pepper: b.cfg.Password.Pepper,
	})
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	suspicionRegistry := suspicion.NewRegistry(store, clk, suspicion.Config{
		Quarantine: b.cfg.Security.SuspicionDuration,
		StorageKey: b.cfg.Storage.SuspiciousIPsKey,
	})

	// The quarantine registry doubles as the lockout notifier, so an IP
	// that trips the attempt limit is blocked on its next request.
	tracker := attempts.NewTracker(store, clk, attempts.Config{
		MaxAttempts:     b.cfg.Security.MaxLoginAttempts,
		LockoutDuration: b.cfg.Security.LockoutDuration,
		KeyPrefix:       b.cfg.Storage.AttemptKeyPrefix,
	}, suspicionRegistry)

	return &Engine{
		cfg:        b.cfg,
		hasher:     hasher,
		clientInfo: clientinfo.NewProvider(resolver, clk),
		attempts:   tracker,
		suspicion:  suspicionRegistry,
		devices: devices.NewRegistry(store, clk, devices.Config{
			StorageKey: b.cfg.Storage.KnownDevicesKey,
		}),
		sessions: session.NewManager(store, clk, session.Config{
			TTL:        b.cfg.Session.TTL,
			StorageKey: b.cfg.Session.StorageKey,
		}),
		clock:   clk,
		metrics: NewMetrics(b.cfg.Metrics),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    b.cfg.Audit.Enabled,
			BufferSize: b.cfg.Audit.BufferSize,
			DropIfFull: b.cfg.Audit.DropIfFull,
		}, b.sink),
	}, nil
}
