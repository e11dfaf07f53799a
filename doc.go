// Package authcore is the authentication and brute-force-protection core
// for a single-credential admin console.
//
// The Engine authenticates one static admin identity and defends it with
// per-IP attempt throttling, time-boxed IP quarantine, an artificial login
// delay, and device-bound sessions. All state lives behind an injected
// key-value store (in-memory or Redis), so the engine itself holds no
// mutable state beyond metrics.
//
// Construct an Engine through the Builder:
//
//	engine, err := authcore.New().
//		WithCredential("adminmps", passwordHash, "admin@example.com").
//		WithStore(kv.NewMemoryStore()).
//		Build()
//
// Login, CheckAuth, and Logout take the client's device signals and user
// agent through the context (WithDeviceSignals, WithUserAgent).
package authcore
