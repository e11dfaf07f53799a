package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authcore "github.com/mpsstore/authcore"
	"github.com/mpsstore/authcore/clientinfo"
	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/fingerprint"
	"github.com/mpsstore/authcore/password"
)

const (
	guardTestPassword = "S3cure!Pass"
	guardTestUA       = "guard-test-agent"
)

func guardTestSignals() fingerprint.Signals {
	return fingerprint.Signals{
		UserAgent:        guardTestUA,
		ScreenResolution: "1920x1080",
		Timezone:         "Europe/Madrid",
		Language:         "es-ES",
		Platform:         "Linux x86_64",
	}
}

func newGuardEngine(t *testing.T) *authcore.Engine {
	t.Helper()

	cfg := authcore.DefaultConfig()
	cfg.Security.LoginDelay = 0

	engine, err := authcore.New().
		WithConfig(cfg).
		WithCredential("adminmps", mustHash(t), "admin@example.com").
		WithClock(clock.NewMock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))).
		WithResolver(clientinfo.StaticResolver{IP: "203.0.113.7"}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func mustHash(t *testing.T) string {
	t.Helper()
	hasher, err := password.NewHasher(password.Config{Cost: 12, Pepper: authcore.DefaultPepper})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	hash, err := hasher.Hash(guardTestPassword)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	return hash
}

func loginCtx() context.Context {
	ctx := authcore.WithUserAgent(context.Background(), guardTestUA)
	return authcore.WithDeviceSignals(ctx, guardTestSignals())
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	engine := newGuardEngine(t)

	guarded := RequireAuth(engine, GuardConfig{}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("User-Agent", guardTestUA)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRedirectsWhenConfigured(t *testing.T) {
	engine := newGuardEngine(t)

	guarded := RequireAuth(engine, GuardConfig{LoginURL: "/login"}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestRequireAuthAdmitsActiveSession(t *testing.T) {
	engine := newGuardEngine(t)

	if result := engine.Login(loginCtx(), "adminmps", guardTestPassword); !result.Success {
		t.Fatalf("login failed: %q", result.Message)
	}

	signals := guardTestSignals()
	guarded := RequireAuth(engine, GuardConfig{
		Signals: func(*http.Request) fingerprint.Signals { return signals },
	}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("User-Agent", guardTestUA)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAuthRejectsDifferentDevice(t *testing.T) {
	engine := newGuardEngine(t)

	if result := engine.Login(loginCtx(), "adminmps", guardTestPassword); !result.Success {
		t.Fatalf("login failed: %q", result.Message)
	}

	other := guardTestSignals()
	other.Platform = "Win32"
	guarded := RequireAuth(engine, GuardConfig{
		Signals: func(*http.Request) fingerprint.Signals { return other },
	}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("User-Agent", guardTestUA)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
