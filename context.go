package authcore

import (
	"context"

	"github.com/mpsstore/authcore/fingerprint"
)

type userAgentContextKey struct{}
type deviceSignalsContextKey struct{}

// WithUserAgent attaches the HTTP User-Agent string to ctx. It is recorded
// with failed attempts and in the trusted-device registry.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithDeviceSignals attaches the client-reported environment signals to
// ctx. The engine derives the device fingerprint from them; without
// signals the fingerprint degrades to the empty-signal value and every
// caller looks like the same device.
func WithDeviceSignals(ctx context.Context, signals fingerprint.Signals) context.Context {
	return context.WithValue(ctx, deviceSignalsContextKey{}, signals)
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}

func deviceSignalsFromContext(ctx context.Context) fingerprint.Signals {
	if ctx == nil {
		return fingerprint.Signals{}
	}

	signals, _ := ctx.Value(deviceSignalsContextKey{}).(fingerprint.Signals)
	return signals
}
