// Package clientinfo assembles the per-request client context used by the
// login path: a hashed client IP, the user agent, and the derived device
// fingerprint.
//
// The IP is obtained from an injected Resolver and hashed before it leaves
// this package. Raw addresses are never stored or returned to callers.
package clientinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mpsstore/authcore/clock"
	"github.com/mpsstore/authcore/internal"
)

// ErrUnavailable is returned when the client IP cannot be resolved. Login
// must refuse to proceed in that case rather than fall back to an
// unthrottled path.
var ErrUnavailable = errors.New("client information unavailable")

// Context carries the resolved, already-hashed client attributes for one
// request.
type Context struct {
	IPHash            string
	UserAgent         string
	DeviceFingerprint string
	ObservedAt        time.Time
}

// Resolver reports the caller's public IP address.
type Resolver interface {
	ResolveIP(ctx context.Context) (string, error)
}

// HTTPResolver queries an external lookup endpoint (ipify-style JSON body
// `{"ip":"..."}`) to discover the public address.
type HTTPResolver struct {
	url    string
	client *http.Client
}

// NewHTTPResolver creates an HTTPResolver against url with the given
// request timeout.
func NewHTTPResolver(url string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (r *HTTPResolver) ResolveIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: lookup returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if body.IP == "" {
		return "", fmt.Errorf("%w: lookup returned empty address", ErrUnavailable)
	}
	return body.IP, nil
}

// StaticResolver always reports the same address. Useful for tests and for
// deployments that trust an upstream proxy header instead of an external
// lookup.
type StaticResolver struct {
	IP string
}

func (r StaticResolver) ResolveIP(context.Context) (string, error) {
	if r.IP == "" {
		return "", ErrUnavailable
	}
	return r.IP, nil
}

// Provider resolves and hashes client attributes into a Context.
type Provider struct {
	resolver Resolver
	clock    clock.Clock
}

// NewProvider wires a Provider from its collaborators.
func NewProvider(resolver Resolver, clk clock.Clock) *Provider {
	return &Provider{resolver: resolver, clock: clk}
}

// Resolve builds the client Context for one request. The raw IP is hashed
// immediately; a resolution failure wraps ErrUnavailable.
func (p *Provider) Resolve(ctx context.Context, userAgent, deviceFingerprint string) (Context, error) {
	ip, err := p.resolver.ResolveIP(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return Context{}, err
		}
		return Context{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return Context{
		IPHash:            internal.HashBindingValue(ip),
		UserAgent:         userAgent,
		DeviceFingerprint: deviceFingerprint,
		ObservedAt:        p.clock.Now(),
	}, nil
}
