// Package securelink adapts go-urlkit signed-link managers to the
// go-identity SecureLinkManager contract used by the reset token generator.
package securelink

import (
	"errors"
	"time"

	"github.com/goliatone/go-identity/pkg/types"
	urlkit "github.com/goliatone/go-urlkit/securelink"
)

// Manager wraps a go-urlkit securelink manager.
type Manager struct {
	inner urlkit.Manager
}

var _ types.SecureLinkManager = (*Manager)(nil)

// NewManager builds the adapter from a configurator carrying signing key,
// expiration, base URL, and route table.
func NewManager(cfg types.SecureLinkConfigurator) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("go-identity: securelink configurator required")
	}
	inner, err := urlkit.NewManagerFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Manager{inner: inner}, nil
}

// WrapManager adapts an already-constructed go-urlkit manager.
func WrapManager(inner urlkit.Manager) *Manager {
	if inner == nil {
		return nil
	}
	return &Manager{inner: inner}
}

// Generate produces a signed link for the named route.
func (m *Manager) Generate(route string, payloads ...types.SecureLinkPayload) (string, error) {
	if m == nil || m.inner == nil {
		return "", types.ErrMissingSecureLinkManager
	}
	converted := make([]urlkit.Payload, 0, len(payloads))
	for _, payload := range payloads {
		converted = append(converted, urlkit.Payload(payload))
	}
	return m.inner.Generate(route, converted...)
}

// Validate checks a signed token and returns its payload.
func (m *Manager) Validate(token string) (map[string]any, error) {
	if m == nil || m.inner == nil {
		return nil, types.ErrMissingSecureLinkManager
	}
	return m.inner.Validate(token)
}

// GetAndValidate extracts the token via fn, then validates it. Transports use
// this to pull the token out of a query string or header.
func (m *Manager) GetAndValidate(fn func(string) string) (types.SecureLinkPayload, error) {
	if m == nil || m.inner == nil {
		return nil, types.ErrMissingSecureLinkManager
	}
	payload, err := m.inner.GetAndValidate(fn)
	if err != nil {
		return nil, err
	}
	return types.SecureLinkPayload(payload), nil
}

// GetExpiration exposes the signing window.
func (m *Manager) GetExpiration() time.Duration {
	if m == nil || m.inner == nil {
		return 0
	}
	return m.inner.GetExpiration()
}
