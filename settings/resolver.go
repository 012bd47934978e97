// Package settings resolves the effective verification policy for a scope.
// Hosts register tenant or org override maps; layers merge system-first via
// go-options so a tenant can, say, switch verification to mandatory without
// touching the global defaults.
package settings

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-identity/pkg/types"
	opts "github.com/goliatone/go-options"
	"github.com/google/uuid"
)

// Override keys accepted in tenant/org layers.
const (
	KeyVerification = "email_verification"
	KeyExpireDays   = "email_confirmation_expire_days"
	KeyCooldown     = "email_confirmation_cooldown"
	KeyUniqueEmail  = "unique_email"
)

// ResolverConfig wires the settings resolver.
type ResolverConfig struct {
	Defaults        types.Settings
	TenantOverrides map[uuid.UUID]map[string]any
	OrgOverrides    map[uuid.UUID]map[string]any
}

// Resolver merges scoped settings layers.
type Resolver struct {
	defaults types.Settings
	tenants  map[uuid.UUID]map[string]any
	orgs     map[uuid.UUID]map[string]any
}

// NewResolver constructs the resolver. A zero config yields library defaults
// for every scope.
func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		defaults: cfg.Defaults.Normalize(),
		tenants:  cfg.TenantOverrides,
		orgs:     cfg.OrgOverrides,
	}
}

// Resolve returns the effective settings for the scope. Unknown or malformed
// override values fall back to the layer below.
func (r *Resolver) Resolve(scope types.ScopeFilter) types.Settings {
	if r == nil {
		return types.Settings{}.Normalize()
	}
	layers := make([]opts.Layer[map[string]any], 0, 3)
	system := opts.NewScope("system", 0)
	layers = append(layers, opts.NewLayer(system, settingsMap(r.defaults), opts.WithSnapshotID[map[string]any](system.Name)))
	if scope.TenantID != uuid.Nil {
		if overrides := r.tenants[scope.TenantID]; len(overrides) > 0 {
			tenant := opts.NewScope("tenant", 10)
			layers = append(layers, opts.NewLayer(tenant, cloneMap(overrides), opts.WithSnapshotID[map[string]any](tenant.Name)))
		}
	}
	if scope.OrgID != uuid.Nil {
		if overrides := r.orgs[scope.OrgID]; len(overrides) > 0 {
			org := opts.NewScope("org", 20)
			layers = append(layers, opts.NewLayer(org, cloneMap(overrides), opts.WithSnapshotID[map[string]any](org.Name)))
		}
	}

	stack, err := opts.NewStack(layers...)
	if err != nil {
		return r.defaults
	}
	merged, err := stack.Merge()
	if err != nil {
		return r.defaults
	}
	return settingsFromMap(merged.Value, r.defaults)
}

func settingsMap(s types.Settings) map[string]any {
	return map[string]any{
		KeyVerification: string(s.Verification),
		KeyExpireDays:   s.ExpireDays,
		KeyCooldown:     s.CooldownSeconds,
		KeyUniqueEmail:  s.UniqueEmail,
	}
}

func settingsFromMap(values map[string]any, fallback types.Settings) types.Settings {
	out := fallback
	if mode, ok := stringValue(values[KeyVerification]); ok {
		switch types.VerificationMode(strings.ToLower(mode)) {
		case types.VerificationMandatory:
			out.Verification = types.VerificationMandatory
		case types.VerificationOptional:
			out.Verification = types.VerificationOptional
		case types.VerificationNone:
			out.Verification = types.VerificationNone
		}
	}
	if days, ok := intValue(values[KeyExpireDays]); ok && days > 0 {
		out.ExpireDays = days
	}
	if seconds, ok := intValue(values[KeyCooldown]); ok && seconds > 0 {
		out.CooldownSeconds = seconds
	}
	if unique, ok := values[KeyUniqueEmail].(bool); ok {
		out.UniqueEmail = unique
	}
	return out.Normalize()
}

func stringValue(value any) (string, bool) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func intValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
