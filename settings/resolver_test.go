package settings

import (
	"testing"

	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestResolver_Defaults(t *testing.T) {
	resolver := NewResolver(ResolverConfig{})

	resolved := resolver.Resolve(types.ScopeFilter{})
	require.Equal(t, types.VerificationOptional, resolved.Verification)
	require.Equal(t, types.DefaultExpireDays, resolved.ExpireDays)
	require.Equal(t, types.DefaultCooldownSeconds, resolved.CooldownSeconds)
	require.False(t, resolved.UniqueEmail)
}

func TestResolver_TenantOverrides(t *testing.T) {
	tenantID := uuid.New()
	resolver := NewResolver(ResolverConfig{
		Defaults: types.Settings{Verification: types.VerificationOptional},
		TenantOverrides: map[uuid.UUID]map[string]any{
			tenantID: {
				KeyVerification: "mandatory",
				KeyCooldown:     60,
				KeyUniqueEmail:  true,
			},
		},
	})

	resolved := resolver.Resolve(types.ScopeFilter{TenantID: tenantID})
	require.Equal(t, types.VerificationMandatory, resolved.Verification)
	require.Equal(t, 60, resolved.CooldownSeconds)
	require.Equal(t, types.DefaultExpireDays, resolved.ExpireDays)
	require.True(t, resolved.UniqueEmail)

	// Other tenants keep the defaults.
	other := resolver.Resolve(types.ScopeFilter{TenantID: uuid.New()})
	require.Equal(t, types.VerificationOptional, other.Verification)
	require.Equal(t, types.DefaultCooldownSeconds, other.CooldownSeconds)
}

func TestResolver_OrgOverridesWinOverTenant(t *testing.T) {
	tenantID := uuid.New()
	orgID := uuid.New()
	resolver := NewResolver(ResolverConfig{
		TenantOverrides: map[uuid.UUID]map[string]any{
			tenantID: {
				KeyExpireDays: 7,
				KeyCooldown:   300,
			},
		},
		OrgOverrides: map[uuid.UUID]map[string]any{
			orgID: {
				KeyCooldown: 30,
			},
		},
	})

	resolved := resolver.Resolve(types.ScopeFilter{TenantID: tenantID, OrgID: orgID})
	require.Equal(t, 7, resolved.ExpireDays)
	require.Equal(t, 30, resolved.CooldownSeconds)
}

func TestResolver_MalformedValuesFallBack(t *testing.T) {
	tenantID := uuid.New()
	resolver := NewResolver(ResolverConfig{
		TenantOverrides: map[uuid.UUID]map[string]any{
			tenantID: {
				KeyVerification: "sometimes",
				KeyExpireDays:   "not-a-number",
				KeyCooldown:     "120",
			},
		},
	})

	resolved := resolver.Resolve(types.ScopeFilter{TenantID: tenantID})
	require.Equal(t, types.VerificationOptional, resolved.Verification)
	require.Equal(t, types.DefaultExpireDays, resolved.ExpireDays)
	require.Equal(t, 120, resolved.CooldownSeconds)
}
