package types

import "time"

// VerificationMode controls whether and how email confirmation gates login.
type VerificationMode string

const (
	// VerificationMandatory blocks login until the primary identity is
	// verified; registration does not auto-login.
	VerificationMandatory VerificationMode = "mandatory"
	// VerificationOptional lets unverified accounts use the system while the
	// confirmation email is still sent.
	VerificationOptional VerificationMode = "optional"
	// VerificationNone disables confirmation entirely; no keys are issued.
	VerificationNone VerificationMode = "none"
)

const (
	// DefaultExpireDays bounds how long a sent confirmation key stays usable.
	DefaultExpireDays = 3
	// DefaultCooldownSeconds throttles successive confirmation sends for the
	// same identity.
	DefaultCooldownSeconds = 180
)

// Settings is the explicit configuration value object injected into commands
// and queries. Hosts construct one per tenant when policies differ.
type Settings struct {
	Verification    VerificationMode
	ExpireDays      int
	CooldownSeconds int
	UniqueEmail     bool
}

// Normalize fills zero values with defaults and returns the result.
func (s Settings) Normalize() Settings {
	out := s
	switch out.Verification {
	case VerificationMandatory, VerificationOptional, VerificationNone:
	default:
		out.Verification = VerificationOptional
	}
	if out.ExpireDays <= 0 {
		out.ExpireDays = DefaultExpireDays
	}
	if out.CooldownSeconds <= 0 {
		out.CooldownSeconds = DefaultCooldownSeconds
	}
	return out
}

// ExpiryWindow returns the confirmation validity window as a duration.
func (s Settings) ExpiryWindow() time.Duration {
	return time.Duration(s.ExpireDays) * 24 * time.Hour
}

// Cooldown returns the resend throttle as a duration.
func (s Settings) Cooldown() time.Duration {
	return time.Duration(s.CooldownSeconds) * time.Second
}

// SettingsResolver yields the effective settings for a scope so policies can
// differ per tenant. The settings package provides the default resolver.
type SettingsResolver interface {
	Resolve(scope ScopeFilter) Settings
}
