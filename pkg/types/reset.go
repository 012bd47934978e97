package types

import "time"

// ResetTokenGenerator issues and verifies stateless password reset tokens.
// The resettoken package provides the securelink-backed implementation.
type ResetTokenGenerator interface {
	// Generate returns a signed reset link for the account.
	Generate(account *Account) (string, error)
	// Verify reports whether the token is still valid for the account.
	// Expected failures (bad signature, lapsed window, changed seed) return
	// false without an error.
	Verify(account *Account, token string) (bool, error)
	// Expiration exposes the signing window.
	Expiration() time.Duration
}
