package command

import (
	"errors"

	"github.com/goliatone/go-identity/pkg/types"
)

var (
	// ErrAccountIDRequired occurs when a command omits the account reference.
	ErrAccountIDRequired = types.ErrAccountIDRequired
	// ErrAccountNotFound indicates the referenced account was not found.
	ErrAccountNotFound = errors.New("go-identity: account not found")
	// ErrIdentifierRequired occurs when a reset request omits both the
	// account id and the lookup identifier.
	ErrIdentifierRequired = errors.New("go-identity: account id or identifier required")
	// ErrKeyRequired occurs when a confirm attempt omits the key.
	ErrKeyRequired = errors.New("go-identity: confirmation key required")
	// ErrTokenRequired occurs when a reset confirmation omits the token.
	ErrTokenRequired = errors.New("go-identity: reset token required")
	// ErrPasswordHashRequired occurs when a credential update omits the hash.
	ErrPasswordHashRequired = errors.New("go-identity: password hash required")
	// ErrConfirmationDisabled indicates the confirmation flow is disabled via
	// feature gate.
	ErrConfirmationDisabled = errors.New("go-identity: confirmation disabled")
	// ErrPasswordResetDisabled indicates password reset is disabled via
	// feature gate.
	ErrPasswordResetDisabled = errors.New("go-identity: password reset disabled")
)
