package types

import "errors"

var (
	// ErrMissingAccountRepository occurs when the host user store is not configured.
	ErrMissingAccountRepository = errors.New("go-identity: missing account repository")
	// ErrMissingIdentityRepository occurs when identity persistence is unavailable.
	ErrMissingIdentityRepository = errors.New("go-identity: missing identity repository")
	// ErrMissingConfirmationRepository occurs when confirmation persistence is unavailable.
	ErrMissingConfirmationRepository = errors.New("go-identity: missing confirmation repository")
	// ErrMissingMailScheduler occurs when no delivery hand-off is configured.
	ErrMissingMailScheduler = errors.New("go-identity: missing mail scheduler")
	// ErrMissingSecureLinkManager occurs when securelink manager is not configured.
	ErrMissingSecureLinkManager = errors.New("go-identity: missing securelink manager")
	// ErrMissingResetGenerator occurs when the reset token generator is not configured.
	ErrMissingResetGenerator = errors.New("go-identity: missing reset token generator")
	// ErrMissingActivityRepository occurs when the activity feed store is not configured.
	ErrMissingActivityRepository = errors.New("go-identity: missing activity repository")
	// ErrAccountIDRequired occurs when a command omits the account reference.
	ErrAccountIDRequired = errors.New("go-identity: account id required")
	// ErrAddressRequired occurs when an address-keyed lookup omits the address.
	ErrAddressRequired = errors.New("go-identity: address required")
	// ErrCooldownActive signals a confirmation send was throttled. Expected
	// flow, surfaced as a value so the caller can render seconds remaining.
	ErrCooldownActive = errors.New("go-identity: confirmation cooldown active")
	// ErrConfirmationNotSent occurs when expiry is checked before the key was
	// handed off for delivery.
	ErrConfirmationNotSent = errors.New("go-identity: confirmation not sent yet")
)
