package types

import (
	"strings"

	"github.com/google/uuid"
)

// ResendFilter asks whether a confirmation may be resent to an address.
type ResendFilter struct {
	Address string
	Scope   ScopeFilter
}

// Type implements gocommand.Message.
func (ResendFilter) Type() string {
	return "query.identity.resend"
}

// Validate implements gocommand.Message.
func (f ResendFilter) Validate() error {
	if strings.TrimSpace(f.Address) == "" {
		return ErrAddressRequired
	}
	return nil
}

// ResendAvailability reports cooldown state for an address. RetryInSeconds is
// zero whenever sending is allowed.
type ResendAvailability struct {
	CanSend        bool
	RetryInSeconds int
}

// AddressFilter fetches the address snapshot for an account.
type AddressFilter struct {
	AccountID uuid.UUID
	Scope     ScopeFilter
}

// Type implements gocommand.Message.
func (AddressFilter) Type() string {
	return "query.identity.addresses"
}

// Validate implements gocommand.Message.
func (f AddressFilter) Validate() error {
	if f.AccountID == uuid.Nil {
		return ErrAccountIDRequired
	}
	return nil
}

// AddressSnapshot exposes the account's primary and pending addresses.
// Fields are empty strings when no matching identity exists.
type AddressSnapshot struct {
	Primary string
	Pending string
}
