package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EmailIdentity represents one verifiable address owned by one account.
// At most one identity per account carries Primary=true; the promotion
// transition enforces that, not a storage constraint.
type EmailIdentity struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Address   string
	Verified  bool
	Primary   bool
	Scope     ScopeFilter
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IdentityRepository persists email identities and drives the primary-address
// transition. Lookups return nil (not an error) when no row matches.
type IdentityRepository interface {
	// GetOrCreate returns the identity for (account, address), creating an
	// unverified non-primary record when absent. A new record first purges
	// the account's abandoned non-primary identities. An empty address
	// defaults to the account's current email field.
	GetOrCreate(ctx context.Context, account *Account, address string) (*EmailIdentity, error)
	// GetByID returns the identity or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*EmailIdentity, error)
	// FindByAddress returns the oldest identity holding the address, nil when
	// absent. With global address uniqueness there is at most one.
	FindByAddress(ctx context.Context, address string) (*EmailIdentity, error)
	// GetPrimary returns the account's primary identity or nil.
	GetPrimary(ctx context.Context, accountID uuid.UUID) (*EmailIdentity, error)
	// GetNotPrimary returns a pending (non-primary) identity for the account,
	// preferring addresses that differ from the account's own email field.
	GetNotPrimary(ctx context.Context, account *Account) (*EmailIdentity, error)
	// SetAsPrimary promotes the identity. When another primary exists it is
	// deleted and the account email field is updated, all in one transaction.
	// With conditional=true an existing primary aborts the promotion and the
	// call returns false without changes.
	SetAsPrimary(ctx context.Context, id uuid.UUID, conditional bool) (bool, error)
	// Confirm marks the identity verified and promotes it to primary in a
	// single transaction, returning the updated identity.
	Confirm(ctx context.Context, id uuid.UUID) (*EmailIdentity, error)
	// DeletePending removes the account's non-primary identities, cancelling
	// any in-flight address change.
	DeletePending(ctx context.Context, accountID uuid.UUID) error
}
