package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Confirmation captures a single-use email confirmation key. SentAt stays
// zero until the coordinator hands the message to the mail scheduler; expiry
// and cooldown are both measured from SentAt.
type Confirmation struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	Key        string
	CreatedAt  time.Time
	SentAt     time.Time
	UpdatedAt  time.Time
}

// Sent reports whether the confirmation was handed off for delivery.
func (c Confirmation) Sent() bool {
	return !c.SentAt.IsZero()
}

// KeyExpired reports whether the key fell outside the expiry window. The
// confirmation must have been sent first; callers see ErrConfirmationNotSent
// otherwise.
func (c Confirmation) KeyExpired(now time.Time, window time.Duration) (bool, error) {
	if !c.Sent() {
		return false, ErrConfirmationNotSent
	}
	return !now.Before(c.SentAt.Add(window)), nil
}

// ConfirmOutcome tags the result of a confirm attempt. The service surface
// collapses every non-confirmed outcome into a nil identity so callers
// cannot distinguish a bad key from an expired or replayed one; the tag
// exists for tests and logs.
type ConfirmOutcome string

const (
	ConfirmOutcomeConfirmed        ConfirmOutcome = "confirmed"
	ConfirmOutcomeExpired          ConfirmOutcome = "expired"
	ConfirmOutcomeAlreadyConfirmed ConfirmOutcome = "already_confirmed"
	ConfirmOutcomeNotFound         ConfirmOutcome = "not_found"
)

// ConfirmationRepository persists confirmation keys and enforces the
// at-most-one-live-token convention plus the send cooldown.
type ConfirmationRepository interface {
	// Create deletes the identity's prior confirmations and inserts a fresh
	// unsent one with a new key, ordered inside one transaction. When a prior
	// confirmation was sent within the cooldown window the call fails with
	// ErrCooldownActive and leaves existing rows untouched.
	Create(ctx context.Context, identityID uuid.UUID, cooldown time.Duration) (*Confirmation, error)
	// GetByKey returns the confirmation matching the opaque key, nil when absent.
	GetByKey(ctx context.Context, key string) (*Confirmation, error)
	// LatestSent returns the identity's most recently sent confirmation, nil
	// when nothing was ever handed off for delivery.
	LatestSent(ctx context.Context, identityID uuid.UUID) (*Confirmation, error)
	// MarkSent stamps SentAt via a conditional update: it only succeeds while
	// SentAt is unset and no sibling confirmation was sent inside the
	// cooldown window, closing the check-then-send race.
	MarkSent(ctx context.Context, id uuid.UUID, cooldown time.Duration) error
	// DeleteForIdentity purges every confirmation belonging to the identity.
	DeleteForIdentity(ctx context.Context, identityID uuid.UUID) error
}
