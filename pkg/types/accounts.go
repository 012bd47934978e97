package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account mirrors the host application's user record. go-identity never owns
// this row; it reads identifying fields and, through AccountRepository,
// asks the host to apply credential updates.
type Account struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	LastLoginAt  time.Time
	Metadata     map[string]any
	Raw          any
}

// AccountRepository is implemented by the host user store.
type AccountRepository interface {
	// GetByID returns the account or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// GetByIdentifier resolves an account by email or username, nil when absent.
	GetByIdentifier(ctx context.Context, identifier string) (*Account, error)
	// UpdatePassword stores a new credential hash for the account.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}
