package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
)

// PasswordChangeInput applies a new credential hash for an authenticated
// account. Old-credential verification belongs to the host before calling.
type PasswordChangeInput struct {
	AccountID    uuid.UUID
	PasswordHash string
	Actor        types.ActorRef
	Scope        types.ScopeFilter
}

// Type implements gocommand.Message.
func (PasswordChangeInput) Type() string {
	return "command.identity.password.change"
}

// Validate implements gocommand.Message.
func (input PasswordChangeInput) Validate() error {
	if input.AccountID == uuid.Nil {
		return ErrAccountIDRequired
	}
	if input.PasswordHash == "" {
		return ErrPasswordHashRequired
	}
	return nil
}

// PasswordChangeCommand stores the new hash and records the change. Changing
// the hash also invalidates any outstanding reset tokens, since their seed
// covers the credential.
type PasswordChangeCommand struct {
	accounts types.AccountRepository
	clock    types.Clock
	sink     types.ActivitySink
	hooks    types.Hooks
	logger   types.Logger
}

// PasswordChangeConfig holds dependencies for credential changes.
type PasswordChangeConfig struct {
	Accounts types.AccountRepository
	Clock    types.Clock
	Activity types.ActivitySink
	Hooks    types.Hooks
	Logger   types.Logger
}

// NewPasswordChangeCommand constructs the change handler.
func NewPasswordChangeCommand(cfg PasswordChangeConfig) *PasswordChangeCommand {
	return &PasswordChangeCommand{
		accounts: cfg.Accounts,
		clock:    safeClock(cfg.Clock),
		sink:     safeActivitySink(cfg.Activity),
		hooks:    safeHooks(cfg.Hooks),
		logger:   safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[PasswordChangeInput] = (*PasswordChangeCommand)(nil)

// Execute applies the credential update.
func (c *PasswordChangeCommand) Execute(ctx context.Context, input PasswordChangeInput) error {
	if c.accounts == nil {
		return types.ErrMissingAccountRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	account, err := c.accounts.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if err := c.accounts.UpdatePassword(ctx, account.ID, input.PasswordHash); err != nil {
		return err
	}

	occurredAt := now(c.clock)
	actor := input.Actor
	if actor.ID == uuid.Nil {
		actor = types.ActorRef{ID: account.ID, Type: "account"}
	}
	record := types.ActivityRecord{
		AccountID:  account.ID,
		ActorID:    actor.ID,
		Verb:       "account.password.changed",
		ObjectType: "account",
		ObjectID:   account.ID.String(),
		Channel:    "password_reset",
		TenantID:   input.Scope.TenantID,
		OrgID:      input.Scope.OrgID,
		OccurredAt: occurredAt,
	}
	logActivity(ctx, c.sink, record)
	emitActivityHook(ctx, c.hooks, record)
	emitResetHook(ctx, c.hooks, types.ResetEvent{
		AccountID:  account.ID,
		Email:      account.Email,
		Verb:       record.Verb,
		Scope:      input.Scope,
		OccurredAt: occurredAt,
	})

	return nil
}
