package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
)

// PasswordResetConfirmInput finalizes a reset with the signed token and the
// already-hashed replacement credential.
type PasswordResetConfirmInput struct {
	AccountID    uuid.UUID
	Identifier   string
	Token        string
	PasswordHash string
	Actor        types.ActorRef
	Scope        types.ScopeFilter
	Result       *PasswordResetConfirmResult
}

// Type implements gocommand.Message.
func (PasswordResetConfirmInput) Type() string {
	return "command.identity.password_reset.confirm"
}

// Validate implements gocommand.Message.
func (input PasswordResetConfirmInput) Validate() error {
	if input.AccountID == uuid.Nil && strings.TrimSpace(input.Identifier) == "" {
		return ErrIdentifierRequired
	}
	if input.Token == "" {
		return ErrTokenRequired
	}
	if input.PasswordHash == "" {
		return ErrPasswordHashRequired
	}
	return nil
}

// PasswordResetConfirmResult reports whether the token validated. Valid stays
// false on any expected token failure while the command still returns nil.
type PasswordResetConfirmResult struct {
	Valid   bool
	Account *types.Account
}

// PasswordResetConfirmCommand verifies the reset token against current
// account state and applies the new credential through the host store.
type PasswordResetConfirmCommand struct {
	accounts types.AccountRepository
	tokens   types.ResetTokenGenerator
	clock    types.Clock
	sink     types.ActivitySink
	hooks    types.Hooks
	logger   types.Logger
}

// PasswordResetConfirmConfig holds dependencies for reset completion.
type PasswordResetConfirmConfig struct {
	Accounts types.AccountRepository
	Tokens   types.ResetTokenGenerator
	Clock    types.Clock
	Activity types.ActivitySink
	Hooks    types.Hooks
	Logger   types.Logger
}

// NewPasswordResetConfirmCommand constructs the reset confirm handler.
func NewPasswordResetConfirmCommand(cfg PasswordResetConfirmConfig) *PasswordResetConfirmCommand {
	return &PasswordResetConfirmCommand{
		accounts: cfg.Accounts,
		tokens:   cfg.Tokens,
		clock:    safeClock(cfg.Clock),
		sink:     safeActivitySink(cfg.Activity),
		hooks:    safeHooks(cfg.Hooks),
		logger:   safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[PasswordResetConfirmInput] = (*PasswordResetConfirmCommand)(nil)

// Execute verifies and applies the reset. An invalid token is reported
// through Result.Valid, not an error, so callers answer bad and expired
// tokens identically.
func (c *PasswordResetConfirmCommand) Execute(ctx context.Context, input PasswordResetConfirmInput) error {
	if c.accounts == nil {
		return types.ErrMissingAccountRepository
	}
	if c.tokens == nil {
		return types.ErrMissingResetGenerator
	}
	if err := input.Validate(); err != nil {
		return err
	}

	account, err := c.lookupAccount(ctx, input)
	if err != nil {
		return err
	}
	if account == nil {
		return c.finish(input, PasswordResetConfirmResult{})
	}

	valid, err := c.tokens.Verify(account, input.Token)
	if err != nil {
		return err
	}
	if !valid {
		return c.finish(input, PasswordResetConfirmResult{Account: account})
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
		Verb:       "account.password.reset.completed",
		ObjectType: "account",
		ObjectID:   account.ID.String(),
		Channel:    "password_reset",
		TenantID:   input.Scope.TenantID,
		OrgID:      input.Scope.OrgID,
		Data: map[string]any{
			"email": account.Email,
		},
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

	return c.finish(input, PasswordResetConfirmResult{
		Valid:   true,
		Account: account,
	})
}

func (c *PasswordResetConfirmCommand) lookupAccount(ctx context.Context, input PasswordResetConfirmInput) (*types.Account, error) {
	if input.AccountID != uuid.Nil {
		return c.accounts.GetByID(ctx, input.AccountID)
	}
	return c.accounts.GetByIdentifier(ctx, strings.TrimSpace(input.Identifier))
}

func (c *PasswordResetConfirmCommand) finish(input PasswordResetConfirmInput, result PasswordResetConfirmResult) error {
	if input.Result != nil {
		*input.Result = result
	}
	return nil
}
