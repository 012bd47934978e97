package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
)

// EmailChangeCancelInput aborts an in-flight address change for the account.
type EmailChangeCancelInput struct {
	AccountID uuid.UUID
	Actor     types.ActorRef
	Scope     types.ScopeFilter
	Result    *EmailChangeCancelResult
}

// Type implements gocommand.Message.
func (EmailChangeCancelInput) Type() string {
	return "command.identity.email_change.cancel"
}

// Validate implements gocommand.Message.
func (input EmailChangeCancelInput) Validate() error {
	if input.AccountID == uuid.Nil {
		return ErrAccountIDRequired
	}
	return nil
}

// EmailChangeCancelResult reports which pending address was discarded, if any.
type EmailChangeCancelResult struct {
	Cancelled bool
	Address   string
}

// EmailChangeCancelCommand drops the account's pending identity together with
// its outstanding confirmation keys, leaving the primary address untouched.
type EmailChangeCancelCommand struct {
	accounts      types.AccountRepository
	identities    types.IdentityRepository
	confirmations types.ConfirmationRepository
	clock         types.Clock
	sink          types.ActivitySink
	hooks         types.Hooks
	logger        types.Logger
}

// EmailChangeCancelConfig holds dependencies for cancelling address changes.
type EmailChangeCancelConfig struct {
	Accounts      types.AccountRepository
	Identities    types.IdentityRepository
	Confirmations types.ConfirmationRepository
	Clock         types.Clock
	Activity      types.ActivitySink
	Hooks         types.Hooks
	Logger        types.Logger
}

// NewEmailChangeCancelCommand constructs the cancel handler.
func NewEmailChangeCancelCommand(cfg EmailChangeCancelConfig) *EmailChangeCancelCommand {
	return &EmailChangeCancelCommand{
		accounts:      cfg.Accounts,
		identities:    cfg.Identities,
		confirmations: cfg.Confirmations,
		clock:         safeClock(cfg.Clock),
		sink:          safeActivitySink(cfg.Activity),
		hooks:         safeHooks(cfg.Hooks),
		logger:        safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[EmailChangeCancelInput] = (*EmailChangeCancelCommand)(nil)

// Execute removes the pending identity. Cancelling when no change is in
// flight is a no-op, not an error.
func (c *EmailChangeCancelCommand) Execute(ctx context.Context, input EmailChangeCancelInput) error {
	if c.accounts == nil {
		return types.ErrMissingAccountRepository
	}
	if c.identities == nil {
		return types.ErrMissingIdentityRepository
	}
	if c.confirmations == nil {
		return types.ErrMissingConfirmationRepository
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

	pending, err := c.identities.GetNotPrimary(ctx, account)
	if err != nil {
		return err
	}
	if pending == nil {
		if input.Result != nil {
			*input.Result = EmailChangeCancelResult{}
		}
		return nil
	}

	if err := c.confirmations.DeleteForIdentity(ctx, pending.ID); err != nil {
		return err
	}
	if err := c.identities.DeletePending(ctx, account.ID); err != nil {
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
		Verb:       "identity.email_change.cancelled",
		ObjectType: "identity",
		ObjectID:   pending.ID.String(),
		Channel:    "confirmation",
		TenantID:   input.Scope.TenantID,
		OrgID:      input.Scope.OrgID,
		Data: map[string]any{
			"email": pending.Address,
		},
		OccurredAt: occurredAt,
	}
	logActivity(ctx, c.sink, record)
	emitActivityHook(ctx, c.hooks, record)

	if input.Result != nil {
		*input.Result = EmailChangeCancelResult{
			Cancelled: true,
			Address:   pending.Address,
		}
	}
	return nil
}
