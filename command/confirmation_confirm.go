package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
)

// ConfirmInput carries the opaque key extracted from the activation URL.
type ConfirmInput struct {
	Key    string
	Actor  types.ActorRef
	Scope  types.ScopeFilter
	Result *ConfirmResult
}

// Type implements gocommand.Message.
func (ConfirmInput) Type() string {
	return "command.identity.confirmation.confirm"
}

// Validate implements gocommand.Message.
func (input ConfirmInput) Validate() error {
	if input.Key == "" {
		return ErrKeyRequired
	}
	return nil
}

// ConfirmResult tags why a confirm attempt did or did not land. Identity is
// populated only on the confirmed outcome; the tag is for internal callers
// and the activity trail, the service surface collapses the failures.
type ConfirmResult struct {
	Outcome  types.ConfirmOutcome
	Identity *types.EmailIdentity
}

// ConfirmCommand resolves a confirmation key, checks expiry and replay, and
// flips the identity to verified-and-primary.
type ConfirmCommand struct {
	identities    types.IdentityRepository
	confirmations types.ConfirmationRepository
	settings      types.Settings
	resolver      types.SettingsResolver
	clock         types.Clock
	sink          types.ActivitySink
	hooks         types.Hooks
	logger        types.Logger
}

// ConfirmConfig holds dependencies for key confirmation.
type ConfirmConfig struct {
	Identities    types.IdentityRepository
	Confirmations types.ConfirmationRepository
	Settings      types.Settings
	Resolver      types.SettingsResolver
	Clock         types.Clock
	Activity      types.ActivitySink
	Hooks         types.Hooks
	Logger        types.Logger
}

// NewConfirmCommand constructs the confirm handler.
func NewConfirmCommand(cfg ConfirmConfig) *ConfirmCommand {
	return &ConfirmCommand{
		identities:    cfg.Identities,
		confirmations: cfg.Confirmations,
		settings:      cfg.Settings.Normalize(),
		resolver:      cfg.Resolver,
		clock:         safeClock(cfg.Clock),
		sink:          safeActivitySink(cfg.Activity),
		hooks:         safeHooks(cfg.Hooks),
		logger:        safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[ConfirmInput] = (*ConfirmCommand)(nil)

// Execute resolves the key and returns a tagged outcome. Storage failures
// surface as errors; an unknown, expired, or replayed key is a non-error
// outcome so transports can answer uniformly.
func (c *ConfirmCommand) Execute(ctx context.Context, input ConfirmInput) error {
	if c.identities == nil {
		return types.ErrMissingIdentityRepository
	}
	if c.confirmations == nil {
		return types.ErrMissingConfirmationRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	confirmation, err := c.confirmations.GetByKey(ctx, input.Key)
	if err != nil {
		return err
	}
	if confirmation == nil {
		return c.finish(input, ConfirmResult{Outcome: types.ConfirmOutcomeNotFound})
	}

	identity, err := c.identities.GetByID(ctx, confirmation.IdentityID)
	if err != nil {
		return err
	}
	if identity == nil {
		return c.finish(input, ConfirmResult{Outcome: types.ConfirmOutcomeNotFound})
	}
	if identity.Verified {
		return c.finish(input, ConfirmResult{Outcome: types.ConfirmOutcomeAlreadyConfirmed})
	}

	effective := resolveSettings(c.resolver, c.settings, input.Scope)
	expired, err := confirmation.KeyExpired(now(c.clock), effective.ExpiryWindow())
	if err != nil {
		// A key that was never handed off for delivery cannot be honored.
		return c.finish(input, ConfirmResult{Outcome: types.ConfirmOutcomeExpired})
	}
	if expired {
		return c.finish(input, ConfirmResult{Outcome: types.ConfirmOutcomeExpired})
	}

	confirmed, err := c.identities.Confirm(ctx, identity.ID)
	if err != nil {
		return err
	}

	occurredAt := now(c.clock)
	actor := input.Actor
	if actor.ID == uuid.Nil {
		actor = types.ActorRef{ID: confirmed.AccountID, Type: "account"}
	}
	record := types.ActivityRecord{
		AccountID:  confirmed.AccountID,
		ActorID:    actor.ID,
		Verb:       "identity.email.confirmed",
		ObjectType: "identity",
		ObjectID:   confirmed.ID.String(),
		Channel:    "confirmation",
		TenantID:   input.Scope.TenantID,
		OrgID:      input.Scope.OrgID,
		Data: map[string]any{
			"email": confirmed.Address,
		},
		OccurredAt: occurredAt,
	}
	logActivity(ctx, c.sink, record)
	emitActivityHook(ctx, c.hooks, record)
	emitConfirmationHook(ctx, c.hooks, types.ConfirmationEvent{
		AccountID:  confirmed.AccountID,
		IdentityID: confirmed.ID,
		Address:    confirmed.Address,
		Verb:       record.Verb,
		Scope:      input.Scope,
		OccurredAt: occurredAt,
	})

	return c.finish(input, ConfirmResult{
		Outcome:  types.ConfirmOutcomeConfirmed,
		Identity: confirmed,
	})
}

func (c *ConfirmCommand) finish(input ConfirmInput, result ConfirmResult) error {
	if input.Result != nil {
		*input.Result = result
	}
	return nil
}
