package command

import (
	"context"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
)

// PasswordResetRequestInput identifies the account to mail a reset link to.
// AccountID wins when set; otherwise Identifier resolves by email or username.
type PasswordResetRequestInput struct {
	AccountID  uuid.UUID
	Identifier string
	Actor      types.ActorRef
	Scope      types.ScopeFilter
	Result     *PasswordResetRequestResult
}

// Type implements gocommand.Message.
func (PasswordResetRequestInput) Type() string {
	return "command.identity.password_reset.request"
}

// Validate implements gocommand.Message.
func (input PasswordResetRequestInput) Validate() error {
	if input.AccountID == uuid.Nil && strings.TrimSpace(input.Identifier) == "" {
		return ErrIdentifierRequired
	}
	return nil
}

// PasswordResetRequestResult exposes the issued reset link and its deadline.
type PasswordResetRequestResult struct {
	Account   *types.Account
	ResetURL  string
	ExpiresAt time.Time
}

// PasswordResetRequestCommand signs a stateless reset link for the account
// and schedules the reset mail.
type PasswordResetRequestCommand struct {
	accounts types.AccountRepository
	tokens   types.ResetTokenGenerator
	mail     types.MailScheduler
	links    Links
	gate     featuregate.FeatureGate
	clock    types.Clock
	sink     types.ActivitySink
	hooks    types.Hooks
	logger   types.Logger
}

// PasswordResetRequestConfig holds dependencies for reset issuance.
type PasswordResetRequestConfig struct {
	Accounts    types.AccountRepository
	Tokens      types.ResetTokenGenerator
	Mail        types.MailScheduler
	Links       Links
	FeatureGate featuregate.FeatureGate
	Clock       types.Clock
	Activity    types.ActivitySink
	Hooks       types.Hooks
	Logger      types.Logger
}

// NewPasswordResetRequestCommand constructs the reset request handler.
func NewPasswordResetRequestCommand(cfg PasswordResetRequestConfig) *PasswordResetRequestCommand {
	return &PasswordResetRequestCommand{
		accounts: cfg.Accounts,
		tokens:   cfg.Tokens,
		mail:     cfg.Mail,
		links:    cfg.Links.normalize(),
		gate:     cfg.FeatureGate,
		clock:    safeClock(cfg.Clock),
		sink:     safeActivitySink(cfg.Activity),
		hooks:    safeHooks(cfg.Hooks),
		logger:   safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[PasswordResetRequestInput] = (*PasswordResetRequestCommand)(nil)

// Execute issues and mails the reset link. An unknown identifier surfaces
// ErrAccountNotFound; transports that must not leak account existence
// swallow that error before answering.
func (c *PasswordResetRequestCommand) Execute(ctx context.Context, input PasswordResetRequestInput) error {
	if c.accounts == nil {
		return types.ErrMissingAccountRepository
	}
	if c.tokens == nil {
		return types.ErrMissingResetGenerator
	}
	if c.mail == nil {
		return types.ErrMissingMailScheduler
	}
	if err := input.Validate(); err != nil {
		return err
	}

	enabled, err := featureEnabled(ctx, c.gate, featurePasswordReset, input.Scope, input.AccountID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrPasswordResetDisabled
	}

	account, err := c.lookupAccount(ctx, input)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	resetURL, err := c.tokens.Generate(account)
	if err != nil {
		return err
	}

	msg := types.MailMessage{
		Template: types.MailTemplatePasswordReset,
		To:       account.Email,
		Subject:  subjectPasswordReset,
		Context:  resetMailContext(c.links, account, resetURL),
	}
	if err := c.mail.Schedule(ctx, msg); err != nil {
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
		Verb:       "account.password.reset.requested",
		ObjectType: "account",
		ObjectID:   account.ID.String(),
		Channel:    "password_reset",
		TenantID:   input.Scope.TenantID,
		OrgID:      input.Scope.OrgID,
		Data: map[string]any{
			"email":     account.Email,
			"reset_url": resetURL,
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

	if input.Result != nil {
		*input.Result = PasswordResetRequestResult{
			Account:   account,
			ResetURL:  resetURL,
			ExpiresAt: occurredAt.Add(c.tokens.Expiration()),
		}
	}
	return nil
}

func (c *PasswordResetRequestCommand) lookupAccount(ctx context.Context, input PasswordResetRequestInput) (*types.Account, error) {
	if input.AccountID != uuid.Nil {
		return c.accounts.GetByID(ctx, input.AccountID)
	}
	return c.accounts.GetByIdentifier(ctx, strings.TrimSpace(input.Identifier))
}
