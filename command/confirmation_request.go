package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
)

// ConfirmationRequestInput starts or restarts a confirmation flow for an
// account address. An empty Email targets the account's current email field;
// Signup and Change only pick the mail template variant.
type ConfirmationRequestInput struct {
	AccountID uuid.UUID
	Email     string
	Signup    bool
	Change    bool
	Actor     types.ActorRef
	Scope     types.ScopeFilter
	Result    *ConfirmationRequestResult
}

// Type implements gocommand.Message.
func (ConfirmationRequestInput) Type() string {
	return "command.identity.confirmation.request"
}

// Validate implements gocommand.Message.
func (input ConfirmationRequestInput) Validate() error {
	if input.AccountID == uuid.Nil {
		return ErrAccountIDRequired
	}
	return nil
}

// ConfirmationRequestResult exposes the issued confirmation. Every field
// stays nil when the deployment's verification mode is none.
type ConfirmationRequestResult struct {
	Identity     *types.EmailIdentity
	Confirmation *types.Confirmation
	ActivateURL  string
}

// ConfirmationRequestCommand resolves the identity, issues a fresh key under
// the cooldown, hands delivery to the mail scheduler, and stamps the send.
type ConfirmationRequestCommand struct {
	accounts      types.AccountRepository
	identities    types.IdentityRepository
	confirmations types.ConfirmationRepository
	mail          types.MailScheduler
	settings      types.Settings
	resolver      types.SettingsResolver
	links         Links
	gate          featuregate.FeatureGate
	clock         types.Clock
	sink          types.ActivitySink
	hooks         types.Hooks
	logger        types.Logger
}

// ConfirmationRequestConfig holds dependencies for the confirmation flow.
type ConfirmationRequestConfig struct {
	Accounts      types.AccountRepository
	Identities    types.IdentityRepository
	Confirmations types.ConfirmationRepository
	Mail          types.MailScheduler
	Settings      types.Settings
	Resolver      types.SettingsResolver
	Links         Links
	FeatureGate   featuregate.FeatureGate
	Clock         types.Clock
	Activity      types.ActivitySink
	Hooks         types.Hooks
	Logger        types.Logger
}

// NewConfirmationRequestCommand constructs the request handler.
func NewConfirmationRequestCommand(cfg ConfirmationRequestConfig) *ConfirmationRequestCommand {
	return &ConfirmationRequestCommand{
		accounts:      cfg.Accounts,
		identities:    cfg.Identities,
		confirmations: cfg.Confirmations,
		mail:          cfg.Mail,
		settings:      cfg.Settings.Normalize(),
		resolver:      cfg.Resolver,
		links:         cfg.Links.normalize(),
		gate:          cfg.FeatureGate,
		clock:         safeClock(cfg.Clock),
		sink:          safeActivitySink(cfg.Activity),
		hooks:         safeHooks(cfg.Hooks),
		logger:        safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[ConfirmationRequestInput] = (*ConfirmationRequestCommand)(nil)

// Execute runs the issuance pipeline. The cooldown must hold both when the
// key row is created and when the send is stamped; either check failing
// surfaces types.ErrCooldownActive.
func (c *ConfirmationRequestCommand) Execute(ctx context.Context, input ConfirmationRequestInput) error {
	if c.accounts == nil {
		return types.ErrMissingAccountRepository
	}
	if c.identities == nil {
		return types.ErrMissingIdentityRepository
	}
	if c.confirmations == nil {
		return types.ErrMissingConfirmationRepository
	}
	if c.mail == nil {
		return types.ErrMissingMailScheduler
	}
	if err := input.Validate(); err != nil {
		return err
	}

	enabled, err := featureEnabled(ctx, c.gate, featureConfirmation, input.Scope, input.AccountID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrConfirmationDisabled
	}

	account, err := c.accounts.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	identity, err := c.identities.GetOrCreate(ctx, account, input.Email)
	if err != nil {
		return err
	}

	effective := resolveSettings(c.resolver, c.settings, input.Scope)
	if effective.Verification == types.VerificationNone {
		return nil
	}

	confirmation, err := c.confirmations.Create(ctx, identity.ID, effective.Cooldown())
	if err != nil {
		return err
	}

	activateURL := activationURL(c.links, confirmation.Key)
	msg := types.MailMessage{
		Template: confirmationTemplate(input.Signup, input.Change),
		To:       identity.Address,
		Subject:  subjectConfirmation,
		Context:  confirmationMailContext(c.links, account, identity, confirmation.Key, activateURL),
	}
	if err := c.mail.Schedule(ctx, msg); err != nil {
		return err
	}

	// Cooldown timing is measured from intent-to-send; the stamp does not
	// wait for the scheduler to actually deliver.
	if err := c.confirmations.MarkSent(ctx, confirmation.ID, effective.Cooldown()); err != nil {
		return err
	}
	sentAt := now(c.clock)
	confirmation.SentAt = sentAt

	actor := input.Actor
	if actor.ID == uuid.Nil {
		actor = types.ActorRef{ID: account.ID, Type: "account"}
	}
	record := types.ActivityRecord{
		AccountID:  account.ID,
		ActorID:    actor.ID,
		Verb:       "identity.confirmation.requested",
		ObjectType: "identity",
		ObjectID:   identity.ID.String(),
		Channel:    "confirmation",
		TenantID:   input.Scope.TenantID,
		OrgID:      input.Scope.OrgID,
		Data: map[string]any{
			"email":        identity.Address,
			"key":          confirmation.Key,
			"activate_url": activateURL,
			"template":     msg.Template,
		},
		OccurredAt: sentAt,
	}
	logActivity(ctx, c.sink, record)
	emitActivityHook(ctx, c.hooks, record)
	emitConfirmationHook(ctx, c.hooks, types.ConfirmationEvent{
		AccountID:  account.ID,
		IdentityID: identity.ID,
		Address:    identity.Address,
		Verb:       record.Verb,
		Scope:      input.Scope,
		OccurredAt: sentAt,
	})

	if input.Result != nil {
		*input.Result = ConfirmationRequestResult{
			Identity:     identity,
			Confirmation: confirmation,
			ActivateURL:  activateURL,
		}
	}

	return nil
}
