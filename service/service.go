package service

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-identity/command"
	"github.com/goliatone/go-identity/pkg/types"
	"github.com/goliatone/go-identity/query"
	"github.com/goliatone/go-identity/resettoken"
)

// Service is the entry point for go-identity. It wires the host account
// store, identity and confirmation repositories, mail hand-off, and the
// command/query facades built from them.
type Service struct {
	cfg          Config
	commands     Commands
	queries      Queries
	activityRepo types.ActivityRepository
	resetTokens  types.ResetTokenGenerator
}

// Commands exposes the service command handlers.
type Commands struct {
	ConfirmationRequest  *command.ConfirmationRequestCommand
	Confirm              *command.ConfirmCommand
	EmailChangeCancel    *command.EmailChangeCancelCommand
	PasswordResetRequest *command.PasswordResetRequestCommand
	PasswordResetConfirm *command.PasswordResetConfirmCommand
	PasswordChange       *command.PasswordChangeCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	Resend       *query.ResendQuery
	Addresses    *query.AddressQuery
	ActivityFeed *query.ActivityFeedQuery
}

// Config captures all dependencies so callers can provide their own
// instances (bun.DB-backed repositories, cached wrappers, hooks, etc.).
type Config struct {
	Accounts           types.AccountRepository
	Identities         types.IdentityRepository
	Confirmations      types.ConfirmationRepository
	ActivitySink       types.ActivitySink
	ActivityRepository types.ActivityRepository
	Mail               types.MailScheduler
	SecureLinks        types.SecureLinkManager
	ResetTokens        types.ResetTokenGenerator
	FeatureGate        featuregate.FeatureGate
	Settings           types.Settings
	SettingsResolver   types.SettingsResolver
	Links              command.Links
	Hooks              types.Hooks
	Clock              types.Clock
	IDGenerator        types.IDGenerator
	Logger             types.Logger
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) (*Service, error) {
	norm := normalizeConfig(cfg)

	resetTokens := norm.ResetTokens
	if resetTokens == nil && norm.SecureLinks != nil {
		gen, err := resettoken.NewGenerator(resettoken.Config{
			Manager: norm.SecureLinks,
			Clock:   norm.Clock,
		})
		if err != nil {
			return nil, err
		}
		resetTokens = gen
	}

	actRepo := norm.ActivityRepository
	if actRepo == nil {
		if sinkRepo, ok := norm.ActivitySink.(types.ActivityRepository); ok {
			actRepo = sinkRepo
		}
	}

	s := &Service{
		cfg:          norm,
		activityRepo: actRepo,
		resetTokens:  resetTokens,
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	cfg.Settings = cfg.Settings.Normalize()
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.Accounts != nil &&
		s.cfg.Identities != nil &&
		s.cfg.Confirmations != nil &&
		s.cfg.Mail != nil
}

// HealthCheck surfaces missing configuration so upstream transports can fail
// fast at boot instead of on the first request.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.cfg.Accounts == nil {
		return types.ErrMissingAccountRepository
	}
	if s.cfg.Identities == nil {
		return types.ErrMissingIdentityRepository
	}
	if s.cfg.Confirmations == nil {
		return types.ErrMissingConfirmationRepository
	}
	if s.cfg.Mail == nil {
		return types.ErrMissingMailScheduler
	}
	return nil
}

// ActivitySink returns the configured sink so transports can emit their own
// records alongside the service's.
func (s *Service) ActivitySink() types.ActivitySink {
	if s == nil {
		return nil
	}
	return s.cfg.ActivitySink
}

// ResetTokens exposes the reset token generator in use.
func (s *Service) ResetTokens() types.ResetTokenGenerator {
	if s == nil {
		return nil
	}
	return s.resetTokens
}

func (s *Service) buildCommands() Commands {
	return Commands{
		ConfirmationRequest: command.NewConfirmationRequestCommand(command.ConfirmationRequestConfig{
			Accounts:      s.cfg.Accounts,
			Identities:    s.cfg.Identities,
			Confirmations: s.cfg.Confirmations,
			Mail:          s.cfg.Mail,
			Settings:      s.cfg.Settings,
			Resolver:      s.cfg.SettingsResolver,
			Links:         s.cfg.Links,
			FeatureGate:   s.cfg.FeatureGate,
			Clock:         s.cfg.Clock,
			Activity:      s.cfg.ActivitySink,
			Hooks:         s.cfg.Hooks,
			Logger:        s.cfg.Logger,
		}),
		Confirm: command.NewConfirmCommand(command.ConfirmConfig{
			Identities:    s.cfg.Identities,
			Confirmations: s.cfg.Confirmations,
			Settings:      s.cfg.Settings,
			Resolver:      s.cfg.SettingsResolver,
			Clock:         s.cfg.Clock,
			Activity:      s.cfg.ActivitySink,
			Hooks:         s.cfg.Hooks,
			Logger:        s.cfg.Logger,
		}),
		EmailChangeCancel: command.NewEmailChangeCancelCommand(command.EmailChangeCancelConfig{
			Accounts:      s.cfg.Accounts,
			Identities:    s.cfg.Identities,
			Confirmations: s.cfg.Confirmations,
			Clock:         s.cfg.Clock,
			Activity:      s.cfg.ActivitySink,
			Hooks:         s.cfg.Hooks,
			Logger:        s.cfg.Logger,
		}),
		PasswordResetRequest: command.NewPasswordResetRequestCommand(command.PasswordResetRequestConfig{
			Accounts:    s.cfg.Accounts,
			Tokens:      s.resetTokens,
			Mail:        s.cfg.Mail,
			Links:       s.cfg.Links,
			FeatureGate: s.cfg.FeatureGate,
			Clock:       s.cfg.Clock,
			Activity:    s.cfg.ActivitySink,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
		}),
		PasswordResetConfirm: command.NewPasswordResetConfirmCommand(command.PasswordResetConfirmConfig{
			Accounts: s.cfg.Accounts,
			Tokens:   s.resetTokens,
			Clock:    s.cfg.Clock,
			Activity: s.cfg.ActivitySink,
			Hooks:    s.cfg.Hooks,
			Logger:   s.cfg.Logger,
		}),
		PasswordChange: command.NewPasswordChangeCommand(command.PasswordChangeConfig{
			Accounts: s.cfg.Accounts,
			Clock:    s.cfg.Clock,
			Activity: s.cfg.ActivitySink,
			Hooks:    s.cfg.Hooks,
			Logger:   s.cfg.Logger,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		Resend: query.NewResendQuery(query.ResendConfig{
			Identities:    s.cfg.Identities,
			Confirmations: s.cfg.Confirmations,
			Settings:      s.cfg.Settings,
			Resolver:      s.cfg.SettingsResolver,
			Clock:         s.cfg.Clock,
		}),
		Addresses: query.NewAddressQuery(query.AddressConfig{
			Accounts:   s.cfg.Accounts,
			Identities: s.cfg.Identities,
		}),
		ActivityFeed: query.NewActivityFeedQuery(s.activityRepo),
	}
}
