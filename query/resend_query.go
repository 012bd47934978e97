package query

import (
	"context"
	"math"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-identity/pkg/types"
)

// ResendQuery answers whether a confirmation mail may be sent to an address
// right now, and how long to wait otherwise.
type ResendQuery struct {
	identities    types.IdentityRepository
	confirmations types.ConfirmationRepository
	settings      types.Settings
	resolver      types.SettingsResolver
	clock         types.Clock
}

// ResendConfig wires the resend availability query.
type ResendConfig struct {
	Identities    types.IdentityRepository
	Confirmations types.ConfirmationRepository
	Settings      types.Settings
	Resolver      types.SettingsResolver
	Clock         types.Clock
}

// NewResendQuery constructs the availability helper.
func NewResendQuery(cfg ResendConfig) *ResendQuery {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &ResendQuery{
		identities:    cfg.Identities,
		confirmations: cfg.Confirmations,
		settings:      cfg.Settings.Normalize(),
		resolver:      cfg.Resolver,
		clock:         clock,
	}
}

var _ gocommand.Querier[types.ResendFilter, types.ResendAvailability] = (*ResendQuery)(nil)

// Query reports cooldown state for the address. Unknown addresses and
// addresses that never had a send both come back as sendable.
func (q *ResendQuery) Query(ctx context.Context, filter types.ResendFilter) (types.ResendAvailability, error) {
	if q.identities == nil {
		return types.ResendAvailability{}, types.ErrMissingIdentityRepository
	}
	if q.confirmations == nil {
		return types.ResendAvailability{}, types.ErrMissingConfirmationRepository
	}
	if err := filter.Validate(); err != nil {
		return types.ResendAvailability{}, err
	}

	identity, err := q.identities.FindByAddress(ctx, filter.Address)
	if err != nil {
		return types.ResendAvailability{}, err
	}
	if identity == nil {
		return types.ResendAvailability{CanSend: true}, nil
	}

	latest, err := q.confirmations.LatestSent(ctx, identity.ID)
	if err != nil {
		return types.ResendAvailability{}, err
	}
	if latest == nil {
		return types.ResendAvailability{CanSend: true}, nil
	}

	effective := q.settings
	if q.resolver != nil {
		effective = q.resolver.Resolve(filter.Scope)
	}
	readyAt := latest.SentAt.Add(effective.Cooldown())
	nowAt := q.clock.Now()
	if !nowAt.Before(readyAt) {
		return types.ResendAvailability{CanSend: true}, nil
	}
	remaining := int(math.Ceil(readyAt.Sub(nowAt).Seconds()))
	return types.ResendAvailability{RetryInSeconds: remaining}, nil
}
