package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-identity/pkg/types"
)

// AddressQuery snapshots the account's primary address and any address
// change still awaiting confirmation.
type AddressQuery struct {
	accounts   types.AccountRepository
	identities types.IdentityRepository
}

// AddressConfig wires the address snapshot query.
type AddressConfig struct {
	Accounts   types.AccountRepository
	Identities types.IdentityRepository
}

// NewAddressQuery constructs the snapshot helper.
func NewAddressQuery(cfg AddressConfig) *AddressQuery {
	return &AddressQuery{
		accounts:   cfg.Accounts,
		identities: cfg.Identities,
	}
}

var _ gocommand.Querier[types.AddressFilter, types.AddressSnapshot] = (*AddressQuery)(nil)

// Query returns the snapshot. Either field stays empty when no matching
// identity exists.
func (q *AddressQuery) Query(ctx context.Context, filter types.AddressFilter) (types.AddressSnapshot, error) {
	if q.accounts == nil {
		return types.AddressSnapshot{}, types.ErrMissingAccountRepository
	}
	if q.identities == nil {
		return types.AddressSnapshot{}, types.ErrMissingIdentityRepository
	}
	if err := filter.Validate(); err != nil {
		return types.AddressSnapshot{}, err
	}

	account, err := q.accounts.GetByID(ctx, filter.AccountID)
	if err != nil {
		return types.AddressSnapshot{}, err
	}
	if account == nil {
		return types.AddressSnapshot{}, nil
	}

	snapshot := types.AddressSnapshot{}
	primary, err := q.identities.GetPrimary(ctx, account.ID)
	if err != nil {
		return types.AddressSnapshot{}, err
	}
	if primary != nil {
		snapshot.Primary = primary.Address
	}

	pending, err := q.identities.GetNotPrimary(ctx, account)
	if err != nil {
		return types.AddressSnapshot{}, err
	}
	if pending != nil {
		snapshot.Pending = pending.Address
	}
	return snapshot, nil
}
