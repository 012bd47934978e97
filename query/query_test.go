package query

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }

type stubAccounts struct {
	account *types.Account
}

func (s *stubAccounts) GetByID(_ context.Context, id uuid.UUID) (*types.Account, error) {
	if s.account != nil && s.account.ID == id {
		return s.account, nil
	}
	return nil, nil
}

func (s *stubAccounts) GetByIdentifier(_ context.Context, _ string) (*types.Account, error) {
	return s.account, nil
}

func (s *stubAccounts) UpdatePassword(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

type stubIdentities struct {
	byAddress map[string]*types.EmailIdentity
	primary   *types.EmailIdentity
	pending   *types.EmailIdentity
}

func (s *stubIdentities) GetOrCreate(_ context.Context, _ *types.Account, _ string) (*types.EmailIdentity, error) {
	return nil, nil
}

func (s *stubIdentities) GetByID(_ context.Context, _ uuid.UUID) (*types.EmailIdentity, error) {
	return nil, nil
}

func (s *stubIdentities) FindByAddress(_ context.Context, address string) (*types.EmailIdentity, error) {
	return s.byAddress[types.NormalizeAddress(address)], nil
}

func (s *stubIdentities) GetPrimary(_ context.Context, _ uuid.UUID) (*types.EmailIdentity, error) {
	return s.primary, nil
}

func (s *stubIdentities) GetNotPrimary(_ context.Context, _ *types.Account) (*types.EmailIdentity, error) {
	return s.pending, nil
}

func (s *stubIdentities) SetAsPrimary(_ context.Context, _ uuid.UUID, _ bool) (bool, error) {
	return false, nil
}

func (s *stubIdentities) Confirm(_ context.Context, _ uuid.UUID) (*types.EmailIdentity, error) {
	return nil, nil
}

func (s *stubIdentities) DeletePending(_ context.Context, _ uuid.UUID) error {
	return nil
}

type stubConfirmations struct {
	latest *types.Confirmation
}

func (s *stubConfirmations) Create(_ context.Context, _ uuid.UUID, _ time.Duration) (*types.Confirmation, error) {
	return nil, nil
}

func (s *stubConfirmations) GetByKey(_ context.Context, _ string) (*types.Confirmation, error) {
	return nil, nil
}

func (s *stubConfirmations) LatestSent(_ context.Context, _ uuid.UUID) (*types.Confirmation, error) {
	return s.latest, nil
}

func (s *stubConfirmations) MarkSent(_ context.Context, _ uuid.UUID, _ time.Duration) error {
	return nil
}

func (s *stubConfirmations) DeleteForIdentity(_ context.Context, _ uuid.UUID) error {
	return nil
}

type stubResolver struct {
	settings types.Settings
}

func (s *stubResolver) Resolve(_ types.ScopeFilter) types.Settings {
	return s.settings
}

func TestResendQuery_UnknownAddressIsSendable(t *testing.T) {
	q := NewResendQuery(ResendConfig{
		Identities:    &stubIdentities{byAddress: map[string]*types.EmailIdentity{}},
		Confirmations: &stubConfirmations{},
		Clock:         &stubClock{now: time.Now()},
	})

	availability, err := q.Query(context.Background(), types.ResendFilter{Address: "nobody@example.com"})
	require.NoError(t, err)
	require.True(t, availability.CanSend)
	require.Zero(t, availability.RetryInSeconds)

	_, err = q.Query(context.Background(), types.ResendFilter{Address: "  "})
	require.ErrorIs(t, err, types.ErrAddressRequired)
}

func TestResendQuery_NeverSentIsSendable(t *testing.T) {
	identity := &types.EmailIdentity{ID: uuid.New(), Address: "sample@example.com"}
	q := NewResendQuery(ResendConfig{
		Identities: &stubIdentities{byAddress: map[string]*types.EmailIdentity{
			identity.Address: identity,
		}},
		Confirmations: &stubConfirmations{},
		Clock:         &stubClock{now: time.Now()},
	})

	availability, err := q.Query(context.Background(), types.ResendFilter{Address: "Sample@Example.com"})
	require.NoError(t, err)
	require.True(t, availability.CanSend)
}

func TestResendQuery_CooldownCountsDown(t *testing.T) {
	sentAt := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	identity := &types.EmailIdentity{ID: uuid.New(), Address: "sample@example.com"}
	clock := &stubClock{now: sentAt.Add(60 * time.Second)}
	q := NewResendQuery(ResendConfig{
		Identities: &stubIdentities{byAddress: map[string]*types.EmailIdentity{
			identity.Address: identity,
		}},
		Confirmations: &stubConfirmations{latest: &types.Confirmation{
			ID:         uuid.New(),
			IdentityID: identity.ID,
			SentAt:     sentAt,
		}},
		Clock: clock,
	})

	availability, err := q.Query(context.Background(), types.ResendFilter{Address: identity.Address})
	require.NoError(t, err)
	require.False(t, availability.CanSend)
	require.Equal(t, 120, availability.RetryInSeconds)

	clock.now = sentAt.Add(180 * time.Second)
	availability, err = q.Query(context.Background(), types.ResendFilter{Address: identity.Address})
	require.NoError(t, err)
	require.True(t, availability.CanSend)
	require.Zero(t, availability.RetryInSeconds)
}

func TestResendQuery_ResolverOverridesCooldown(t *testing.T) {
	sentAt := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	identity := &types.EmailIdentity{ID: uuid.New(), Address: "sample@example.com"}
	q := NewResendQuery(ResendConfig{
		Identities: &stubIdentities{byAddress: map[string]*types.EmailIdentity{
			identity.Address: identity,
		}},
		Confirmations: &stubConfirmations{latest: &types.Confirmation{
			IdentityID: identity.ID,
			SentAt:     sentAt,
		}},
		Resolver: &stubResolver{settings: types.Settings{CooldownSeconds: 30}.Normalize()},
		Clock:    &stubClock{now: sentAt.Add(45 * time.Second)},
	})

	availability, err := q.Query(context.Background(), types.ResendFilter{Address: identity.Address})
	require.NoError(t, err)
	require.True(t, availability.CanSend)
}

func TestAddressQuery_Snapshot(t *testing.T) {
	account := &types.Account{ID: uuid.New(), Email: "sample@example.com"}
	q := NewAddressQuery(AddressConfig{
		Accounts: &stubAccounts{account: account},
		Identities: &stubIdentities{
			primary: &types.EmailIdentity{Address: "sample@example.com", Primary: true},
			pending: &types.EmailIdentity{Address: "next@example.com"},
		},
	})

	snapshot, err := q.Query(context.Background(), types.AddressFilter{AccountID: account.ID})
	require.NoError(t, err)
	require.Equal(t, "sample@example.com", snapshot.Primary)
	require.Equal(t, "next@example.com", snapshot.Pending)
}

func TestAddressQuery_UnknownAccountIsEmpty(t *testing.T) {
	q := NewAddressQuery(AddressConfig{
		Accounts:   &stubAccounts{},
		Identities: &stubIdentities{},
	})

	snapshot, err := q.Query(context.Background(), types.AddressFilter{AccountID: uuid.New()})
	require.NoError(t, err)
	require.Empty(t, snapshot.Primary)
	require.Empty(t, snapshot.Pending)

	_, err = q.Query(context.Background(), types.AddressFilter{})
	require.ErrorIs(t, err, types.ErrAccountIDRequired)
}

type stubActivityRepo struct {
	page   types.ActivityPage
	filter types.ActivityFilter
}

func (s *stubActivityRepo) ListActivity(_ context.Context, filter types.ActivityFilter) (types.ActivityPage, error) {
	s.filter = filter
	return s.page, nil
}

func TestActivityFeedQuery_DelegatesToRepository(t *testing.T) {
	accountID := uuid.New()
	repo := &stubActivityRepo{page: types.ActivityPage{
		Records: []types.ActivityRecord{{Verb: "identity.email.confirmed"}},
		Total:   1,
	}}

	q := NewActivityFeedQuery(repo)
	page, err := q.Query(context.Background(), types.ActivityFilter{
		AccountID: accountID,
		Verbs:     []string{"identity.email.confirmed"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, accountID, repo.filter.AccountID)

	empty := NewActivityFeedQuery(nil)
	_, err = empty.Query(context.Background(), types.ActivityFilter{AccountID: accountID})
	require.ErrorIs(t, err, types.ErrMissingActivityRepository)
}
