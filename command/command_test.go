package command

import (
	"context"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newStubClock() *stubClock {
	return &stubClock{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
}

type fakeAccounts struct {
	accounts      map[uuid.UUID]*types.Account
	lastPassword  string
	passwordCalls int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[uuid.UUID]*types.Account)}
}

func (f *fakeAccounts) add(account *types.Account) *types.Account {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.Email = types.NormalizeAddress(account.Email)
	f.accounts[account.ID] = account
	return account
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*types.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	return account, nil
}

func (f *fakeAccounts) GetByIdentifier(_ context.Context, identifier string) (*types.Account, error) {
	needle := types.NormalizeAddress(identifier)
	for _, account := range f.accounts {
		if account.Email == needle || account.Username == identifier {
			return account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.passwordCalls++
	f.lastPassword = passwordHash
	if account, ok := f.accounts[id]; ok {
		account.PasswordHash = passwordHash
	}
	return nil
}

type fakeIdentities struct {
	identities map[uuid.UUID]*types.EmailIdentity
	deletedFor []uuid.UUID
}

func newFakeIdentities() *fakeIdentities {
	return &fakeIdentities{identities: make(map[uuid.UUID]*types.EmailIdentity)}
}

func (f *fakeIdentities) add(identity *types.EmailIdentity) *types.EmailIdentity {
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	identity.Address = types.NormalizeAddress(identity.Address)
	f.identities[identity.ID] = identity
	return identity
}

func (f *fakeIdentities) GetOrCreate(_ context.Context, account *types.Account, address string) (*types.EmailIdentity, error) {
	normalized := types.NormalizeAddress(address)
	if normalized == "" {
		normalized = types.NormalizeAddress(account.Email)
	}
	for _, identity := range f.identities {
		if identity.AccountID == account.ID && identity.Address == normalized {
			return identity, nil
		}
	}
	return f.add(&types.EmailIdentity{
		AccountID: account.ID,
		Address:   normalized,
	}), nil
}

func (f *fakeIdentities) GetByID(_ context.Context, id uuid.UUID) (*types.EmailIdentity, error) {
	identity, ok := f.identities[id]
	if !ok {
		return nil, nil
	}
	return identity, nil
}

func (f *fakeIdentities) FindByAddress(_ context.Context, address string) (*types.EmailIdentity, error) {
	normalized := types.NormalizeAddress(address)
	for _, identity := range f.identities {
		if identity.Address == normalized {
			return identity, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentities) GetPrimary(_ context.Context, accountID uuid.UUID) (*types.EmailIdentity, error) {
	for _, identity := range f.identities {
		if identity.AccountID == accountID && identity.Primary {
			return identity, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentities) GetNotPrimary(_ context.Context, account *types.Account) (*types.EmailIdentity, error) {
	own := types.NormalizeAddress(account.Email)
	var fallback *types.EmailIdentity
	for _, identity := range f.identities {
		if identity.AccountID != account.ID || identity.Primary {
			continue
		}
		if identity.Address != own {
			return identity, nil
		}
		fallback = identity
	}
	return fallback, nil
}

func (f *fakeIdentities) SetAsPrimary(_ context.Context, id uuid.UUID, conditional bool) (bool, error) {
	target, ok := f.identities[id]
	if !ok {
		return false, nil
	}
	for _, identity := range f.identities {
		if identity.AccountID == target.AccountID && identity.Primary && identity.ID != id {
			if conditional {
				return false, nil
			}
			delete(f.identities, identity.ID)
			break
		}
	}
	target.Primary = true
	return true, nil
}

func (f *fakeIdentities) Confirm(ctx context.Context, id uuid.UUID) (*types.EmailIdentity, error) {
	target, ok := f.identities[id]
	if !ok {
		return nil, nil
	}
	target.Verified = true
	if _, err := f.SetAsPrimary(ctx, id, false); err != nil {
		return nil, err
	}
	return target, nil
}

func (f *fakeIdentities) DeletePending(_ context.Context, accountID uuid.UUID) error {
	f.deletedFor = append(f.deletedFor, accountID)
	for id, identity := range f.identities {
		if identity.AccountID == accountID && !identity.Primary {
			delete(f.identities, id)
		}
	}
	return nil
}

type fakeConfirmations struct {
	clock         types.Clock
	confirmations map[uuid.UUID]*types.Confirmation
	createErr     error
	markSentErr   error
	deletedFor    []uuid.UUID
}

func newFakeConfirmations(clock types.Clock) *fakeConfirmations {
	return &fakeConfirmations{
		clock:         clock,
		confirmations: make(map[uuid.UUID]*types.Confirmation),
	}
}

func (f *fakeConfirmations) Create(_ context.Context, identityID uuid.UUID, cooldown time.Duration) (*types.Confirmation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	now := f.clock.Now()
	for _, existing := range f.confirmations {
		if existing.IdentityID == identityID && existing.Sent() && now.Sub(existing.SentAt) < cooldown {
			return nil, types.ErrCooldownActive
		}
	}
	for id, existing := range f.confirmations {
		if existing.IdentityID == identityID {
			delete(f.confirmations, id)
		}
	}
	confirmation := &types.Confirmation{
		ID:         uuid.New(),
		IdentityID: identityID,
		Key:        "key-" + uuid.New().String(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.confirmations[confirmation.ID] = confirmation
	return confirmation, nil
}

func (f *fakeConfirmations) GetByKey(_ context.Context, key string) (*types.Confirmation, error) {
	for _, confirmation := range f.confirmations {
		if confirmation.Key == key {
			return confirmation, nil
		}
	}
	return nil, nil
}

func (f *fakeConfirmations) LatestSent(_ context.Context, identityID uuid.UUID) (*types.Confirmation, error) {
	var latest *types.Confirmation
	for _, confirmation := range f.confirmations {
		if confirmation.IdentityID != identityID || !confirmation.Sent() {
			continue
		}
		if latest == nil || confirmation.SentAt.After(latest.SentAt) {
			latest = confirmation
		}
	}
	return latest, nil
}

func (f *fakeConfirmations) MarkSent(_ context.Context, id uuid.UUID, _ time.Duration) error {
	if f.markSentErr != nil {
		return f.markSentErr
	}
	confirmation, ok := f.confirmations[id]
	if !ok {
		return types.ErrCooldownActive
	}
	if confirmation.Sent() {
		return types.ErrCooldownActive
	}
	confirmation.SentAt = f.clock.Now()
	return nil
}

func (f *fakeConfirmations) DeleteForIdentity(_ context.Context, identityID uuid.UUID) error {
	f.deletedFor = append(f.deletedFor, identityID)
	for id, confirmation := range f.confirmations {
		if confirmation.IdentityID == identityID {
			delete(f.confirmations, id)
		}
	}
	return nil
}

type fakeMail struct {
	messages []types.MailMessage
	err      error
}

func (f *fakeMail) Schedule(_ context.Context, msg types.MailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

type recordingActivitySink struct {
	records []types.ActivityRecord
	onLog   func(types.ActivityRecord)
}

func (s *recordingActivitySink) Log(_ context.Context, record types.ActivityRecord) error {
	s.records = append(s.records, record)
	if s.onLog != nil {
		s.onLog(record)
	}
	return nil
}

type stubFeatureGate struct {
	enabled bool
	lastKey string
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	s.lastKey = key
	return s.enabled, nil
}

type fakeResetTokens struct {
	token      string
	valid      bool
	expiration time.Duration
	generated  int
}

func (f *fakeResetTokens) Generate(_ *types.Account) (string, error) {
	f.generated++
	return f.token, nil
}

func (f *fakeResetTokens) Verify(_ *types.Account, token string) (bool, error) {
	return f.valid && token == f.token, nil
}

func (f *fakeResetTokens) Expiration() time.Duration {
	return f.expiration
}
