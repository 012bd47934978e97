package command

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-identity/pkg/types"
	"github.com/stretchr/testify/require"
)

type confirmFixture struct {
	clock         *stubClock
	accounts      *fakeAccounts
	identities    *fakeIdentities
	confirmations *fakeConfirmations
	request       *ConfirmationRequestCommand
	confirm       *ConfirmCommand
	sink          *recordingActivitySink
}

func newConfirmFixture(t *testing.T) *confirmFixture {
	t.Helper()
	clock := newStubClock()
	accounts := newFakeAccounts()
	identities := newFakeIdentities()
	confirmations := newFakeConfirmations(clock)
	sink := &recordingActivitySink{}

	request := NewConfirmationRequestCommand(ConfirmationRequestConfig{
		Accounts:      accounts,
		Identities:    identities,
		Confirmations: confirmations,
		Mail:          &fakeMail{},
		Clock:         clock,
	})
	confirm := NewConfirmCommand(ConfirmConfig{
		Identities:    identities,
		Confirmations: confirmations,
		Clock:         clock,
		Activity:      sink,
	})
	return &confirmFixture{
		clock:         clock,
		accounts:      accounts,
		identities:    identities,
		confirmations: confirmations,
		request:       request,
		confirm:       confirm,
		sink:          sink,
	}
}

func (f *confirmFixture) issue(t *testing.T, email string) *ConfirmationRequestResult {
	t.Helper()
	account := f.accounts.add(&types.Account{Email: email})
	result := &ConfirmationRequestResult{}
	require.NoError(t, f.request.Execute(context.Background(), ConfirmationRequestInput{
		AccountID: account.ID,
		Result:    result,
	}))
	return result
}

func TestConfirmCommand_Confirms(t *testing.T) {
	f := newConfirmFixture(t)
	issued := f.issue(t, "sample@example.com")

	result := &ConfirmResult{}
	err := f.confirm.Execute(context.Background(), ConfirmInput{
		Key:    issued.Confirmation.Key,
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, types.ConfirmOutcomeConfirmed, result.Outcome)
	require.True(t, result.Identity.Verified)
	require.True(t, result.Identity.Primary)

	require.Len(t, f.sink.records, 1)
	require.Equal(t, "identity.email.confirmed", f.sink.records[0].Verb)
}

func TestConfirmCommand_UnknownKey(t *testing.T) {
	f := newConfirmFixture(t)

	result := &ConfirmResult{}
	err := f.confirm.Execute(context.Background(), ConfirmInput{
		Key:    "no-such-key",
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, types.ConfirmOutcomeNotFound, result.Outcome)
	require.Nil(t, result.Identity)
	require.Empty(t, f.sink.records)
}

func TestConfirmCommand_ExpiredKey(t *testing.T) {
	f := newConfirmFixture(t)
	issued := f.issue(t, "sample@example.com")

	// Just inside the three day window.
	f.clock.Advance(3*24*time.Hour - time.Minute)
	ok := &ConfirmResult{}
	require.NoError(t, f.confirm.Execute(context.Background(), ConfirmInput{
		Key:    issued.Confirmation.Key,
		Result: ok,
	}))
	require.Equal(t, types.ConfirmOutcomeConfirmed, ok.Outcome)

	late := f.issue(t, "other@example.com")
	f.clock.Advance(3*24*time.Hour + time.Minute)
	expired := &ConfirmResult{}
	require.NoError(t, f.confirm.Execute(context.Background(), ConfirmInput{
		Key:    late.Confirmation.Key,
		Result: expired,
	}))
	require.Equal(t, types.ConfirmOutcomeExpired, expired.Outcome)
	require.Nil(t, expired.Identity)
}

func TestConfirmCommand_Replay(t *testing.T) {
	f := newConfirmFixture(t)
	issued := f.issue(t, "sample@example.com")

	first := &ConfirmResult{}
	require.NoError(t, f.confirm.Execute(context.Background(), ConfirmInput{
		Key:    issued.Confirmation.Key,
		Result: first,
	}))
	require.Equal(t, types.ConfirmOutcomeConfirmed, first.Outcome)

	second := &ConfirmResult{}
	require.NoError(t, f.confirm.Execute(context.Background(), ConfirmInput{
		Key:    issued.Confirmation.Key,
		Result: second,
	}))
	require.Equal(t, types.ConfirmOutcomeAlreadyConfirmed, second.Outcome)
	require.Nil(t, second.Identity)
}

func TestConfirmCommand_UnsentKeyIsUnusable(t *testing.T) {
	f := newConfirmFixture(t)
	account := f.accounts.add(&types.Account{Email: "sample@example.com"})
	identity, err := f.identities.GetOrCreate(context.Background(), account, "")
	require.NoError(t, err)
	confirmation, err := f.confirmations.Create(context.Background(), identity.ID, 0)
	require.NoError(t, err)

	result := &ConfirmResult{}
	require.NoError(t, f.confirm.Execute(context.Background(), ConfirmInput{
		Key:    confirmation.Key,
		Result: result,
	}))
	require.Equal(t, types.ConfirmOutcomeExpired, result.Outcome)
}

func TestConfirmCommand_MissingKey(t *testing.T) {
	f := newConfirmFixture(t)
	err := f.confirm.Execute(context.Background(), ConfirmInput{})
	require.ErrorIs(t, err, ErrKeyRequired)
}
