package service

import (
	"context"

	"github.com/goliatone/go-identity/command"
	"github.com/goliatone/go-identity/pkg/types"
	"github.com/google/uuid"
)

// RequestConfirmation issues (or re-issues) a confirmation key for the
// account's address and schedules the mail. The result is nil when the
// effective verification mode is none.
func (s *Service) RequestConfirmation(ctx context.Context, input command.ConfirmationRequestInput) (*command.ConfirmationRequestResult, error) {
	result := command.ConfirmationRequestResult{}
	input.Result = &result
	if err := s.commands.ConfirmationRequest.Execute(ctx, input); err != nil {
		return nil, err
	}
	if result.Identity == nil {
		return nil, nil
	}
	return &result, nil
}

// Confirm consumes a confirmation key. Unknown, expired, and replayed keys
// all come back as a nil identity with a nil error; callers cannot tell the
// failure modes apart through this surface.
func (s *Service) Confirm(ctx context.Context, key string, scope types.ScopeFilter) (*types.EmailIdentity, error) {
	result := command.ConfirmResult{}
	err := s.commands.Confirm.Execute(ctx, command.ConfirmInput{
		Key:    key,
		Scope:  scope,
		Result: &result,
	})
	if err != nil {
		return nil, err
	}
	if result.Outcome != types.ConfirmOutcomeConfirmed {
		return nil, nil
	}
	return result.Identity, nil
}

// CanResend reports whether a confirmation mail to the address would clear
// the cooldown right now.
func (s *Service) CanResend(ctx context.Context, address string, scope types.ScopeFilter) (bool, error) {
	availability, err := s.queries.Resend.Query(ctx, types.ResendFilter{Address: address, Scope: scope})
	if err != nil {
		return false, err
	}
	return availability.CanSend, nil
}

// SecondsUntilResend returns the remaining cooldown for the address, zero
// when sending is already allowed.
func (s *Service) SecondsUntilResend(ctx context.Context, address string, scope types.ScopeFilter) (int, error) {
	availability, err := s.queries.Resend.Query(ctx, types.ResendFilter{Address: address, Scope: scope})
	if err != nil {
		return 0, err
	}
	return availability.RetryInSeconds, nil
}

// RequestPasswordReset signs a reset link for the account and schedules the
// reset mail.
func (s *Service) RequestPasswordReset(ctx context.Context, input command.PasswordResetRequestInput) (*command.PasswordResetRequestResult, error) {
	result := command.PasswordResetRequestResult{}
	input.Result = &result
	if err := s.commands.PasswordResetRequest.Execute(ctx, input); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConfirmPasswordReset verifies the token and applies the new credential
// hash. Valid is false, with a nil error, on any expected token failure.
func (s *Service) ConfirmPasswordReset(ctx context.Context, input command.PasswordResetConfirmInput) (bool, error) {
	result := command.PasswordResetConfirmResult{}
	input.Result = &result
	if err := s.commands.PasswordResetConfirm.Execute(ctx, input); err != nil {
		return false, err
	}
	return result.Valid, nil
}

// VerifyResetToken checks a reset token without consuming it, so transports
// can validate the link before showing the new-password form.
func (s *Service) VerifyResetToken(ctx context.Context, accountID uuid.UUID, token string) (bool, error) {
	if s.resetTokens == nil {
		return false, types.ErrMissingResetGenerator
	}
	if s.cfg.Accounts == nil {
		return false, types.ErrMissingAccountRepository
	}
	account, err := s.cfg.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	if account == nil {
		return false, nil
	}
	return s.resetTokens.Verify(account, token)
}

// ChangePassword applies a new credential hash for an authenticated account.
func (s *Service) ChangePassword(ctx context.Context, input command.PasswordChangeInput) error {
	return s.commands.PasswordChange.Execute(ctx, input)
}

// CancelEmailChange drops the account's pending address change.
func (s *Service) CancelEmailChange(ctx context.Context, accountID uuid.UUID, scope types.ScopeFilter) (*command.EmailChangeCancelResult, error) {
	result := command.EmailChangeCancelResult{}
	err := s.commands.EmailChangeCancel.Execute(ctx, command.EmailChangeCancelInput{
		AccountID: accountID,
		Scope:     scope,
		Result:    &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Addresses snapshots the account's primary and pending addresses.
func (s *Service) Addresses(ctx context.Context, accountID uuid.UUID, scope types.ScopeFilter) (types.AddressSnapshot, error) {
	return s.queries.Addresses.Query(ctx, types.AddressFilter{AccountID: accountID, Scope: scope})
}
