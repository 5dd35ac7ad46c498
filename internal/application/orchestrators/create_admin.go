package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	accountStore "church/internal/adapters/storage/account"
	"church/internal/domain/account"
)

// AccountStoreForCreate defines the store interface needed by CreateAdmin.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	GrantAdmin(ctx context.Context, id string) error
}

// CreateAdminInput carries input for the orchestrator.
type CreateAdminInput struct {
	Email    string
	Password string
	// ResetPassword overwrites the password of an existing account instead of failing.
	ResetPassword bool
}

// CreateAdminDeps holds dependencies for CreateAdmin.
type CreateAdminDeps struct {
	AccountStore AccountStoreForCreate
	Now          func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAdmin creates a console account and grants it admin membership.
// PRE: Valid email, password >= 12 chars
// POST: Account saved with hashed password; admins/{id} exists
// INVARIANT: Email must be unique unless ResetPassword is set
func ExecuteCreateAdmin(ctx context.Context, input CreateAdminInput, deps CreateAdminDeps) (string, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	email := account.NormalizeEmail(input.Email)

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	switch {
	case err == nil && !input.ResetPassword:
		return "", ErrEmailAlreadyExists
	case err == nil:
		acct.ResetFailedLogins()
	case errors.Is(err, accountStore.ErrNotFound):
		acct = account.Account{ID: email, Email: email, CreatedAt: now()}
	default:
		return "", err
	}

	if err := acct.Validate(); err != nil {
		return "", err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}
	if err := deps.AccountStore.GrantAdmin(ctx, acct.ID); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "admin_created", "email", email, "reset", input.ResetPassword)
	return acct.ID, nil
}
