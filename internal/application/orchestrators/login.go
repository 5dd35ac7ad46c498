package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	accountStore "church/internal/adapters/storage/account"
	"church/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	IsAdmin(ctx context.Context, id string) (bool, error)
}

// LoginInput carries the sign-in form.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is what a session is created from.
type LoginResult struct {
	AccountID string
	Email     string
	IsAdmin   bool
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin checks credentials and reports whether the account is an admin.
// PRE: none; empty input is rejected as invalid credentials
// POST: the attempt is recorded on the account; an unknown email costs one bcrypt comparison too
// INVARIANT: a locked account is refused even with the right password
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	email := account.NormalizeEmail(input.Email)

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, accountStore.ErrNotFound):
		account.SpendPasswordCheck(input.Password)
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	case err != nil:
		return LoginResult{}, err
	}

	authErr := acct.Authenticate(input.Password, now())
	if errors.Is(authErr, account.ErrLocked) {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "locked_until", acct.LockedUntil)
		return LoginResult{}, ErrAccountLocked
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		slog.Error("auth_event", "event", "attempt_save_failed", "email", email, "error", err)
	}
	if authErr != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	admin, err := deps.AccountStore.IsAdmin(ctx, acct.ID)
	if err != nil {
		return LoginResult{}, err
	}
	slog.Info("auth_event", "event", "login_success", "email", email, "admin", admin)
	return LoginResult{AccountID: acct.ID, Email: acct.Email, IsAdmin: admin}, nil
}
