package account

import (
	"context"
	"errors"

	domain "church/internal/domain/account"
)

// Collection names in the document store.
const (
	AccountsCollection = "accounts"
	AdminsCollection   = "admins"
)

// ErrNotFound is returned when no account has the requested id.
var ErrNotFound = errors.New("account not found")

// Store persists Account state and admin membership.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	List(ctx context.Context) ([]domain.Account, error)
	IsAdmin(ctx context.Context, id string) (bool, error)
	GrantAdmin(ctx context.Context, id string) error
}
