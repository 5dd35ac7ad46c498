package account

import (
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Field limits and hashing cost.
const (
	MaxEmailLength = 254
	MinPassword    = 12
	bcryptCost     = 12
)

// Lockout policy: MaxFailedLogins consecutive misses lock the account
// for LockoutDuration.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrLocked           = errors.New("account is locked")
)

// Account is a console sign-in identity keyed by its normalized email.
// Admin rights come from a separate membership document.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// NormalizeEmail lowercases and trims an email so it can serve as an id.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the email shape.
func (a *Account) Validate() error {
	email := strings.TrimSpace(a.Email)
	switch {
	case email == "":
		return ErrEmptyEmail
	case len(email) > MaxEmailLength:
		return ErrEmailTooLong
	case !strings.Contains(email, "@"):
		return ErrInvalidEmail
	}
	return nil
}

// SetPassword replaces the bcrypt hash.
// PRE: plaintext has at least MinPassword characters
// POST: PasswordHash verifies plaintext
func (a *Account) SetPassword(plaintext string) error {
	switch {
	case plaintext == "":
		return ErrEmptyPassword
	case len(plaintext) < MinPassword:
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares plaintext with the stored hash without touching
// the lockout counters.
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked reports whether sign-in is refused at now.
func (a *Account) IsLocked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && now.Before(a.LockedUntil)
}

// Authenticate is one sign-in attempt at now.
// A locked account fails with ErrLocked before the password is looked at.
// A miss counts towards the lockout; a hit clears it and stamps LastLoginAt.
// POST: the account must be saved afterwards; every outcome changes it except ErrLocked
func (a *Account) Authenticate(plaintext string, now time.Time) error {
	if a.IsLocked(now) {
		return ErrLocked
	}
	if err := a.CheckPassword(plaintext); err != nil {
		a.FailedLogins++
		if a.FailedLogins >= MaxFailedLogins {
			a.LockedUntil = now.Add(LockoutDuration)
		}
		return err
	}
	a.ResetFailedLogins()
	a.LastLoginAt = now
	return nil
}

// ResetFailedLogins clears the counter and any lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

var decoyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("decoy password for unknown accounts"), bcryptCost)
	return h
})

// SpendPasswordCheck runs a bcrypt comparison against a decoy hash so a
// sign-in for an unknown email takes as long as one for a real account.
func SpendPasswordCheck(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(decoyHash(), []byte(plaintext))
}
