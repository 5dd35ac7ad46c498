package subscriber

import (
	"errors"
	"regexp"
	"strings"

	"church/internal/domain/localized"
)

// Domain errors
var (
	ErrInvalidEmail = errors.New("enter a valid email address")
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Subscriber is a newsletter subscriber. The document id is the normalized email,
// so changing the email moves the document.
type Subscriber struct {
	ID           string
	Email        string
	Lang         localized.Lang
	SubscribedAt string // RFC 3339, set once by the public form
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the normalized address has the shape of an email.
func ValidEmail(email string) bool {
	return emailShape.MatchString(NormalizeEmail(email))
}

// Validate checks if the Subscriber has valid data.
// PRE: Subscriber struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Subscriber) Validate() error {
	if !ValidEmail(s.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// DocumentID returns the id the subscriber is stored under.
func (s *Subscriber) DocumentID() string {
	return NormalizeEmail(s.Email)
}
