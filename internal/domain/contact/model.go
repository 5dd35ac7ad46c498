package contact

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"church/internal/domain/localized"
	"church/internal/domain/subscriber"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength    = 120
	MaxMessageLength = 5000
)

// Domain errors
var (
	ErrEmptyName       = errors.New("enter your name")
	ErrNameTooLong     = errors.New("name is too long")
	ErrInvalidEmail    = errors.New("enter a valid email address")
	ErrEmptyMessage    = errors.New("write a message")
	ErrMessageTooLong  = errors.New("message is too long")
	ErrDeliveryFailure = errors.New("your message could not be sent right now, we will retry shortly")
)

// Message is one contact form submission. ID is a ULID.
type Message struct {
	ID        string
	Name      string
	Email     string
	Body      string
	Lang      localized.Lang
	CreatedAt time.Time
}

// FieldError ties a validation error to the form field it belongs to.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e FieldError) Unwrap() error { return e.Err }

// Normalize trims every field and lowercases the email.
func (m *Message) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = subscriber.NormalizeEmail(m.Email)
	m.Body = strings.TrimSpace(m.Body)
}

// Validate returns one FieldError per invalid field, in form order.
// PRE: Normalize has been called
// POST: nil when the message can be sent
func (m *Message) Validate() []FieldError {
	var errs []FieldError
	switch {
	case m.Name == "":
		errs = append(errs, FieldError{"name", ErrEmptyName})
	case utf8.RuneCountInString(m.Name) > MaxNameLength:
		errs = append(errs, FieldError{"name", ErrNameTooLong})
	}
	if !subscriber.ValidEmail(m.Email) {
		errs = append(errs, FieldError{"email", ErrInvalidEmail})
	}
	switch {
	case m.Body == "":
		errs = append(errs, FieldError{"message", ErrEmptyMessage})
	case utf8.RuneCountInString(m.Body) > MaxMessageLength:
		errs = append(errs, FieldError{"message", ErrMessageTooLong})
	}
	return errs
}
