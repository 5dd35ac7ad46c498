package subscriber_test

import (
	"testing"

	"church/internal/domain/subscriber"
)

func TestDocumentID_Lowercases(t *testing.T) {
	s := subscriber.Subscriber{Email: "  Test@Example.com "}
	if got := s.DocumentID(); got != "test@example.com" {
		t.Errorf("DocumentID() = %q, want test@example.com", got)
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.co", true},
		{"Test@Example.com", true},
		{"no-at.example.com", false},
		{"two words@example.com", false},
		{"user@nodot", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := subscriber.ValidEmail(tt.email); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestSubscriber_Validate(t *testing.T) {
	bad := subscriber.Subscriber{Email: "nope"}
	if err := bad.Validate(); err != subscriber.ErrInvalidEmail {
		t.Errorf("Validate() = %v, want ErrInvalidEmail", err)
	}
	good := subscriber.Subscriber{Email: "ana@example.org"}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
