package sections

import (
	"time"

	"church/internal/application/collection"
	"church/internal/domain/localized"
	"church/internal/domain/subscriber"
)

// Subscriber fields
const (
	SubscriberEmail collection.Field = "email"
	SubscriberLang  collection.Field = "lang"
)

// NewsletterKind is the newsletter subscriber section. The email is the id,
// so changing it moves the document.
type NewsletterKind struct{}

// Compile-time check that NewsletterKind satisfies collection.Kind.
var _ collection.Kind[subscriber.Subscriber] = NewsletterKind{}

func (NewsletterKind) Collection() string { return NewsletterCollection }

func (NewsletterKind) Blank(id string) subscriber.Subscriber {
	return subscriber.Subscriber{ID: id, Lang: localized.LangRO}
}

func (NewsletterKind) Decode(id string, f map[string]any) subscriber.Subscriber {
	email := trim(f, "email")
	if email == "" {
		email = id
	}
	lang, err := localized.ParseLang(trim(f, "lang"))
	if err != nil {
		lang = localized.LangRO
	}
	return subscriber.Subscriber{ID: id, Email: email, Lang: lang, SubscribedAt: trim(f, "subscribedAt")}
}

func (NewsletterKind) Encode(s subscriber.Subscriber) map[string]any {
	fields := map[string]any{
		"email": subscriber.NormalizeEmail(s.Email),
		"lang":  string(s.Lang),
	}
	if s.SubscribedAt != "" {
		fields["subscribedAt"] = s.SubscribedAt
	}
	return fields
}

func (NewsletterKind) Apply(s subscriber.Subscriber, f collection.SetField) (subscriber.Subscriber, error) {
	switch f.Field {
	case SubscriberEmail:
		v, err := collection.StringValue(f)
		if err != nil {
			return s, err
		}
		s.Email = v
		return s, nil
	case SubscriberLang:
		v, err := collection.StringValue(f)
		if err != nil {
			return s, err
		}
		lang, err := localized.ParseLang(v)
		if err != nil {
			return s, err
		}
		s.Lang = lang
		return s, nil
	}
	return s, collection.UnknownField(f.Field)
}

func (NewsletterKind) Equal(a, b subscriber.Subscriber) bool {
	return subscriber.NormalizeEmail(a.Email) == subscriber.NormalizeEmail(b.Email) && a.Lang == b.Lang
}

func (NewsletterKind) Validate(s subscriber.Subscriber) error { return s.Validate() }

// IsHistory is always false: subscribers have no history.
func (NewsletterKind) IsHistory(subscriber.Subscriber, time.Time) bool { return false }

func (NewsletterKind) Less(a, b subscriber.Subscriber, _ bool) bool { return a.ID < b.ID }

func (NewsletterKind) DesiredID(s subscriber.Subscriber, _ collection.IdentityContext) (string, error) {
	return s.DocumentID(), nil
}

func (NewsletterKind) RenameMode() collection.RenameMode { return collection.RenameReplace }
