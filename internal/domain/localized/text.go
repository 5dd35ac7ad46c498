package localized

import (
	"errors"
	"strings"
)

// Lang identifies one of the four fixed language slots.
type Lang string

// Supported languages. Romanian is the primary language of the site.
const (
	LangRO Lang = "ro"
	LangEN Lang = "en"
	LangFR Lang = "fr"
	LangNL Lang = "nl"
)

// Langs lists every slot in display order.
var Langs = []Lang{LangRO, LangEN, LangFR, LangNL}

// ErrUnknownLang is returned when a language code is not one of the four slots.
var ErrUnknownLang = errors.New("language must be one of: ro, en, fr, nl")

// ParseLang validates a language code.
// PRE: none
// POST: Returns the matching Lang or ErrUnknownLang
func ParseLang(s string) (Lang, error) {
	switch l := Lang(strings.ToLower(strings.TrimSpace(s))); l {
	case LangRO, LangEN, LangFR, LangNL:
		return l, nil
	}
	return "", ErrUnknownLang
}

// Text is a Localized Text Map: exactly four language slots, empty when unset.
type Text struct {
	RO string `json:"ro"`
	EN string `json:"en"`
	FR string `json:"fr"`
	NL string `json:"nl"`
}

// Normalize builds a Text from a loosely typed map (e.g. a stored document field).
// Missing keys and non-string values become the empty string.
// POST: all four slots are present
func Normalize(partial map[string]any) Text {
	str := func(k Lang) string {
		if v, ok := partial[string(k)].(string); ok {
			return v
		}
		return ""
	}
	return Text{RO: str(LangRO), EN: str(LangEN), FR: str(LangFR), NL: str(LangNL)}
}

// FromAny normalizes any stored value; non-map values yield an empty Text.
func FromAny(v any) Text {
	switch m := v.(type) {
	case map[string]any:
		return Normalize(m)
	case map[string]string:
		partial := make(map[string]any, len(m))
		for k, s := range m {
			partial[k] = s
		}
		return Normalize(partial)
	case Text:
		return m
	}
	return Text{}
}

// Map returns the four slots as a document value.
func (t Text) Map() map[string]any {
	return map[string]any{
		string(LangRO): t.RO,
		string(LangEN): t.EN,
		string(LangFR): t.FR,
		string(LangNL): t.NL,
	}
}

// Get returns the slot for lang.
func (t Text) Get(lang Lang) string {
	switch lang {
	case LangRO:
		return t.RO
	case LangEN:
		return t.EN
	case LangFR:
		return t.FR
	case LangNL:
		return t.NL
	}
	return ""
}

// With returns a copy of t with one slot replaced. Other slots are untouched.
func (t Text) With(lang Lang, value string) Text {
	switch lang {
	case LangRO:
		t.RO = value
	case LangEN:
		t.EN = value
	case LangFR:
		t.FR = value
	case LangNL:
		t.NL = value
	}
	return t
}

// Complete reports whether all four slots are non-empty after trimming.
func (t Text) Complete() bool {
	for _, l := range Langs {
		if strings.TrimSpace(t.Get(l)) == "" {
			return false
		}
	}
	return true
}

// IsEmpty reports whether every slot is blank.
func (t Text) IsEmpty() bool {
	for _, l := range Langs {
		if strings.TrimSpace(t.Get(l)) != "" {
			return false
		}
	}
	return true
}

// Equal compares each slot independently after trimming.
func (t Text) Equal(o Text) bool {
	for _, l := range Langs {
		if strings.TrimSpace(t.Get(l)) != strings.TrimSpace(o.Get(l)) {
			return false
		}
	}
	return true
}

// Trimmed returns a copy with every slot trimmed.
func (t Text) Trimmed() Text {
	return Text{
		RO: strings.TrimSpace(t.RO),
		EN: strings.TrimSpace(t.EN),
		FR: strings.TrimSpace(t.FR),
		NL: strings.TrimSpace(t.NL),
	}
}

// Pick returns the slot for lang, falling back to Romanian and then to the
// first non-empty slot.
func (t Text) Pick(lang Lang) string {
	if s := strings.TrimSpace(t.Get(lang)); s != "" {
		return s
	}
	if s := strings.TrimSpace(t.RO); s != "" {
		return s
	}
	for _, l := range Langs {
		if s := strings.TrimSpace(t.Get(l)); s != "" {
			return s
		}
	}
	return ""
}
