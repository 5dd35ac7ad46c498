package collection

import (
	"errors"
	"fmt"
	"strings"

	"church/internal/domain/localized"
)

// Field update errors
var (
	ErrUnknownField = errors.New("unknown field")
	ErrFieldType    = errors.New("field value has the wrong type")
)

// UnknownField wraps ErrUnknownField with the offending name.
func UnknownField(f Field) error {
	return fmt.Errorf("%w: %q", ErrUnknownField, f)
}

// StringValue reads a string command value.
func StringValue(f SetField) (string, error) {
	s, ok := f.Value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s wants a string", ErrFieldType, f.Field)
	}
	return s, nil
}

// BoolValue reads a boolean command value.
func BoolValue(f SetField) (bool, error) {
	b, ok := f.Value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s wants a boolean", ErrFieldType, f.Field)
	}
	return b, nil
}

// StringsValue reads a string list command value. JSON arrays decode as []any.
func StringsValue(f SetField) ([]string, error) {
	switch list := f.Value.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s wants a list of strings", ErrFieldType, f.Field)
			}
			out = append(out, s)
		}
		return out, nil
	case nil:
		return []string{}, nil
	}
	return nil, fmt.Errorf("%w: %s wants a list of strings", ErrFieldType, f.Field)
}

// ApplyText sets one language slot of a localized field.
func ApplyText(t localized.Text, f SetField) (localized.Text, error) {
	lang, err := localized.ParseLang(string(f.Lang))
	if err != nil {
		return t, err
	}
	s, err := StringValue(f)
	if err != nil {
		return t, err
	}
	return t.With(lang, s), nil
}

// SameString compares two scalar fields after trimming.
func SameString(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// Str reads a string document field; other types yield "".
func Str(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// Bool reads a boolean document field; other types yield false.
func Bool(fields map[string]any, key string) bool {
	b, _ := fields[key].(bool)
	return b
}

// Strings encodes a string list as a document value.
func Strings(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}
