package localized_test

import (
	"testing"

	"church/internal/domain/localized"
)

// TestNormalize_AlwaysFourKeys tests that partial maps are filled with empty slots.
func TestNormalize_AlwaysFourKeys(t *testing.T) {
	tests := []struct {
		name    string
		partial map[string]any
		want    localized.Text
	}{
		{name: "nil map", partial: nil, want: localized.Text{}},
		{name: "only ro", partial: map[string]any{"ro": "Slujbă"}, want: localized.Text{RO: "Slujbă"}},
		{name: "non-string value", partial: map[string]any{"en": 42, "fr": "Messe"}, want: localized.Text{FR: "Messe"}},
		{name: "unknown key ignored", partial: map[string]any{"de": "Messe", "nl": "Mis"}, want: localized.Text{NL: "Mis"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := localized.Normalize(tt.partial)
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
			m := got.Map()
			if len(m) != 4 {
				t.Errorf("Map() has %d keys, want 4", len(m))
			}
			for _, l := range localized.Langs {
				if _, ok := m[string(l)]; !ok {
					t.Errorf("Map() missing key %s", l)
				}
			}
		})
	}
}

func TestText_Complete(t *testing.T) {
	full := localized.Text{RO: "a", EN: "b", FR: "c", NL: "d"}
	if !full.Complete() {
		t.Error("expected full text to be complete")
	}
	if (localized.Text{RO: "a", EN: "b", FR: "c", NL: "   "}).Complete() {
		t.Error("expected whitespace-only slot to be incomplete")
	}
	if (localized.Text{}).Complete() {
		t.Error("expected empty text to be incomplete")
	}
}

func TestText_EqualTrimsEachSlot(t *testing.T) {
	a := localized.Text{RO: " Psalm 23 ", EN: "Psalm 23"}
	b := localized.Text{RO: "Psalm 23", EN: "Psalm 23  "}
	if !a.Equal(b) {
		t.Error("expected slots equal after trimming")
	}
	if a.Equal(b.With(localized.LangNL, "Psalm 23")) {
		t.Error("expected single slot change to be detected")
	}
}

func TestText_WithLeavesOtherSlots(t *testing.T) {
	orig := localized.Text{RO: "ro", EN: "en", FR: "fr", NL: "nl"}
	got := orig.With(localized.LangFR, "nouveau")
	if got.FR != "nouveau" || got.RO != "ro" || got.EN != "en" || got.NL != "nl" {
		t.Errorf("With() = %+v", got)
	}
	if orig.FR != "fr" {
		t.Error("With() mutated the receiver")
	}
}

func TestText_PickFallsBack(t *testing.T) {
	tx := localized.Text{RO: "Bun venit", NL: "Welkom"}
	if got := tx.Pick(localized.LangNL); got != "Welkom" {
		t.Errorf("Pick(nl) = %q", got)
	}
	if got := tx.Pick(localized.LangEN); got != "Bun venit" {
		t.Errorf("Pick(en) = %q, want ro fallback", got)
	}
	if got := (localized.Text{FR: "Bienvenue"}).Pick(localized.LangEN); got != "Bienvenue" {
		t.Errorf("Pick(en) = %q, want first non-empty", got)
	}
}

func TestParseLang(t *testing.T) {
	for _, in := range []string{"ro", "EN", " fr ", "nl"} {
		if _, err := localized.ParseLang(in); err != nil {
			t.Errorf("ParseLang(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := localized.ParseLang("de"); err != localized.ErrUnknownLang {
		t.Errorf("ParseLang(de) error = %v, want ErrUnknownLang", err)
	}
}
