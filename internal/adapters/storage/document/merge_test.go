package document

import (
	"reflect"
	"testing"
)

func TestMerge_DeepMergesNestedMaps(t *testing.T) {
	dst := map[string]any{
		"title": map[string]any{"ro": "Concert", "en": "Concert"},
		"place": "Sala mare",
	}
	src := map[string]any{
		"title": map[string]any{"en": "Carol concert"},
		"time":  "18:00",
	}
	got := Merge(dst, src)
	want := map[string]any{
		"title": map[string]any{"ro": "Concert", "en": "Carol concert"},
		"place": "Sala mare",
		"time":  "18:00",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}
}

func TestMerge_ReplacesNonMapValues(t *testing.T) {
	dst := map[string]any{"affectedProgramIds": []any{"sun-service", "wed-prayer"}}
	got := Merge(dst, map[string]any{"affectedProgramIds": []any{"fri-youth"}})
	want := []any{"fri-youth"}
	if !reflect.DeepEqual(got["affectedProgramIds"], want) {
		t.Errorf("list = %v, want %v", got["affectedProgramIds"], want)
	}
}

func TestClone_IsDeep(t *testing.T) {
	src := map[string]any{"message": map[string]any{"ro": "a"}, "ids": []any{"x"}}
	c := Clone(src)
	c["message"].(map[string]any)["ro"] = "b"
	c["ids"].([]any)[0] = "y"
	if src["message"].(map[string]any)["ro"] != "a" || src["ids"].([]any)[0] != "x" {
		t.Error("mutating the clone changed the source")
	}
}
