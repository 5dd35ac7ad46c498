package document

// Merge deep-merges src into dst and returns dst. Nested maps merge key by
// key; every other value in src replaces the one in dst.
// PRE: dst is not shared with callers
func Merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		sm, ok := v.(map[string]any)
		if !ok {
			dst[k] = cloneValue(v)
			continue
		}
		dm, ok := dst[k].(map[string]any)
		if !ok {
			dst[k] = Clone(sm)
			continue
		}
		dst[k] = Merge(dm, sm)
	}
	return dst
}

// Clone returns a deep copy of a field map.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
