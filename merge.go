package jtl

// upsertValue merges value into existing and returns what the caller
// should store. Rules, first match wins:
//
//  1. existing is null: deep copy of value
//  2. both strings: an empty string on either side short-circuits to the
//     other, otherwise they are joined with delim
//  3. existing is an array: concatenation when value is also an array,
//     otherwise value is appended as a single element
//  4. both objects: recursive deep merge into existing
//  5. anything else: last write wins (deep copy of value)
//
// The string and array rules are order-sensitive on purpose: applying
// "a" then "b" is not the same as "b" then "a".
func upsertValue(existing, value any, delim string) any {
	switch ev := existing.(type) {
	case nil:
		return deepCopyValue(value)
	case string:
		if vs, ok := value.(string); ok {
			if ev == "" {
				return vs
			}
			if vs == "" {
				return ev
			}
			return ev + delim + vs
		}
	case []any:
		if va, ok := value.([]any); ok {
			return append(ev, deepCopySlice(va)...)
		}
		return append(ev, deepCopyValue(value))
	case map[string]any:
		if vm, ok := value.(map[string]any); ok {
			return deepMerge(ev, vm)
		}
	}
	// Mixed kinds and scalar collisions: last write wins.
	return deepCopyValue(value)
}

// replaceValue returns the value to store for a replace write: a deep
// copy of value. The existing value is discarded unconditionally.
func replaceValue(value any) any {
	return deepCopyValue(value)
}

// deepMerge merges src into dst in place and returns dst. A key whose
// value is an object on both sides merges recursively; every other key
// is overwritten with a deep copy of the source value. Keys absent from
// src are untouched.
//
// The walk keeps its own stack so deeply nested documents cannot
// overflow the goroutine stack.
func deepMerge(dst, src map[string]any) map[string]any {
	type pair struct {
		dst map[string]any
		src map[string]any
	}
	stack := []pair{{dst, src}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for k, v := range p.src {
			if cur, ok := p.dst[k].(map[string]any); ok {
				if sub, ok := v.(map[string]any); ok {
					stack = append(stack, pair{dst: cur, src: sub})
					continue
				}
			}
			p.dst[k] = deepCopyValue(v)
		}
	}
	return dst
}

// deepCopyValue returns a structural copy of v: maps and slices are
// duplicated recursively, scalars are returned as-is.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		return deepCopySlice(val)
	default:
		return v
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopySlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = deepCopyValue(v)
	}
	return out
}
