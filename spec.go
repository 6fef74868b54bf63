package jtl

import (
	"fmt"
	"strings"
)

// Spec is a loaded transformation spec: ordered mappings plus the
// accumulated context and optional expression prelude.
type Spec struct {
	Mappings []Mapping
	Context  map[string]any
	Prelude  string
}

// ParseSpec interprets a decoded JSON value as a transformation spec.
//
// Two shapes are accepted. The list form mixes mapping objects with
// single-key directive objects:
//
//	[
//	  {"ctx": {"region": "eu"}},
//	  {"with": "def shout: ascii_upcase;"},
//	  {"src": ".name", "dst": ".title"}
//	]
//
// Every {"ctx": ...} entry deep-merges into the spec context in document
// order. {"with": ...} sets the prelude (trimmed); when several appear,
// the last one wins. Every other element is a mapping and must carry at
// least "src" and "dst".
//
// The object form gathers the same pieces under fixed keys:
//
//	{"mappings": [...], "ctx": {...}, "with": "..."}
//
// Anything else is a FormatError.
func ParseSpec(v any) (*Spec, error) {
	spec := &Spec{Context: map[string]any{}}

	switch raw := v.(type) {
	case []any:
		for i, item := range raw {
			if obj, ok := item.(map[string]any); ok && len(obj) == 1 {
				if c, found := obj["ctx"]; found {
					if cm, ok := c.(map[string]any); ok && len(cm) > 0 {
						deepMerge(spec.Context, cm)
					}
					continue
				}
				if w, found := obj["with"]; found {
					spec.Prelude = strings.TrimSpace(stringValue(w))
					continue
				}
			}
			m, err := parseMapping(item, i)
			if err != nil {
				return nil, err
			}
			spec.Mappings = append(spec.Mappings, m)
		}

	case map[string]any:
		if mv, found := raw["mappings"]; found && mv != nil {
			list, ok := mv.([]any)
			if !ok {
				return nil, &FormatError{Reason: `"mappings" must be an array`}
			}
			for i, item := range list {
				m, err := parseMapping(item, i)
				if err != nil {
					return nil, err
				}
				spec.Mappings = append(spec.Mappings, m)
			}
		}
		if c, found := raw["ctx"]; found && c != nil {
			cm, ok := c.(map[string]any)
			if !ok {
				return nil, &FormatError{Reason: `"ctx" must be an object`}
			}
			deepMerge(spec.Context, cm)
		}
		if w, found := raw["with"]; found {
			spec.Prelude = strings.TrimSpace(stringValue(w))
		}

	default:
		return nil, &FormatError{Reason: "spec must be a JSON array or object"}
	}

	return spec, nil
}

// parseMapping extracts one mapping from a spec element. index is the
// element's zero-based position, reported 1-based in errors.
func parseMapping(v any, index int) (Mapping, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Mapping{}, &MissingFieldError{Entity: "mapping", Index: index + 1, Field: "src"}
	}

	src, err := requiredString(obj, "src", index)
	if err != nil {
		return Mapping{}, err
	}
	dst, err := requiredString(obj, "dst", index)
	if err != nil {
		return Mapping{}, err
	}

	m := Mapping{Src: src, Dst: dst}

	if mv, found := obj["mode"]; found && mv != nil {
		s, ok := mv.(string)
		if !ok {
			return Mapping{}, &FormatError{Reason: fmt.Sprintf(`mapping %d: "mode" must be a string`, index+1)}
		}
		m.Mode = s
	}
	if dv, found := obj["delimiter"]; found && dv != nil {
		s, ok := dv.(string)
		if !ok {
			return Mapping{}, &FormatError{Reason: fmt.Sprintf(`mapping %d: "delimiter" must be a string`, index+1)}
		}
		m.Delimiter = &s
	}

	return m, nil
}

// requiredString fetches a mandatory string field of a mapping object.
func requiredString(obj map[string]any, field string, index int) (string, error) {
	v, found := obj[field]
	if !found {
		return "", &MissingFieldError{Entity: "mapping", Index: index + 1, Field: field}
	}
	s, ok := v.(string)
	if !ok {
		return "", &FormatError{Reason: fmt.Sprintf("mapping %d: %q must be a string", index+1, field)}
	}
	return s, nil
}

// stringValue reads v as a string, treating null and foreign types as
// empty.
func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
