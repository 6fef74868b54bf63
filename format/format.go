// Package format reads and writes the document formats understood by
// the transformation tool: JSON, JSONC (JSON with comments), YAML, and
// TOML.
//
// Whatever the input format, decoded values are normalized into the
// engine's JSON domain (nil, bool, int, float64, string, []any,
// map[string]any) so navigation, merging, and jq evaluation always see
// the same shapes.
package format

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a document format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// Detect picks a format from a file path's extension. Unknown or absent
// extensions fall back to JSON.
//
// Example:
//
//	Detect("etl.jsonc")  -> FormatJSONC
//	Detect("data")       -> FormatJSON
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc", ".hujson":
		return FormatJSONC
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Unmarshal decodes data in the given format into a normalized value.
func Unmarshal(f Format, data []byte) (any, error) {
	switch f {
	case FormatJSON:
		return unmarshalJSON(data)
	case FormatJSONC:
		return unmarshalJSONC(data)
	case FormatYAML:
		return unmarshalYAML(data)
	case FormatTOML:
		return unmarshalTOML(data)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// Marshal encodes v in the given format. JSON and JSONC render as
// pretty-printed JSON with a trailing newline.
func Marshal(f Format, v any) ([]byte, error) {
	switch f {
	case FormatJSON, FormatJSONC:
		return marshalJSON(v)
	case FormatYAML:
		return marshalYAML(v)
	case FormatTOML:
		return marshalTOML(v)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}
