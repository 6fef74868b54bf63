package format

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// unmarshalTOML decodes TOML and normalizes it into the JSON domain
// (int64 becomes int, datetimes become RFC 3339 strings).
func unmarshalTOML(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}

	var v map[string]any
	if err := toml.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return Normalize(v), nil
}

// marshalTOML serializes v as TOML. Values TOML cannot represent (a
// non-table root, nulls) surface as encoder errors.
func marshalTOML(v any) ([]byte, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TOML: %w", err)
	}
	return data, nil
}
