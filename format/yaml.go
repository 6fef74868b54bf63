package format

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// unmarshalYAML decodes YAML and normalizes it into the JSON domain
// (string keys, int/float64 numbers).
func unmarshalYAML(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var v any
	if err := yaml.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return Normalize(v), nil
}

// marshalYAML serializes v as YAML.
func marshalYAML(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}
