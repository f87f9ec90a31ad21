package schema

import (
	"encoding/json"
	"fmt"
)

func unmarshalStrict(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}

	return nil
}

// ParseMetadataFilter resolves the permissive metadata_filter input into a
// plain map. The raw value is either a native JSON object or a JSON-encoded
// string of one; scalars and arrays fail validation.
func ParseMetadataFilter(field, raw string) (map[string]any, error) {
	var filter map[string]any
	if err := unmarshalStrict([]byte(raw), &filter); err != nil {
		return nil, newValidationError(field, "must be a JSON object")
	}
	if filter == nil {
		return nil, newValidationError(field, "must be a JSON object")
	}

	return filter, nil
}

func decodeMetadataObject(field string, raw json.RawMessage) (map[string]any, error) {
	var value map[string]any
	if err := unmarshalStrict(raw, &value); err != nil {
		return nil, newValidationError(field, "must be a JSON object")
	}
	if value == nil {
		return nil, newValidationError(field, "must be a JSON object")
	}

	return value, nil
}
