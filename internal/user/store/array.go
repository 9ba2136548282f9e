package store

import (
	"encoding/json"
	"fmt"
)

// decodeTextArray reads a TEXT[] selected through array_to_json.
func decodeTextArray(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode credential ids: %w", err)
	}
	return out, nil
}
