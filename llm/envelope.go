package llm

import (
	"encoding/json"
	"fmt"
)

// checkEnvelope verifies that body is a JSON object whose field holds an
// array. A missing or null field is an error only when required. An empty
// array passes: it decodes to no text.
func checkEnvelope(body []byte, field string, required bool) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return fmt.Errorf("response is not a JSON object: %w", err)
	}
	if obj == nil {
		return fmt.Errorf("response is null")
	}

	raw, ok := obj[field]
	if !ok || string(raw) == "null" {
		if required {
			return fmt.Errorf("response has no %q", field)
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("response %q is not an array", field)
	}
	return nil
}
