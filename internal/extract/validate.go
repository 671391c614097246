package extract

import (
	"encoding/json"
	"fmt"

	"github.com/oliveagle/jsonpath"
)

// MissingFields reports which of the required top-level fields are absent
// from the extracted JSON object, in the order they are required.
func MissingFields(raw json.RawMessage, required []string) ([]string, error) {
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse extracted JSON: %w", err)
	}

	var missing []string
	for _, field := range required {
		pattern, err := jsonpath.Compile("$." + field)
		if err != nil {
			return nil, fmt.Errorf("invalid field name %q: %w", field, err)
		}
		if _, err := pattern.Lookup(data); err != nil {
			missing = append(missing, field)
		}
	}

	return missing, nil
}
