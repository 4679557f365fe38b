// Package inputs loads the external-inputs mapping supplied at run start.
// The mapping is addressable during the run under the reserved pseudo-node
// path (user_input.<field>) and is read-only for the run's duration.
package inputs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML file into the flat external-inputs mapping. An empty
// path yields an empty mapping.
func Load(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read inputs file: %w", err)
	}

	inputs := map[string]any{}
	if err := yaml.Unmarshal(raw, &inputs); err != nil {
		return nil, fmt.Errorf("cannot parse inputs file %s: %w", path, err)
	}
	return inputs, nil
}
