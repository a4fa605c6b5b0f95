package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadSpec reads a .stackspec document. gopkg.in/yaml.v3 is the same
// library pulled in by the rest of the pack's config loaders - see
// DESIGN.md.
func loadSpec(path string) (*fileSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stackspec: %w", err)
	}
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("stackspec: %s: %w", path, err)
	}
	return &spec, nil
}
