// pkg/locations/registry.go
package locations

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

//go:embed us_state_fips_mapping.json
var fipsJSON []byte

// Default returns a fresh copy of the embedded US state FIPS code to name table.
func Default() map[string]string {
	m := make(map[string]string)
	if err := json.Unmarshal(fipsJSON, &m); err != nil {
		panic(fmt.Sprintf("locations: embedded FIPS mapping is invalid: %v", err))
	}
	return m
}

func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse location registry %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes reg as indented JSON, creating parent directories.
func SaveRegistry(reg *Registry, path string) error {
	sort.SliceStable(reg.Locations, func(i, j int) bool {
		return reg.Locations[i].Code < reg.Locations[j].Code
	})
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate reports the first structural problem in reg.
func (r *Registry) Validate() error {
	if len(r.Locations) == 0 {
		return fmt.Errorf("registry contains no locations")
	}
	seen := make(map[string]bool)
	for _, e := range r.Locations {
		if e.Code == "" {
			return fmt.Errorf("location missing required field: code")
		}
		if e.Name == "" {
			return fmt.Errorf("location %s missing required field: name", e.Code)
		}
		if seen[e.Code] {
			return fmt.Errorf("duplicate location code: %s", e.Code)
		}
		seen[e.Code] = true
	}
	return nil
}

// Find returns the index of code in reg, or -1.
func (r *Registry) Find(code string) int {
	for i, e := range r.Locations {
		if e.Code == code {
			return i
		}
	}
	return -1
}

// Mapping merges the registry over the embedded table, or replaces it when
// Replace is set.
func (r *Registry) Mapping() map[string]string {
	m := Default()
	if r.Replace {
		m = make(map[string]string, len(r.Locations))
	}
	for _, e := range r.Locations {
		m[e.Code] = e.Name
	}
	return m
}

// Resolve returns the embedded table, overlaid with the registry at path
// when path is non-empty.
func Resolve(path string) (map[string]string, error) {
	if path == "" {
		return Default(), nil
	}
	reg, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid location registry %s: %w", path, err)
	}
	return reg.Mapping(), nil
}
