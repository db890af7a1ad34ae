package preferences

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadLayoutFile reads a YAML layout. Unknown keys fail the load so a
// misspelt field never silently falls back to a default.
func LoadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, err
	}
	return ParseLayoutYAML(data)
}

// ParseLayoutYAML decodes and validates a YAML layout
func ParseLayoutYAML(data []byte) (Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	l = l.normalized()
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes l as YAML
func WriteLayoutFile(path string, l Layout) error {
	data, err := yaml.Marshal(l.normalized())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Fingerprint is a stable hash of the layout, used as its ETag
func (l Layout) Fingerprint() string {
	// struct, not map: field order is fixed
	raw, err := json.Marshal(l)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}
