package compose

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Parser Functions
// =============================================================================

// Parse parses a pod file or target override into a Config. The name is
// recorded for diagnostics and appears in every error derived from the file.
// A file with no services section is legal and yields an empty service map.
func Parse(name string, data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{File: name, Err: fmt.Errorf("%w: %v", ErrInvalidYAML, err)}
	}
	if cfg.Services == nil {
		cfg.Services = map[string]*Service{}
	}
	for svcName, svc := range cfg.Services {
		if svc == nil {
			cfg.Services[svcName] = &Service{}
		}
	}
	cfg.Name = name
	return &cfg, nil
}

// Marshal serializes a config with two-space indentation and deterministic
// key order. Marshaling a config twice yields identical bytes.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("could not serialize %s: %w", cfg.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("could not serialize %s: %w", cfg.Name, err)
	}
	return buf.Bytes(), nil
}
