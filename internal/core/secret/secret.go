// Package secret resolves per-service secret values from config/secrets.yml.
// Secrets layer the same way pods do: project-wide values first, then
// target-scoped ones, then pod-scoped ones, with the most specific layer
// winning per key. The resolved values are injected into service environments
// during synthesis.
package secret

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/faradayio/cage-sub000/internal/core/compose"
)

// Vars is a flat map of secret environment values for one service.
type Vars map[string]string

// SortedKeys returns the variable names in sorted order for deterministic
// injection.
func (v Vars) SortedKeys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store is the parsed form of secrets.yml.
type Store struct {
	Common  map[string]Vars            `yaml:"common"`
	Pods    map[string]map[string]Vars `yaml:"pods"`
	Targets map[string]*TargetSecrets  `yaml:"targets"`
}

// TargetSecrets holds the secrets scoped to one target.
type TargetSecrets struct {
	Common map[string]Vars            `yaml:"common"`
	Pods   map[string]map[string]Vars `yaml:"pods"`
}

// Parse reads a secrets.yml document.
func Parse(name string, data []byte) (*Store, error) {
	var store Store
	if err := yaml.Unmarshal(data, &store); err != nil {
		return nil, &compose.ParseError{File: name, Err: fmt.Errorf("%w: %v", compose.ErrInvalidYAML, err)}
	}
	return &store, nil
}

// Resolve returns the secrets for one service, least specific layer first:
// project common, target common, pod, then target pod. Later layers override
// earlier ones per key. A nil store resolves to no secrets.
func (s *Store) Resolve(target, pod, service string) Vars {
	out := Vars{}
	if s == nil {
		return out
	}

	merge := func(vars Vars) {
		for k, v := range vars {
			out[k] = v
		}
	}

	merge(s.Common[service])
	if t := s.Targets[target]; t != nil {
		merge(t.Common[service])
	}
	if pods := s.Pods[pod]; pods != nil {
		merge(pods[service])
	}
	if t := s.Targets[target]; t != nil {
		if pods := t.Pods[pod]; pods != nil {
			merge(pods[service])
		}
	}
	return out
}
