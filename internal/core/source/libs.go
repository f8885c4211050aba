package source

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/faradayio/cage-sub000/internal/core/compose"
)

// =============================================================================
// sources.yml
// =============================================================================

// Lib is one entry from config/sources.yml: a short key and the origin it
// tracks. Pod files refer to libs by key in io.fdy.cage.lib.<key> labels.
type Lib struct {
	Key     string
	Context string
}

type libFile struct {
	Libs map[string]libEntry `yaml:"libs"`
}

type libEntry struct {
	Context string `yaml:"context"`
}

// Entries may be written long form with a context key, or short form as a
// bare string.
func (e *libEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		e.Context = value.Value
		return nil
	}
	type entryFields libEntry
	var fields entryFields
	if err := value.Decode(&fields); err != nil {
		return err
	}
	*e = libEntry(fields)
	return nil
}

// ParseLibs reads a sources.yml document and returns its lib entries sorted
// by key, so registration order and therefore collision reporting is
// deterministic.
func ParseLibs(name string, data []byte) ([]Lib, error) {
	var file libFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &compose.ParseError{File: name, Err: fmt.Errorf("%w: %v", compose.ErrInvalidYAML, err)}
	}

	libs := make([]Lib, 0, len(file.Libs))
	for key, entry := range file.Libs {
		libs = append(libs, Lib{Key: key, Context: entry.Context})
	}
	sort.Slice(libs, func(i, j int) bool { return libs[i].Key < libs[j].Key })
	return libs, nil
}
