package compose

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// YAML Codecs
// =============================================================================
//
// docker-compose allows several fields to be written in more than one shape:
// environment as a map or a KEY=VALUE list, command as a shell string or an
// argument vector, build as a context string or a mapping. The types below
// accept every input shape and marshal back to one canonical shape so that
// synthesized output is deterministic.

// resolveAlias follows YAML anchors so that codecs see the anchored content.
func resolveAlias(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		return node.Alias
	}
	return node
}

// scalarValue returns the string form of a scalar node. Null nodes decode to
// the empty string, matching compose's treatment of `KEY:` entries.
func scalarValue(node *yaml.Node) string {
	if node.Tag == "!!null" {
		return ""
	}
	return node.Value
}

// =============================================================================
// Environment
// =============================================================================

// EnvVar is a single environment entry.
type EnvVar struct {
	Key   string
	Value string
}

// Environment is an ordered list of environment entries with last-write-wins
// semantics per key. Order is preserved from the source file; injected keys
// append at the end.
type Environment []EnvVar

// Get returns the value for key and whether it is present.
func (e Environment) Get(key string) (string, bool) {
	for _, v := range e {
		if v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key in place, or appends the entry when the key
// is new.
func (e *Environment) Set(key, value string) {
	for i, v := range *e {
		if v.Key == key {
			(*e)[i].Value = value
			return
		}
	}
	*e = append(*e, EnvVar{Key: key, Value: value})
}

// Clone returns a copy of the environment.
func (e Environment) Clone() Environment {
	return append(Environment(nil), e...)
}

func (e *Environment) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.MappingNode:
		out := make(Environment, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := resolveAlias(value.Content[i])
			val := resolveAlias(value.Content[i+1])
			if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: %w", value.Line, ErrNotEnvironment)
			}
			out = append(out, EnvVar{Key: key.Value, Value: scalarValue(val)})
		}
		*e = out
		return nil
	case yaml.SequenceNode:
		out := make(Environment, 0, len(value.Content))
		for _, item := range value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: %w", item.Line, ErrNotEnvironment)
			}
			key, val, _ := strings.Cut(item.Value, "=")
			out = append(out, EnvVar{Key: key, Value: val})
		}
		*e = out
		return nil
	default:
		return fmt.Errorf("line %d: %w", value.Line, ErrNotEnvironment)
	}
}

// MarshalYAML emits the environment as a mapping in recorded order.
func (e Environment) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, v := range e {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Value},
		)
	}
	return node, nil
}

// =============================================================================
// Command
// =============================================================================

// Command holds a service command or entrypoint in either compose form: a
// shell string or an exec-style argument vector. At most one form is set.
type Command struct {
	Shell string
	Exec  []string
}

// IsZero reports whether no command is set. yaml omitempty relies on this.
func (c Command) IsZero() bool {
	return c.Shell == "" && c.Exec == nil
}

// Clone returns a copy of the command.
func (c Command) Clone() Command {
	return Command{Shell: c.Shell, Exec: append([]string(nil), c.Exec...)}
}

func (c *Command) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.ScalarNode:
		*c = Command{Shell: scalarValue(value)}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: %w", item.Line, ErrNotCommand)
			}
			out = append(out, scalarValue(item))
		}
		*c = Command{Exec: out}
		return nil
	default:
		return fmt.Errorf("line %d: %w", value.Line, ErrNotCommand)
	}
}

func (c Command) MarshalYAML() (interface{}, error) {
	if c.Shell != "" {
		return c.Shell, nil
	}
	return c.Exec, nil
}

// =============================================================================
// StringList
// =============================================================================

// StringList accepts either a single scalar or a sequence of scalars. Numeric
// scalars keep their source spelling, so `- 3000` parses as "3000".
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.ScalarNode:
		*l = StringList{scalarValue(value)}
		return nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(value.Content))
		for _, item := range value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: %w", item.Line, ErrNotStringList)
			}
			out = append(out, scalarValue(item))
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: %w", value.Line, ErrNotStringList)
	}
}

// Contains reports whether the list already holds the given entry.
func (l StringList) Contains(entry string) bool {
	for _, v := range l {
		if v == entry {
			return true
		}
	}
	return false
}

// =============================================================================
// Labels
// =============================================================================

// Labels is a service label map. YAML input may also use the KEY=VALUE list
// form; output is always a mapping with sorted keys.
type Labels map[string]string

// Clone returns a copy of the label map.
func (l Labels) Clone() Labels {
	if l == nil {
		return nil
	}
	out := make(Labels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

func (l *Labels) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.MappingNode:
		out := make(Labels, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := resolveAlias(value.Content[i])
			val := resolveAlias(value.Content[i+1])
			if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: %w", value.Line, ErrNotLabels)
			}
			out[key.Value] = scalarValue(val)
		}
		*l = out
		return nil
	case yaml.SequenceNode:
		out := make(Labels, len(value.Content))
		for _, item := range value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: %w", item.Line, ErrNotLabels)
			}
			key, val, _ := strings.Cut(item.Value, "=")
			out[key] = val
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: %w", value.Line, ErrNotLabels)
	}
}

// =============================================================================
// Build
// =============================================================================

func (b *Build) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.ScalarNode:
		*b = Build{Context: scalarValue(value)}
		return nil
	case yaml.MappingNode:
		type buildFields Build
		var fields buildFields
		if err := value.Decode(&fields); err != nil {
			return fmt.Errorf("line %d: %w: %v", value.Line, ErrNotBuild, err)
		}
		*b = Build(fields)
		return nil
	default:
		return fmt.Errorf("line %d: %w", value.Line, ErrNotBuild)
	}
}

// MarshalYAML emits the short context-only form when nothing else is set.
func (b *Build) MarshalYAML() (interface{}, error) {
	if b.Dockerfile == "" && len(b.Args) == 0 {
		return b.Context, nil
	}
	type buildFields Build
	return (*buildFields)(b), nil
}
