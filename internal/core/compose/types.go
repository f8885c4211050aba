package compose

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Config - Main Model Type
// =============================================================================

// Config is the in-memory form of a single pod file or target override.
// Field order and custom types are chosen so that Marshal produces output a
// human would recognize as the file they wrote, with deterministic key order.
type Config struct {
	// Name identifies the originating file in diagnostics. Not serialized.
	Name string `yaml:"-"`

	Version  string              `yaml:"version,omitempty"`
	Services map[string]*Service `yaml:"services"`

	// Meta carries the x-cage extension block of a pod base file: which
	// targets the pod is enabled in, and whether it is a one-off task pod.
	Meta *PodMeta `yaml:"x-cage,omitempty"`

	// Networks and Volumes are passed through untouched. The transform
	// pipeline only rewrites services; top-level sections written by the
	// user must survive synthesis byte-for-byte.
	Networks yaml.Node `yaml:"networks,omitempty"`
	Volumes  yaml.Node `yaml:"volumes,omitempty"`
}

// ServiceNames returns the names of all services in sorted order.
func (c *Config) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for name := range c.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the config. Passthrough nodes are shared; the
// pipeline treats them as read-only.
func (c *Config) Clone() *Config {
	out := &Config{
		Name:     c.Name,
		Version:  c.Version,
		Services: make(map[string]*Service, len(c.Services)),
		Networks: c.Networks,
		Volumes:  c.Volumes,
	}
	if c.Meta != nil {
		meta := *c.Meta
		meta.Targets = append([]string(nil), c.Meta.Targets...)
		out.Meta = &meta
	}
	for name, svc := range c.Services {
		out.Services[name] = svc.Clone()
	}
	return out
}

// =============================================================================
// Service Types
// =============================================================================

// Service represents a single service definition.
type Service struct {
	Image       string      `yaml:"image,omitempty"`
	Build       *Build      `yaml:"build,omitempty"`
	Command     Command     `yaml:"command,omitempty"`
	Entrypoint  Command     `yaml:"entrypoint,omitempty"`
	Environment Environment `yaml:"environment,omitempty"`
	EnvFiles    StringList  `yaml:"env_file,omitempty"`
	Volumes     StringList  `yaml:"volumes,omitempty"`
	Ports       StringList  `yaml:"ports,omitempty"`
	Labels      Labels      `yaml:"labels,omitempty"`
	ExtraHosts  StringList  `yaml:"extra_hosts,omitempty"`
	DependsOn   StringList  `yaml:"depends_on,omitempty"`
	Restart     string      `yaml:"restart,omitempty"`
}

// Clone returns a deep copy of the service.
func (s *Service) Clone() *Service {
	out := &Service{
		Image:       s.Image,
		Command:     s.Command.Clone(),
		Entrypoint:  s.Entrypoint.Clone(),
		Environment: s.Environment.Clone(),
		EnvFiles:    append(StringList(nil), s.EnvFiles...),
		Volumes:     append(StringList(nil), s.Volumes...),
		Ports:       append(StringList(nil), s.Ports...),
		Labels:      s.Labels.Clone(),
		ExtraHosts:  append(StringList(nil), s.ExtraHosts...),
		DependsOn:   append(StringList(nil), s.DependsOn...),
		Restart:     s.Restart,
	}
	if s.Build != nil {
		out.Build = s.Build.Clone()
	}
	return out
}

// EnsureLabels returns the service's label map, allocating it if needed.
func (s *Service) EnsureLabels() Labels {
	if s.Labels == nil {
		s.Labels = Labels{}
	}
	return s.Labels
}

// Build represents build configuration. In YAML it is either a bare context
// string or a mapping with context, dockerfile and args.
type Build struct {
	Context    string      `yaml:"context,omitempty"`
	Dockerfile string      `yaml:"dockerfile,omitempty"`
	Args       Environment `yaml:"args,omitempty"`
}

// Clone returns a deep copy of the build config.
func (b *Build) Clone() *Build {
	return &Build{
		Context:    b.Context,
		Dockerfile: b.Dockerfile,
		Args:       b.Args.Clone(),
	}
}

// =============================================================================
// Pod Metadata (x-cage extension)
// =============================================================================

// PodMeta is the x-cage extension block of a pod base file.
type PodMeta struct {
	// Targets lists the targets the pod is enabled in. Empty means all.
	Targets []string `yaml:"targets,omitempty"`
	// OneOff marks a task pod that runs to completion instead of serving.
	OneOff bool `yaml:"one_off,omitempty"`
}

// EnabledIn reports whether a pod carrying this metadata participates in the
// named target. A nil receiver or an empty target list enables everywhere.
func (m *PodMeta) EnabledIn(target string) bool {
	if m == nil || len(m.Targets) == 0 {
		return true
	}
	for _, t := range m.Targets {
		if t == target {
			return true
		}
	}
	return false
}

// IsOneOff reports whether the pod is a one-off task pod.
func (m *PodMeta) IsOneOff() bool {
	return m != nil && m.OneOff
}
