package compose

import (
	"sort"
)

// =============================================================================
// Merge Engine
// =============================================================================

// Merge layers a target override onto a pod base and returns a new config.
// Neither input is modified. The rules, applied per service:
//
//   - scalar fields (image, restart, command, entrypoint, build) replace
//     the base value when the override sets them
//   - list fields (ports, volumes, env_file, extra_hosts, depends_on)
//     append the override entries after the base entries
//   - environment overrides per key, keeping the base's key order and
//     appending new keys in override order
//   - labels union, with the override winning on conflict
//
// An override may only reshape services the base defines. Services that
// appear only in the override fail with ServicesAddedError; a target must
// not change the shape of a pod. A nil override yields a copy of the base.
func Merge(base, override *Config) (*Config, error) {
	merged := base.Clone()
	if override == nil {
		return merged, nil
	}

	var added []string
	for name := range override.Services {
		if _, ok := base.Services[name]; !ok {
			added = append(added, name)
		}
	}
	if len(added) > 0 {
		sort.Strings(added)
		return nil, &ServicesAddedError{
			Base:     base.Name,
			Override: override.Name,
			Services: added,
		}
	}

	for name, over := range override.Services {
		mergeService(merged.Services[name], over)
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	if !override.Networks.IsZero() {
		merged.Networks = override.Networks
	}
	if !override.Volumes.IsZero() {
		merged.Volumes = override.Volumes
	}
	return merged, nil
}

func mergeService(base, over *Service) {
	if over.Image != "" {
		base.Image = over.Image
	}
	if over.Build != nil {
		base.Build = over.Build.Clone()
	}
	if !over.Command.IsZero() {
		base.Command = over.Command.Clone()
	}
	if !over.Entrypoint.IsZero() {
		base.Entrypoint = over.Entrypoint.Clone()
	}
	if over.Restart != "" {
		base.Restart = over.Restart
	}

	for _, v := range over.Environment {
		base.Environment.Set(v.Key, v.Value)
	}
	if len(over.Labels) > 0 {
		labels := base.EnsureLabels()
		for k, v := range over.Labels {
			labels[k] = v
		}
	}

	base.EnvFiles = append(base.EnvFiles, over.EnvFiles...)
	base.Volumes = append(base.Volumes, over.Volumes...)
	base.Ports = append(base.Ports, over.Ports...)
	base.ExtraHosts = append(base.ExtraHosts, over.ExtraHosts...)
	base.DependsOn = append(base.DependsOn, over.DependsOn...)
}
