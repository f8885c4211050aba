// Package labels defines the label namespace cage writes into generated
// configs and reads back from running containers.
package labels

import (
	"sort"
	"strings"
)

// =============================================================================
// Label Names
// =============================================================================

const (
	// Target and Pod are stamped onto every service during synthesis, so
	// that running containers can be traced back to the config that
	// produced them and queried per target.
	Target = "io.fdy.cage.target"
	Pod    = "io.fdy.cage.pod"

	// LibPrefix introduces a lib mount request written by the user:
	// io.fdy.cage.lib.<key> maps a tracked lib into the container. The
	// value is the container path, optionally prefixed with a
	// subdirectory of the lib: "subdir:/container/path".
	LibPrefix = "io.fdy.cage.lib."

	// Written by docker-compose onto the containers it manages.
	ComposeProject = "com.docker.compose.project"
	ComposeService = "com.docker.compose.service"
	ComposeOneOff  = "com.docker.compose.oneoff"
)

// =============================================================================
// Lib Mounts
// =============================================================================

// LibMount is one parsed io.fdy.cage.lib.<key> label.
type LibMount struct {
	Key           string
	Subdir        string
	ContainerPath string
}

// ParseLibMount splits a label name/value pair into a LibMount. It returns
// false when the label is not in the lib namespace.
func ParseLibMount(name, value string) (LibMount, bool) {
	if !strings.HasPrefix(name, LibPrefix) {
		return LibMount{}, false
	}
	mount := LibMount{Key: strings.TrimPrefix(name, LibPrefix)}
	if mount.Key == "" {
		return LibMount{}, false
	}

	if strings.HasPrefix(value, "/") {
		mount.ContainerPath = value
		return mount, true
	}
	if subdir, containerPath, ok := strings.Cut(value, ":"); ok {
		mount.Subdir = subdir
		mount.ContainerPath = containerPath
		return mount, true
	}
	mount.ContainerPath = value
	return mount, true
}

// LibMounts extracts every lib mount from a label map, sorted by key.
func LibMounts(labelMap map[string]string) []LibMount {
	var out []LibMount
	for name, value := range labelMap {
		if mount, ok := ParseLibMount(name, value); ok {
			out = append(out, mount)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
