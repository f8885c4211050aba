package runtime

import (
	"sort"
)

// =============================================================================
// Runtime State
// =============================================================================

// Container is the distilled view of one running or stopped container.
type Container struct {
	Name    string
	Service string
	Pod     string
	// OneOff marks containers started by run rather than up.
	OneOff bool
	Status Status
	// IP is the container's address on its network, empty when it has
	// none (not started, or stopped).
	IP string
	// Ports lists the declared TCP ports, sorted.
	Ports []int
}

// State is an immutable snapshot of a project's containers grouped by
// service. Build it once per observation and query it freely.
type State struct {
	byService map[string][]Container
}

// NewState groups containers by service. Within a service, containers sort
// by name so traversal is deterministic.
func NewState(containers []Container) *State {
	byService := make(map[string][]Container)
	for _, c := range containers {
		byService[c.Service] = append(byService[c.Service], c)
	}
	for _, group := range byService {
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
	}
	return &State{byService: byService}
}

// ContainersFor returns the containers for a service. A service with no
// containers yields an empty slice, never an error: absence of containers is
// a normal answer, not a failure.
func (s *State) ContainersFor(service string) []Container {
	return s.byService[service]
}

// Services lists the services with at least one container, sorted.
func (s *State) Services() []string {
	out := make([]string, 0, len(s.byService))
	for svc := range s.byService {
		out = append(out, svc)
	}
	sort.Strings(out)
	return out
}

// All returns every container ordered by service then name.
func (s *State) All() []Container {
	var out []Container
	for _, svc := range s.Services() {
		out = append(out, s.byService[svc]...)
	}
	return out
}
