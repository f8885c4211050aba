// Package project models a cage project: the set of pods it defines, the
// targets those pods can run in, and the per-target overrides layered on top
// of each pod. Everything here is pure; discovery and file I/O live in the
// shell.
package project

import (
	"errors"
	"fmt"
	"sort"

	"github.com/faradayio/cage-sub000/internal/core/compose"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrUnknownPod     = errors.New("unknown pod")
	ErrUnknownService = errors.New("unknown service")
	ErrUnknownTarget  = errors.New("unknown target")
)

// =============================================================================
// Target
// =============================================================================

// Target names an environment a project can run in, such as development or
// production. It is a pure value type, usable as a map key.
type Target struct {
	Name string
}

// NewTarget wraps a target name.
func NewTarget(name string) Target {
	return Target{Name: name}
}

func (t Target) String() string {
	return t.Name
}

// =============================================================================
// Pod
// =============================================================================

// Pod is a named group of services deployed together. It holds the parsed
// base config and any target overrides found on disk.
type Pod struct {
	Name      string
	File      string
	Config    *compose.Config
	Overrides map[Target]*compose.Config
}

// Meta returns the pod's x-cage metadata, which may be nil.
func (p *Pod) Meta() *compose.PodMeta {
	return p.Config.Meta
}

// EnabledIn reports whether the pod participates in the target.
func (p *Pod) EnabledIn(t Target) bool {
	return p.Meta().EnabledIn(t.Name)
}

// IsOneOff reports whether the pod is a one-off task pod.
func (p *Pod) IsOneOff() bool {
	return p.Meta().IsOneOff()
}

// MergedFor layers the target's override, if any, onto the pod base and
// returns the result. The pod itself is never modified.
func (p *Pod) MergedFor(t Target) (*compose.Config, error) {
	return compose.Merge(p.Config, p.Overrides[t])
}

// ServiceNames returns the pod's service names in sorted order. The base file
// is authoritative: overrides cannot add services, so the list is stable
// across targets.
func (p *Pod) ServiceNames() []string {
	return p.Config.ServiceNames()
}

// Service returns the named service from the pod base.
func (p *Pod) Service(name string) (*compose.Service, error) {
	svc, ok := p.Config.Services[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownService, p.Name, name)
	}
	return svc, nil
}

// =============================================================================
// Project
// =============================================================================

// Project is the full picture of one cage project. Pods and targets are kept
// sorted so that every traversal is deterministic.
type Project struct {
	Name    string
	Root    string
	Targets []Target
	Pods    []*Pod

	byName map[string]*Pod
}

// New assembles a project from discovered pods and targets.
func New(name, root string, targets []Target, pods []*Pod) *Project {
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	sort.Slice(pods, func(i, j int) bool { return pods[i].Name < pods[j].Name })

	byName := make(map[string]*Pod, len(pods))
	for _, pod := range pods {
		byName[pod.Name] = pod
	}
	return &Project{
		Name:    name,
		Root:    root,
		Targets: targets,
		Pods:    pods,
		byName:  byName,
	}
}

// Pod returns the named pod.
func (p *Project) Pod(name string) (*Pod, error) {
	pod, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPod, name)
	}
	return pod, nil
}

// Target validates a target name against the targets discovered on disk.
func (p *Project) Target(name string) (Target, error) {
	for _, t := range p.Targets {
		if t.Name == name {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("%w: %s", ErrUnknownTarget, name)
}

// EnabledPods returns every pod enabled in the target, one-off pods included.
func (p *Project) EnabledPods(t Target) []*Pod {
	var out []*Pod
	for _, pod := range p.Pods {
		if pod.EnabledIn(t) {
			out = append(out, pod)
		}
	}
	return out
}

// ServingPods returns the pods that run as long-lived services in the target.
// One-off task pods are excluded; they only run on demand.
func (p *Project) ServingPods(t Target) []*Pod {
	var out []*Pod
	for _, pod := range p.EnabledPods(t) {
		if !pod.IsOneOff() {
			out = append(out, pod)
		}
	}
	return out
}
