package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/core/runtime"
	"github.com/faradayio/cage-sub000/internal/shell/docker"
)

// =============================================================================
// Runtime State
// =============================================================================

// ServiceStatus groups one service's containers for display.
type ServiceStatus struct {
	Name       string
	Containers []runtime.Container
}

// PodStatus is one serving pod's slice of the status table.
type PodStatus struct {
	Name     string
	Services []ServiceStatus
}

// Status reports every serving pod's containers grouped by service, from a
// single engine observation.
func (e *Engine) Status(ctx context.Context, t project.Target) ([]PodStatus, error) {
	state, err := e.observe(ctx, t)
	if err != nil {
		return nil, err
	}

	var out []PodStatus
	for _, pod := range e.Project.ServingPods(t) {
		ps := PodStatus{Name: pod.Name}
		for _, svc := range pod.ServiceNames() {
			status := ServiceStatus{Name: svc}
			for _, c := range state.ContainersFor(svc) {
				if c.Pod == "" || c.Pod == pod.Name {
					status.Containers = append(status.Containers, c)
				}
			}
			ps.Services = append(ps.Services, status)
		}
		out = append(out, ps)
	}
	return out, nil
}

// WaitReady blocks until every service of the selected pods has a running
// container accepting connections on all its declared TCP ports. One-off
// pods never gate readiness; their containers run to completion and exit.
func (e *Engine) WaitReady(ctx context.Context, t project.Target, podNames []string, interval time.Duration) error {
	if e.docker == nil {
		return fmt.Errorf("%w: readiness needs a running container engine", ErrNoDocker)
	}
	pods, err := e.selectPods(t, podNames, false)
	if err != nil {
		return err
	}

	var services []string
	for _, pod := range pods {
		if pod.IsOneOff() {
			continue
		}
		services = append(services, pod.ServiceNames()...)
	}
	sort.Strings(services)
	if len(services) == 0 {
		return nil
	}

	e.logger.Info("waiting for services",
		"target", t.Name, "services", strings.Join(services, ", "))
	observe := e.docker.Observer(e.opts.ProjectName, t.Name)
	return runtime.WaitReady(ctx, observe, docker.Probe, services, interval)
}

func (e *Engine) observe(ctx context.Context, t project.Target) (*runtime.State, error) {
	if e.docker == nil {
		return nil, fmt.Errorf("%w: status needs a running container engine", ErrNoDocker)
	}
	return e.docker.Observe(ctx, e.opts.ProjectName, t.Name)
}
