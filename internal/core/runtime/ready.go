package runtime

import (
	"context"
	"time"
)

// =============================================================================
// Readiness
// =============================================================================

// DefaultPollInterval paces WaitReady between observations.
const DefaultPollInterval = time.Second

// Observer produces a fresh snapshot of the project's containers.
type Observer func(ctx context.Context) (*State, error)

// Prober reports whether a TCP port on a container address accepts
// connections.
type Prober func(ip string, port int) bool

// PodReady reports whether every listed service is served: at least one
// running, non-one-off container whose declared TCP ports all accept
// connections. A service with no containers is not ready; one-off task
// containers never count.
func PodReady(state *State, services []string, probe Prober) bool {
	for _, svc := range services {
		if !serviceReady(state.ContainersFor(svc), probe) {
			return false
		}
	}
	return true
}

func serviceReady(containers []Container, probe Prober) bool {
	for _, c := range containers {
		if c.OneOff {
			continue
		}
		if containerReady(c, probe) {
			return true
		}
	}
	return false
}

func containerReady(c Container, probe Prober) bool {
	if !c.Status.IsRunning() {
		return false
	}
	if len(c.Ports) == 0 {
		return true
	}
	if c.IP == "" {
		return false
	}
	for _, port := range c.Ports {
		if !probe(c.IP, port) {
			return false
		}
	}
	return true
}

// WaitReady polls until every listed service is ready, the context is
// cancelled, or an observation fails. The first check runs immediately;
// later ones are paced by interval.
func WaitReady(ctx context.Context, observe Observer, probe Prober, services []string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	for {
		state, err := observe(ctx)
		if err != nil {
			return err
		}
		if PodReady(state, services, probe) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
