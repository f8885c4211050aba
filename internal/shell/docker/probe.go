package docker

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/network"
)

// =============================================================================
// Readiness Probe
// =============================================================================

// probeTimeout bounds a single connection attempt. Probes run against
// containers on the local bridge, so anything slower than this is down.
const probeTimeout = 500 * time.Millisecond

// Probe dials a container port and reports whether it accepts connections.
// A dial observes what a client would observe, which is the question
// readiness actually asks.
func Probe(ip string, port int) bool {
	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// =============================================================================
// Engine Gateway
// =============================================================================

// GatewayIP returns the IPv4 gateway of the default bridge network, the
// address containers use to reach the host on Linux.
func (c *Client) GatewayIP(ctx context.Context) (string, error) {
	inspect, err := c.cli.NetworkInspect(ctx, "bridge", network.InspectOptions{})
	if err != nil {
		return "", stateError(err)
	}
	for _, cfg := range inspect.IPAM.Config {
		if cfg.Gateway == "" {
			continue
		}
		if ip := net.ParseIP(cfg.Gateway); ip != nil && ip.To4() != nil {
			return cfg.Gateway, nil
		}
	}
	return "", fmt.Errorf("%w: bridge network has no IPv4 gateway", ErrRuntimeState)
}
