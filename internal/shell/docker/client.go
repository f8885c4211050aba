// Package docker is cage's window onto the container engine: one client, a
// runtime-state observer built from list plus per-container inspect, and the
// TCP prober used for readiness checks.
package docker

import (
	"context"
	"os"

	"github.com/docker/docker/client"
)

// =============================================================================
// Docker Client
// =============================================================================

// Client wraps the Docker SDK client.
type Client struct {
	cli *client.Client
}

// NewClient creates a client from the environment. If host is set it takes
// precedence over DOCKER_HOST. On macOS with Docker Desktop the default
// socket may not exist; when the first ping fails, the Desktop per-user
// socket is tried before giving up.
func NewClient(host string) (*Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, stateError(err)
	}

	ctx := context.Background()
	if _, pingErr := cli.Ping(ctx); pingErr != nil && host == "" {
		homeDir, _ := os.UserHomeDir()
		desktopSocket := "unix://" + homeDir + "/.docker/run/docker.sock"

		desktop, err := client.NewClientWithOpts(
			client.WithHost(desktopSocket),
			client.WithAPIVersionNegotiation(),
		)
		if err == nil {
			if _, pingErr := desktop.Ping(ctx); pingErr == nil {
				cli.Close()
				return &Client{cli: desktop}, nil
			}
			desktop.Close()
		}
	}

	return &Client{cli: cli}, nil
}

// Ping checks that the engine is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.cli.Ping(ctx); err != nil {
		return stateError(err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.cli.Close()
}
