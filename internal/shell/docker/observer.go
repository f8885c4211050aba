package docker

import (
	"context"
	"net"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/faradayio/cage-sub000/internal/core/labels"
	"github.com/faradayio/cage-sub000/internal/core/runtime"
)

// =============================================================================
// Runtime State Observation
// =============================================================================

// Observe snapshots every container belonging to the project and target,
// stopped ones included. One list call scopes the set by label, then each
// container is inspected for the detail the list endpoint does not carry:
// exact state, exit code, network address and declared ports.
func (c *Client) Observe(ctx context.Context, project, target string) (*runtime.State, error) {
	f := filters.NewArgs()
	f.Add("label", labels.ComposeProject+"="+project)
	f.Add("label", labels.Target+"="+target)

	list, err := c.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: f})
	if err != nil {
		return nil, stateError(err)
	}

	var containers []runtime.Container
	for _, summary := range list {
		inspect, err := c.cli.ContainerInspect(ctx, summary.ID)
		if err != nil {
			return nil, stateError(err)
		}
		info, ok, err := convertInspect(&inspect)
		if err != nil {
			return nil, stateError(err)
		}
		if ok {
			containers = append(containers, info)
		}
	}
	return runtime.NewState(containers), nil
}

// Observer adapts Observe to the core's polling signature.
func (c *Client) Observer(project, target string) runtime.Observer {
	return func(ctx context.Context) (*runtime.State, error) {
		return c.Observe(ctx, project, target)
	}
}

// convertInspect distills an inspect response into a runtime.Container.
// Containers without a compose service label are not ours and are skipped.
func convertInspect(inspect *container.InspectResponse) (runtime.Container, bool, error) {
	name := strings.TrimPrefix(inspect.Name, "/")

	var labelMap map[string]string
	if inspect.Config != nil {
		labelMap = inspect.Config.Labels
	}
	service := labelMap[labels.ComposeService]
	if service == "" {
		return runtime.Container{}, false, nil
	}

	info := runtime.Container{
		Name:    name,
		Service: service,
		Pod:     labelMap[labels.Pod],
		OneOff:  strings.EqualFold(labelMap[labels.ComposeOneOff], "true"),
	}
	if inspect.State != nil {
		info.Status = runtime.Classify(inspect.State.Status, inspect.State.ExitCode)
	}

	ip, err := containerAddress(inspect)
	if err != nil {
		return runtime.Container{}, false, err
	}
	info.IP = ip
	info.Ports = exposedTCPPorts(inspect)
	return info, true, nil
}

// containerAddress picks the container's address: the first connected
// network, by sorted name, that reports one. Stopped containers report none,
// which is fine; a value that does not parse is not.
func containerAddress(inspect *container.InspectResponse) (string, error) {
	if inspect.NetworkSettings == nil {
		return "", nil
	}

	names := make([]string, 0, len(inspect.NetworkSettings.Networks))
	for name := range inspect.NetworkSettings.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		endpoint := inspect.NetworkSettings.Networks[name]
		if endpoint == nil || endpoint.IPAddress == "" {
			continue
		}
		if net.ParseIP(endpoint.IPAddress) == nil {
			return "", &AddressError{
				Container: strings.TrimPrefix(inspect.Name, "/"),
				Value:     endpoint.IPAddress,
			}
		}
		return endpoint.IPAddress, nil
	}
	return "", nil
}

// exposedTCPPorts lists the container's declared TCP ports, sorted.
func exposedTCPPorts(inspect *container.InspectResponse) []int {
	if inspect.Config == nil {
		return nil
	}
	var ports []int
	for port := range inspect.Config.ExposedPorts {
		if port.Proto() == "tcp" {
			ports = append(ports, port.Int())
		}
	}
	sort.Ints(ports)
	return ports
}
