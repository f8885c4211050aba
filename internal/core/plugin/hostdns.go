package plugin

import (
	"github.com/faradayio/cage-sub000/internal/core/compose"
)

// hostDNSPlugin makes host.docker.internal resolvable from containers on
// Linux, where the engine does not provide it, by adding an extra_hosts
// entry pointing at the bridge gateway. Docker Desktop platforms resolve the
// name natively and are left alone. A failed gateway lookup downgrades to a
// warning; the config is still usable without the entry.
type hostDNSPlugin struct{}

const hostDNSName = "host.docker.internal"

func (hostDNSPlugin) Name() string { return "host-dns" }

func (hostDNSPlugin) Transform(op Operation, ctx *Context, cfg *compose.Config) error {
	if op != Output || ctx.goos() != "linux" || ctx.GatewayIP == nil {
		return nil
	}

	ip, err := ctx.GatewayIP()
	if err != nil {
		ctx.logger().Warn("could not resolve engine gateway, skipping host.docker.internal",
			"error", err)
		return nil
	}

	entry := hostDNSName + ":" + ip
	for _, name := range cfg.ServiceNames() {
		svc := cfg.Services[name]
		if !svc.ExtraHosts.Contains(entry) {
			svc.ExtraHosts = append(svc.ExtraHosts, entry)
		}
	}
	return nil
}
