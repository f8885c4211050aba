package plugin

import (
	"github.com/faradayio/cage-sub000/internal/core/compose"
)

// secretsPlugin injects resolved secret values into each service's
// environment. Secrets win over values written in the pod file; injection is
// keyed, so reapplying the plugin changes nothing.
type secretsPlugin struct{}

func (secretsPlugin) Name() string { return "secrets" }

func (secretsPlugin) Transform(op Operation, ctx *Context, cfg *compose.Config) error {
	if ctx.Secrets == nil {
		return nil
	}
	for _, name := range cfg.ServiceNames() {
		svc := cfg.Services[name]
		vars := ctx.Secrets.Resolve(ctx.Target, ctx.PodName, name)
		for _, key := range vars.SortedKeys() {
			svc.Environment.Set(key, vars[key])
		}
	}
	return nil
}
