package plugin

import (
	"fmt"

	"github.com/faradayio/cage-sub000/internal/core/compose"
	"github.com/faradayio/cage-sub000/internal/core/labels"
	"github.com/faradayio/cage-sub000/internal/core/source"
)

// sourcesPlugin wires mounted libs into services. For every
// io.fdy.cage.lib.<key> label whose source is mounted and present on disk,
// it adds a volume mapping the checkout into the container, and rewrites the
// service's build context when that context names the same origin. Unmounted
// or missing sources leave the service untouched.
//
// Local paths only make sense on this machine, so the plugin runs for the
// Output operation alone.
type sourcesPlugin struct{}

func (sourcesPlugin) Name() string { return "sources" }

func (sourcesPlugin) Transform(op Operation, ctx *Context, cfg *compose.Config) error {
	if op != Output {
		return nil
	}
	for _, name := range cfg.ServiceNames() {
		svc := cfg.Services[name]
		for _, mount := range labels.LibMounts(svc.Labels) {
			src, ok := ctx.Registry.ByLibKey(mount.Key)
			if !ok {
				return fmt.Errorf("%w: lib %s requested by service %s", source.ErrUnknownSource, mount.Key, name)
			}
			if !ctx.useLocal(src) {
				ctx.logger().Debug("lib not mounted, skipping",
					"lib", mount.Key, "alias", src.Alias, "service", name)
				continue
			}

			hostPath := src.LocalPath(ctx.Paths)
			if mount.Subdir != "" {
				hostPath = source.Repo{Source: src, Subdir: mount.Subdir}.ContextFor(ctx.Paths)
			}
			volume := hostPath + ":" + mount.ContainerPath
			if !svc.Volumes.Contains(volume) {
				svc.Volumes = append(svc.Volumes, volume)
			}

			rewriteContext(ctx, svc, src)
		}
	}
	return nil
}

// reposPlugin rewrites git build contexts to their local checkouts. Any git
// context whose repository is tracked, mounted and present on disk builds
// from the checkout instead of the remote; the subdirectory suffix of the
// reference is reapplied under the checkout. Output operation only, for the
// same reason as sourcesPlugin.
type reposPlugin struct{}

func (reposPlugin) Name() string { return "repos" }

func (reposPlugin) Transform(op Operation, ctx *Context, cfg *compose.Config) error {
	if op != Output {
		return nil
	}
	for _, name := range cfg.ServiceNames() {
		svc := cfg.Services[name]
		if svc.Build == nil {
			continue
		}
		origin := source.ParseOrigin(svc.Build.Context)
		if !origin.IsGit() {
			continue
		}
		src, ok := ctx.Registry.ByOrigin(svc.Build.Context)
		if !ok || !ctx.useLocal(src) {
			continue
		}
		svc.Build.Context = source.Repo{Source: src, Subdir: origin.Subdir}.ContextFor(ctx.Paths)
	}
	return nil
}

// rewriteContext redirects a service's build context to the source's
// checkout when the context names the same origin.
func rewriteContext(ctx *Context, svc *compose.Service, src *source.Source) {
	if svc.Build == nil {
		return
	}
	origin := source.ParseOrigin(svc.Build.Context)
	if !origin.IsGit() {
		return
	}
	owner, ok := ctx.Registry.ByOrigin(svc.Build.Context)
	if !ok || owner != src {
		return
	}
	svc.Build.Context = source.Repo{Source: src, Subdir: origin.Subdir}.ContextFor(ctx.Paths)
}
