package plugin

import (
	"github.com/faradayio/cage-sub000/internal/core/compose"
)

// removeBuildPlugin strips build sections from commands that do not build.
// docker-compose rebuilds eagerly whenever a config carries a build section;
// stripping it keeps `up` and friends fast and predictable. Services without
// an explicit image get the name docker-compose gives built images, so the
// previously built image is reused.
type removeBuildPlugin struct{}

func (removeBuildPlugin) Name() string { return "remove-build" }

func (removeBuildPlugin) Transform(op Operation, ctx *Context, cfg *compose.Config) error {
	if ctx.Build {
		return nil
	}
	for _, name := range cfg.ServiceNames() {
		svc := cfg.Services[name]
		if svc.Build == nil {
			continue
		}
		if svc.Image == "" {
			svc.Image = builtImageName(ctx.Project, name)
		}
		svc.Build = nil
	}
	return nil
}

// builtImageName matches docker-compose's naming for images it builds.
func builtImageName(project, service string) string {
	return project + "_" + service
}
