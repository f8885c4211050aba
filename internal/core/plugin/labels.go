package plugin

import (
	"github.com/faradayio/cage-sub000/internal/core/compose"
	"github.com/faradayio/cage-sub000/internal/core/labels"
)

// labelsPlugin stamps every service with the target and pod that produced
// it. Runtime queries use these labels to find a project's containers.
type labelsPlugin struct{}

func (labelsPlugin) Name() string { return "labels" }

func (labelsPlugin) Transform(op Operation, ctx *Context, cfg *compose.Config) error {
	for _, name := range cfg.ServiceNames() {
		svc := cfg.Services[name]
		l := svc.EnsureLabels()
		l[labels.Target] = ctx.Target
		l[labels.Pod] = ctx.PodName
	}
	return nil
}
