package engine

import (
	"context"

	"github.com/distribution/reference"

	"github.com/faradayio/cage-sub000/internal/core/compose"
	"github.com/faradayio/cage-sub000/internal/core/plugin"
	"github.com/faradayio/cage-sub000/internal/core/project"
)

// =============================================================================
// Synthesis
// =============================================================================

// Generate synthesizes the Output configuration for every pod enabled in the
// target and returns pod name to written file path. One-off pods are
// generated too, so run can use them without a separate step.
func (e *Engine) Generate(ctx context.Context, t project.Target, build bool) (map[string]string, error) {
	return e.synthesize(ctx, t, plugin.Output, build, e.store.Layout.Output)
}

// Export synthesizes a portable tree under dir. Machine-dependent rewrites
// (mounted sources, absolute paths, host-dns) are left out, so the result
// runs on any machine with the referenced images and repositories reachable.
func (e *Engine) Export(ctx context.Context, t project.Target, dir string) error {
	_, err := e.synthesize(ctx, t, plugin.Export, false, dir)
	return err
}

func (e *Engine) synthesize(ctx context.Context, t project.Target, op plugin.Operation, build bool, dir string) (map[string]string, error) {
	pipeline := plugin.NewPipeline()
	files := make(map[string]string)
	for _, pod := range e.Project.EnabledPods(t) {
		merged, err := pod.MergedFor(t)
		if err != nil {
			return nil, err
		}
		e.lintImages(pod.File, merged)
		merged.Meta = nil // cage metadata stays out of engine-facing output

		if err := pipeline.Transform(op, e.pluginContext(ctx, t, pod, build), merged); err != nil {
			return nil, err
		}
		data, err := compose.Marshal(merged)
		if err != nil {
			return nil, err
		}
		if err := compose.ValidateOutput(ctx, e.opts.ProjectName, pod.File, data); err != nil {
			return nil, err
		}
		path, err := e.store.WriteSynthesized(dir, t.Name, pod.Name, data)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("synthesized pod config",
			"pod", pod.Name, "target", t.Name, "operation", op.String(), "file", path)
		files[pod.Name] = path
	}
	return files, nil
}

func (e *Engine) pluginContext(ctx context.Context, t project.Target, pod *project.Pod, build bool) *plugin.Context {
	pctx := &plugin.Context{
		Project:         e.opts.ProjectName,
		Target:          t.Name,
		PodName:         pod.Name,
		PodDir:          e.store.Layout.Pods,
		HomeDir:         e.opts.HomeDir,
		Registry:        e.Registry,
		Secrets:         e.Secrets,
		Tokens:          e.opts.Tokens,
		Paths:           e.paths(),
		Build:           build,
		SourceAvailable: e.sourceAvailable,
		Logger:          e.logger,
	}
	if e.docker != nil {
		pctx.GatewayIP = func() (string, error) {
			return e.docker.GatewayIP(ctx)
		}
	}
	return pctx
}

// lintImages warns when a service pins no explicit image tag. Runs on the
// merged config before the pipeline, so images injected for built services
// do not trip it.
func (e *Engine) lintImages(file string, cfg *compose.Config) {
	for _, name := range cfg.ServiceNames() {
		img := cfg.Services[name].Image
		if img == "" {
			continue
		}
		ref, err := reference.ParseNormalizedNamed(img)
		if err != nil {
			e.logger.Warn("malformed image reference",
				"file", file, "service", name, "image", img)
			continue
		}
		if reference.IsNameOnly(ref) {
			e.logger.Warn("image has no explicit tag",
				"file", file, "service", name, "image", img)
		}
	}
}
