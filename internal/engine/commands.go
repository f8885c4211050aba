package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/core/runtime"
)

// =============================================================================
// Compose Delegation
// =============================================================================

// compose runs one compose subcommand against a generated file, scoped to
// the project name so every pod's containers share one label namespace.
func (e *Engine) compose(ctx context.Context, file string, args ...string) error {
	full := append([]string{"-p", e.opts.ProjectName, "-f", file}, args...)
	return e.runner.Run(ctx, full...)
}

// Up regenerates configuration and starts the selected pods detached. An
// empty pod list means every serving pod in the target; one-off pods start
// only when named explicitly. With wait set, Up blocks until every started
// service accepts connections on its declared ports.
func (e *Engine) Up(ctx context.Context, t project.Target, podNames []string, wait bool) error {
	files, err := e.Generate(ctx, t, false)
	if err != nil {
		return err
	}
	pods, err := e.selectPods(t, podNames, false)
	if err != nil {
		return err
	}
	for _, pod := range pods {
		if err := e.compose(ctx, files[pod.Name], "up", "-d"); err != nil {
			return err
		}
	}
	if wait {
		return e.WaitReady(ctx, t, podNames, runtime.DefaultPollInterval)
	}
	return nil
}

// Stop stops the selected pods' containers without removing them.
func (e *Engine) Stop(ctx context.Context, t project.Target, podNames []string) error {
	return e.eachPod(ctx, t, podNames, false, false, "stop")
}

// Rm removes the selected pods' stopped containers.
func (e *Engine) Rm(ctx context.Context, t project.Target, podNames []string) error {
	return e.eachPod(ctx, t, podNames, false, false, "rm", "-f")
}

// Build builds images for the selected pods. Unlike the other commands the
// generated configs keep their build sections.
func (e *Engine) Build(ctx context.Context, t project.Target, podNames []string) error {
	return e.eachPod(ctx, t, podNames, true, true, "build")
}

// Pull pulls images for the selected pods. Build sections are kept so the
// engine skips services that are built rather than pulled.
func (e *Engine) Pull(ctx context.Context, t project.Target, podNames []string) error {
	return e.eachPod(ctx, t, podNames, true, true, "pull")
}

func (e *Engine) eachPod(ctx context.Context, t project.Target, podNames []string, build, oneOff bool, args ...string) error {
	files, err := e.Generate(ctx, t, build)
	if err != nil {
		return err
	}
	pods, err := e.selectPods(t, podNames, oneOff)
	if err != nil {
		return err
	}
	for _, pod := range pods {
		if err := e.compose(ctx, files[pod.Name], args...); err != nil {
			return err
		}
	}
	return nil
}

// Run starts one service of one pod in the foreground and removes its
// container on exit. With an empty service the pod must have exactly one.
func (e *Engine) Run(ctx context.Context, t project.Target, podName, service string, args ...string) error {
	files, err := e.Generate(ctx, t, false)
	if err != nil {
		return err
	}
	pod, err := e.Project.Pod(podName)
	if err != nil {
		return err
	}
	if !pod.EnabledIn(t) {
		return fmt.Errorf("%w: %s in %s", ErrPodDisabled, podName, t)
	}
	if service == "" {
		names := pod.ServiceNames()
		if len(names) != 1 {
			return fmt.Errorf("%w: %s has %s", ErrAmbiguousService,
				podName, strings.Join(names, ", "))
		}
		service = names[0]
	} else if _, err := pod.Service(service); err != nil {
		return err
	}
	runArgs := append([]string{"run", "--rm", service}, args...)
	return e.compose(ctx, files[pod.Name], runArgs...)
}

// Logs prints logs for the selected services, walking every serving pod that
// hosts one of them. With no services named, every pod's full log is printed.
func (e *Engine) Logs(ctx context.Context, t project.Target, services []string) error {
	files, err := e.Generate(ctx, t, false)
	if err != nil {
		return err
	}
	if err := e.checkServices(t, services); err != nil {
		return err
	}
	for _, pod := range e.Project.ServingPods(t) {
		podServices := intersect(services, pod.ServiceNames())
		if len(services) > 0 && len(podServices) == 0 {
			continue
		}
		logArgs := append([]string{"logs"}, podServices...)
		if err := e.compose(ctx, files[pod.Name], logArgs...); err != nil {
			return err
		}
	}
	return nil
}

// checkServices rejects service names that no serving pod defines.
func (e *Engine) checkServices(t project.Target, services []string) error {
	if len(services) == 0 {
		return nil
	}
	known := map[string]bool{}
	for _, pod := range e.Project.ServingPods(t) {
		for _, name := range pod.ServiceNames() {
			known[name] = true
		}
	}
	for _, name := range services {
		if !known[name] {
			return fmt.Errorf("%w: %s", project.ErrUnknownService, name)
		}
	}
	return nil
}

func intersect(requested, available []string) []string {
	if len(requested) == 0 {
		return nil
	}
	set := map[string]bool{}
	for _, name := range requested {
		set[name] = true
	}
	var out []string
	for _, name := range available {
		if set[name] {
			out = append(out, name)
		}
	}
	return out
}
