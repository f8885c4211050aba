package store

import (
	"path/filepath"

	"github.com/faradayio/cage-sub000/internal/core/source"
)

// Layout fixes where a project keeps its files on disk. All paths are
// absolute once DefaultLayout has run; callers may override individual
// directories before handing the layout to a Store.
type Layout struct {
	// Root is the project directory.
	Root string
	// Pods holds the base pod files, one <pod>.yml each.
	Pods string
	// Targets holds one subdirectory per target with override files.
	Targets string
	// Config holds sources.yml and secrets.yml.
	Config string
	// Source holds git checkouts, one directory per source alias.
	Source string
	// Output holds generated configs and the persisted mount flags.
	Output string
}

// DefaultLayout returns the standard layout under root: pods/ with its
// targets/ subtree, config/, src/ checkouts and .cage/ output.
func DefaultLayout(root string) Layout {
	return Layout{
		Root:    root,
		Pods:    filepath.Join(root, "pods"),
		Targets: filepath.Join(root, "pods", "targets"),
		Config:  filepath.Join(root, "config"),
		Source:  filepath.Join(root, "src"),
		Output:  filepath.Join(root, ".cage"),
	}
}

// SourcePaths adapts the layout for the source registry.
func (l Layout) SourcePaths() source.Paths {
	return source.Paths{PodsDir: l.Pods, SourceRoot: l.Source}
}

// PodFile returns the base file path for a pod.
func (l Layout) PodFile(pod string) string {
	return filepath.Join(l.Pods, pod+".yml")
}

// OverrideFile returns the override file path for a pod in a target.
func (l Layout) OverrideFile(target, pod string) string {
	return filepath.Join(l.Targets, target, pod+".yml")
}

// OutputFile returns where the synthesized config for a pod in a target is
// written.
func (l Layout) OutputFile(target, pod string) string {
	return filepath.Join(l.Output, target, pod+".yml")
}

// SourcesFile returns the lib declarations file path.
func (l Layout) SourcesFile() string {
	return filepath.Join(l.Config, "sources.yml")
}

// SecretsFile returns the secrets file path.
func (l Layout) SecretsFile() string {
	return filepath.Join(l.Config, "secrets.yml")
}

// MountStateFile returns where mount flags persist between runs.
func (l Layout) MountStateFile() string {
	return filepath.Join(l.Output, "mounted.yml")
}
