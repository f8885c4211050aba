// Package store reads and writes a cage project's on-disk layout.
//
// It is the filesystem half of the Imperative Shell: pod files, target
// overrides, sources.yml, secrets.yml and the persisted mount flags all pass
// through here, feeding the pure models in internal/core. Nothing in here
// interprets a config beyond parsing it.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/faradayio/cage-sub000/internal/core/compose"
	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/core/secret"
	"github.com/faradayio/cage-sub000/internal/core/source"
)

// Store loads and persists project files under a fixed layout.
type Store struct {
	Layout Layout

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// New returns a store rooted at the given layout.
func New(layout Layout) *Store {
	return &Store{Layout: layout}
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// =============================================================================
// Project Loading
// =============================================================================

// LoadProject discovers the project's pods and targets on disk. Every *.yml
// file under pods/ is a pod; every directory under pods/targets/ is a target.
// The default target always exists, with or without an override directory.
func (s *Store) LoadProject(name, defaultTarget string) (*project.Project, error) {
	entries, err := os.ReadDir(s.Layout.Pods)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no pods directory at %s", ErrNotProject, s.Layout.Pods)
		}
		return nil, err
	}

	var pods []*project.Pod
	byName := map[string]*project.Pod{}
	for _, entry := range entries {
		if entry.IsDir() || !isPodFile(entry.Name()) {
			continue
		}
		rel := filepath.Join("pods", entry.Name())
		data, err := os.ReadFile(filepath.Join(s.Layout.Pods, entry.Name()))
		if err != nil {
			return nil, err
		}
		cfg, err := compose.Parse(rel, data)
		if err != nil {
			return nil, err
		}
		pod := &project.Pod{
			Name:      strings.TrimSuffix(entry.Name(), ".yml"),
			File:      rel,
			Config:    cfg,
			Overrides: map[project.Target]*compose.Config{},
		}
		pods = append(pods, pod)
		byName[pod.Name] = pod
	}

	seen := map[string]bool{defaultTarget: true}
	targetDirs, err := os.ReadDir(s.Layout.Targets)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, dir := range targetDirs {
		if !dir.IsDir() {
			continue
		}
		seen[dir.Name()] = true
		if err := s.loadOverrides(dir.Name(), byName); err != nil {
			return nil, err
		}
	}

	targets := make([]project.Target, 0, len(seen))
	for tname := range seen {
		targets = append(targets, project.NewTarget(tname))
	}

	proj := project.New(name, s.Layout.Root, targets, pods)
	s.logger().Debug("loaded project",
		"name", name, "pods", len(proj.Pods), "targets", len(proj.Targets))
	return proj, nil
}

// loadOverrides attaches every override file in one target directory to its
// pod. An override without a base pod file is a config error, not something
// to skip silently.
func (s *Store) loadOverrides(target string, byName map[string]*project.Pod) error {
	dir := filepath.Join(s.Layout.Targets, target)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isPodFile(entry.Name()) {
			continue
		}
		rel := filepath.Join("pods", "targets", target, entry.Name())
		pod, ok := byName[strings.TrimSuffix(entry.Name(), ".yml")]
		if !ok {
			return fmt.Errorf("%w: override %s has no base pod file", project.ErrUnknownPod, rel)
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		cfg, err := compose.Parse(rel, data)
		if err != nil {
			return err
		}
		pod.Overrides[project.NewTarget(target)] = cfg
	}
	return nil
}

func isPodFile(name string) bool {
	return strings.HasSuffix(name, ".yml") && !strings.HasPrefix(name, ".")
}

// =============================================================================
// Registry Loading
// =============================================================================

// LoadRegistry builds the source registry for a loaded project: lib entries
// from sources.yml, git build contexts from every pod file and override, and
// the persisted mount flags on top. Pods and services are walked in sorted
// order so alias collisions surface deterministically.
func (s *Store) LoadRegistry(proj *project.Project) (*source.Registry, error) {
	reg := source.NewRegistry()

	data, err := os.ReadFile(s.Layout.SourcesFile())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// sources.yml is optional
	case err != nil:
		return nil, err
	default:
		libs, err := source.ParseLibs(filepath.Join("config", "sources.yml"), data)
		if err != nil {
			return nil, err
		}
		for _, lib := range libs {
			if _, err := reg.AddLib(lib.Key, lib.Context); err != nil {
				return nil, err
			}
		}
	}

	for _, pod := range proj.Pods {
		if err := addRepos(reg, pod.Config); err != nil {
			return nil, err
		}
		for _, target := range proj.Targets {
			if override, ok := pod.Overrides[target]; ok {
				if err := addRepos(reg, override); err != nil {
					return nil, err
				}
			}
		}
	}

	state, err := s.loadMountState()
	if err != nil {
		return nil, err
	}
	reg.ApplyMountState(state)
	return reg, nil
}

func addRepos(reg *source.Registry, cfg *compose.Config) error {
	for _, name := range cfg.ServiceNames() {
		svc := cfg.Services[name]
		if svc.Build == nil || !source.ParseOrigin(svc.Build.Context).IsGit() {
			continue
		}
		if _, err := reg.AddRepo(svc.Build.Context); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadMountState() (map[string]bool, error) {
	data, err := os.ReadFile(s.Layout.MountStateFile())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state map[string]bool
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, &compose.ParseError{File: s.Layout.MountStateFile(), Err: err}
	}
	return state, nil
}

// SaveMountState persists every alias's mounted flag. The file is rewritten
// whole; yaml.v3 sorts map keys, so the output is stable.
func (s *Store) SaveMountState(reg *source.Registry) error {
	data, err := yaml.Marshal(reg.MountState())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Layout.Output, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.Layout.MountStateFile(), data, 0o644)
}

// =============================================================================
// Secrets
// =============================================================================

// LoadSecrets reads the layered secret store. A missing file means no
// secrets, not an error.
func (s *Store) LoadSecrets() (*secret.Store, error) {
	data, err := os.ReadFile(s.Layout.SecretsFile())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return secret.Parse(filepath.Join("config", "secrets.yml"), data)
}

// =============================================================================
// Generated Output
// =============================================================================

// WriteSynthesized writes one generated pod config under dir, creating the
// target subdirectory as needed. Export uses this with a caller-chosen dir;
// regular output goes through WriteOutput.
func (s *Store) WriteSynthesized(dir, target, pod string, data []byte) (string, error) {
	path := filepath.Join(dir, target, pod+".yml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteOutput writes one generated pod config into the project's output tree.
func (s *Store) WriteOutput(target, pod string, data []byte) (string, error) {
	return s.WriteSynthesized(s.Layout.Output, target, pod, data)
}
