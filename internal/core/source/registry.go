package source

import (
	"fmt"
	"path/filepath"
	"sort"
)

// =============================================================================
// Source and Repo
// =============================================================================

// Paths anchors source checkouts on disk.
type Paths struct {
	// PodsDir anchors relative local lib directories, the same way relative
	// build contexts in pod files do.
	PodsDir string
	// SourceRoot is the directory holding git checkouts, one per alias.
	SourceRoot string
}

// Source is one tracked origin: a git repository or a local directory. The
// mounted flag records whether pods should use the local checkout instead of
// the origin; it persists across runs.
type Source struct {
	Alias   string
	Origin  Origin
	Mounted bool
	LibKeys []string
}

// IsGit reports whether the source clones from git.
func (s *Source) IsGit() bool {
	return s.Origin.IsGit()
}

// LocalPath is where the source lives on disk: the alias directory under the
// source root for git origins, the named directory for local origins.
func (s *Source) LocalPath(paths Paths) string {
	if s.IsGit() {
		return filepath.Join(paths.SourceRoot, s.Alias)
	}
	if filepath.IsAbs(s.Origin.Dir) {
		return filepath.Clean(s.Origin.Dir)
	}
	return filepath.Join(paths.PodsDir, s.Origin.Dir)
}

// Repo is a single git build-context reference as written in a pod file. The
// subdirectory stays on the reference so that several services can point into
// different corners of one shared checkout.
type Repo struct {
	Source *Source
	Subdir string
}

// ContextFor returns the local build context the reference rewrites to once
// its source is mounted.
func (r Repo) ContextFor(paths Paths) string {
	dir := r.Source.LocalPath(paths)
	if r.Subdir == "" {
		return dir
	}
	return filepath.Join(dir, r.Subdir)
}

// =============================================================================
// Registry
// =============================================================================

// Registry holds every tracked source for a project, indexed by alias, by
// origin identity and by lib key. A single goroutine owns the registry for
// the duration of a run; it is handed through the pipeline by reference.
type Registry struct {
	byAlias  map[string]*Source
	byKey    map[string]*Source
	byLibKey map[string]*Source
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byAlias:  map[string]*Source{},
		byKey:    map[string]*Source{},
		byLibKey: map[string]*Source{},
	}
}

// AddLib registers a lib entry from sources.yml. The context must name a
// repository root; entries pointing inside a repository are rejected. Two
// keys naming the same origin share one source.
func (r *Registry) AddLib(key, context string) (*Source, error) {
	origin := ParseOrigin(context)
	if origin.Subdir != "" {
		return nil, &LibSubdirError{Key: key, Context: context}
	}
	src, err := r.ensure(origin)
	if err != nil {
		return nil, err
	}
	if _, ok := r.byLibKey[key]; !ok {
		r.byLibKey[key] = src
		src.LibKeys = append(src.LibKeys, key)
		sort.Strings(src.LibKeys)
	}
	return src, nil
}

// AddRepo registers a git build context discovered in a pod file. References
// into the same repository and branch share one source; the subdirectory is
// stripped before deduplication and kept on the returned Repo.
func (r *Registry) AddRepo(context string) (Repo, error) {
	origin := ParseOrigin(context)
	if !origin.IsGit() {
		return Repo{}, fmt.Errorf("%w: %s", ErrNotGit, context)
	}
	src, err := r.ensure(origin)
	if err != nil {
		return Repo{}, err
	}
	return Repo{Source: src, Subdir: origin.Subdir}, nil
}

func (r *Registry) ensure(origin Origin) (*Source, error) {
	stripped := origin.WithoutSubdir()
	if src, ok := r.byKey[stripped.Key()]; ok {
		return src, nil
	}

	alias := stripped.Alias()
	if existing, ok := r.byAlias[alias]; ok {
		return nil, &AliasCollisionError{
			Alias:  alias,
			First:  existing.Origin.Raw,
			Second: origin.Raw,
		}
	}

	src := &Source{Alias: alias, Origin: stripped}
	r.byAlias[alias] = src
	r.byKey[stripped.Key()] = src
	return src, nil
}

// =============================================================================
// Lookups
// =============================================================================

// ByAlias returns the source with the given alias.
func (r *Registry) ByAlias(alias string) (*Source, error) {
	src, ok := r.byAlias[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, alias)
	}
	return src, nil
}

// ByOrigin looks up the source owning a raw context string, ignoring any
// subdirectory suffix.
func (r *Registry) ByOrigin(context string) (*Source, bool) {
	src, ok := r.byKey[ParseOrigin(context).WithoutSubdir().Key()]
	return src, ok
}

// ByLibKey returns the source a lib key points at.
func (r *Registry) ByLibKey(key string) (*Source, bool) {
	src, ok := r.byLibKey[key]
	return src, ok
}

// Sources returns all tracked sources sorted by alias.
func (r *Registry) Sources() []*Source {
	out := make([]*Source, 0, len(r.byAlias))
	for _, src := range r.byAlias {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}

// =============================================================================
// Mount State
// =============================================================================

// SetMounted flips the mounted flag for an alias.
func (r *Registry) SetMounted(alias string, mounted bool) error {
	src, err := r.ByAlias(alias)
	if err != nil {
		return err
	}
	src.Mounted = mounted
	return nil
}

// ApplyMountState restores persisted flags. Aliases that no longer exist are
// ignored; the file may be stale after a pod or lib was removed.
func (r *Registry) ApplyMountState(state map[string]bool) {
	for alias, mounted := range state {
		if src, ok := r.byAlias[alias]; ok {
			src.Mounted = mounted
		}
	}
}

// MountState snapshots every alias's mounted flag for persistence.
func (r *Registry) MountState() map[string]bool {
	out := make(map[string]bool, len(r.byAlias))
	for alias, src := range r.byAlias {
		out[alias] = src.Mounted
	}
	return out
}
