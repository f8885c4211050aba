package engine

import "context"

// =============================================================================
// Source Management
// =============================================================================

// SourceStatus is one row of cage source ls.
type SourceStatus struct {
	Alias     string
	Origin    string
	Mounted   bool
	Available bool
}

// Sources lists every tracked source with its mount flag and whether its
// files are present on disk, sorted by alias.
func (e *Engine) Sources() []SourceStatus {
	var out []SourceStatus
	for _, src := range e.Registry.Sources() {
		out = append(out, SourceStatus{
			Alias:     src.Alias,
			Origin:    src.Origin.Raw,
			Mounted:   src.Mounted,
			Available: e.sourceAvailable(src),
		})
	}
	return out
}

// CloneSource fetches a git source into the source tree and marks it
// mounted, so pods pick up the local copy on the next generation. A failed
// clone leaves the flag untouched.
func (e *Engine) CloneSource(ctx context.Context, alias string) error {
	src, err := e.Registry.ByAlias(alias)
	if err != nil {
		return err
	}
	if err := e.cloner.Clone(ctx, src, e.paths()); err != nil {
		return err
	}
	if err := e.Registry.SetMounted(alias, true); err != nil {
		return err
	}
	return e.store.SaveMountState(e.Registry)
}

// MountSource makes pods use the local copy of a source, cloning it first
// when it is a git source with no checkout yet. The flag persists across
// runs; a failed clone leaves it untouched.
func (e *Engine) MountSource(ctx context.Context, alias string) error {
	src, err := e.Registry.ByAlias(alias)
	if err != nil {
		return err
	}
	if src.IsGit() && !e.sourceAvailable(src) {
		if err := e.cloner.Clone(ctx, src, e.paths()); err != nil {
			return err
		}
	}
	if err := e.Registry.SetMounted(alias, true); err != nil {
		return err
	}
	return e.store.SaveMountState(e.Registry)
}

// UnmountSource sends pods back to the source's origin.
func (e *Engine) UnmountSource(alias string) error {
	if err := e.Registry.SetMounted(alias, false); err != nil {
		return err
	}
	return e.store.SaveMountState(e.Registry)
}
