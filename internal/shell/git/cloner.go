// Package git materializes remote sources on the local disk.
//
// It is part of the Imperative Shell: the pure source registry decides where
// a source lives and whether it tracks a git repository, and this package
// performs the actual network and filesystem work of getting it there.
package git

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/faradayio/cage-sub000/internal/core/source"
)

// Cloner clones git-tracked sources into the source tree. The zero value is
// ready to use.
type Cloner struct {
	// Logger receives progress events. Defaults to slog.Default.
	Logger *slog.Logger

	// Progress, when set, receives the transfer sideband of long clones.
	Progress io.Writer
}

func (c *Cloner) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Clone fetches src into its local path under paths.SourceRoot. Sources that
// are already cloned are left untouched, so Clone is safe to call repeatedly.
func (c *Cloner) Clone(ctx context.Context, src *source.Source, paths source.Paths) error {
	if !src.IsGit() {
		return fmt.Errorf("%w: source %s has no repository to clone", source.ErrNotGit, src.Alias)
	}

	dest := src.LocalPath(paths)
	if c.Cloned(dest) {
		c.logger().Debug("source already cloned", "alias", src.Alias, "dir", dest)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &CloneError{Origin: src.Origin.URL, Dest: dest, Err: err}
	}

	opts := &gogit.CloneOptions{
		URL:      src.Origin.URL,
		Progress: c.Progress,
	}
	if branch := src.Origin.Branch; branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	c.logger().Info("cloning source", "alias", src.Alias, "url", src.Origin.URL, "dir", dest)
	if _, err := gogit.PlainCloneContext(ctx, dest, false, opts); err != nil {
		return &CloneError{Origin: src.Origin.URL, Dest: dest, Err: err}
	}
	return nil
}

// Cloned reports whether dir already holds a git work tree.
func (c *Cloner) Cloned(dir string) bool {
	_, err := gogit.PlainOpen(dir)
	return err == nil
}
