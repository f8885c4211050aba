// Package plugin implements the config transform pipeline. Synthesis runs a
// merged pod config through a fixed, ordered chain of plugins; each plugin
// rewrites one aspect of the config in place. Every plugin is idempotent, so
// running the pipeline twice over the same input yields the same output.
//
// Plugins that bake in facts about the local machine - checkout paths, the
// engine gateway IP, absolute host paths - run only for the Output operation.
// Export output must remain portable.
package plugin

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/faradayio/cage-sub000/internal/core/compose"
	"github.com/faradayio/cage-sub000/internal/core/secret"
	"github.com/faradayio/cage-sub000/internal/core/source"
)

// =============================================================================
// Operation
// =============================================================================

// Operation tells plugins what the synthesized config is for.
type Operation int

const (
	// Output generates configs for local use under .cage/.
	Output Operation = iota
	// Export generates a portable tree for use without cage.
	Export
)

func (o Operation) String() string {
	switch o {
	case Output:
		return "output"
	case Export:
		return "export"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// =============================================================================
// Context
// =============================================================================

// Context carries everything plugins need beyond the config itself. One
// context is built per pod synthesis; the registry inside it is owned by the
// calling goroutine for the duration of the run.
type Context struct {
	Project string
	Target  string
	PodName string

	// PodDir is the directory holding the pod file. Relative host paths
	// anchor here.
	PodDir  string
	HomeDir string

	Registry *source.Registry
	Secrets  *secret.Store

	// Tokens maps service names to the environment variable that should
	// receive a generated stable token.
	Tokens map[string]string

	Paths source.Paths

	// Build marks commands whose purpose includes building images; the
	// remove-build plugin stands down for them.
	Build bool

	// GatewayIP resolves the container engine's bridge gateway address.
	// Nil when no engine is reachable.
	GatewayIP func() (string, error)

	// SourceAvailable reports whether a source's checkout exists on disk.
	// Nil trusts the mounted flag alone.
	SourceAvailable func(*source.Source) bool

	GOOS   string
	Logger *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Context) goos() string {
	if c.GOOS != "" {
		return c.GOOS
	}
	return runtime.GOOS
}

func (c *Context) available(src *source.Source) bool {
	if c.SourceAvailable == nil {
		return true
	}
	return c.SourceAvailable(src)
}

// useLocal reports whether pods should consume the source's local checkout.
func (c *Context) useLocal(src *source.Source) bool {
	return src.Mounted && c.available(src)
}

// =============================================================================
// Pipeline
// =============================================================================

// Plugin rewrites one aspect of a config in place.
type Plugin interface {
	Name() string
	Transform(op Operation, ctx *Context, cfg *compose.Config) error
}

// Error reports which plugin failed on which file.
type Error struct {
	Plugin string
	File   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("plugin %s failed on %s: %v", e.Plugin, e.File, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Pipeline is the ordered plugin chain. The order is fixed: identity labels
// first, then environment injection, then source rewriting, then the
// path and host fixups, and build stripping last.
type Pipeline struct {
	plugins []Plugin
}

// NewPipeline returns the standard chain.
func NewPipeline() *Pipeline {
	return &Pipeline{
		plugins: []Plugin{
			labelsPlugin{},
			secretsPlugin{},
			tokensPlugin{},
			sourcesPlugin{},
			reposPlugin{},
			absPathPlugin{},
			hostDNSPlugin{},
			removeBuildPlugin{},
		},
	}
}

// Names lists the chain in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.plugins))
	for _, plug := range p.plugins {
		names = append(names, plug.Name())
	}
	return names
}

// Transform runs the full chain over a config in place. The first failing
// plugin aborts the run.
func (p *Pipeline) Transform(op Operation, ctx *Context, cfg *compose.Config) error {
	for _, plug := range p.plugins {
		if err := plug.Transform(op, ctx, cfg); err != nil {
			return &Error{Plugin: plug.Name(), File: cfg.Name, Err: err}
		}
		ctx.logger().Debug("plugin applied",
			"plugin", plug.Name(),
			"pod", ctx.PodName,
			"operation", op.String())
	}
	return nil
}
