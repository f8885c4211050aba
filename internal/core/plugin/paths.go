package plugin

import (
	"path/filepath"
	"strings"

	"github.com/faradayio/cage-sub000/internal/core/compose"
	"github.com/faradayio/cage-sub000/internal/core/source"
)

// absPathPlugin rewrites relative host paths to absolute ones. Generated
// configs live under .cage/, not next to the pod files that reference
// ./log or ./data, so relative paths would resolve against the wrong
// directory once docker-compose reads the output. Volume host paths and
// env_file entries anchor at the pod directory; ~ anchors at the user's
// home. Output operation only - exported trees keep their relative layout.
type absPathPlugin struct{}

func (absPathPlugin) Name() string { return "abs-path" }

func (absPathPlugin) Transform(op Operation, ctx *Context, cfg *compose.Config) error {
	if op != Output {
		return nil
	}
	for _, name := range cfg.ServiceNames() {
		svc := cfg.Services[name]
		for i, vol := range svc.Volumes {
			host, rest, ok := strings.Cut(vol, ":")
			if !ok {
				// Anonymous volume, no host part.
				continue
			}
			if anchored := anchorHostPath(host, ctx.PodDir, ctx.HomeDir); anchored != host {
				svc.Volumes[i] = anchored + ":" + rest
			}
		}
		for i, envFile := range svc.EnvFiles {
			svc.EnvFiles[i] = anchorFilePath(envFile, ctx.PodDir, ctx.HomeDir)
		}
		if svc.Build != nil && svc.Build.Context != "" {
			svc.Build.Context = anchorBuildContext(svc.Build.Context, ctx.PodDir, ctx.HomeDir)
		}
	}
	return nil
}

// anchorBuildContext absolutizes a local build context directory. Git URLs
// and remote tarball contexts are handed to the engine as written; mounted
// git contexts were already rewritten to clone paths by the sources and
// repos plugins, which run earlier.
func anchorBuildContext(p, podDir, homeDir string) string {
	if source.ParseOrigin(p).IsGit() || strings.Contains(p, "://") {
		return p
	}
	return anchorFilePath(p, podDir, homeDir)
}

// anchorHostPath absolutizes an explicitly relative host path. Named volumes
// and paths that are already absolute pass through unchanged.
func anchorHostPath(p, podDir, homeDir string) string {
	switch {
	case p == "~" || strings.HasPrefix(p, "~/"):
		return filepath.Join(homeDir, strings.TrimPrefix(strings.TrimPrefix(p, "~"), "/"))
	case strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../"):
		return filepath.Join(podDir, p)
	default:
		return p
	}
}

// anchorFilePath absolutizes an env_file entry. Unlike volume sources these
// are always file paths, so bare names like common.env anchor too.
func anchorFilePath(p, podDir, homeDir string) string {
	switch {
	case filepath.IsAbs(p):
		return p
	case p == "~" || strings.HasPrefix(p, "~/"):
		return filepath.Join(homeDir, strings.TrimPrefix(strings.TrimPrefix(p, "~"), "/"))
	default:
		return filepath.Join(podDir, p)
	}
}
