// Package source tracks the external code a project depends on: library
// checkouts declared in sources.yml and git repositories referenced by pod
// build contexts. Each distinct origin gets one Source with a stable alias,
// which names its checkout directory under src/.
package source

import (
	"path"
	"path/filepath"
	"strings"
)

// =============================================================================
// Origin
// =============================================================================

// Kind distinguishes git origins from local directories.
type Kind int

const (
	KindLocal Kind = iota
	KindGit
)

// Origin is a parsed source reference. Git origins use docker's build-context
// syntax: URL, then an optional `#branch` fragment, then an optional
// `:subdirectory` inside the fragment. Anything that does not look like a git
// URL is a local directory.
type Origin struct {
	Raw    string
	Kind   Kind
	URL    string
	Dir    string
	Branch string
	Subdir string
}

// ParseOrigin classifies a raw context string and splits out branch and
// subdirectory for git origins.
func ParseOrigin(raw string) Origin {
	base, fragment, _ := strings.Cut(raw, "#")
	base = strings.TrimSuffix(base, "/")
	if !looksLikeGit(base) {
		return Origin{Raw: raw, Kind: KindLocal, Dir: raw}
	}

	branch, subdir, _ := strings.Cut(fragment, ":")
	return Origin{
		Raw:    raw,
		Kind:   KindGit,
		URL:    base,
		Branch: branch,
		Subdir: subdir,
	}
}

func looksLikeGit(s string) bool {
	for _, prefix := range []string{"git://", "git@", "ssh://"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return strings.HasSuffix(s, ".git")
	}
	return false
}

// IsGit reports whether the origin names a git repository.
func (o Origin) IsGit() bool {
	return o.Kind == KindGit
}

// WithoutSubdir strips the subdirectory, yielding the origin that identifies
// the checkout itself. Several references into one repository share a single
// clone; the subdirectory stays on the reference, not on the source.
func (o Origin) WithoutSubdir() Origin {
	if o.Subdir == "" {
		return o
	}
	out := o
	out.Subdir = ""
	out.Raw = o.URL
	if o.Branch != "" {
		out.Raw = o.URL + "#" + o.Branch
	}
	return out
}

// Key is the dedup identity of an origin: the URL plus branch for git, the
// directory as written for local origins. Subdirectories never participate.
func (o Origin) Key() string {
	if o.IsGit() {
		return o.URL + "#" + o.Branch
	}
	return filepath.Clean(o.Dir)
}

// Alias derives the checkout directory name: the last path segment of the
// URL minus any .git suffix, with `_branch` appended when a branch is pinned.
// Characters that cannot appear in a directory name are replaced with `_`.
func (o Origin) Alias() string {
	var segment string
	if o.IsGit() {
		segment = strings.TrimSuffix(lastSegment(o.URL), ".git")
	} else {
		segment = filepath.Base(filepath.Clean(o.Dir))
	}
	alias := sanitize(segment)
	if o.Branch != "" {
		alias += "_" + sanitize(o.Branch)
	}
	return alias
}

func (o Origin) String() string {
	return o.Raw
}

// lastSegment returns the final path component of a git URL, handling both
// URL syntax (host/org/repo.git) and scp syntax (git@host:repo.git).
func lastSegment(url string) string {
	trimmed := strings.TrimSuffix(url, "/")
	seg := path.Base(trimmed)
	if idx := strings.LastIndex(seg, ":"); idx >= 0 {
		seg = seg[idx+1:]
	}
	return seg
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
