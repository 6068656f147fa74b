package sandbox

import (
	"path/filepath"
	"strings"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
	"github.com/mitchellh/go-homedir"
)

// PathRequest is one caller-supplied path and the guard's verdict on it.
type PathRequest struct {
	Raw      string
	Resolved string
	Valid    bool
	Reason   string
}

// PathGuard turns caller paths into absolute paths.
//
// Security notes: the only traversal defense is rejecting a literal ".."
// segment. Symlinks are not resolved and the resolved path is not confined
// to the base directory, so this is a best-effort check and not a sandbox
// boundary. The guard never touches the filesystem.
type PathGuard struct {
	base string
}

// NewPathGuard anchors relative paths at base, which must be absolute.
func NewPathGuard(base string) *PathGuard {
	return &PathGuard{base: filepath.Clean(base)}
}

// Base returns the directory relative paths resolve against.
func (g *PathGuard) Base() string {
	return g.base
}

// Inspect evaluates raw without failing.
func (g *PathGuard) Inspect(raw string) PathRequest {
	req := PathRequest{Raw: raw}

	if strings.TrimSpace(raw) == "" {
		req.Reason = "path is empty"
		return req
	}
	if len(raw) > config.MaxPathLength {
		req.Reason = "path is too long"
		return req
	}

	expanded, err := homedir.Expand(raw)
	if err != nil {
		req.Reason = "cannot expand home directory: " + err.Error()
		return req
	}

	if hasParentSegment(expanded) {
		req.Reason = "path contains a parent directory segment"
		return req
	}

	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(g.base, expanded)
	}
	req.Resolved = filepath.Clean(expanded)
	req.Valid = true
	return req
}

// Validate returns the absolute form of raw or an UnsafePath failure.
func (g *PathGuard) Validate(raw string) (string, error) {
	req := g.Inspect(raw)
	if !req.Valid {
		return "", failure.New(failure.UnsafePath, "unsafe path %q: %s", raw, req.Reason)
	}
	return req.Resolved, nil
}

// hasParentSegment splits on both separators so "a\..\b" is caught on every
// platform.
func hasParentSegment(p string) bool {
	segments := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, s := range segments {
		if s == ".." {
			return true
		}
	}
	return false
}
