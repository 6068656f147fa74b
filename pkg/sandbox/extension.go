package sandbox

import (
	"path/filepath"
	"strings"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
)

// ExtensionPolicy allow-lists file suffixes for content operations
// (read, write, append). Directory operations never consult it.
type ExtensionPolicy struct {
	policy *config.Policy
}

func NewExtensionPolicy(p *config.Policy) *ExtensionPolicy {
	return &ExtensionPolicy{policy: p}
}

// Extension returns the lowercase suffix of the file name, or "" if none.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(filepath.Base(path)))
}

// Check returns an UnsupportedType failure when the suffix is not allowed.
func (e *ExtensionPolicy) Check(path string) error {
	ext := Extension(path)
	if !e.policy.ExtensionAllowed(ext) {
		shown := ext
		if shown == "" {
			shown = "(none)"
		}
		return failure.New(failure.UnsupportedType, "file type not allowed: %s", shown)
	}
	return nil
}
