package sandbox

import (
	"errors"
	"io/fs"
	"os"

	"github.com/computerscienceiscool/llm-fsgate/pkg/config"
	"github.com/computerscienceiscool/llm-fsgate/pkg/failure"
)

// SizeGuard bounds file sizes before any content moves.
type SizeGuard struct {
	policy *config.Policy
}

func NewSizeGuard(p *config.Policy) *SizeGuard {
	return &SizeGuard{policy: p}
}

// CheckRead stats path and rejects it if it is not a regular file or its
// on-disk size exceeds the limit, before anything is loaded into memory.
func (s *SizeGuard) CheckRead(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure.New(failure.NotFound, "file does not exist: %s", path)
		}
		return nil, failure.Wrap(failure.IOFailure, err, "cannot stat %s", path)
	}
	if !info.Mode().IsRegular() {
		return nil, failure.New(failure.IOFailure, "path is not a file: %s", path)
	}
	if info.Size() > s.policy.MaxFileSize() {
		return nil, failure.New(failure.TooLarge, "file too large (%d bytes, max %d): %s",
			info.Size(), s.policy.MaxFileSize(), path)
	}
	return info, nil
}

// CheckWrite rejects a write that would leave the file above the limit.
// Overwrites pass existing=0; appends pass the current size.
func (s *SizeGuard) CheckWrite(existing, added int64) error {
	limit := s.policy.MaxFileSize()
	if added > limit {
		return failure.New(failure.TooLarge, "content too large (%d bytes, max %d)", added, limit)
	}
	if existing+added > limit {
		return failure.New(failure.TooLarge, "file would exceed size limit (%d + %d bytes, max %d)",
			existing, added, limit)
	}
	return nil
}
