//go:build linux

package evaluator

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// statTimes prefers the birth time; filesystems without it fall back to the
// inode change time.
func statTimes(path string, info fs.FileInfo) fileTimes {
	var stx unix.Statx_t
	mask := unix.STATX_BTIME | unix.STATX_ATIME | unix.STATX_CTIME
	if err := unix.Statx(unix.AT_FDCWD, path, 0, mask, &stx); err != nil {
		return fileTimes{created: info.ModTime(), accessed: info.ModTime()}
	}

	t := fileTimes{
		created:  statxTime(stx.Ctime),
		accessed: statxTime(stx.Atime),
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		t.created = statxTime(stx.Btime)
	}
	return t
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
