//go:build darwin

package evaluator

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

func statTimes(path string, info fs.FileInfo) fileTimes {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileTimes{created: info.ModTime(), accessed: info.ModTime()}
	}
	return fileTimes{
		created:  time.Unix(st.Btim.Unix()),
		accessed: time.Unix(st.Atim.Unix()),
	}
}
