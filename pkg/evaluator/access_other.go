//go:build !unix

package evaluator

import "io/fs"

func accessFlags(_ string, info fs.FileInfo) permissions {
	mode := info.Mode().Perm()
	return permissions{
		read:  mode&0o444 != 0,
		write: mode&0o222 != 0,
		exec:  mode&0o111 != 0,
	}
}
