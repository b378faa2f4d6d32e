//go:build !windows

package tagstore

import "os"

// createLink creates alias_path as a symbolic link pointing at src_path.
func createLink(srcPath, linkPath string) error {
	return os.Symlink(srcPath, linkPath)
}

// removeLink removes a link entry (symlink).
func removeLink(linkPath string) error {
	return os.Remove(linkPath)
}
