//go:build linux

package router

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// renameNoReplace moves src to dst and fails with an fs.ErrExist-compatible
// error when dst already exists.
func renameNoReplace(src, dst string) error {
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EINVAL) {
		// Filesystem without RENAME_NOREPLACE support.
		return checkedRename(src, dst)
	}
	return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
}
