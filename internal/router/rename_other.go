//go:build !linux

package router

func renameNoReplace(src, dst string) error {
	return checkedRename(src, dst)
}
