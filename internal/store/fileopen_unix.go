//go:build !windows

package store

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/contactbook/internal/errors"
)

// openFileNoFollow opens a file for writing with O_NOFOLLOW so the final path
// component cannot be a symlink. O_CLOEXEC prevents FD leaks across exec.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("cannot write to symlink")
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// openFileNoFollowRead opens a file for reading with O_NOFOLLOW.
func openFileNoFollowRead(path string) (*os.File, error) {
	fd, err := syscall.Open(path, syscall.O_RDONLY|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, 0)
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("cannot read from symlink")
		}
		if stderrors.Is(err, syscall.ENOENT) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}
