//go:build unix

package stream

import (
	"os"
	"syscall"
)

// pollable returns f reopened in non-blocking mode, or f itself when the
// descriptor cannot be switched. os.NewFile registers non-blocking
// descriptors with the runtime poller, which is what makes
// SetReadDeadline work on them.
func pollable(f *os.File) *os.File {
	fd := int(f.Fd())
	if err := syscall.SetNonblock(fd, true); err != nil {
		return f
	}
	return os.NewFile(uintptr(fd), f.Name())
}
