//go:build darwin

package capability

import "golang.org/x/sys/unix"

// PlatformFlush prefers F_FULLFSYNC, which flushes kernel buffers and
// instructs the device to flush its own cache; if the underlying
// filesystem does not support it, fall back to a plain fsync, mirroring
// flush() in original_source/src/sunlink.c.
type PlatformFlush struct{}

func (PlatformFlush) Flush(fd uintptr) error {
	if _, err := unix.FcntlInt(fd, unix.F_FULLFSYNC, 0); err != nil {
		return unix.Fsync(int(fd))
	}
	return nil
}
