//go:build linux

package capability

import "golang.org/x/sys/unix"

// PlatformFlush prefers fdatasync over fsync on Linux: there is no
// "flush kernel buffers and the device's own cache" primitive equivalent to
// Darwin's F_FULLFSYNC, so the next-best option (data-sync) is used, per
// spec §4.2 step 3's preference order.
type PlatformFlush struct{}

func (PlatformFlush) Flush(fd uintptr) error {
	if err := unix.Fdatasync(int(fd)); err != nil {
		return unix.Fsync(int(fd))
	}
	return nil
}
