//go:build darwin

package capability

import "golang.org/x/sys/unix"

// PlatformCacheBypass sets F_NOCACHE once at engine entry, the Darwin
// equivalent of O_DIRECT, per spec §4.2 step 3.
type PlatformCacheBypass struct{}

func (PlatformCacheBypass) Enable(fd uintptr) error {
	_, err := unix.FcntlInt(fd, unix.F_NOCACHE, 1)
	return err
}
