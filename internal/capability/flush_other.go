//go:build !linux && !darwin

package capability

import "golang.org/x/sys/unix"

// PlatformFlush falls back to a plain fsync on platforms without a
// dedicated data-sync or full-device-sync primitive wired up yet.
type PlatformFlush struct{}

func (PlatformFlush) Flush(fd uintptr) error {
	return unix.Fsync(int(fd))
}
