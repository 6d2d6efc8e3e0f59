//go:build linux

package capability

import (
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// Linux block-device ioctl request codes. These are stable kernel ABI
// (include/uapi/linux/fs.h), not exposed as named constants by
// golang.org/x/sys/unix for every architecture, so they are hardcoded here
// the way countless small Linux utilities do.
const (
	blkSSZGet    = 0x1268     // BLKSSZGET: int, logical sector size
	blkGetSize   = 0x1260     // BLKGETSIZE: unsigned long, size in 512-byte sectors
	blkGetSize64 = 0x80081272 // BLKGETSIZE64: uint64, size in bytes
)

// PlatformGeometry probes block-device geometry via BLKSSZGET, BLKGETSIZE
// and BLKGETSIZE64, cross-checking sector_size*blocks against the 64-bit
// byte count the way sunlink_impl() does on Linux (spec invariant 7).
type PlatformGeometry struct{}

func (PlatformGeometry) Probe(fd uintptr) (sectorSize int, blockCount uint32, byteCount uint64, err error) {
	sectorSize, err = unix.IoctlGetInt(int(fd), blkSSZGet)
	if err != nil {
		return 0, 0, 0, xerrors.Errorf("BLKSSZGET: %w", err)
	}

	var blocks uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, blkGetSize, uintptr(unsafe.Pointer(&blocks))); errno != 0 {
		return 0, 0, 0, xerrors.Errorf("BLKGETSIZE: %w", errno)
	}
	blockCount = uint32(blocks)

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, blkGetSize64, uintptr(unsafe.Pointer(&byteCount))); errno != 0 {
		return 0, 0, 0, xerrors.Errorf("BLKGETSIZE64: %w", errno)
	}

	return sectorSize, blockCount, byteCount, nil
}
