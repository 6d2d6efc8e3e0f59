//go:build linux

package capability

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ext2/3/4 share one superblock magic and one generic flags ioctl
// (include/uapi/linux/fs.h); FS_IOC_GETFLAGS/FS_IOC_SETFLAGS work across
// all three, the way EXT2_IOC_GETFLAGS/EXT3_IOC_GETFLAGS are aliased to
// the same values in original_source/src/sunlink.c.
const (
	ext2SuperMagic = 0xEF53

	fsIocGetFlags = 0x80086601
	fsIocSetFlags = 0x40086601

	fsSecrmFl       = 0x00000001 // secure-deletion
	fsUnrmFl        = 0x00000002 // undelete
	fsImmutableFl   = 0x00000010
	fsAppendFl      = 0x00000020
	fsJournalDataFl = 0x00004000
)

// PlatformFlagGate implements the ext2/3 inode-flag checks from spec §4.4
// step 6 and the ext2/3 finalize step from §4.4 step 9. On filesystems
// other than the ext2/3/4 family it is a no-op success (the flags do not
// apply).
type PlatformFlagGate struct{}

func (PlatformFlagGate) isExt2Family(fd uintptr) (bool, error) {
	var st unix.Statfs_t
	if err := unix.Fstatfs(int(fd), &st); err != nil {
		if err == unix.ENOSYS {
			return false, nil
		}
		return false, err
	}
	return int64(st.Type) == ext2SuperMagic, nil
}

func getFlags(fd uintptr) (int, error) {
	var flags int32
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, fsIocGetFlags, uintptr(unsafe.Pointer(&flags))); errno != 0 {
		return 0, errno
	}
	return int(flags), nil
}

func setFlags(fd uintptr, flags int) error {
	f := int32(flags)
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, fsIocSetFlags, uintptr(unsafe.Pointer(&f))); errno != 0 {
		return errno
	}
	return nil
}

func (g PlatformFlagGate) Veto(fd uintptr) (bool, string, error) {
	isExt2, err := g.isExt2Family(fd)
	if err != nil {
		return false, "", err
	}
	if !isExt2 {
		return false, "", nil
	}
	flags, err := getFlags(fd)
	if err != nil {
		return false, "", err
	}
	switch {
	case flags&fsUnrmFl != 0:
		return true, "undelete flag set", nil
	case flags&fsImmutableFl != 0:
		return true, "immutable flag set", nil
	case flags&fsAppendFl != 0:
		return true, "append-only flag set", nil
	}
	return false, "", nil
}

func (g PlatformFlagGate) ClearJournalData(fd uintptr) error {
	isExt2, err := g.isExt2Family(fd)
	if err != nil || !isExt2 {
		return err
	}
	flags, err := getFlags(fd)
	if err != nil {
		return err
	}
	if flags&fsJournalDataFl == 0 {
		return nil
	}
	return setFlags(fd, flags&^fsJournalDataFl)
}

func (g PlatformFlagGate) SetSecureRemoval(fd uintptr) error {
	isExt2, err := g.isExt2Family(fd)
	if err != nil || !isExt2 {
		return err
	}
	flags, err := getFlags(fd)
	if err != nil {
		return err
	}
	return setFlags(fd, flags|fsSecrmFl)
}
