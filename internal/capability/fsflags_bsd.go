//go:build darwin || freebsd || netbsd || openbsd

package capability

import "golang.org/x/sys/unix"

// PlatformFlagGate implements the BSD chflags veto (spec §4.4 step 6): it
// rejects a file whose user immutable (UF_IMMUTABLE) or user append-only
// (UF_APPEND) flag is set. The no-unlink flag is not checked. The ext2/3
// journal-clear and secure-removal steps do not apply on BSD filesystems
// and are no-ops.
type PlatformFlagGate struct{}

func (PlatformFlagGate) Veto(fd uintptr) (bool, string, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(fd), &st); err != nil {
		return false, "", err
	}
	flags := uint32(st.Flags)
	switch {
	case flags&unix.UF_IMMUTABLE != 0:
		return true, "immutable flag set", nil
	case flags&unix.UF_APPEND != 0:
		return true, "append-only flag set", nil
	}
	return false, "", nil
}

func (PlatformFlagGate) ClearJournalData(fd uintptr) error { return nil }

func (PlatformFlagGate) SetSecureRemoval(fd uintptr) error { return nil }
