//go:build linux

package capability

import "golang.org/x/sys/unix"

// PlatformBufferSize reports f_bsize from fstatfs(2), the Linux field
// sunlink_impl() reads into srm.buffer_size.
type PlatformBufferSize struct{}

func (PlatformBufferSize) OptimalIOSize(fd uintptr) (int, error) {
	var st unix.Statfs_t
	if err := unix.Fstatfs(int(fd), &st); err != nil {
		if err == unix.ENOSYS {
			return 0, nil
		}
		return 0, err
	}
	return int(st.Bsize), nil
}
