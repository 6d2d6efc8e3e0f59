//go:build darwin || freebsd

package capability

import "golang.org/x/sys/unix"

// PlatformBufferSize reports f_iosize from fstatfs(2), the field
// sunlink_impl() reads on FreeBSD/Darwin instead of f_bsize.
type PlatformBufferSize struct{}

func (PlatformBufferSize) OptimalIOSize(fd uintptr) (int, error) {
	var st unix.Statfs_t
	if err := unix.Fstatfs(int(fd), &st); err != nil {
		return 0, err
	}
	return int(st.Iosize), nil
}
