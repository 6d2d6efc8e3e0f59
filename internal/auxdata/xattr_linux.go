//go:build linux

package auxdata

import (
	"bytes"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// Xattr enumerates and overwrites extended attributes through an open file
// descriptor, the same Flistxattr/Fgetxattr/Fsetxattr calls
// cmd/distri/convert.go and internal/build/build.go use to pack xattrs
// into a SquashFS image — used here to destroy their values in place
// instead.
type Xattr struct{}

func (Xattr) Keys(fd uintptr) ([]string, error) {
	sz, err := unix.Flistxattr(int(fd), nil)
	if err != nil {
		return nil, err
	}
	if sz == 0 {
		return nil, nil
	}
	if sz > maxKeyListBytes {
		return nil, xerrors.New("auxdata: extended attribute list exceeds 1 MiB, giving up")
	}
	buf := make([]byte, sz)
	sz, err = unix.Flistxattr(int(fd), buf)
	if err != nil {
		return nil, err
	}
	return splitNulTerminated(buf[:sz]), nil
}

func (Xattr) Len(fd uintptr, key string) (int64, error) {
	sz, err := unix.Fgetxattr(int(fd), key, nil)
	if err != nil {
		return 0, err
	}
	return int64(sz), nil
}

func (Xattr) Overwrite(fd uintptr, key string, buf []byte, n int) error {
	return unix.Fsetxattr(int(fd), key, buf[:n], unix.XATTR_REPLACE)
}

func splitNulTerminated(buf []byte) []string {
	var out []string
	for _, part := range bytes.Split(buf, []byte{0}) {
		if len(part) > 0 {
			out = append(out, string(part))
		}
	}
	return out
}
