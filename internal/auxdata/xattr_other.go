//go:build !linux

package auxdata

// Xattr is a success-valued no-op on platforms without Flistxattr/
// Fgetxattr/Fsetxattr wired up yet (spec §9 Design Notes: absent
// capabilities are success-valued no-ops).
type Xattr struct{}

func (Xattr) Keys(fd uintptr) ([]string, error)        { return nil, nil }
func (Xattr) Len(fd uintptr, key string) (int64, error) { return 0, nil }
func (Xattr) Overwrite(fd uintptr, key string, buf []byte, n int) error { return nil }
