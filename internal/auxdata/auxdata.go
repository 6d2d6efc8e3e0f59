// Package auxdata implements the auxiliary-extent capability (spec §3
// "Auxiliary extent", §4.2.2): data addressed separately from a target's
// main byte extent but overwritten by the same engine with the same
// schedule. The only implementation is Xattr, which handles extended
// attributes on Linux and is a no-op elsewhere; there is no enumerator for
// alternate data streams or resource forks.
package auxdata

// maxKeyListBytes bounds how much key-list storage Keys will grow to
// before giving up (spec §4.2.2: "Enumeration that would require more than
// 1 MiB of key-list storage is abandoned with a diagnostic").
const maxKeyListBytes = 1 << 20

// Enumerator is one auxiliary-data flavor (xattr, alternate stream,
// resource fork) attached to an open descriptor.
type Enumerator interface {
	// Keys lists the auxiliary extents attached to fd.
	Keys(fd uintptr) ([]string, error)

	// Len returns the current byte length of key's value.
	Len(fd uintptr, key string) (int64, error)

	// Overwrite replaces key's value in place with buf[:n] — same key,
	// same length, replace semantics.
	Overwrite(fd uintptr, key string, buf []byte, n int) error
}
