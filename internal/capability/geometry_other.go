//go:build !linux

package capability

import "errors"

// PlatformGeometry has no block-device ioctls wired up on this platform:
// Probe always returns an error, so the target driver fails on block
// devices here instead of overwriting them; they are not handled as
// regular files.
type PlatformGeometry struct{}

var errGeometryUnsupported = errors.New("capability: block-device geometry probing not implemented on this platform")

func (PlatformGeometry) Probe(fd uintptr) (sectorSize int, blockCount uint32, byteCount uint64, err error) {
	return 0, 0, 0, errGeometryUnsupported
}
