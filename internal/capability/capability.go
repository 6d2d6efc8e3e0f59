// Package capability implements the per-platform shims called for in
// spec §9's Design Notes: "Re-architect as a capability abstraction: one
// interface per concern ... with per-platform implementations selected at
// build time; the engine and driver depend only on the interfaces. When a
// capability is absent, its implementation is a success-valued no-op."
//
// Five concerns are covered: cache bypass (F_NOCACHE or equivalent),
// media-level flush (full device sync, data sync, or plain sync, in
// descending preference), block-device geometry (sector size / block
// count / byte count), the filesystem's optimal I/O size, and the
// filesystem-flag gate (ext2/3 inode flags, BSD chflags).
package capability

// CacheBypass asks the platform to stop caching writes to fd, once, at
// engine entry (spec §4.2 step 3).
type CacheBypass interface {
	Enable(fd uintptr) error
}

// MediaFlush pushes buffered writes on fd past the kernel page cache and,
// where supported, past the device's own write cache (spec §4.2 step 3,
// GLOSSARY "Media flush").
type MediaFlush interface {
	Flush(fd uintptr) error
}

// Geometry reports a block device's addressable extent (spec §4.4 step 2,
// "Block device").
type Geometry interface {
	// Probe returns the device's sector size, 32-bit block count, and
	// authoritative 64-bit byte count. A mismatch between sectorSize *
	// blockCount and byteCount is reported by the caller (spec invariant
	// 7), not by Probe.
	Probe(fd uintptr) (sectorSize int, blockCount uint32, byteCount uint64, err error)
}

// BufferSize reports a filesystem's optimal I/O size (spec §4.4 step 6,
// "fstatfs-equivalent: set the scratch-buffer capacity from the reported
// optimal I/O size").
type BufferSize interface {
	OptimalIOSize(fd uintptr) (int, error)
}

// FlagGate vetoes overwriting a file the filesystem has marked undelete,
// immutable, append-only, or no-unlink, and performs the best-effort
// ext3 journal-flag clear and secure-removal flag set (spec §4.4 steps 6
// and 9).
type FlagGate interface {
	// Veto reports whether fd's filesystem flags forbid overwriting, and
	// if so, why.
	Veto(fd uintptr) (vetoed bool, reason string, err error)

	// ClearJournalData best-effort clears the ext3 data-journal flag.
	// Failure is a warning, never fatal (spec §4.4 step 6).
	ClearJournalData(fd uintptr) error

	// SetSecureRemoval best-effort sets the ext2/3 secure-removal inode
	// flag during finalize (spec §4.4 step 9).
	SetSecureRemoval(fd uintptr) error
}
