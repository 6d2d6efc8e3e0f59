// Package target implements the Target Driver (spec §4.4):
// secure_unlink(path, options). It classifies a single path, interrogates
// the filesystem, opens and locks a descriptor with the right flags,
// selects the pass schedule, invokes the Overwrite Engine, and finalizes
// with truncate + name scrub.
package target

import (
	"errors"
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"

	"github.com/sebmellen/srm/internal/auxdata"
	"github.com/sebmellen/srm/internal/capability"
	"github.com/sebmellen/srm/internal/namescrub"
	"github.com/sebmellen/srm/internal/options"
	"github.com/sebmellen/srm/internal/overwrite"
	"github.com/sebmellen/srm/internal/reporter"
	"github.com/sebmellen/srm/internal/schedule"
)

// ErrTooManyLinks is returned when a regular file has more than one hard
// link: the file is unlinked via the name scrubber but never overwritten,
// since overwriting one link would destroy data still visible under other
// names (spec §4.4 step 3). The walker treats this as a successful
// removal (spec §4.5 "Multi-link success case").
var ErrTooManyLinks = errors.New("target: file has multiple hard links; unlinked without overwrite")

const (
	minBufferSize      = 16
	fallbackBufferSize = 512
)

// Driver runs secure_unlink against individual paths.
type Driver struct {
	Engine     *overwrite.Engine
	Scrubber   namescrub.Scrubber
	Reporter   reporter.Reporter
	Geometry   capability.Geometry
	FlagGate   capability.FlagGate
	BufferSize capability.BufferSize
	// Aux are the auxiliary-extent enumerators attached to every regular
	// file target (spec §4.4 step 7 "Auxiliary preflight").
	Aux []auxdata.Enumerator
}

// SecureUnlink implements spec §4.4's state machine.
func (d *Driver) SecureUnlink(path string, opts options.Set) error {
	if path == "" {
		return xerrors.New("target: empty path")
	}

	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if fi.Size() < 0 {
		return xerrors.Errorf("target: %s: negative size %d", path, fi.Size())
	}

	sys, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return xerrors.Errorf("target: %s: unsupported platform stat result", path)
	}

	if isBlockDevice(sys) {
		return d.overwriteBlockDevice(path, opts)
	}

	if !fi.Mode().IsRegular() {
		return d.Scrubber.RenameUnlink(path)
	}

	if sys.Nlink > 1 {
		if err := d.Scrubber.RenameUnlink(path); err != nil {
			return xerrors.Errorf("target: %s has multiple links: %w", path, err)
		}
		return ErrTooManyLinks
	}

	if fi.Size() == 0 {
		return d.Scrubber.RenameUnlink(path)
	}

	return d.overwriteRegularFile(path, opts, fi.Size())
}

func isBlockDevice(sys *syscall.Stat_t) bool {
	return sys.Mode&syscall.S_IFMT == syscall.S_IFBLK
}

func (d *Driver) overwriteBlockDevice(path string, opts options.Set) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if d.Geometry == nil {
		return xerrors.Errorf("target: %s: no block-device geometry capability configured", path)
	}
	sectorSize, blockCount, byteCount, err := d.Geometry.Probe(f.Fd())
	if err != nil {
		return xerrors.Errorf("target: %s: probing block device geometry: %w", path, err)
	}
	if byteCount == 0 {
		return xerrors.Errorf("target: %s: could not determine block device size: %w", path, syscall.EIO)
	}
	if uint64(sectorSize)*uint64(blockCount) != byteCount {
		if d.Reporter != nil {
			d.Reporter.Error("%s: sector_size*blocks (%d) != byte count (%d)", path, uint64(sectorSize)*uint64(blockCount), byteCount)
		}
	}

	t := &overwrite.Target{
		File:    f,
		Name:    path,
		Extent:  int64(byteCount),
		Buffer:  make([]byte, sectorSize),
		Options: opts,
	}
	return d.Engine.RunPasses(t, schedule.ForMode(opts.Mode))
}

func (d *Driver) overwriteRegularFile(path string, opts options.Set, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_SYNC, 0)
	if err != nil {
		return err
	}

	closeLocked := func() {
		f.Close()
	}

	flk := unix.Flock_t{Type: unix.F_WRLCK, Whence: int16(io.SeekStart), Start: 0, Len: 0}
	if err := unix.FcntlFlock(f.Fd(), unix.F_SETLK, &flk); err != nil {
		holder := lockHolderPID(f.Fd())
		closeLocked()
		if holder > 0 {
			return xerrors.Errorf("target: %s: locked by process %d: %w", path, holder, err)
		}
		return xerrors.Errorf("target: %s: could not acquire lock: %w", path, err)
	}

	bufSize, err := d.introspectFilesystem(f, path)
	if err != nil {
		closeLocked()
		return err
	}

	if d.FlagGate != nil {
		vetoed, reason, err := d.FlagGate.Veto(f.Fd())
		if err != nil {
			closeLocked()
			return xerrors.Errorf("target: %s: checking filesystem flags: %w", path, err)
		}
		if vetoed {
			closeLocked()
			return xerrors.Errorf("target: %s: %s: %w", path, reason, os.ErrPermission)
		}
		if err := d.FlagGate.ClearJournalData(f.Fd()); err != nil && d.Reporter != nil && opts.VerboseAtLeast(1) {
			d.Reporter.Errorp(err, "could not clear journal data flag for %s", path)
		}
	}

	t := &overwrite.Target{
		File:    f,
		Name:    path,
		Extent:  size,
		Buffer:  make([]byte, bufSize),
		Options: opts,
		Aux:     d.Aux,
	}
	if err := d.Engine.RunPasses(t, schedule.ForMode(opts.Mode)); err != nil {
		closeLocked()
		return xerrors.Errorf("target: %s: %w", path, err)
	}

	if d.FlagGate != nil {
		if err := d.FlagGate.SetSecureRemoval(f.Fd()); err != nil && d.Reporter != nil && opts.VerboseAtLeast(1) {
			d.Reporter.Errorp(err, "could not set secure-removal flag for %s", path)
		}
	}

	if err := f.Truncate(0); err != nil {
		closeLocked()
		return xerrors.Errorf("target: %s: truncating: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return xerrors.Errorf("target: %s: closing: %w", path, err)
	}

	return d.Scrubber.RenameUnlink(path)
}

// introspectFilesystem sets the scratch-buffer capacity from the reported
// optimal I/O size, clamped per spec §3 "buffer capacity ≥ 16 bytes (raise
// to 512 if the filesystem reports smaller)".
func (d *Driver) introspectFilesystem(f *os.File, path string) (int, error) {
	bufSize := 0
	if d.BufferSize != nil {
		n, err := d.BufferSize.OptimalIOSize(f.Fd())
		if err != nil {
			return 0, xerrors.Errorf("target: %s: statfs: %w", path, err)
		}
		bufSize = n
	}
	if bufSize < minBufferSize {
		bufSize = fallbackBufferSize
	}
	return bufSize, nil
}

func lockHolderPID(fd uintptr) int32 {
	flk := unix.Flock_t{Type: unix.F_WRLCK, Whence: int16(io.SeekStart), Start: 0, Len: 0}
	if err := unix.FcntlFlock(fd, unix.F_GETLK, &flk); err != nil {
		return 0
	}
	return flk.Pid
}
