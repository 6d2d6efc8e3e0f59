// Package overwrite implements the Overwrite Engine (spec §4.2):
// run_passes(target, schedule). It writes each pass of a schedule across a
// target's byte extent, processes auxiliary extents ahead of the main
// extent on every pass, requests a media-level flush between passes, and
// reports progress.
package overwrite

import (
	"io"

	"golang.org/x/xerrors"

	"github.com/sebmellen/srm/internal/auxdata"
	"github.com/sebmellen/srm/internal/capability"
	"github.com/sebmellen/srm/internal/entropy"
	"github.com/sebmellen/srm/internal/options"
	"github.com/sebmellen/srm/internal/pattern"
	"github.com/sebmellen/srm/internal/reporter"
	"github.com/sebmellen/srm/internal/schedule"
)

// WriteSeeker is the minimal surface RunPasses needs from a target's
// descriptor. *os.File satisfies it; tests use
// github.com/orcaman/writerseeker's in-memory WriteSeeker instead of a
// real file.
type WriteSeeker interface {
	io.Writer
	io.Seeker
}

// fdProvider is implemented by *os.File. Capabilities that need a raw file
// descriptor (cache bypass, media flush, auxiliary-data ioctls) are only
// exercised when the target's File provides one; otherwise they are
// treated as absent capabilities and skipped, per spec §9 Design Notes.
type fdProvider interface {
	Fd() uintptr
}

// Target is a single in-flight overwrite (spec §3 "Target record").
type Target struct {
	File    WriteSeeker
	Name    string
	Extent  int64
	Buffer  []byte
	Options options.Set

	// Aux are the auxiliary-extent enumerators to run against this
	// target's descriptor on every pass (spec §3 "Auxiliary extent").
	Aux []auxdata.Enumerator
}

// Engine runs pass schedules over targets.
type Engine struct {
	Entropy     entropy.Source
	Reporter    reporter.Reporter
	CacheBypass capability.CacheBypass
	Flush       capability.MediaFlush

	// Output receives progress lines; defaults to nothing written if nil
	// and a Writer is required by the caller (cmd/srm wires os.Stdout).
	Output io.Writer
}

// RunPasses executes every pass in sched against target, in order. It
// returns the first fatal error (seek/write failure); auxiliary-extent
// failures are reported through e.Reporter but do not abort the schedule,
// per spec §4.2 "Failure semantics for the engine".
func (e *Engine) RunPasses(t *Target, sched schedule.Schedule) error {
	if t == nil {
		return xerrors.New("overwrite: nil target")
	}
	if len(t.Buffer) == 0 {
		return xerrors.New("overwrite: target has no scratch buffer")
	}

	disc := installSignals()
	defer disc.stop()

	fd, hasFd := fdOf(t.File)
	if hasFd && e.CacheBypass != nil {
		// Best-effort: spec names no failure path for a denied cache-bypass
		// request, only that it is "requested".
		_ = e.CacheBypass.Enable(fd)
	}

	progress := &progressPrinter{out: e.Output, total: t.Extent}

	passNum := 1
	for _, desc := range sched {
		if desc.Kind == schedule.KindRandom {
			for i := 0; i < desc.Count; i++ {
				if err := e.fillMain(t, desc); err != nil {
					return xerrors.Errorf("overwrite %s: pass %d: %w", t.Name, passNum, err)
				}
				if err := e.runPass(t, passNum, fd, hasFd, progress, disc); err != nil {
					return xerrors.Errorf("overwrite %s: pass %d: %w", t.Name, passNum, err)
				}
				passNum++
			}
			continue
		}

		if err := e.fillMain(t, desc); err != nil {
			return xerrors.Errorf("overwrite %s: pass %d: %w", t.Name, passNum, err)
		}
		if err := e.runPass(t, passNum, fd, hasFd, progress, disc); err != nil {
			return xerrors.Errorf("overwrite %s: pass %d: %w", t.Name, passNum, err)
		}
		passNum++
	}
	return nil
}

// fillMain fills t.Buffer according to desc (spec §4.2.1 "Pattern
// generation per pass").
func (e *Engine) fillMain(t *Target, desc schedule.Pass) error {
	switch desc.Kind {
	case schedule.KindByte:
		for i := range t.Buffer {
			t.Buffer[i] = desc.Byte
		}
	case schedule.KindTuple:
		pattern.Fill(t.Buffer, len(t.Buffer), desc.Tuple[:])
	case schedule.KindLiteral:
		pattern.Fill(t.Buffer, len(t.Buffer), []byte(desc.Literal))
	case schedule.KindRandom:
		if e.Entropy == nil {
			return xerrors.New("random pass requested with no entropy source configured")
		}
		if err := e.Entropy.Randomize(t.Buffer); err != nil {
			return xerrors.Errorf("randomizing buffer: %w", err)
		}
	default:
		return xerrors.Errorf("unknown pass kind %v", desc.Kind)
	}
	return nil
}

// runPass is one complete pass: auxiliary extents, then the main extent,
// then a media flush, then reposition at offset 0 (spec §4.2 "Per-pass
// algorithm").
func (e *Engine) runPass(t *Target, passNum int, fd uintptr, hasFd bool, progress *progressPrinter, disc *signalDiscipline) error {
	e.overwriteAux(t, fd, hasFd)

	if _, err := t.File.Seek(0, io.SeekStart); err != nil {
		return xerrors.Errorf("seek to start: %w", err)
	}

	var written int64
	for written < t.Extent {
		chunk := t.Buffer
		remaining := t.Extent - written
		if remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		n, err := writeFull(t.File, chunk)
		written += int64(n)
		if err != nil {
			return xerrors.Errorf("write at offset %d: %w", written, err)
		}

		if t.Options.VerboseAtLeast(2) || disc.Pending() {
			progress.update(passNum, written)
			if disc.Consume() {
				progress.interrupted(t.Name)
			}
		}
	}

	if t.Options.VerboseAtLeast(2) {
		progress.syncing(passNum)
	}

	if e.Flush != nil && hasFd {
		if err := e.Flush.Flush(fd); err != nil {
			return xerrors.Errorf("media flush: %w", err)
		}
	}

	if _, err := t.File.Seek(0, io.SeekStart); err != nil {
		return xerrors.Errorf("seek back to start: %w", err)
	}
	return nil
}

// writeFull writes buf in its entirety, retrying short writes
// indefinitely as long as the kernel reports progress (spec §4.2 step 2:
// "Every write must be complete: partial writes are retried with the
// remaining tail, indefinitely, as long as the kernel reports progress; a
// negative return is fatal for the pass.").
func writeFull(w io.Writer, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:])
		if n > 0 {
			total += n
			continue
		}
		if err != nil {
			return total, err
		}
		return total, xerrors.New("write reported no progress")
	}
	return total, nil
}

// overwriteAux runs the current pass's pattern (already in t.Buffer) over
// every key of every auxiliary enumerator attached to the target.
// Failures on individual keys are reported but do not abort the pass
// (spec §4.2.2).
func (e *Engine) overwriteAux(t *Target, fd uintptr, hasFd bool) {
	if !hasFd || len(t.Aux) == 0 {
		return
	}
	for _, enum := range t.Aux {
		keys, err := enum.Keys(fd)
		if err != nil {
			if e.Reporter != nil {
				e.Reporter.Errorp(err, "could not enumerate auxiliary extents of %s", t.Name)
			}
			continue
		}
		for _, key := range keys {
			length, err := enum.Len(fd, key)
			if err != nil {
				if e.Reporter != nil {
					e.Reporter.Errorp(err, "could not size auxiliary extent %s of %s", key, t.Name)
				}
				continue
			}
			if length <= 0 {
				continue
			}
			scratch := make([]byte, length)
			pattern.Fill(scratch, len(scratch), t.Buffer)
			if err := enum.Overwrite(fd, key, scratch, len(scratch)); err != nil {
				if e.Reporter != nil {
					e.Reporter.Errorp(err, "could not overwrite auxiliary extent %s of %s", key, t.Name)
				}
			}
		}
	}
}

func fdOf(w WriteSeeker) (uintptr, bool) {
	if fp, ok := w.(fdProvider); ok {
		return fp.Fd(), true
	}
	return 0, false
}
