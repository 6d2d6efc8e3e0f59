package overwrite

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/orcaman/writerseeker"

	"github.com/sebmellen/srm/internal/auxdata"
	"github.com/sebmellen/srm/internal/entropy"
	"github.com/sebmellen/srm/internal/options"
	"github.com/sebmellen/srm/internal/schedule"
)

// fakeFile is a minimal in-memory stand-in for *os.File that also reports a
// (fake) file descriptor, so tests can exercise the cache-bypass/flush
// capability wiring without touching the real filesystem.
type fakeFile struct {
	buf []byte
	pos int64
}

func (f *fakeFile) Write(p []byte) (int, error) {
	end := f.pos + int64(len(p))
	if end > int64(len(f.buf)) {
		grown := make([]byte, end)
		copy(grown, f.buf)
		f.buf = grown
	}
	copy(f.buf[f.pos:end], p)
	f.pos = end
	return len(p), nil
}

func (f *fakeFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.pos = offset
	case io.SeekCurrent:
		f.pos += offset
	case io.SeekEnd:
		f.pos = int64(len(f.buf)) + offset
	}
	return f.pos, nil
}

func (f *fakeFile) Fd() uintptr { return 1 }

// snapshotFlush records a copy of the file's contents every time Flush is
// called, i.e. once per completed pass — letting tests assert on
// intermediate, pre-truncate pass content (spec §8 scenarios S2-S4).
type snapshotFlush struct {
	file      *fakeFile
	snapshots [][]byte
}

func (s *snapshotFlush) Flush(fd uintptr) error {
	cp := make([]byte, len(s.file.buf))
	copy(cp, s.file.buf)
	s.snapshots = append(s.snapshots, cp)
	return nil
}

func runSchedule(t *testing.T, size int, mode options.Mode) [][]byte {
	t.Helper()
	f := &fakeFile{buf: make([]byte, size)}
	flush := &snapshotFlush{file: f}
	e := &Engine{Entropy: entropy.CryptoRand{}, Flush: flush}
	target := &Target{
		File:    f,
		Name:    "target",
		Extent:  int64(size),
		Buffer:  make([]byte, 4096),
		Options: options.Set{Mode: mode},
	}
	if err := e.RunPasses(target, schedule.ForMode(mode)); err != nil {
		t.Fatalf("RunPasses: %v", err)
	}
	return flush.snapshots
}

// S2: OpenBSD mode on a 5-byte file. Passes write FF*5, 00*5, FF*5.
func TestOpenBSDModeScenario(t *testing.T) {
	snaps := runSchedule(t, 5, options.ModeOpenBSD)
	if len(snaps) != 3 {
		t.Fatalf("expected 3 passes, got %d", len(snaps))
	}
	want := [][]byte{
		bytes.Repeat([]byte{0xFF}, 5),
		bytes.Repeat([]byte{0x00}, 5),
		bytes.Repeat([]byte{0xFF}, 5),
	}
	for i := range want {
		if diff := cmp.Diff(want[i], snaps[i]); diff != "" {
			t.Errorf("pass %d mismatch (-want +got):\n%s", i+1, diff)
		}
	}
}

// S3: DoE mode on a 9-byte file. Pass 3 leaves 'DoEDoEDoE'.
func TestDoEModeScenario(t *testing.T) {
	snaps := runSchedule(t, 9, options.ModeDoE)
	if len(snaps) != 3 {
		t.Fatalf("expected 3 passes, got %d", len(snaps))
	}
	want := []byte("DoEDoEDoE")
	if diff := cmp.Diff(want, snaps[2]); diff != "" {
		t.Errorf("pass 3 mismatch (-want +got):\n%s", diff)
	}
}

// S4: Gutmann-35 on a 4-byte file. Pass 5 writes 0x55 repeated, pass 25
// writes 0xFF repeated, pass 36 writes 0x00 repeated.
func TestGutmannModeScenario(t *testing.T) {
	snaps := runSchedule(t, 4, options.ModeGutmann)
	if len(snaps) != 36 {
		t.Fatalf("expected 36 passes, got %d", len(snaps))
	}
	checks := []struct {
		pass int
		want byte
	}{
		{5, 0x55},
		{25, 0xFF},
		{36, 0x00},
	}
	for _, c := range checks {
		got := snaps[c.pass-1]
		want := bytes.Repeat([]byte{c.want}, 4)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("pass %d mismatch (-want +got):\n%s", c.pass, diff)
		}
	}
}

// S1: Simple mode on a 100-byte file. The single pass writes all zero
// bytes.
func TestSimpleModeScenario(t *testing.T) {
	snaps := runSchedule(t, 100, options.ModeSimple)
	if len(snaps) != 1 {
		t.Fatalf("expected 1 pass, got %d", len(snaps))
	}
	want := bytes.Repeat([]byte{0x00}, 100)
	if diff := cmp.Diff(want, snaps[0]); diff != "" {
		t.Errorf("pass 1 mismatch (-want +got):\n%s", diff)
	}
}

// Boundary: extent smaller than buffer capacity produces exactly one
// short write.
func TestBoundaryShortExtent(t *testing.T) {
	f := &fakeFile{buf: make([]byte, 10)}
	e := &Engine{Entropy: entropy.CryptoRand{}}
	target := &Target{
		File:   f,
		Name:   "short",
		Extent: 10,
		Buffer: make([]byte, 4096),
	}
	if err := e.RunPasses(target, schedule.Schedule{{Kind: schedule.KindByte, Byte: 0xAB}}); err != nil {
		t.Fatalf("RunPasses: %v", err)
	}
	want := bytes.Repeat([]byte{0xAB}, 10)
	if diff := cmp.Diff(want, f.buf); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// Boundary: extent exactly a multiple of the buffer capacity leaves no
// short tail.
func TestBoundaryExactMultiple(t *testing.T) {
	f := &fakeFile{buf: make([]byte, 12)}
	e := &Engine{Entropy: entropy.CryptoRand{}}
	target := &Target{
		File:   f,
		Name:   "exact",
		Extent: 12,
		Buffer: make([]byte, 4),
	}
	if err := e.RunPasses(target, schedule.Schedule{{Kind: schedule.KindByte, Byte: 0xCD}}); err != nil {
		t.Fatalf("RunPasses: %v", err)
	}
	want := bytes.Repeat([]byte{0xCD}, 12)
	if diff := cmp.Diff(want, f.buf); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// Boundary: extent one byte over a multiple of the buffer capacity
// produces a buffer-sized write plus a one-byte tail.
func TestBoundaryOneByteOver(t *testing.T) {
	f := &fakeFile{buf: make([]byte, 13)}
	e := &Engine{Entropy: entropy.CryptoRand{}}
	target := &Target{
		File:   f,
		Name:   "over",
		Extent: 13,
		Buffer: make([]byte, 4),
	}
	if err := e.RunPasses(target, schedule.Schedule{{Kind: schedule.KindByte, Byte: 0xEF}}); err != nil {
		t.Fatalf("RunPasses: %v", err)
	}
	want := bytes.Repeat([]byte{0xEF}, 13)
	if diff := cmp.Diff(want, f.buf); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// Auxiliary extents are overwritten using the tiled main-extent pattern,
// and a failure on one key is reported but does not abort the pass.
type fakeEnum struct {
	keys    []string
	lens    map[string]int64
	failKey string
	overw   map[string][]byte
}

func (f *fakeEnum) Keys(fd uintptr) ([]string, error) { return f.keys, nil }
func (f *fakeEnum) Len(fd uintptr, key string) (int64, error) {
	return f.lens[key], nil
}
func (f *fakeEnum) Overwrite(fd uintptr, key string, buf []byte, n int) error {
	if key == f.failKey {
		return io.ErrClosedPipe
	}
	if f.overw == nil {
		f.overw = map[string][]byte{}
	}
	cp := make([]byte, n)
	copy(cp, buf[:n])
	f.overw[key] = cp
	return nil
}

type collectingReporter struct {
	calls int
}

func (c *collectingReporter) Error(format string, args ...interface{}) {}
func (c *collectingReporter) Errorp(err error, format string, args ...interface{}) {
	c.calls++
}

func TestAuxiliaryExtentsOverwrittenAndFailuresNonFatal(t *testing.T) {
	f := &fakeFile{buf: make([]byte, 4)}
	aux := &fakeEnum{
		keys:    []string{"user.good", "user.bad"},
		lens:    map[string]int64{"user.good": 3, "user.bad": 2},
		failKey: "user.bad",
	}
	rep := &collectingReporter{}
	e := &Engine{Entropy: entropy.CryptoRand{}, Reporter: rep}
	target := &Target{
		File:   f,
		Name:   "auxtest",
		Extent: 4,
		Buffer: make([]byte, 4),
		Aux:    []auxdata.Enumerator{aux},
	}
	if err := e.RunPasses(target, schedule.Schedule{{Kind: schedule.KindByte, Byte: 0x11}}); err != nil {
		t.Fatalf("RunPasses: %v", err)
	}
	if got := aux.overw["user.good"]; !bytes.Equal(got, []byte{0x11, 0x11, 0x11}) {
		t.Errorf("user.good = %v, want 0x11 repeated 3 times", got)
	}
	if rep.calls == 0 {
		t.Error("expected the auxiliary failure to be reported")
	}
}

// writerseeker smoke test: RunPasses works against a plain WriteSeeker
// with no Fd() method (cache bypass/media flush become no-ops), and the
// final on-disk image matches the last pass's pattern.
func TestRunPassesAgainstWriterSeeker(t *testing.T) {
	var ws writerseeker.WriterSeeker
	e := &Engine{Entropy: entropy.CryptoRand{}}
	target := &Target{
		File:   &ws,
		Name:   "ws",
		Extent: 6,
		Buffer: make([]byte, 4096),
	}
	if err := e.RunPasses(target, schedule.ForMode(options.ModeOpenBSD)); err != nil {
		t.Fatalf("RunPasses: %v", err)
	}
	got, err := io.ReadAll(ws.Reader())
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	want := bytes.Repeat([]byte{0xFF}, 6) // OpenBSD's last pass is 0xFF
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("final content mismatch (-want +got):\n%s", diff)
	}
}
