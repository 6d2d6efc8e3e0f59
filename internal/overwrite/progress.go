package overwrite

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
)

// scale picks the unit spec §4.2 "Progress reporting" calls for: units
// auto-scale between KiB, MiB, GiB based on total size.
func scale(total int64) (divisor int64, unit string) {
	switch {
	case total >= gib:
		return gib, "GiB"
	case total >= mib:
		return mib, "MiB"
	default:
		return kib, "KiB"
	}
}

// progressPrinter renders "pass P, written W/total T" progress lines,
// updating only when the scaled counter changes, carriage-returned when
// writing to a terminal and one line per change otherwise.
type progressPrinter struct {
	out    io.Writer
	total  int64
	lastAt int64 // last scaled value printed; meaningful only once inited is set
	inited bool  // false until the first line has been printed
}

func (p *progressPrinter) isTerminal() bool {
	f, ok := p.out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *progressPrinter) update(pass int, written int64) {
	if p.out == nil {
		return
	}
	div, unit := scale(p.total)
	scaled := written / div
	if p.inited && scaled == p.lastAt {
		return
	}
	p.lastAt = scaled
	p.inited = true
	totalScaled := p.total / div
	line := fmt.Sprintf("pass %d, written %d%s/total %d%s", pass, scaled, unit, totalScaled, unit)
	if p.isTerminal() {
		fmt.Fprintf(p.out, "\r%s     ", line)
	} else {
		fmt.Fprintln(p.out, line)
	}
}

func (p *progressPrinter) syncing(pass int) {
	if p.out == nil {
		return
	}
	line := fmt.Sprintf("pass %d sync", pass)
	if p.isTerminal() {
		fmt.Fprintf(p.out, "\r%s                        ", line)
	} else {
		fmt.Fprintln(p.out, line)
	}
}

// interrupted prints the current file name on its own line, per spec
// §4.2: "Upon interrupt, additionally print the current file name on its
// own line".
func (p *progressPrinter) interrupted(name string) {
	if p.out == nil {
		return
	}
	fmt.Fprintln(p.out, name)
}
