// Command srm is the external driver named in the core's out-of-scope list:
// it parses flags, builds the options bitset, wires the injected
// collaborators (entropy source, reporter, name scrubber, platform
// capabilities) into the Target Driver and Overwrite Engine, and invokes
// the Tree Walker over the given paths.
//
// Flag handling follows the teacher's plain flag.Bool/flag.Int style
// (cmd/distri/distri.go) rather than a subcommand framework, since srm has
// no subcommands.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sebmellen/srm/internal/auxdata"
	"github.com/sebmellen/srm/internal/capability"
	"github.com/sebmellen/srm/internal/entropy"
	"github.com/sebmellen/srm/internal/namescrub"
	"github.com/sebmellen/srm/internal/options"
	"github.com/sebmellen/srm/internal/overwrite"
	"github.com/sebmellen/srm/internal/reporter"
	"github.com/sebmellen/srm/internal/target"
	"github.com/sebmellen/srm/internal/walk"
)

const programName = "srm"

var (
	verbose       = flag.Int("v", 0, "verbosity level 0-3 (repeat-free; pass the number directly)")
	force         = flag.Bool("f", false, "ignore nonexistent files, never prompt")
	interactive   = flag.Bool("i", false, "prompt before every removal")
	recursive     = flag.Bool("r", false, "remove directory contents recursively")
	oneFilesystem = flag.Bool("x", false, "stay on one filesystem during traversal")

	simple  = flag.Bool("simple", false, "single pass of 0x00 (spec §4.3 Simple mode)")
	openbsd = flag.Bool("openbsd", false, "three-pass OpenBSD schedule (0xff, 0x00, 0xff)")
	dod     = flag.Bool("dod", false, "US DoD 5220.22-M 7-pass schedule")
	doe     = flag.Bool("doe", false, "US DoE 3-pass schedule")
	rcmp    = flag.Bool("rcmp", false, "RCMP TSSIT OPS-II schedule")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	opts, err := buildOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}

	roots := flag.Args()
	if len(roots) == 0 {
		fmt.Fprintf(os.Stderr, "%s: missing file operand\n", programName)
		flag.Usage()
		os.Exit(1)
	}

	w := &walk.Walker{
		Driver:   newDriver(opts),
		Scrubber: namescrub.Obfuscator{Source: entropy.CryptoRand{}},
		Reporter: reporter.Log{Program: programName},
		Prompter: stdinPrompter{},
	}

	os.Exit(w.Walk(roots, opts))
}

func buildOptions() (options.Set, error) {
	selected := 0
	mode := options.ModeGutmann
	for _, b := range []struct {
		set  bool
		mode options.Mode
	}{
		{*simple, options.ModeSimple},
		{*openbsd, options.ModeOpenBSD},
		{*dod, options.ModeDoD},
		{*doe, options.ModeDoE},
		{*rcmp, options.ModeRCMP},
	} {
		if b.set {
			selected++
			mode = b.mode
		}
	}
	if selected > 1 {
		return options.Set{}, fmt.Errorf("at most one mode flag may be given")
	}
	if *verbose < 0 || *verbose > 3 {
		return options.Set{}, fmt.Errorf("-v must be between 0 and 3")
	}

	return options.Set{
		Verbose:       *verbose,
		Force:         *force,
		Interactive:   *interactive,
		Recursive:     *recursive,
		OneFilesystem: *oneFilesystem,
		Mode:          mode,
	}, nil
}

func newDriver(opts options.Set) *target.Driver {
	rep := reporter.Log{Program: programName}
	engine := &overwrite.Engine{
		Entropy:     entropy.CryptoRand{},
		Reporter:    rep,
		CacheBypass: capability.PlatformCacheBypass{},
		Flush:       capability.PlatformFlush{},
	}
	if opts.VerboseAtLeast(2) {
		engine.Output = os.Stdout
	}

	return &target.Driver{
		Engine:     engine,
		Scrubber:   namescrub.Obfuscator{Source: entropy.CryptoRand{}},
		Reporter:   rep,
		Geometry:   capability.PlatformGeometry{},
		FlagGate:   capability.PlatformFlagGate{},
		BufferSize: capability.PlatformBufferSize{},
		Aux:        []auxdata.Enumerator{auxdata.Xattr{}},
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [options] file...\n", programName)
	flag.PrintDefaults()
}
