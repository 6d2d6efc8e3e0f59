// Package options defines the options bitset shared by the tree walker, the
// target driver, and the overwrite engine (spec §3, §6).
package options

// Mode selects the pass schedule (spec §4.3). The zero value is ModeGutmann,
// matching "Gutmann-35 is the default when none is set."
type Mode int

const (
	ModeGutmann Mode = iota // default: 35 Gutmann passes + final zero pass
	ModeSimple
	ModeOpenBSD
	ModeDoD
	ModeDoE
	ModeRCMP
)

func (m Mode) String() string {
	switch m {
	case ModeSimple:
		return "simple"
	case ModeOpenBSD:
		return "OpenBSD"
	case ModeDoD:
		return "US DoD 5220.22-M"
	case ModeDoE:
		return "US DoE"
	case ModeRCMP:
		return "RCMP TSSIT OPS-II"
	default:
		return "Gutmann 35-pass"
	}
}

// Set is the immutable options bitset threaded through every layer below
// the driver. It is constructed once by cmd/srm and passed by value.
type Set struct {
	// Verbose is 0-3; see spec §3 "Verbose levels".
	Verbose int

	// Force skips interactive prompts and tolerates missing files.
	Force bool

	// Interactive prompts before each file.
	Interactive bool

	// Recursive permits descending into directories.
	Recursive bool

	// OneFilesystem refuses to cross mount points during traversal.
	OneFilesystem bool

	// Mode selects the pass schedule.
	Mode Mode
}

// VerboseAtLeast reports whether the configured verbosity meets level.
func (s Set) VerboseAtLeast(level int) bool {
	return s.Verbose >= level
}
