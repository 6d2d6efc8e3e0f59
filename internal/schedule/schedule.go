// Package schedule defines pass descriptors and the mode -> schedule
// mapping (spec §3 "Pass schedule", §4.3 "Schedule Selector").
package schedule

import "github.com/sebmellen/srm/internal/options"

// Kind distinguishes the four pass descriptor shapes spec §3 allows.
type Kind int

const (
	// KindByte fills the buffer with a single repeated byte.
	KindByte Kind = iota
	// KindTuple fills the buffer with a repeating 3-byte pattern.
	KindTuple
	// KindLiteral fills the buffer with a repeating literal string.
	KindLiteral
	// KindRandom refills the buffer from the entropy source for each of
	// Count consecutive passes.
	KindRandom
)

// Pass is one entry in a Schedule. Exactly the fields relevant to Kind are
// populated; see the Kind* constants.
type Pass struct {
	Kind    Kind
	Byte    byte
	Tuple   [3]byte
	Literal string
	// Count is only meaningful for KindRandom: it expands to Count
	// consecutive random passes sharing one descriptor.
	Count int
}

// Schedule is the ordered list of passes prescribed by a mode.
type Schedule []Pass

// byteOf returns a single-byte pass.
func byteOf(b byte) Pass { return Pass{Kind: KindByte, Byte: b} }

// tupleOf returns a repeating 3-byte pass.
func tupleOf(b1, b2, b3 byte) Pass { return Pass{Kind: KindTuple, Tuple: [3]byte{b1, b2, b3}} }

// literalOf returns a repeating literal-string pass.
func literalOf(s string) Pass { return Pass{Kind: KindLiteral, Literal: s} }

// randomOf returns a descriptor expanding to n consecutive random passes.
func randomOf(n int) Pass { return Pass{Kind: KindRandom, Count: n} }

// ForMode returns the pass schedule for the given mode, per spec §4.3.
func ForMode(m options.Mode) Schedule {
	switch m {
	case options.ModeSimple:
		return Schedule{byteOf(0x00)}

	case options.ModeOpenBSD:
		return Schedule{byteOf(0xFF), byteOf(0x00), byteOf(0xFF)}

	case options.ModeDoD:
		return Schedule{
			byteOf(0xF6),
			byteOf(0x00),
			byteOf(0xFF),
			randomOf(1),
			byteOf(0x00),
			byteOf(0xFF),
			randomOf(1),
		}

	case options.ModeDoE:
		return Schedule{
			randomOf(2),
			tupleOf('D', 'o', 'E'),
		}

	case options.ModeRCMP:
		return Schedule{
			byteOf(0x00),
			byteOf(0xFF),
			literalOf("RCMP"),
		}

	case options.ModeGutmann:
		fallthrough
	default:
		return Schedule{
			randomOf(4),
			byteOf(0x55),
			byteOf(0xAA),
			tupleOf(0x92, 0x49, 0x24),
			tupleOf(0x49, 0x24, 0x92),
			tupleOf(0x24, 0x92, 0x49),
			byteOf(0x00),
			byteOf(0x11),
			byteOf(0x22),
			byteOf(0x33),
			byteOf(0x44),
			byteOf(0x55),
			byteOf(0x66),
			byteOf(0x77),
			byteOf(0x88),
			byteOf(0x99),
			byteOf(0xAA),
			byteOf(0xBB),
			byteOf(0xCC),
			byteOf(0xDD),
			byteOf(0xEE),
			byteOf(0xFF),
			tupleOf(0x92, 0x49, 0x24),
			tupleOf(0x49, 0x24, 0x92),
			tupleOf(0x24, 0x92, 0x49),
			tupleOf(0x6D, 0xB6, 0xDB),
			tupleOf(0xB6, 0xDB, 0x6D),
			tupleOf(0xDB, 0x6D, 0xB6),
			randomOf(4),
			// Retained intentionally: aids compressibility of backups of
			// the post-removal state (spec §4.3).
			byteOf(0x00),
		}
	}
}

// PassCount returns the number of 1-based engine passes a schedule expands
// to, counting each KindRandom descriptor as Count passes.
func (s Schedule) PassCount() int {
	n := 0
	for _, p := range s {
		if p.Kind == KindRandom {
			n += p.Count
		} else {
			n++
		}
	}
	return n
}
