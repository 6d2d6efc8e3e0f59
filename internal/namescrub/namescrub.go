// Package namescrub implements the "name scrubber" collaborator (spec §6):
// rename_unlink(path) — rename a file to an obfuscated name, then unlink it,
// so that directory-entry metadata (and, on some filesystems, the old name
// recoverable from free-list scraping) does not survive the removal.
//
// The same-directory, same-filesystem rename discipline follows the same
// practice distr1-distri uses github.com/google/renameio's TempFile for
// (internal/build/build.go's atomic file replacement): never rename across
// a filesystem boundary. renameio's API is built for atomic content
// replacement, which has no obfuscate-then-unlink primitive to borrow, so
// it is not imported here — this package reimplements the discipline
// directly with os.Rename.
package namescrub

import (
	"os"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/sebmellen/srm/internal/entropy"
)

// Scrubber is the name-scrubber collaborator interface.
type Scrubber interface {
	// RenameUnlink renames path to a sequence of obfuscated names of
	// decreasing length, then unlinks it. Returns nil on success.
	RenameUnlink(path string) error
}

// Obfuscator is the default Scrubber. Passes is the number of intermediate
// renames performed before the final unlink; 0 selects a sane default.
type Obfuscator struct {
	Source entropy.Source
	Passes int
}

const defaultPasses = 3
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RenameUnlink implements Scrubber.
func (o Obfuscator) RenameUnlink(path string) error {
	src := entropy.Source(o.Source)
	if src == nil {
		src = entropy.CryptoRand{}
	}
	passes := o.Passes
	if passes <= 0 {
		passes = defaultPasses
	}

	dir := filepath.Dir(path)
	nameLen := len([]rune(filepath.Base(path)))
	current := path

	for i := 0; i < passes; i++ {
		// Each successive name is one character shorter than the last,
		// starting at the original name's length and never going below
		// 1 character, matching the original srm's practice of shrinking
		// the visible name as it scrubs it.
		length := nameLen - i
		if length < 1 {
			length = 1
		}
		name, err := randomName(src, length)
		if err != nil {
			return xerrors.Errorf("namescrub: generating obfuscated name: %w", err)
		}
		next := filepath.Join(dir, name)
		if err := os.Rename(current, next); err != nil {
			return xerrors.Errorf("namescrub: renaming %s to %s: %w", current, next, err)
		}
		current = next
	}

	if err := os.Remove(current); err != nil {
		return xerrors.Errorf("namescrub: unlinking %s: %w", current, err)
	}
	return nil
}

func randomName(src entropy.Source, n int) (string, error) {
	buf := make([]byte, n)
	if err := src.Randomize(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
