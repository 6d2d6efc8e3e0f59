// Package walk implements the Tree Walker (spec §4.5): walk(roots, options).
// It traverses each root physically (never following symlinks) and in
// depth-first post-order (children dispatched before the directory that
// contains them), dispatching every visited entry to the Target Driver or,
// for directories, to the name scrubber.
//
// Collapsing the usual dual fts(3)/nftw(3) traversal ladders into one
// recursive walk mirrors the teacher's own hand-rolled recursive closure in
// internal/build/build.go's packageDir rather than filepath.Walk, since
// filepath.Walk is pre-order only and always follows the root.
package walk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sebmellen/srm/internal/namescrub"
	"github.com/sebmellen/srm/internal/options"
	"github.com/sebmellen/srm/internal/reporter"
	"github.com/sebmellen/srm/internal/target"
)

// SecureUnlinker is the Target Driver surface the walker depends on.
// *target.Driver satisfies it; tests supply a fake.
type SecureUnlinker interface {
	SecureUnlink(path string, opts options.Set) error
}

// Prompter is the synchronous user-interaction collaborator (spec §9 Design
// Notes, "Prompting mid-traversal"). Tests supply a scripted Prompter
// instead of reading a real terminal.
type Prompter interface {
	// Confirm prints prompt and reports whether the answer began with 'y'
	// or 'Y'.
	Confirm(prompt string) bool
}

// Walker drives one or more traversals (spec §4.5).
type Walker struct {
	Driver   SecureUnlinker
	Scrubber namescrub.Scrubber
	Reporter reporter.Reporter
	Prompter Prompter
}

type devIno struct {
	dev uint64
	ino uint64
}

// Walk traverses every root in order and returns 0 if every leaf in every
// root was processed successfully, or the count of roots that encountered a
// failure otherwise (spec §4.5 "walk(roots[], options) returns 0 ... positive
// otherwise").
func (w *Walker) Walk(roots []string, opts options.Set) int {
	failed := 0
	for _, root := range roots {
		root = strings.TrimRight(root, string(os.PathSeparator))
		if root == "" {
			root = string(os.PathSeparator)
		}
		if !w.walkRoot(root, opts) {
			failed++
		}
	}
	return failed
}

func (w *Walker) walkRoot(root string, opts options.Set) bool {
	fi, err := os.Lstat(root)
	if err != nil {
		if os.IsNotExist(err) && opts.Force {
			return true
		}
		w.report(opts, "cannot access %s", err, root)
		return false
	}

	var rootDev uint64
	if opts.OneFilesystem {
		if st, ok := fi.Sys().(*syscall.Stat_t); ok {
			rootDev = uint64(st.Dev)
		}
	}

	return w.visit(root, fi, opts, rootDev, nil)
}

// visit dispatches one entry. ancestors holds the (dev, ino) pairs of every
// directory still open above path, for cycle detection during physical
// descent.
func (w *Walker) visit(path string, fi os.FileInfo, opts options.Set, rootDev uint64, ancestors []devIno) bool {
	if fi.Mode()&os.ModeSymlink != 0 {
		return w.visitLeaf(path, fi, opts)
	}

	if fi.IsDir() {
		return w.visitDir(path, fi, opts, rootDev, ancestors)
	}

	// Regular file, or anything else the filesystem hands back (socket,
	// fifo, device node reached via a plain argument): spec §4.5's
	// "default" case, same handling as a regular file.
	return w.visitLeaf(path, fi, opts)
}

func (w *Walker) visitDir(path string, fi os.FileInfo, opts options.Set, rootDev uint64, ancestors []devIno) bool {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		w.report(opts, "cannot stat %s", fmt.Errorf("unsupported platform stat result"), path)
		return false
	}
	here := devIno{dev: uint64(st.Dev), ino: st.Ino}

	for _, a := range ancestors {
		if a == here {
			w.report(opts, "cycle detected at %s", fmt.Errorf("directory already visited"), path)
			return false
		}
	}

	if opts.OneFilesystem && here.dev != rootDev {
		if opts.VerboseAtLeast(1) && w.Reporter != nil {
			w.Reporter.Error("not crossing mount point at %s", path)
		}
		return true
	}

	if !opts.Recursive {
		if w.Reporter != nil {
			w.Reporter.Error("%s: is a directory", path)
		}
		return false
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		w.report(opts, "cannot read directory %s", err, path)
		return false
	}

	ok := true
	children := append(append([]devIno{}, ancestors...), here)
	for _, e := range entries {
		childPath := filepath.Join(path, e.Name())
		childFi, err := os.Lstat(childPath)
		if err != nil {
			if os.IsNotExist(err) && opts.Force {
				continue
			}
			w.report(opts, "cannot access %s", err, childPath)
			ok = false
			continue
		}
		if !w.visit(childPath, childFi, opts, rootDev, children) {
			ok = false
		}
	}

	if !ok {
		return false
	}

	// Post-order: the directory itself, now empty of everything the
	// walker could remove.
	if !w.confirm(path, fi, opts) {
		return true
	}
	if err := w.Scrubber.RenameUnlink(path); err != nil {
		w.report(opts, "cannot remove directory %s", err, path)
		return false
	}
	return true
}

func (w *Walker) visitLeaf(path string, fi os.FileInfo, opts options.Set) bool {
	if !w.confirm(path, fi, opts) {
		return true
	}

	err := w.Driver.SecureUnlink(path, opts)
	if err == nil {
		return true
	}
	if errors.Is(err, target.ErrTooManyLinks) {
		if opts.VerboseAtLeast(1) && w.Reporter != nil {
			w.Reporter.Error("%s: unlinked without overwrite (multiple hard links)", path)
		}
		return true
	}
	if os.IsNotExist(err) && opts.Force {
		return true
	}
	w.report(opts, "cannot remove %s", err, path)
	return false
}

// confirm implements spec §4.5's "Prompting" subsection. It returns false
// when the entry should be skipped entirely.
func (w *Walker) confirm(path string, fi os.FileInfo, opts options.Set) bool {
	if opts.Force {
		if opts.VerboseAtLeast(1) && w.Reporter != nil {
			w.Reporter.Error("removing %s", path)
		}
		return true
	}

	isSymlink := fi.Mode()&os.ModeSymlink != 0

	if fi.Mode().IsRegular() {
		if err := probeWriteAccess(path); err != nil {
			if w.Prompter == nil || !w.Prompter.Confirm(fmt.Sprintf("Remove write protected file %s? (y/n)", path)) {
				return false
			}
			if err := os.Chmod(path, fi.Mode().Perm()|0o600); err != nil {
				w.report(opts, "skipping %s", err, path)
				return false
			}
		}
	}

	if opts.Interactive && (fi.Mode().IsRegular() || isSymlink) {
		if w.Prompter == nil {
			return true
		}
		return w.Prompter.Confirm(fmt.Sprintf("Remove %s? (y/n)", path))
	}

	return true
}

// probeWriteAccess reports whether path can be opened for writing, without
// holding the descriptor open; the Target Driver performs the real open.
func probeWriteAccess(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}

func (w *Walker) report(opts options.Set, format string, err error, args ...interface{}) {
	if w.Reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w.Reporter.Errorp(err, "%s", msg)
}
