// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package imports

import (
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/jetsetilly/gbasm/errors"
	"github.com/jetsetilly/gbasm/expr"
	"github.com/jetsetilly/gbasm/logger"
)

// Executor runs the full statement stream of one Import -- reading its
// source through the Driver's Reader, tokenising, and dispatching each
// line to the directive executor or instruction encoder (components
// G/F). imports never imports internal/directives (which depends on
// imports for Import/Driver), so the concrete implementation is supplied
// by the caller and invoked through this interface, the same inversion
// the design notes describe for the script/CPU/watch collaborators.
type Executor interface {
	Execute(im *Import) error
}

// status tracks one cached Import's place in the build, so a cyclic
// `.import` (legal, since imports bind names, not bytes) returns the
// in-progress object instead of recursing into Execute a second time.
type status int

const (
	notStarted status = iota
	running
	done
)

// Driver owns the arena of every Import reachable from a build's root
// path, per the design notes: imports hold stable indices into this
// arena rather than pointers to each other, so a dependency cycle never
// becomes an ownership cycle.
type Driver struct {
	reader Reader
	exec   Executor

	Log *logger.Logger

	order  []string
	byPath map[string]*Import
	stat   map[string]status

	// Files is every path actually read during this build, in first-read
	// order -- the watch coordinator's dependency set.
	Files []string

	// graph records, for each path, the `.import`/`.include`/`.embed`
	// targets it referenced, for WriteGraph and for the watch
	// coordinator's downstream-invalidation walk.
	graph map[string][]string

	// onceGuarded is the set of paths a `.once` directive has already let
	// through once in this build; a later `.include` of the same path is
	// skipped. This is independent of stat, which tracks `.import`
	// execution rather than inlined `.include` text.
	onceGuarded map[string]bool

	// Defines seeds the main import's constant table before its first
	// statement runs, from the CLI's repeated --define KEY=VALUE flags.
	Defines map[string]int32

	Bag errors.Bag
}

// NewDriver prepares an empty Driver. exec supplies the statement-level
// interpreter; reader supplies file contents.
func NewDriver(reader Reader, exec Executor) *Driver {
	return &Driver{
		reader:      reader,
		exec:        exec,
		Log:         logger.NewLogger(512),
		byPath:      make(map[string]*Import),
		stat:        make(map[string]status),
		graph:       make(map[string][]string),
		onceGuarded: make(map[string]bool),
	}
}

// SetExecutor wires the statement-level interpreter in after construction.
// The interpreter needs the Driver to exist first (it reads files and
// resolves `.import` targets through it), so the two are connected in two
// steps.
func (d *Driver) SetExecutor(exec Executor) {
	d.exec = exec
}

// ReadFile reads path through the Driver's Reader, recording it in Files
// the first time it is seen.
func (d *Driver) ReadFile(path string) ([]byte, error) {
	b, err := d.reader.ReadFile(path)
	if err != nil {
		// the archive-aware reader already produces a curated I/O error;
		// anything else is normalised to file-not-found here
		if errors.IsAny(err) {
			return nil, err
		}
		return nil, errors.Errorf(errors.Position{}, errors.IOFileNotFound, path)
	}
	seen := false
	for _, f := range d.Files {
		if f == path {
			seen = true
			break
		}
	}
	if !seen {
		d.Files = append(d.Files, path)
	}
	d.Log.Logf(logger.Allow, "read", "%s", path)
	return b, nil
}

// AddEdge records that `from` referenced `to` via an `.include`,
// `.import` or `.embed` directive.
func (d *Driver) AddEdge(from, to string) {
	d.graph[from] = append(d.graph[from], to)
}

// Root builds path as the main input: creates its Import, seeds any CLI
// defines into its scope, runs it to completion, drives the fixed-point
// pass across the whole arena, and finalises every import's emitter. It
// returns the concatenated image in emission order. w receives rendered
// `.printf` lines as the fixed-point pass resolves their arguments.
func (d *Driver) Root(path string, w io.Writer) ([]byte, error) {
	if w == nil {
		w = io.Discard
	}
	im, err := d.get(path, true)
	if err != nil {
		return nil, err
	}
	for name, v := range d.Defines {
		if err := im.Scope.DefConst(errors.Position{File: "<command line>"}, name, expr.Number{V: v}, nil); err != nil {
			return nil, err
		}
	}
	if err := d.run(im); err != nil {
		return nil, err
	}
	if !d.Bag.Empty() {
		return nil, &d.Bag
	}
	if err := d.FixedPoint(w); err != nil {
		return nil, err
	}
	return d.Finalise()
}

// GetOrRun implements `.import "path" { ... }`: it returns the cached
// Import for path, running it to completion the first time it is
// requested. A cyclic `.import` -- path is already `running` somewhere up
// the call stack -- returns the in-progress Import immediately rather than
// recursing; its exports are read again, and correctly, once the Driver's
// fixed-point pass converges after both sides have finished executing.
func (d *Driver) GetOrRun(from string, path string) (*Import, error) {
	d.AddEdge(from, path)

	if im, ok := d.byPath[path]; ok {
		if d.stat[path] == running {
			glog.V(1).Infof("imports: cyclic .import of %q from %q, using in-progress scope", path, from)
			return im, nil
		}
		return im, nil
	}

	im, err := d.get(path, false)
	if err != nil {
		return nil, err
	}
	if err := d.run(im); err != nil {
		return nil, err
	}
	return im, nil
}

func (d *Driver) get(path string, main bool) (*Import, error) {
	if im, ok := d.byPath[path]; ok {
		return im, nil
	}
	im := newImport(path, main, d)
	d.byPath[path] = im
	d.order = append(d.order, path)
	d.stat[path] = notStarted
	return im, nil
}

func (d *Driver) run(im *Import) error {
	d.stat[im.Path] = running
	glog.V(1).Infof("imports: executing %s (main=%v)", im.Path, im.Main)
	if err := d.exec.Execute(im); err != nil {
		return err
	}
	d.stat[im.Path] = done
	return nil
}

// OnceSkip implements `.once`: reports whether path has already been let
// through by an earlier `.once` directive in this build, guarding a
// second `.include` of the same path.
func (d *Driver) OnceSkip(path string) bool {
	return d.onceGuarded[path]
}

// MarkOnceGuarded records that path's `.once` directive has now run, so a
// subsequent `.include` of path is skipped.
func (d *Driver) MarkOnceGuarded(path string) {
	d.onceGuarded[path] = true
}

// FixedPoint repeatedly retries every import's pending writes and drains
// every import's printf queue (in file order, main first) until a full
// pass makes no further progress. w receives rendered `.printf` lines.
// A file's own printf lines stay in source order relative to each other;
// ordering across different files
// follows their `.import` execution order, which Root/GetOrRun already
// fixes.
func (d *Driver) FixedPoint(w io.Writer) error {
	pass := 0
	for {
		pass++
		progress := false

		for _, path := range d.order {
			im := d.byPath[path]
			before := im.Emit.Pending()
			if err := im.Emit.Retry(); err != nil {
				return err
			}
			if im.Emit.Pending() != before {
				glog.V(1).Infof("imports: pass %d resolved %d pending writes in %s", pass, before-im.Emit.Pending(), path)
				progress = true
			}
		}

		for _, path := range d.order {
			im := d.byPath[path]
			for {
				line, ok, err := im.tryHeadPrintf()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				fmt.Fprintln(w, line)
				progress = true
			}
		}

		if !progress {
			break
		}
	}
	return nil
}

// Finalise requires every import's pending-write queue and printf queue to
// be empty, then concatenates every import's bytes in execution order
// (imported-but-not-included files contribute no bytes of their own --
// only `.include`d and the main file's emitter ever receives real output,
// since `.import` only binds names). The first unresolved symbol across
// the whole arena becomes the reported error.
func (d *Driver) Finalise() ([]byte, error) {
	var out []byte
	for _, path := range d.order {
		im := d.byPath[path]
		if im.pendingPrintfs() {
			j := im.printfs[0]
			return nil, errors.Errorf(j.pos, errors.ResolveUnsatisfied, "printf argument")
		}
		b, errs := im.Emit.Finalise()
		if len(errs) > 0 {
			return nil, errs[0]
		}
		if im.Main {
			out = append(out, b...)
		}
	}
	return out, nil
}

// Main returns the root Import, for callers (disassembly's address-list
// consumer, `itest`) that need its Addresses after a build.
func (d *Driver) Main() *Import {
	for _, path := range d.order {
		if d.byPath[path].Main {
			return d.byPath[path]
		}
	}
	return nil
}

// Graph exposes the dependency edges recorded by AddEdge, keyed by
// referencing path, for WriteGraph and for the watch coordinator.
func (d *Driver) Graph() map[string][]string { return d.graph }

// Get returns the cached Import for path, if the build has reached it.
func (d *Driver) Get(path string) (*Import, bool) {
	im, ok := d.byPath[path]
	return im, ok
}
