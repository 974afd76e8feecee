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

// Package watch is the rebuild coordinator: it owns the
// dependency knowledge of the last successful build and decides, when the
// filesystem reports changes, how little work a re-run can get away with.
// The raw file-change observer is an external collaborator reached only
// through the Watcher interface; the coordinator never touches assembler
// state directly, it just re-runs the Build function it was given.
package watch

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/jetsetilly/gbasm/assert"
	"github.com/jetsetilly/gbasm/internal/imports"
)

// Watcher is the file-change observer: each receive is one batch of paths
// that changed together. Closing the channel ends watch mode.
type Watcher interface {
	Changes() <-chan []string
}

// Build runs one full assembly. It reports every file read, the
// dependency edges between them, and the final image; printfOut receives
// the `.printf` transcript.
type Build func(printfOut io.Writer) (files []string, graph map[string][]string, image []byte, err error)

// DefaultDebounce is the quiet period after the last change notification
// before a rebuild runs.
const DefaultDebounce = 3 * time.Second

// Coordinator drives repeated builds. Between builds it remembers the
// last successful build's file set, dependency graph, printf transcript
// and image, so each change batch can be answered with the minimum of
// re-execution and output.
type Coordinator struct {
	Build    Build
	Watcher  Watcher
	Output   io.Writer
	Debounce time.Duration

	// Cache, when set, is invalidated for exactly the affected paths
	// before a rebuild, so unaffected imports replay their cached
	// contents instead of going back to the filesystem.
	Cache *CachedReader

	// DisplayPath, when set, rewrites paths for the "watch:" line only;
	// dependency tracking always uses paths exactly as Build reports
	// them.
	DisplayPath func(string) string

	built      bool
	files      []string
	fileSet    map[string]bool
	graph      map[string][]string
	transcript string
	image      []byte

	// the assembler core is single-threaded (only the Watcher runs on its
	// own task): every build must happen on the goroutine that created
	// the Coordinator.
	goroutineID uint64
}

// New returns a Coordinator with the default debounce period.
func New(build Build, watcher Watcher, output io.Writer) *Coordinator {
	return &Coordinator{
		Build:       build,
		Watcher:     watcher,
		Output:      output,
		Debounce:    DefaultDebounce,
		goroutineID: assert.GetGoRoutineID(),
	}
}

// Run performs the initial build and then loops, draining change batches
// from the Watcher until its channel closes or quit is signalled. A build
// failure prints a single "! ..." line and preserves the previous good
// output.
func (c *Coordinator) Run(quit <-chan struct{}) error {
	c.runBuild()

	for {
		select {
		case <-quit:
			return nil
		case batch, ok := <-c.Watcher.Changes():
			if !ok {
				return nil
			}
			batch = c.debounce(batch, quit)
			c.OnChange(batch)
		}
	}
}

// debounce keeps absorbing further change batches until the Debounce
// period passes without one.
func (c *Coordinator) debounce(batch []string, quit <-chan struct{}) []string {
	timer := time.NewTimer(c.Debounce)
	defer timer.Stop()
	for {
		select {
		case more, ok := <-c.Watcher.Changes():
			if !ok {
				return batch
			}
			batch = append(batch, more...)
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(c.Debounce)
		case <-timer.C:
			return batch
		case <-quit:
			return batch
		}
	}
}

// OnChange answers one (already debounced) batch of changed paths. If no
// file the last build depended on is among them, nothing is re-executed
// at all; otherwise the affected set is invalidated in the cache and the
// build re-runs.
func (c *Coordinator) OnChange(changed []string) {
	affected := c.Affected(changed)
	if c.built && len(affected) == 0 {
		return
	}
	if c.Cache != nil {
		c.Cache.Invalidate(affected)
	}
	c.runBuild()
}

// Affected computes the downstream closure of the changed paths over the
// last build's dependency graph: each changed file the build read, plus
// every file whose evaluation referenced an affected file through
// `.include`/`.import`/`.embed`/`.script`, transitively.
func (c *Coordinator) Affected(changed []string) []string {
	if c.fileSet == nil {
		return changed
	}

	// dependents[t] lists the files that referenced t.
	dependents := make(map[string][]string)
	for from, tos := range c.graph {
		for _, to := range tos {
			dependents[to] = append(dependents[to], from)
		}
	}

	seen := make(map[string]bool)
	var queue []string
	for _, p := range changed {
		if c.fileSet[p] && !seen[p] {
			seen[p] = true
			queue = append(queue, p)
		}
	}

	var out []string
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		out = append(out, p)
		for _, dep := range dependents[p] {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return out
}

func (c *Coordinator) runBuild() {
	if assert.GetGoRoutineID() != c.goroutineID {
		panic("watch: build attempted away from the coordinator's goroutine")
	}

	var transcript bytes.Buffer
	files, graph, image, err := c.Build(&transcript)
	if err != nil {
		fmt.Fprintf(c.Output, "! %s\n", err)
		return
	}

	c.printTranscript(transcript.String())

	c.built = true
	c.files = files
	c.fileSet = make(map[string]bool, len(files))
	for _, f := range files {
		c.fileSet[f] = true
	}
	c.graph = graph
	c.image = image

	fmt.Fprintf(c.Output, "> % x\n", image)

	display := files
	if c.DisplayPath != nil {
		display = make([]string, len(files))
		for i, f := range files {
			display[i] = c.DisplayPath(f)
		}
	}
	fmt.Fprintf(c.Output, "watch: %s\n", strings.Join(display, " "))
}

// printTranscript prints the new build's printf output. After the first
// build only the lines that changed since the previous transcript are
// shown, so the terminal reflects what the re-run actually altered.
func (c *Coordinator) printTranscript(transcript string) {
	defer func() { c.transcript = transcript }()

	if !c.built {
		fmt.Fprint(c.Output, transcript)
		return
	}
	if transcript == c.transcript {
		return
	}

	// line-mode diff, so an insertion is always a whole printf line
	dmp := diffmatchpatch.New()
	c1, c2, lines := dmp.DiffLinesToChars(c.transcript, transcript)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lines)
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffInsert {
			continue
		}
		for _, line := range strings.Split(strings.Trim(d.Text, "\n"), "\n") {
			if line != "" {
				fmt.Fprintln(c.Output, line)
			}
		}
	}
}

// Image returns the most recent successful build's output.
func (c *Coordinator) Image() []byte { return c.image }

// CachedReader decorates an imports.Reader with a content cache, so the
// re-runs the coordinator triggers replay unchanged files from memory.
// Invalidation is per-path and driven by the coordinator's affected set.
type CachedReader struct {
	inner imports.Reader

	mu    sync.Mutex
	cache map[string][]byte
}

// NewCachedReader wraps inner.
func NewCachedReader(inner imports.Reader) *CachedReader {
	return &CachedReader{inner: inner, cache: make(map[string][]byte)}
}

// ReadFile implements imports.Reader.
func (r *CachedReader) ReadFile(path string) ([]byte, error) {
	r.mu.Lock()
	b, ok := r.cache[path]
	r.mu.Unlock()
	if ok {
		return b, nil
	}

	b, err := r.inner.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.cache[path] = b
	r.mu.Unlock()
	return b, nil
}

// Invalidate drops the named paths from the cache, forcing the next read
// back to the underlying Reader.
func (r *CachedReader) Invalidate(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range paths {
		delete(r.cache, p)
	}
}
