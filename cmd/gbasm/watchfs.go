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

package main

import (
	"os"
	"sync"
	"time"
)

// pollWatcher is the CLI's file-change observer: a one-second modtime
// poll over the file set of the last successful build. It satisfies
// watch.Watcher; the coordinator neither knows nor cares that the
// observation is polling rather than kernel notification.
type pollWatcher struct {
	mu    sync.Mutex
	mtime map[string]time.Time

	ch   chan []string
	quit chan struct{}
}

func newPollWatcher() *pollWatcher {
	w := &pollWatcher{
		mtime: make(map[string]time.Time),
		ch:    make(chan []string, 1),
		quit:  make(chan struct{}),
	}
	go w.loop()
	return w
}

// watch replaces the observed file set, recording each file's current
// modtime as the baseline.
func (w *pollWatcher) watch(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mtime = make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil {
			w.mtime[p] = fi.ModTime()
		}
	}
}

// Changes implements watch.Watcher.
func (w *pollWatcher) Changes() <-chan []string { return w.ch }

func (w *pollWatcher) stop() { close(w.quit) }

func (w *pollWatcher) loop() {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-w.quit:
			return
		case <-tick.C:
			if batch := w.poll(); len(batch) > 0 {
				select {
				case w.ch <- batch:
				case <-w.quit:
					return
				}
			}
		}
	}
}

func (w *pollWatcher) poll() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var batch []string
	for p, t := range w.mtime {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !fi.ModTime().Equal(t) {
			w.mtime[p] = fi.ModTime()
			batch = append(batch, p)
		}
	}
	return batch
}
