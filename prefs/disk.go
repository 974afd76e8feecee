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

package prefs

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// WarningBoilerPlate is written as the first line of every preferences
// file, ahead of the sorted key/value pairs.
const WarningBoilerPlate = "# generated by gbasm -- edits will be overwritten"

// Disk is a named collection of preference values backed by a single file
// on disk. Saving a Disk merges its registered values with whatever keys
// are already present in the file, so that two Disk instances opened
// against the same path but registering different keys don't clobber one
// another.
type Disk struct {
	mu    sync.Mutex
	path  string
	prefs map[string]Pref
}

// NewDisk prepares a Disk rooted at path. The file need not exist yet; it
// is created on the first Save.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:  path,
		prefs: make(map[string]Pref),
	}, nil
}

// Add registers a preference value under name. It is an error to register
// the same name twice.
func (d *Disk) Add(name string, p Pref) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.prefs[name]; ok {
		return fmt.Errorf("prefs: %q is already registered", name)
	}

	d.prefs[name] = p

	return nil
}

// Save writes the registered preferences to disk, merged with any keys
// already present in the file that this Disk instance did not register.
// Keys are written in alphabetical order.
func (d *Disk) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	merged, err := readPrefsFile(d.path)
	if err != nil {
		return err
	}

	for name, p := range d.prefs {
		merged[name] = p.String()
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(WarningBoilerPlate)
	b.WriteString("\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s :: %s\n", k, merged[k])
	}

	return os.WriteFile(d.path, []byte(b.String()), 0o644)
}

// Load reads the file and applies any values it finds for the currently
// registered preferences. Keys present in the file but not registered with
// this Disk are ignored.
func (d *Disk) Load() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	onDisk, err := readPrefsFile(d.path)
	if err != nil {
		return err
	}

	for name, p := range d.prefs {
		v, ok := onDisk[name]
		if !ok {
			continue
		}
		if err := p.SetString(v); err != nil {
			return fmt.Errorf("prefs: loading %q: %w", name, err)
		}
	}

	return nil
}

func readPrefsFile(path string) (map[string]string, error) {
	m := make(map[string]string)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("prefs: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, " :: ")
		if idx < 0 {
			continue
		}

		m[line[:idx]] = line[idx+len(" :: "):]
	}

	return m, nil
}
