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
	"sync"
)

// String is a string preference value, optionally capped to a maximum
// length.
type String struct {
	mu     sync.Mutex
	v      string
	maxLen int
}

// Set accepts a string value, cropping it to the current maximum length if
// one has been set with SetMaxLen.
func (s *String) Set(v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("prefs: cannot set string preference from %T", v)
	}

	s.v = str
	s.crop()

	return nil
}

// SetString implements Pref.
func (s *String) SetString(v string) error {
	return s.Set(v)
}

// SetMaxLen sets the maximum permitted length of the string. A value of
// zero removes any limit. Setting a limit shorter than the current value
// crops it immediately; the cropped characters are discarded, not merely
// hidden, so raising or clearing the limit afterwards does not restore
// them.
func (s *String) SetMaxLen(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxLen = n
	s.crop()
}

func (s *String) crop() {
	if s.maxLen > 0 && len(s.v) > s.maxLen {
		s.v = s.v[:s.maxLen]
	}
}

// String implements Pref.
func (s *String) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v
}
