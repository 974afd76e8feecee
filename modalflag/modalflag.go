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

// Package modalflag wraps the standard library's flag package with support
// for a chain of sub-modes, so a command line such as
//
//	gbasm make rom.s -o rom.gba
//
// can be parsed as a "make" mode carrying its own flag set, with the
// remaining positional arguments handed back to the caller. cmd/gbasm uses
// one Modes value per subcommand.
package modalflag

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ParseResult is returned by Parse to tell the caller what happened.
type ParseResult int

const (
	// ParseContinue means flags were parsed successfully and the caller
	// should proceed.
	ParseContinue ParseResult = iota

	// ParseHelp means help text was printed to Output and the caller
	// should stop without error.
	ParseHelp
)

// Modes parses a single level of a command line: its own flags, plus an
// optional list of sub-modes, one of which may appear as the first
// remaining positional argument.
type Modes struct {
	// Output receives help text. Required.
	Output io.Writer

	args     []string
	fs       *flag.FlagSet
	subModes []string

	mode      string
	path      []string
	remaining []string
}

func (md *Modes) init() {
	if md.fs == nil {
		md.fs = flag.NewFlagSet("", flag.ContinueOnError)
		md.fs.SetOutput(io.Discard)
	}
}

// NewArgs replaces the argument list to be parsed.
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.remaining = nil
}

// AddBool registers a boolean flag and returns a pointer to its value,
// exactly like flag.FlagSet.BoolVar.
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	md.init()
	return md.fs.Bool(name, value, usage)
}

// AddString registers a string flag.
func (md *Modes) AddString(name string, value string, usage string) *string {
	md.init()
	return md.fs.String(name, value, usage)
}

// AddInt registers an integer flag.
func (md *Modes) AddInt(name string, value int, usage string) *int {
	md.init()
	return md.fs.Int(name, value, usage)
}

// AddVar registers a flag with custom parsing, exactly like
// flag.FlagSet.Var. Repeatable flags (--define) are the main use.
func (md *Modes) AddVar(value flag.Value, name string, usage string) {
	md.init()
	md.fs.Var(value, name, usage)
}

// AddSubModes declares the sub-modes available at this level. The first
// entry is the default used when nothing is specified on the command line.
func (md *Modes) AddSubModes(modes ...string) {
	md.subModes = modes
}

// Mode returns the sub-mode chosen by the most recent Parse, or the empty
// string if no sub-modes were declared.
func (md *Modes) Mode() string {
	return md.mode
}

// Path returns the sequence of sub-modes chosen so far, space separated.
func (md *Modes) Path() string {
	return strings.Join(md.path, " ")
}

// RemainingArgs returns the positional arguments left over after flags and
// any sub-mode have been consumed.
func (md *Modes) RemainingArgs() []string {
	return md.remaining
}

// Parse consumes flags (and -help/--help/-h) from the argument list set by
// NewArgs, then resolves the sub-mode, if any were declared.
func (md *Modes) Parse() (ParseResult, error) {
	md.init()

	args := make([]string, 0, len(md.args))
	help := false
	for _, a := range md.args {
		if a == "-help" || a == "--help" || a == "-h" {
			help = true
			continue
		}
		args = append(args, a)
	}

	if help {
		md.printHelp()
		return ParseHelp, nil
	}

	if err := md.fs.Parse(args); err != nil {
		return ParseContinue, err
	}
	md.remaining = md.fs.Args()

	if len(md.subModes) > 0 {
		md.mode = md.subModes[0]
		if len(md.remaining) > 0 {
			for _, m := range md.subModes {
				if m == md.remaining[0] {
					md.mode = m
					md.path = append(md.path, m)
					md.remaining = md.remaining[1:]
					break
				}
			}
		}
	}

	return ParseContinue, nil
}

func (md *Modes) printHelp() {
	var numFlags int
	md.fs.VisitAll(func(*flag.Flag) { numFlags++ })

	if numFlags == 0 && len(md.subModes) == 0 {
		fmt.Fprint(md.Output, "No help available\n")
		return
	}

	fmt.Fprint(md.Output, "Usage:\n")

	if numFlags > 0 {
		md.fs.SetOutput(md.Output)
		md.fs.PrintDefaults()
		md.fs.SetOutput(io.Discard)
	}

	if len(md.subModes) > 0 {
		if numFlags > 0 {
			fmt.Fprint(md.Output, "\n")
		}
		fmt.Fprintf(md.Output, "  available sub-modes: %s\n", strings.Join(md.subModes, ", "))
		fmt.Fprintf(md.Output, "    default: %s\n", md.subModes[0])
	}
}
