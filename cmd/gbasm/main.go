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
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jetsetilly/gbasm/internal/directives"
	"github.com/jetsetilly/gbasm/internal/disasm"
	"github.com/jetsetilly/gbasm/internal/emulate"
	"github.com/jetsetilly/gbasm/internal/imports"
	"github.com/jetsetilly/gbasm/internal/itest"
	"github.com/jetsetilly/gbasm/internal/script"
	"github.com/jetsetilly/gbasm/internal/watch"
	"github.com/jetsetilly/gbasm/lexer"
	"github.com/jetsetilly/gbasm/modalflag"
	"github.com/jetsetilly/gbasm/paths"
	"github.com/jetsetilly/gbasm/prefs"
)

// scriptEngine and emulator are the two external collaborators this build
// does not link. A nil engine makes `.script` blocks a directive error; a
// nil emulator makes the `run` subcommand report itself unavailable.
var scriptEngine script.Engine
var emulator emulate.Emulator

func main() {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("make", "dis", "run", "watch", "itest", "version")

	p, err := md.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gbasm: %s\n", err)
		os.Exit(1)
	}
	if p == modalflag.ParseHelp {
		return
	}

	switch md.Mode() {
	case "make":
		err = doMake(md.RemainingArgs())
	case "dis":
		err = doDis(md.RemainingArgs())
	case "run":
		err = doRun(md.RemainingArgs())
	case "watch":
		err = doWatch(md.RemainingArgs())
	case "itest":
		err = doItest(md.RemainingArgs())
	case "version":
		fmt.Println("gbasm v1")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// defineList collects repeated --define KEY=VALUE flags.
type defineList []string

func (d *defineList) String() string { return strings.Join(*d, ";") }

func (d *defineList) Set(s string) error {
	if !strings.Contains(s, "=") {
		return fmt.Errorf("--define wants KEY=VALUE, got %q", s)
	}
	*d = append(*d, s)
	return nil
}

// pushDefines moves the --define flags onto the prefs command-line stack
// and returns them as the seed map for the main import's constant table.
// Values use the same numeric grammar as source literals.
func pushDefines(defs defineList) (map[string]int32, error) {
	var parts []string
	for _, d := range defs {
		idx := strings.Index(d, "=")
		parts = append(parts, d[:idx]+"::"+d[idx+1:])
	}
	prefs.PushCommandLineStack(strings.Join(parts, "; "))

	out := make(map[string]int32, len(defs))
	for _, d := range defs {
		key := d[:strings.Index(d, "=")]
		ok, val := prefs.GetCommandLinePref(key)
		if !ok {
			continue
		}
		v, err := lexer.ParseInt32(val)
		if err != nil {
			return nil, fmt.Errorf("--define %s: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}

// outputPrefs persists the last-used output path, so a bare `gbasm make
// rom.s` reuses wherever the previous build went.
func outputPrefs() (*prefs.Disk, *prefs.String) {
	var output prefs.String
	_ = output.SetString("out.gba")

	path, err := paths.CachePath("", "prefs")
	if err != nil {
		return nil, &output
	}
	dsk, err := prefs.NewDisk(path)
	if err != nil {
		return nil, &output
	}
	_ = dsk.Add("make.output", &output)
	_ = dsk.Load()
	return dsk, &output
}

func doMake(args []string) error {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)

	dsk, outputPref := outputPrefs()
	output := md.AddString("o", outputPref.String(), "output ROM file")
	graph := md.AddString("graph", "", "write the import graph as a dot file")
	var defs defineList
	md.AddVar(&defs, "define", "KEY=VALUE constant seeded into the root file (repeatable)")

	p, err := md.Parse()
	if err != nil {
		return err
	}
	if p == modalflag.ParseHelp {
		return nil
	}
	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("make: exactly one input file expected")
	}

	defines, err := pushDefines(defs)
	if err != nil {
		return err
	}
	defer prefs.PopCommandLineStack()

	d, image, err := directives.Assemble(imports.DefaultReader, scriptEngine, md.RemainingArgs()[0], defines, os.Stdout)
	if err != nil {
		return err
	}

	if *graph != "" {
		f, ferr := os.Create(*graph)
		if ferr != nil {
			return ferr
		}
		d.WriteGraph(f)
		if ferr := f.Close(); ferr != nil {
			return ferr
		}
	}

	if err := os.WriteFile(*output, image, 0o644); err != nil {
		return err
	}

	if dsk != nil {
		_ = outputPref.SetString(*output)
		if dir, perr := paths.CachePath("", ""); perr == nil {
			_ = os.MkdirAll(dir, 0o755)
		}
		_ = dsk.Save()
	}
	return nil
}

func doDis(args []string) error {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	thumb := md.AddBool("thumb", false, "decode as Thumb rather than ARM")
	base := md.AddString("base", "0x08000000", "address of the first byte")
	showBytes := md.AddBool("show-bytes", false, "lead each line with address and raw bytes")

	p, err := md.Parse()
	if err != nil {
		return err
	}
	if p == modalflag.ParseHelp {
		return nil
	}
	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("dis: exactly one input file expected")
	}

	baseAddr, err := lexer.ParseInt32(*base)
	if err != nil {
		return fmt.Errorf("dis: bad --base: %w", err)
	}

	image, err := imports.DefaultReader.ReadFile(md.RemainingArgs()[0])
	if err != nil {
		return err
	}

	var entries []disasm.Entry
	if *thumb {
		entries = disasm.Thumb(image, baseAddr)
	} else {
		entries = disasm.ARM(image, baseAddr)
	}
	return disasm.Write(os.Stdout, entries, *showBytes)
}

func doRun(args []string) error {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	var defs defineList
	md.AddVar(&defs, "define", "KEY=VALUE constant seeded into the root file (repeatable)")

	p, err := md.Parse()
	if err != nil {
		return err
	}
	if p == modalflag.ParseHelp {
		return nil
	}
	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("run: exactly one input file expected")
	}

	defines, err := pushDefines(defs)
	if err != nil {
		return err
	}
	defer prefs.PopCommandLineStack()

	d, image, err := directives.Assemble(imports.DefaultReader, scriptEngine, md.RemainingArgs()[0], defines, os.Stdout)
	if err != nil {
		return err
	}

	if emulator == nil {
		return fmt.Errorf("run: no emulator is linked into this build")
	}
	im := d.Main()
	return emulator.Run(image, im.Base, im.Addresses)
}

func doWatch(args []string) error {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	output := md.AddString("o", "out.gba", "output ROM file")

	p, err := md.Parse()
	if err != nil {
		return err
	}
	if p == modalflag.ParseHelp {
		return nil
	}
	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("watch: exactly one input file expected")
	}
	root := md.RemainingArgs()[0]

	watcher := newPollWatcher()
	defer watcher.stop()

	cwd, _ := os.Getwd()
	cache := watch.NewCachedReader(imports.DefaultReader)
	build := func(printfOut io.Writer) ([]string, map[string][]string, []byte, error) {
		d, image, err := directives.Assemble(cache, scriptEngine, root, nil, printfOut)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := os.WriteFile(*output, image, 0o644); err != nil {
			return nil, nil, nil, err
		}
		d.Log.Write(os.Stdout) // the "read: <path>" lines
		watcher.watch(d.Files)
		return d.Files, d.Graph(), image, nil
	}

	co := watch.New(build, watcher, os.Stdout)
	co.Cache = cache
	// the "watch:" line renders paths relative to the working directory,
	// the same way diagnostics do
	co.DisplayPath = func(p string) string { return paths.Relative(cwd, p) }

	quit := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		close(quit)
	}()

	return co.Run(quit)
}

func doItest(args []string) error {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)

	p, err := md.Parse()
	if err != nil {
		return err
	}
	if p == modalflag.ParseHelp {
		return nil
	}
	if len(md.RemainingArgs()) < 1 {
		return fmt.Errorf("itest: test suite directory expected")
	}

	ok, err := itest.Run(md.RemainingArgs()[0], md.RemainingArgs()[1:], os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("itest: failures")
	}
	return nil
}
