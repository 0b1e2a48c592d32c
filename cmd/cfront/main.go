// Command cfront is the CLI entry point: parse flags, run the compile pipeline,
// report errors. Grounded on the teacher's src/main.go run/main split (flag
// parsing and exit-code handling live in main, the actual pipeline lives in a
// separate run function so it stays testable without touching os.Exit).
package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"

	"cfront/src/driver"
	"cfront/src/util"
)

// run dispatches to the single-file or multi-file pipeline depending on how many
// positional sources were given, matching SPEC_FULL.md §6.1's CLI driver surface:
// one source goes through driver.CompileOne directly, more than one fans out
// through driver.CompileAll so -t's worker-pool partitioning actually has
// something to partition.
func run(opt util.Options) error {
	if opt.DebugStats {
		glog.V(1).Infof("compiling %s -> %s", opt.Src, opt.Out)
	}
	if len(opt.Sources) <= 1 {
		return driver.CompileOne(opt)
	}

	units := make([]util.Options, len(opt.Sources))
	for i, src := range opt.Sources {
		u := opt
		u.Src = src
		u.Sources = nil
		// -o names one file; with multiple sources each unit falls back to its own
		// default output name instead of every unit clobbering the same path.
		u.Out = ""
		units[i] = u
	}
	return driver.CompileAll(units)
}

func main() {
	defer glog.Flush()

	opt, err := util.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cfront: %s\n", err)
		os.Exit(2)
	}
	if len(opt.Sources) == 0 {
		fmt.Fprintln(os.Stderr, "cfront: no input file")
		os.Exit(2)
	}

	if err := run(opt); err != nil {
		fmt.Fprintf(os.Stderr, "cfront: %s\n", err)
		os.Exit(1)
	}
}
