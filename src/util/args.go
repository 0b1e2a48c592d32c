package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Backend identifies which code generation backend a compilation targets. Only
// BackendLLVM is implemented; the others are accepted by the flag parser (so driver
// scripts that probe `--backend=...` don't choke) and rejected later with a clear
// error.
type Backend int

const (
	BackendLLVM Backend = iota
	BackendRust
	BackendZig
	BackendC
)

// EmitKind selects what CompileAll/Emitter write to -o.
type EmitKind int

const (
	EmitObject EmitKind = iota
	EmitAssembly
	EmitLLVMIR
	EmitBitcode
)

// Options holds every flag the CLI driver (cmd/cfront) understands, per spec §6.1.
// The core library (src/lexer, src/parser, src/codegen/llvm) only depends on the
// fields it actually needs; Options itself is a driver-level convenience, not part
// of the library surface.
type Options struct {
	Src     string   // Path to the (already preprocessed) input file. First entry of Sources.
	Sources []string // All positional input files given on the command line.
	Out     string   // Output path. Defaults to "a.out" for links, "<src>.o" otherwise.
	Target  string   // LLVM target triple override, e.g. "x86_64-pc-linux-gnu".
	Backend Backend

	OptLevel   int  // 0-3. -Os/-Oz normalize to 2.
	DebugInfo  bool // -g. Accepted, no-op at the core level.
	EmitAsm    bool // -S
	CompileOne bool // -c: compile, don't link.
	EmitIR     bool // --emit-llvm
	Emit       EmitKind

	Includes []string          // -I paths, forwarded to the (external) preprocessor.
	Defines  map[string]string // -D macro[=val], forwarded to the (external) preprocessor.

	Threads int // Worker count for src/driver.CompileAll across multiple translation units.

	// Debug flags. Each gates glog.V(n) logging in the corresponding stage.
	DebugLexer   bool
	DebugParser  bool
	DebugAST     bool
	DebugCodegen bool
	DebugTokens  bool
	DebugStats   bool
	Verbose      bool
	DebugFile    string
}

const appVersion = "cfront 1.0"
const maxThreads = 64

// ParseArgs parses args (typically os.Args[1:]) into an Options value, following the
// flag grammar in spec §6.1. The loop-over-args shape (rather than a flag-parsing
// library) matches the teacher's util/args.go: nothing in this codebase's lineage
// reaches for a flag library, so none is introduced here either.
func ParseArgs(args []string) (Options, error) {
	opt := Options{OptLevel: 0, Threads: 1, Defines: make(map[string]string)}
	if len(args) == 0 {
		return opt, nil
	}

	next := func(i int, flag string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("flag %s requires an argument", flag)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-h" || a == "--h" || a == "-help" || a == "--help":
			printHelp()
			os.Exit(0)
		case a == "-v" || a == "--v" || a == "-version" || a == "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case a == "-o":
			v, err := next(i, a)
			if err != nil {
				return opt, err
			}
			opt.Out = v
			i++
		case a == "-O0":
			opt.OptLevel = 0
		case a == "-O1":
			opt.OptLevel = 1
		case a == "-O2":
			opt.OptLevel = 2
		case a == "-O3":
			opt.OptLevel = 3
		case a == "-Os" || a == "-Oz":
			opt.OptLevel = 2
		case a == "-g":
			opt.DebugInfo = true
		case a == "-S":
			opt.EmitAsm = true
			opt.Emit = EmitAssembly
		case a == "-c":
			opt.CompileOne = true
		case a == "--emit-llvm":
			opt.EmitIR = true
			opt.Emit = EmitLLVMIR
		case strings.HasPrefix(a, "--backend="):
			switch strings.TrimPrefix(a, "--backend=") {
			case "llvm":
				opt.Backend = BackendLLVM
			case "rust":
				opt.Backend = BackendRust
			case "zig":
				opt.Backend = BackendZig
			case "c":
				opt.Backend = BackendC
			default:
				return opt, fmt.Errorf("unknown backend %q", a)
			}
		case strings.HasPrefix(a, "--target="):
			opt.Target = strings.TrimPrefix(a, "--target=")
		case strings.HasPrefix(a, "-I"):
			if p := strings.TrimPrefix(a, "-I"); p != "" {
				opt.Includes = append(opt.Includes, p)
			}
		case strings.HasPrefix(a, "-D"):
			def := strings.TrimPrefix(a, "-D")
			if eq := strings.IndexByte(def, '='); eq >= 0 {
				opt.Defines[def[:eq]] = def[eq+1:]
			} else {
				opt.Defines[def] = "1"
			}
		case a == "-t":
			v, err := next(i, a)
			if err != nil {
				return opt, err
			}
			n := 0
			if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n < 1 || n > maxThreads {
				return opt, fmt.Errorf("thread count must be an integer in range [1, %d]", maxThreads)
			}
			opt.Threads = n
			i++
		case a == "--debug-lexer":
			opt.DebugLexer = true
		case a == "--debug-parser":
			opt.DebugParser = true
		case a == "--debug-ast":
			opt.DebugAST = true
		case a == "--debug-codegen":
			opt.DebugCodegen = true
		case a == "--debug-tokens":
			opt.DebugTokens = true
		case a == "--debug-stats":
			opt.DebugStats = true
		case a == "--debug-verbose":
			opt.Verbose = true
		case a == "--debug-all":
			opt.DebugLexer, opt.DebugParser, opt.DebugAST = true, true, true
			opt.DebugCodegen, opt.DebugTokens, opt.DebugStats, opt.Verbose = true, true, true, true
		case a == "--debug-file":
			v, err := next(i, a)
			if err != nil {
				return opt, err
			}
			opt.DebugFile = v
			i++
		case strings.HasPrefix(a, "-"):
			return opt, fmt.Errorf("unexpected flag: %s", a)
		default:
			opt.Sources = append(opt.Sources, a)
		}
	}
	if len(opt.Sources) > 0 {
		opt.Src = opt.Sources[0]
	}
	return opt, nil
}

// printHelp prints usage information, grounded on the teacher's tabwriter-based help.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-o <file>\tOutput path (default a.out).")
	_, _ = fmt.Fprintln(w, "-O0|-O1|-O2|-O3|-Os|-Oz\tOptimization level.")
	_, _ = fmt.Fprintln(w, "-g\tEmit debug info (accepted, no-op at core level).")
	_, _ = fmt.Fprintln(w, "-S\tEmit assembly.")
	_, _ = fmt.Fprintln(w, "-c\tCompile only, do not link.")
	_, _ = fmt.Fprintln(w, "--emit-llvm\tEmit textual LLVM IR.")
	_, _ = fmt.Fprintln(w, "--backend=llvm|rust|zig|c\tSelect backend (only llvm is implemented).")
	_, _ = fmt.Fprintln(w, "--target=<triple>\tLLVM target triple.")
	_, _ = fmt.Fprintln(w, "-I<path>\tAdd include path, forwarded to the preprocessor.")
	_, _ = fmt.Fprintln(w, "-D<macro>=<val>\tDefine macro, forwarded to the preprocessor.")
	_, _ = fmt.Fprintf(w, "-t <n>\tWorker threads for multi-file compilation. Range [1, %d].\n", maxThreads)
	_, _ = fmt.Fprintln(w, "--debug-lexer|parser|ast|codegen|tokens|stats|verbose|all\tDebug logging.")
	_, _ = fmt.Fprintln(w, "--debug-file <path>\tRedirect debug logging to a file.")
	_, _ = fmt.Fprintln(w, "-h, -help, -v, -version\tUsage / version.")
	_ = w.Flush()
}
