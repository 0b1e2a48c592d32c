// output.go runs the optimization pass pipeline and emits the final artifact,
// grounded on the tail of the teacher's GenLLVM (EmitToMemoryBuffer + file write),
// reusing the TargetMachine/TargetData NewEmitter already constructed instead of
// rebuilding them here — the explicit fix for spec §9's ambiguous double-dispose of
// the target triple/machine pair.
package llvm

import (
	"fmt"
	"os"

	"cfront/src/util"

	"tinygo.org/x/go-llvm"
)

// Verify runs LLVM's module verifier, surfacing a malformed-IR bug in this
// emitter itself (as opposed to a user source error, which is caught earlier and
// reported through Emitter.errorf) before any optimization pass gets a chance to
// crash on it.
func (e *Emitter) Verify() error {
	return llvm.VerifyModule(e.mod, llvm.ReturnStatusAction)
}

// Optimize runs LLVM's new pass manager over the module via the named pipeline
// `default<On>`, matching the teacher's opt-level dial (src/ir/optimise.go selects
// a pass list by level; this emitter hands that selection to LLVM's own pipeline
// parser instead of hand-listing individual passes) but targeting the new pass
// manager's PassBuilderOptions/RunPasses entry point rather than the legacy
// PassManagerBuilder, since the teacher never had an LLVM backend to optimize
// through in the first place — this whole pipeline is new. verify_each is always
// on; loop-interleave/loop-vectorize/slp-vectorize switch on at O2, loop-unroll at
// O3, mirroring what `default<On>` itself would otherwise leave to opt's defaults.
func (e *Emitter) Optimize() error {
	if e.opt.OptLevel <= 0 {
		return nil
	}

	popts := llvm.NewPassBuilderOptions()
	defer popts.Dispose()
	popts.SetVerifyEach(true)
	if e.opt.OptLevel >= 2 {
		popts.SetLoopInterleaving(true)
		popts.SetLoopVectorization(true)
		popts.SetSLPVectorization(true)
	}
	if e.opt.OptLevel >= 3 {
		popts.SetLoopUnrolling(true)
	}

	pipeline := fmt.Sprintf("default<O%d>", e.opt.OptLevel)
	if err := e.mod.RunPasses(pipeline, e.tm, popts); err != nil {
		return fmt.Errorf("running optimization pipeline %q: %w", pipeline, err)
	}
	return nil
}

// Emit writes the module to opt.Out (or a derived default name) in the format
// opt.Emit selects, mirroring the teacher's EmitToMemoryBuffer-then-write-file
// sequence for object output and extending it with the IR/assembly/bitcode
// variants spec §4.G's output driver adds.
func (e *Emitter) Emit() error {
	out := e.outputPath()

	switch e.opt.Emit {
	case util.EmitLLVMIR:
		return os.WriteFile(out, []byte(e.mod.String()), 0644)
	case util.EmitBitcode:
		return llvm.WriteBitcodeToFile(e.mod, out)
	case util.EmitAssembly:
		buf, err := e.tm.EmitToMemoryBuffer(e.mod, llvm.AssemblyFile)
		if err != nil {
			return err
		}
		return os.WriteFile(out, buf.Bytes(), 0644)
	default:
		buf, err := e.tm.EmitToMemoryBuffer(e.mod, llvm.ObjectFile)
		if err != nil {
			return err
		}
		if buf.IsNil() {
			return fmt.Errorf("could not emit compiled code to memory for %s", e.opt.Src)
		}
		return os.WriteFile(out, buf.Bytes(), 0755)
	}
}

func (e *Emitter) outputPath() string {
	if e.opt.Out != "" {
		return e.opt.Out
	}
	base := e.opt.Src
	for i1 := len(base) - 1; i1 >= 0; i1-- {
		if base[i1] == '/' {
			base = base[i1+1:]
			break
		}
	}
	for i1 := len(base) - 1; i1 >= 0; i1-- {
		if base[i1] == '.' {
			base = base[:i1]
			break
		}
	}
	switch e.opt.Emit {
	case util.EmitLLVMIR:
		return base + ".ll"
	case util.EmitAssembly:
		return base + ".s"
	case util.EmitBitcode:
		return base + ".bc"
	default:
		return base + ".o"
	}
}
