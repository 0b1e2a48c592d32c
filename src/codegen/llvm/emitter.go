// Package llvm lowers the AST produced by src/parser into LLVM IR via
// tinygo.org/x/go-llvm, per spec §4.F/§4.G. Grounded on the teacher's
// src/ir/llvm/transform.go (GenLLVM/gen/genFuncHeader/genFuncBody/genExpression/
// genIf/genWhile/genReturn/genType/genTargetTriple), generalized from VSL's
// two-type (int/float) language to the full C type lattice, and extended with the
// redesigns spec §9 calls for: parameters materialized as stack allocas rather than
// SSA renames, a loweredValue{Value, astType} pair threaded everywhere so pointer
// element-type information is never silently lost, real struct/union layout, and
// genuine switch-statement lowering via pre-materialized case blocks.
package llvm

import (
	"fmt"

	"cfront/src/ast"
	"cfront/src/util"

	"tinygo.org/x/go-llvm"
)

// localVar is one entry in a function's scope stack: the alloca backing a local
// variable, its C type, and the name of the function that owns it. owner resolves
// spec §9's "symbol_table_lookup" flagged bug exactly as DESIGN.md records: locals
// carry an owning-function tag checked on lookup, globals don't need one because
// Emitter.globals is only ever populated with process-wide declarations.
type localVar struct {
	ptr   llvm.Value
	typ   *ast.Node
	owner string
}

// globalVar is one entry in the module-wide symbol table.
type globalVar struct {
	ptr llvm.Value
	typ *ast.Node
}

// loweredValue pairs an LLVM value with the C type it was computed from. This is
// the §9 "opaque pointer type info loss" fix: rather than re-deriving a pointer's
// pointee type by introspecting the LLVM type (which opaque/typed pointers can both
// make ambiguous for aggregates), every expression-lowering result carries its own
// AST type alongside the value.
type loweredValue struct {
	Value llvm.Value
	Type  *ast.Node
}

// recordLayout is the computed field table for one struct or union type, built once
// when its definition is first lowered and reused by every `.`/`->`/sizeof site that
// names the same tag.
type recordLayout struct {
	llvmType   llvm.Type
	isUnion    bool
	fieldIndex map[string]int
	fieldType  map[string]*ast.Node
}

// Emitter holds all per-translation-unit lowering state. One Emitter owns one
// llvm.Context; spec §5 requires that a host parallelizing across translation units
// give each worker its own Emitter (see src/driver/batch.go) since contexts are not
// safe for concurrent use.
type Emitter struct {
	opt util.Options

	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder

	target llvm.Target
	triple string
	tm     llvm.TargetMachine
	td     llvm.TargetData

	globals         map[string]globalVar
	typedefs        map[string]*ast.Node
	records         map[string]*recordLayout
	enumConst       map[string]int64
	funcReturnTypes map[string]*ast.Node

	fn       llvm.Value
	fnName   string
	fnRetTyp *ast.Node
	scopes   *util.Stack // of map[string]localVar
	loops    *util.Stack // of loopLabels
	labels   map[string]llvm.BasicBlock

	errs []error
}

type loopLabels struct {
	cont, brk llvm.BasicBlock
}

// NewEmitter constructs an Emitter for one translation unit, resolving the target
// triple/machine/data layout up front. Spec §9 flags the teacher's
// "allocated_triple disposed twice" bug as coming from deferring target-machine
// construction to the very end and fumbling ownership; resolving it here, once, and
// giving the Emitter a single Close that disposes everything exactly once removes
// the ambiguity entirely — and struct/enum layout (needed mid-lowering for sizeof)
// requires real ABI size queries anyway, so the target data has to exist before
// lowering starts, not after.
func NewEmitter(opt util.Options, moduleName string) (*Emitter, error) {
	llvm.InitializeAllTargetInfos()
	llvm.InitializeAllTargetMCs()
	llvm.InitializeAllAsmParsers()
	llvm.InitializeAllAsmPrinters()
	llvm.InitializeAllTargets()

	triple, err := resolveTargetTriple(opt.Target)
	if err != nil {
		return nil, err
	}
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return nil, fmt.Errorf("resolving target triple %q: %w", triple, err)
	}

	ctx := llvm.NewContext()
	mod := ctx.NewModule(moduleName)
	tm := target.CreateTargetMachine(triple, "generic", "",
		levelForOpt(opt.OptLevel), llvm.RelocDefault, llvm.CodeModelDefault)
	td := tm.CreateTargetData()

	mod.SetTarget(triple)
	mod.SetDataLayout(td.String())

	return &Emitter{
		opt:       opt,
		ctx:       ctx,
		mod:       mod,
		builder:   ctx.NewBuilder(),
		target:    target,
		triple:    triple,
		tm:        tm,
		td:        td,
		globals:         make(map[string]globalVar),
		typedefs:        make(map[string]*ast.Node),
		records:         make(map[string]*recordLayout),
		enumConst:       make(map[string]int64),
		funcReturnTypes: make(map[string]*ast.Node),
		scopes:          &util.Stack{},
		loops:           &util.Stack{},
	}, nil
}

func levelForOpt(o int) llvm.CodeGenOptLevel {
	switch {
	case o <= 0:
		return llvm.CodeGenLevelNone
	case o == 1:
		return llvm.CodeGenLevelLess
	case o == 2:
		return llvm.CodeGenLevelDefault
	default:
		return llvm.CodeGenLevelAggressive
	}
}

// Close releases every resource this Emitter owns, in dependency order (target
// data before target machine, builder/module before context).
func (e *Emitter) Close() {
	e.td.Dispose()
	e.tm.Dispose()
	e.builder.Dispose()
	e.mod.Dispose()
	e.ctx.Dispose()
}

// Module exposes the underlying module for output.go's emission stage.
func (e *Emitter) Module() llvm.Module             { return e.mod }
func (e *Emitter) TargetMachine() llvm.TargetMachine { return e.tm }
func (e *Emitter) Triple() string                    { return e.triple }

func (e *Emitter) errorf(loc util.SourceLocation, format string, args ...interface{}) error {
	err := fmt.Errorf("%s: %s", loc, fmt.Sprintf(format, args...))
	e.errs = append(e.errs, err)
	return err
}

// pushScope/popScope/declareLocal/lookup implement the owning-function-tagged
// symbol table spec §9's resolved Open Question describes.
func (e *Emitter) pushScope() { e.scopes.Push(make(map[string]localVar)) }
func (e *Emitter) popScope()  { e.scopes.Pop() }

func (e *Emitter) declareLocal(name string, ptr llvm.Value, typ *ast.Node) {
	scope, _ := e.scopes.Peek().(map[string]localVar)
	if scope == nil {
		return
	}
	scope[name] = localVar{ptr: ptr, typ: typ, owner: e.fnName}
}

// lookup resolves name against the innermost-first scope stack, then falls back to
// the global table. A local whose owner doesn't match the current function is
// skipped, so an alloca belonging to another function is never returned.
func (e *Emitter) lookup(name string) (loweredValue, bool) {
	for i1 := 1; i1 <= e.scopes.Size(); i1++ {
		scope, _ := e.scopes.Get(i1).(map[string]localVar)
		if scope == nil {
			continue
		}
		if v, ok := scope[name]; ok {
			if v.owner != e.fnName {
				continue
			}
			return loweredValue{Value: v.ptr, Type: v.typ}, true
		}
	}
	if g, ok := e.globals[name]; ok {
		return loweredValue{Value: g.ptr, Type: g.typ}, true
	}
	return loweredValue{}, false
}
