// function.go lowers one FunctionDecl, grounded on the teacher's genFuncHeader
// (name/return-type/param-type resolution, duplicate-declaration check against the
// shared symbol table, AddFunction + parameter naming) and genFuncBody (fresh scope
// stack per function, fresh basic block, body statements lowered in sequence), with
// one deliberate departure spec §9 calls for: parameters are stored into their own
// alloca in the prologue instead of the teacher's bare SSA-value parameter binding,
// so a parameter can be reassigned inside the body the same way any other local can.
package llvm

import (
	"cfront/src/ast"

	"tinygo.org/x/go-llvm"
)

// lowerFunctionDecl declares (and, if a body is present, defines) one function.
func (e *Emitter) lowerFunctionDecl(n *ast.Node) error {
	fd := n.Data.(ast.FuncData)

	if existing := e.mod.NamedFunction(fd.Name); !existing.IsNil() {
		if fd.Body == nil {
			return nil // Re-declaration of an already-known prototype; nothing to do.
		}
		if existing.BasicBlocksCount() > 0 {
			return e.errorf(n.Loc, "redefinition of function %q", fd.Name)
		}
		e.fn = existing
	} else {
		ftyp, err := e.functionLLVMType(fd)
		if err != nil {
			return err
		}
		e.fn = llvm.AddFunction(e.mod, fd.Name, ftyp)
		e.nameParams(fd)
	}

	e.funcReturnTypes[fd.Name] = fd.ReturnType

	if fd.Body == nil {
		return nil
	}

	e.fnName = fd.Name
	e.fnRetTyp = fd.ReturnType
	e.labels = make(map[string]llvm.BasicBlock)

	entry := llvm.AddBasicBlock(e.fn, "entry")
	e.builder.SetInsertPointAtEnd(entry)
	e.pushScope()
	defer e.popScope()

	if fd.Params != nil {
		for i1, p := range fd.Params.Children {
			pd := p.Data.(ast.DeclData)
			if pd.Name == "" {
				continue
			}
			llt, err := e.llvmType(pd.Type)
			if err != nil {
				return err
			}
			slot := e.builder.CreateAlloca(llt, pd.Name)
			e.builder.CreateStore(e.fn.Param(i1), slot)
			e.declareLocal(pd.Name, slot, pd.Type)
		}
	}

	if err := e.lowerStmt(fd.Body); err != nil {
		return err
	}
	e.terminateImplicitly(fd.ReturnType)
	return nil
}

func (e *Emitter) functionLLVMType(fd ast.FuncData) (llvm.Type, error) {
	ret, err := e.llvmType(fd.ReturnType)
	if err != nil {
		return llvm.Type{}, err
	}
	var params []llvm.Type
	variadic := false
	if fd.Params != nil {
		variadic = fd.Variadic
		for _, p := range fd.Params.Children {
			pd := p.Data.(ast.DeclData)
			pt, err := e.llvmType(pd.Type)
			if err != nil {
				return llvm.Type{}, err
			}
			params = append(params, pt)
		}
	}
	return llvm.FunctionType(ret, params, variadic), nil
}

func (e *Emitter) nameParams(fd ast.FuncData) {
	if fd.Params == nil {
		return
	}
	for i1, p := range fd.Params.Children {
		pd := p.Data.(ast.DeclData)
		if pd.Name != "" && i1 < len(e.fn.Params()) {
			e.fn.Param(i1).SetName(pd.Name)
		}
	}
}

// terminateImplicitly closes a fallen-through function body with an implicit
// `return;` for a void function and a `return 0` (a zero of the return type) for
// every other function, main() included; the last evaluated expression's value is
// not returned.
func (e *Emitter) terminateImplicitly(retTyp *ast.Node) {
	cur := e.builder.GetInsertBlock()
	if !cur.LastInstruction().IsNil() && !cur.LastInstruction().IsATerminatorInst().IsNil() {
		return
	}
	ll, err := e.llvmType(retTyp)
	if err != nil || ll == e.ctx.VoidType() {
		e.builder.CreateRetVoid()
		return
	}
	e.builder.CreateRet(llvm.ConstInt(ll, 0, false))
}
