// stmt.go lowers statement nodes, grounded in structure on the teacher's gen
// dispatch function (one case per statement Kind, threading the scope/loop-label
// stacks through recursive calls) and on genIf/genWhile's then/else/converge and
// head/body/converge basic-block techniques, generalized to the rest of the C
// statement grammar the teacher's VSL source language never had: switch, do-while,
// for, goto (including computed goto), and labeled statements.
package llvm

import (
	"fmt"

	"cfront/src/ast"

	"tinygo.org/x/go-llvm"
)

// lowerStmt lowers one statement. Any error (recorded via Emitter.errorf where the
// statement lowerers raise it) is returned and stops lowering of the enclosing
// function; LowerTranslationUnit then carries on with the next function.
func (e *Emitter) lowerStmt(n *ast.Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.CompoundStmt:
		return e.lowerCompoundStmt(n)
	case ast.ExprStmt:
		_, err := e.lowerExpr(n.Child(0))
		return err
	case ast.NullStmt:
		return nil
	case ast.IfStmt:
		return e.lowerIfStmt(n)
	case ast.SwitchStmt:
		return e.lowerSwitchStmt(n)
	case ast.WhileStmt:
		return e.lowerWhileStmt(n)
	case ast.DoWhileStmt:
		return e.lowerDoWhileStmt(n)
	case ast.ForStmt:
		return e.lowerForStmt(n)
	case ast.GotoStmt:
		return e.lowerGotoStmt(n)
	case ast.ContinueStmt:
		return e.lowerContinueStmt(n)
	case ast.BreakStmt:
		return e.lowerBreakStmt(n)
	case ast.ReturnStmt:
		return e.lowerReturnStmt(n)
	case ast.LabeledStmt:
		return e.lowerLabeledStmt(n)
	case ast.CaseStmt, ast.DefaultStmt:
		// Reached only when a case/default appears inside a sub-block the switch
		// lowerer has already pre-materialized a block for; lowerSwitchStmt's
		// collectCases walk guarantees e.labels holds it.
		return e.lowerCaseBody(n)
	case ast.AsmStmt:
		return nil // Parsed for effect only; spec's Non-goals exclude inline-asm codegen.
	case ast.VarDecl, ast.TypedefDecl, ast.DeclList:
		return e.lowerLocalDecl(n)
	case ast.StructType, ast.UnionType:
		_, _, err := e.lowerRecordType(n)
		return err
	case ast.EnumType:
		return e.lowerEnumType(n)
	case ast.StaticAssert:
		return nil // Compile-time assertion; no runtime code to emit.
	}
	return e.errorf(n.Loc, "unsupported statement kind %s", n.Kind)
}

func (e *Emitter) lowerCompoundStmt(n *ast.Node) error {
	e.pushScope()
	defer e.popScope()
	for _, c := range n.Children {
		// Once the current block ends in a terminator the rest is unreachable; only
		// labels (goto/case targets) still open a block worth lowering.
		cur := e.builder.GetInsertBlock()
		if c.Kind != ast.LabeledStmt && c.Kind != ast.CaseStmt && c.Kind != ast.DefaultStmt &&
			!cur.LastInstruction().IsNil() && !cur.LastInstruction().IsATerminatorInst().IsNil() {
			continue
		}
		if err := e.lowerStmt(c); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) lowerLocalDecl(n *ast.Node) error {
	switch n.Kind {
	case ast.DeclList:
		for _, c := range n.Children {
			if err := e.lowerLocalDecl(c); err != nil {
				return err
			}
		}
		return nil
	case ast.TypedefDecl:
		d := n.Data.(ast.DeclData)
		e.typedefs[d.Name] = d.Type
		return nil
	case ast.VarDecl:
		d := n.Data.(ast.DeclData)
		ll, err := e.llvmType(d.Type)
		if err != nil {
			return err
		}
		slot := e.builder.CreateAlloca(ll, d.Name)
		e.declareLocal(d.Name, slot, d.Type)
		if d.Init != nil {
			if err := e.storeInitializer(slot, d.Type, d.Init); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("lowerLocalDecl: unexpected kind %s", n.Kind)
}

// storeInitializer stores an initializer expression or brace-enclosed
// InitializerList into the alloca at slot, recursing per-element for aggregates.
// Designated initializers reorder by field/index but otherwise follow the same
// positional walk.
func (e *Emitter) storeInitializer(slot llvm.Value, typ *ast.Node, init *ast.Node) error {
	if init.Kind != ast.InitializerList {
		v, err := e.lowerExpr(init)
		if err != nil {
			return err
		}
		conv, err := e.convert(v, typ)
		if err != nil {
			return err
		}
		e.builder.CreateStore(conv.Value, slot)
		return nil
	}

	strip := stripQualifiers(typ)
	switch strip.Kind {
	case ast.ArrayType:
		elemTyp := strip.Child(0)
		idx := 0
		for _, c := range init.Children {
			target := c
			elemIdx := idx
			if c.Kind == ast.DesignatedInit {
				d := c.Data.(ast.DesignatedInitData)
				if d.Index != nil {
					iv := d.Index.Data.(ast.IntLitData)
					elemIdx = int(iv.Value)
				}
				target = d.Value
			}
			zero := llvm.ConstInt(e.ctx.Int32Type(), 0, false)
			eIdx := llvm.ConstInt(e.ctx.Int32Type(), uint64(elemIdx), false)
			addr := e.builder.CreateGEP(slot, []llvm.Value{zero, eIdx}, "")
			if err := e.storeInitializer(addr, elemTyp, target); err != nil {
				return err
			}
			idx = elemIdx + 1
		}
		return nil
	case ast.StructType, ast.UnionType:
		_, rec, err := e.lowerRecordType(strip)
		if err != nil {
			return err
		}
		fieldOrder := orderedFieldNames(strip)
		pos := 0
		for _, c := range init.Children {
			target := c
			name := ""
			if pos < len(fieldOrder) {
				name = fieldOrder[pos]
			}
			if c.Kind == ast.DesignatedInit {
				d := c.Data.(ast.DesignatedInitData)
				name = d.Field
				target = d.Value
			}
			fieldTyp := rec.fieldType[name]
			addr, err := e.lowerMemberAddr(loweredValue{Value: slot, Type: typ}, name)
			if err != nil {
				return err
			}
			if err := e.storeInitializer(addr.Value, fieldTyp, target); err != nil {
				return err
			}
			pos++
		}
		return nil
	}
	return fmt.Errorf("cannot apply a brace initializer to a scalar type")
}

func orderedFieldNames(recType *ast.Node) []string {
	fields := recordFields(recType)
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Data.(ast.FieldData).Name)
	}
	return names
}

func (e *Emitter) lowerEnumType(n *ast.Node) error {
	next := int64(0)
	for _, c := range n.Children {
		ed := c.Data.(ast.EnumeratorData)
		if ed.Value != nil {
			v, err := e.lowerExpr(ed.Value)
			if err != nil {
				return err
			}
			if v.Value.IsAConstantInt().IsNil() {
				return e.errorf(c.Loc, "enumerator %q is not a constant expression", ed.Name)
			}
			next = v.Value.SExtValue()
		}
		e.enumConst[ed.Name] = next
		next++
	}
	return nil
}

func (e *Emitter) lowerIfStmt(n *ast.Node) error {
	d := n.Data.(ast.IfData)
	cond, err := e.lowerExpr(d.Cond)
	if err != nil {
		return err
	}

	thenBB := llvm.AddBasicBlock(e.fn, "")
	mergeBB := llvm.AddBasicBlock(e.fn, "")
	elseBB := mergeBB
	if d.Else != nil {
		elseBB = llvm.AddBasicBlock(e.fn, "")
	}
	e.builder.CreateCondBr(e.toBool(cond), thenBB, elseBB)

	e.builder.SetInsertPointAtEnd(thenBB)
	if err := e.lowerStmt(d.Then); err != nil {
		return err
	}
	e.branchToIfOpen(mergeBB)

	if d.Else != nil {
		e.builder.SetInsertPointAtEnd(elseBB)
		if err := e.lowerStmt(d.Else); err != nil {
			return err
		}
		e.branchToIfOpen(mergeBB)
	}

	e.builder.SetInsertPointAtEnd(mergeBB)
	return nil
}

// branchToIfOpen closes the current block with an unconditional branch to target,
// unless the block already ends in a terminator (a `return`/`goto`/`break` already
// lowered inside it) — branching a second time off an already-terminated block
// would produce invalid IR.
func (e *Emitter) branchToIfOpen(target llvm.BasicBlock) {
	cur := e.builder.GetInsertBlock()
	if cur.LastInstruction().IsNil() || cur.LastInstruction().IsATerminatorInst().IsNil() {
		e.builder.CreateBr(target)
	}
}

func (e *Emitter) lowerWhileStmt(n *ast.Node) error {
	d := n.Data.(ast.WhileData)
	headBB := llvm.AddBasicBlock(e.fn, "")
	bodyBB := llvm.AddBasicBlock(e.fn, "")
	mergeBB := llvm.AddBasicBlock(e.fn, "")

	e.branchToIfOpen(headBB)
	e.builder.SetInsertPointAtEnd(headBB)
	cond, err := e.lowerExpr(d.Cond)
	if err != nil {
		return err
	}
	e.builder.CreateCondBr(e.toBool(cond), bodyBB, mergeBB)

	e.loops.Push(loopLabels{cont: headBB, brk: mergeBB})
	e.builder.SetInsertPointAtEnd(bodyBB)
	if err := e.lowerStmt(d.Body); err != nil {
		e.loops.Pop()
		return err
	}
	e.loops.Pop()
	e.branchToIfOpen(headBB)

	e.builder.SetInsertPointAtEnd(mergeBB)
	return nil
}

func (e *Emitter) lowerDoWhileStmt(n *ast.Node) error {
	d := n.Data.(ast.WhileData)
	bodyBB := llvm.AddBasicBlock(e.fn, "")
	condBB := llvm.AddBasicBlock(e.fn, "")
	mergeBB := llvm.AddBasicBlock(e.fn, "")

	e.branchToIfOpen(bodyBB)
	e.loops.Push(loopLabels{cont: condBB, brk: mergeBB})
	e.builder.SetInsertPointAtEnd(bodyBB)
	if err := e.lowerStmt(d.Body); err != nil {
		e.loops.Pop()
		return err
	}
	e.loops.Pop()
	e.branchToIfOpen(condBB)

	e.builder.SetInsertPointAtEnd(condBB)
	cond, err := e.lowerExpr(d.Cond)
	if err != nil {
		return err
	}
	e.builder.CreateCondBr(e.toBool(cond), bodyBB, mergeBB)

	e.builder.SetInsertPointAtEnd(mergeBB)
	return nil
}

func (e *Emitter) lowerForStmt(n *ast.Node) error {
	d := n.Data.(ast.ForData)
	e.pushScope()
	defer e.popScope()

	if d.Init != nil {
		if err := e.lowerStmt(d.Init); err != nil {
			return err
		}
	}

	headBB := llvm.AddBasicBlock(e.fn, "")
	bodyBB := llvm.AddBasicBlock(e.fn, "")
	incBB := llvm.AddBasicBlock(e.fn, "")
	mergeBB := llvm.AddBasicBlock(e.fn, "")

	e.branchToIfOpen(headBB)
	e.builder.SetInsertPointAtEnd(headBB)
	if d.Cond != nil {
		cond, err := e.lowerExpr(d.Cond)
		if err != nil {
			return err
		}
		e.builder.CreateCondBr(e.toBool(cond), bodyBB, mergeBB)
	} else {
		e.builder.CreateBr(bodyBB)
	}

	e.loops.Push(loopLabels{cont: incBB, brk: mergeBB})
	e.builder.SetInsertPointAtEnd(bodyBB)
	if err := e.lowerStmt(d.Body); err != nil {
		e.loops.Pop()
		return err
	}
	e.loops.Pop()
	e.branchToIfOpen(incBB)

	e.builder.SetInsertPointAtEnd(incBB)
	if d.Inc != nil {
		if _, err := e.lowerExpr(d.Inc); err != nil {
			return err
		}
	}
	e.builder.CreateBr(headBB)

	e.builder.SetInsertPointAtEnd(mergeBB)
	return nil
}

func (e *Emitter) lowerContinueStmt(n *ast.Node) error {
	if e.loops.Size() == 0 {
		return e.errorf(n.Loc, "continue statement not within a loop")
	}
	l := e.loops.Peek().(loopLabels)
	if l.cont.IsNil() {
		// A switch frame with no enclosing loop leaves cont as the zero
		// BasicBlock; branching to it would be invalid IR, so this is the same
		// diagnostic as an unnested continue.
		return e.errorf(n.Loc, "continue statement not within a loop")
	}
	e.builder.CreateBr(l.cont)
	return nil
}

func (e *Emitter) lowerBreakStmt(n *ast.Node) error {
	if e.loops.Size() == 0 {
		return e.errorf(n.Loc, "break statement not within a loop or switch")
	}
	l := e.loops.Peek().(loopLabels)
	e.builder.CreateBr(l.brk)
	return nil
}

func (e *Emitter) lowerReturnStmt(n *ast.Node) error {
	d := n.Data.(ast.ReturnData)
	if d.Value == nil {
		e.builder.CreateRetVoid()
		return nil
	}
	v, err := e.lowerExpr(d.Value)
	if err != nil {
		return err
	}
	conv, err := e.convert(v, e.fnRetTyp)
	if err != nil {
		return err
	}
	e.builder.CreateRet(conv.Value)
	return nil
}

func (e *Emitter) lowerLabeledStmt(n *ast.Node) error {
	d := n.Data.(ast.LabeledData)
	target, ok := e.labels[d.Label]
	if !ok {
		target = llvm.AddBasicBlock(e.fn, d.Label)
		e.labels[d.Label] = target
	}
	e.branchToIfOpen(target)
	e.builder.SetInsertPointAtEnd(target)
	return e.lowerStmt(d.Stmt)
}

func (e *Emitter) lowerGotoStmt(n *ast.Node) error {
	d := n.Data.(ast.GotoData)
	if d.Label == "" {
		// Computed goto: `goto *expr;`, lowered via indirectbr over every block this
		// function has registered as a goto target so far.
		target, err := e.lowerExpr(n.Child(0))
		if err != nil {
			return err
		}
		ib := e.builder.CreateIndirectBr(target.Value, len(e.labels))
		for _, bb := range e.labels {
			ib.AddDest(bb)
		}
		return nil
	}
	target, ok := e.labels[d.Label]
	if !ok {
		target = llvm.AddBasicBlock(e.fn, d.Label)
		e.labels[d.Label] = target
	}
	e.builder.CreateBr(target)
	return nil
}

// lowerSwitchStmt lowers a genuine LLVM `switch` instruction rather than the
// teacher's if/else-if chain approach (VSL has no switch statement at all): every
// case/default value reachable without crossing into a nested switch is
// pre-materialized as a basic block up front so that fallthrough between cases
// (C's defining switch behavior) is just the normal fall-through-if-no-terminator
// behavior of sequentially lowering each block's statements.
func (e *Emitter) lowerSwitchStmt(n *ast.Node) error {
	d := n.Data.(ast.SwitchData)
	tag, err := e.lowerExpr(d.Tag)
	if err != nil {
		return err
	}

	mergeBB := llvm.AddBasicBlock(e.fn, "")
	var cases []*ast.Node
	var defaultCase *ast.Node
	e.collectCases(d.Body, &cases, &defaultCase)

	caseBB := make(map[*ast.Node]llvm.BasicBlock, len(cases))
	for _, c := range cases {
		caseBB[c] = llvm.AddBasicBlock(e.fn, "")
	}
	defaultBB := mergeBB
	if defaultCase != nil {
		defaultBB = llvm.AddBasicBlock(e.fn, "")
		caseBB[defaultCase] = defaultBB
	}

	sw := e.builder.CreateSwitch(tag.Value, defaultBB, len(cases))
	for _, c := range cases {
		cd := c.Data.(ast.CaseData)
		cv, err := e.lowerExpr(cd.Value)
		if err != nil {
			return err
		}
		sw.AddCase(cv.Value, caseBB[c])
	}

	// A switch does not introduce a continue target of its own — `continue` inside
	// a switch body must pass through to the nearest enclosing loop, so the new
	// frame inherits whatever continue target (if any) was already active rather
	// than leaving it as the zero BasicBlock, which would make lowerContinueStmt
	// branch to a null block.
	var enclosingCont llvm.BasicBlock
	if outer, ok := e.loops.Peek().(loopLabels); ok {
		enclosingCont = outer.cont
	}
	e.loops.Push(loopLabels{brk: mergeBB, cont: enclosingCont})
	defer e.loops.Pop()

	order := cases
	if defaultCase != nil {
		order = append(append([]*ast.Node{}, cases...), defaultCase)
	}
	for _, c := range order {
		e.builder.SetInsertPointAtEnd(caseBB[c])
		if err := e.lowerCaseBody(c); err != nil {
			return err
		}
		e.branchToIfOpen(nextBlockOrMerge(order, c, caseBB, mergeBB))
	}

	e.builder.SetInsertPointAtEnd(mergeBB)
	return nil
}

func nextBlockOrMerge(order []*ast.Node, cur *ast.Node, caseBB map[*ast.Node]llvm.BasicBlock, merge llvm.BasicBlock) llvm.BasicBlock {
	for i1, c := range order {
		if c == cur && i1+1 < len(order) {
			return caseBB[order[i1+1]]
		}
	}
	return merge
}

// collectCases walks body depth-first collecting every CaseStmt/DefaultStmt
// reachable without entering a nested SwitchStmt, which is what makes Duff's
// device (a case label nested inside a for-loop body within the switch) lower
// correctly.
func (e *Emitter) collectCases(n *ast.Node, cases *[]*ast.Node, def **ast.Node) {
	if n == nil || n.Kind == ast.SwitchStmt {
		return
	}
	if n.Kind == ast.CaseStmt {
		*cases = append(*cases, n)
	}
	if n.Kind == ast.DefaultStmt {
		*def = n
	}
	for _, c := range n.Children {
		e.collectCases(c, cases, def)
	}
	switch d := n.Data.(type) {
	case ast.IfData:
		e.collectCases(d.Then, cases, def)
		e.collectCases(d.Else, cases, def)
	case ast.WhileData:
		e.collectCases(d.Body, cases, def)
	case ast.ForData:
		e.collectCases(d.Body, cases, def)
	case ast.LabeledData:
		e.collectCases(d.Stmt, cases, def)
	case ast.CaseData:
		// Consecutive empty-fallthrough labels (`case 1: case 2: foo();`) nest the
		// next label inside the previous one's Body rather than as a sibling.
		e.collectCases(d.Body, cases, def)
	}
}

// lowerCaseBody lowers the statements collected under one case/default label's
// CompoundStmt body, without pushing a fresh scope (case labels don't introduce a
// block scope of their own in C).
func (e *Emitter) lowerCaseBody(n *ast.Node) error {
	cd := n.Data.(ast.CaseData)
	if cd.Body == nil {
		return nil
	}
	for _, c := range cd.Body.Children {
		if c.Kind == ast.CaseStmt || c.Kind == ast.DefaultStmt {
			if err := e.lowerCaseBody(c); err != nil {
				return err
			}
			continue
		}
		if err := e.lowerStmt(c); err != nil {
			return err
		}
	}
	return nil
}
