package llvm

import (
	"fmt"
	"strings"

	"cfront/src/ast"

	"tinygo.org/x/go-llvm"
)

// resolveTargetTriple returns the user-supplied --target= triple when one is given
// and the host default triple otherwise. A supplied triple is not validated here,
// and there is no fallback to the default when LLVM cannot resolve it: NewEmitter
// reports that as an error. It replaces the teacher's genTargetTriple (which built the triple piecewise from separate
// arch/vendor/os enum fields — this compiler's util.Options carries a single
// --target= override string instead, per spec §6.1).
func resolveTargetTriple(override string) (string, error) {
	if strings.TrimSpace(override) == "" {
		return llvm.DefaultTargetTriple(), nil
	}
	return override, nil
}

// llvmType maps a C type node to its LLVM type. Base type names go through
// llvmBaseType, which uses fixed widths (e.g. `long` is always i64) rather than
// querying the target's data layout.
func (e *Emitter) llvmType(n *ast.Node) (llvm.Type, error) {
	if n == nil {
		return llvm.Type{}, fmt.Errorf("cannot lower a nil type node")
	}
	switch n.Kind {
	case ast.TypeName:
		return e.llvmBaseType(n)
	case ast.PointerType:
		inner, err := e.llvmType(n.Child(0))
		if err != nil {
			return llvm.Type{}, err
		}
		if inner == e.ctx.VoidType() {
			return llvm.PointerType(e.ctx.Int8Type(), 0), nil
		}
		return llvm.PointerType(inner, 0), nil
	case ast.ArrayType:
		elem, err := e.llvmType(n.Child(0))
		if err != nil {
			return llvm.Type{}, err
		}
		size := n.Data.(ast.ArrayTypeData).Size
		if size < 0 {
			size = 0
		}
		return llvm.ArrayType(elem, size), nil
	case ast.FunctionType:
		ret, err := e.llvmType(n.Child(0))
		if err != nil {
			return llvm.Type{}, err
		}
		pl := n.Child(1)
		var params []llvm.Type
		variadic := false
		if pl != nil {
			variadic = pl.Data.(ast.ParamListData).Variadic
			for _, p := range pl.Children {
				pt, err := e.llvmType(p.Data.(ast.DeclData).Type)
				if err != nil {
					return llvm.Type{}, err
				}
				params = append(params, pt)
			}
		}
		return llvm.FunctionType(ret, params, variadic), nil
	case ast.StructType, ast.UnionType:
		t, _, err := e.lowerRecordType(n)
		return t, err
	case ast.EnumType:
		return e.ctx.Int32Type(), nil
	case ast.AtomicType, ast.TypeofType:
		return e.llvmType(n.Child(0))
	}
	return llvm.Type{}, fmt.Errorf("unsupported type node kind %s", n.Kind)
}

func (e *Emitter) llvmBaseType(n *ast.Node) (llvm.Type, error) {
	td := n.Data.(ast.TypeData)
	name := normalizeTypeName(td.Name)
	switch name {
	case "void":
		return e.ctx.VoidType(), nil
	case "char", "signed char", "unsigned char", "_bool", "bool":
		return e.ctx.Int8Type(), nil
	case "short", "short int", "unsigned short", "unsigned short int":
		return e.ctx.Int16Type(), nil
	case "int", "signed", "signed int", "unsigned", "unsigned int":
		return e.ctx.Int32Type(), nil
	case "long", "long int", "unsigned long", "unsigned long int",
		"long long", "long long int", "unsigned long long", "unsigned long long int":
		return e.ctx.Int64Type(), nil
	case "float":
		return e.ctx.FloatType(), nil
	case "double":
		return e.ctx.DoubleType(), nil
	case "long double":
		return e.ctx.X86FP80Type(), nil
	case "__builtin_va_list", "va_list":
		return llvm.PointerType(e.ctx.Int8Type(), 0), nil
	}
	// Either a typedef name or a bare `struct`/`union`/`enum Tag` reference parsed
	// as a plain TypeName (e.g. inside a cast written without the full specifier
	// chain); resolve it through the typedef table, falling back to int so
	// lowering stays total rather than aborting the whole translation unit.
	if target, ok := e.typedefs[td.Name]; ok {
		return e.llvmType(target)
	}
	if strings.HasPrefix(td.Name, "struct ") || strings.HasPrefix(td.Name, "union ") {
		if rec, ok := e.records[strings.TrimPrefix(strings.TrimPrefix(td.Name, "struct "), "union ")]; ok {
			return rec.llvmType, nil
		}
	}
	return e.ctx.Int32Type(), nil
}

func normalizeTypeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// isFloatType/isIntType/isPointerType classify an AST type node for the cast matrix
// and for arithmetic operator selection (int ops vs float ops), per spec §4.F.3.
func isFloatType(n *ast.Node) bool {
	n = stripQualifiers(n)
	if n == nil || n.Kind != ast.TypeName {
		return false
	}
	switch normalizeTypeName(n.Data.(ast.TypeData).Name) {
	case "float", "double", "long double":
		return true
	}
	return false
}

func isUnsignedType(n *ast.Node) bool {
	n = stripQualifiers(n)
	if n == nil || n.Kind != ast.TypeName {
		return false
	}
	return !n.Data.(ast.TypeData).IsSigned
}

func isPointerType(n *ast.Node) bool {
	n = stripQualifiers(n)
	return n != nil && (n.Kind == ast.PointerType || n.Kind == ast.ArrayType)
}

// stripQualifiers unwraps AtomicType/TypeofType wrapper nodes so callers see the
// underlying type they actually need to branch on.
func stripQualifiers(n *ast.Node) *ast.Node {
	for n != nil && (n.Kind == ast.AtomicType || n.Kind == ast.TypeofType) {
		n = n.Child(0)
	}
	return n
}

// convert implements the full cast conversion matrix spec §9 flags as missing
// ("cast expressions currently a no-op"): int<->int widen/narrow, int<->float,
// ptr<->int, and same-size bitcast, each dispatched by source/destination LLVM type
// kind rather than by a hand enumeration of every (from, to) C type pair.
func (e *Emitter) convert(v loweredValue, to *ast.Node) (loweredValue, error) {
	fromLL, err := e.llvmType(v.Type)
	if err != nil {
		return loweredValue{}, err
	}
	toLL, err := e.llvmType(to)
	if err != nil {
		return loweredValue{}, err
	}
	if fromLL == toLL {
		return loweredValue{Value: v.Value, Type: to}, nil
	}

	val := v.Value
	switch {
	case fromLL.TypeKind() == llvm.IntegerTypeKind && toLL.TypeKind() == llvm.IntegerTypeKind:
		fromBits := fromLL.IntTypeWidth()
		toBits := toLL.IntTypeWidth()
		switch {
		case fromBits < toBits:
			if isUnsignedType(v.Type) {
				val = e.builder.CreateZExt(val, toLL, "")
			} else {
				val = e.builder.CreateSExt(val, toLL, "")
			}
		case fromBits > toBits:
			val = e.builder.CreateTrunc(val, toLL, "")
		}
	case fromLL.TypeKind() == llvm.IntegerTypeKind && isFloatKind(toLL):
		if isUnsignedType(v.Type) {
			val = e.builder.CreateUIToFP(val, toLL, "")
		} else {
			val = e.builder.CreateSIToFP(val, toLL, "")
		}
	case isFloatKind(fromLL) && toLL.TypeKind() == llvm.IntegerTypeKind:
		if isUnsignedType(to) {
			val = e.builder.CreateFPToUI(val, toLL, "")
		} else {
			val = e.builder.CreateFPToSI(val, toLL, "")
		}
	case isFloatKind(fromLL) && isFloatKind(toLL):
		if floatRank(fromLL) < floatRank(toLL) {
			val = e.builder.CreateFPExt(val, toLL, "")
		} else {
			val = e.builder.CreateFPTrunc(val, toLL, "")
		}
	case fromLL.TypeKind() == llvm.PointerTypeKind && toLL.TypeKind() == llvm.IntegerTypeKind:
		val = e.builder.CreatePtrToInt(val, toLL, "")
	case fromLL.TypeKind() == llvm.IntegerTypeKind && toLL.TypeKind() == llvm.PointerTypeKind:
		val = e.builder.CreateIntToPtr(val, toLL, "")
	case fromLL.TypeKind() == llvm.PointerTypeKind && toLL.TypeKind() == llvm.PointerTypeKind:
		val = e.builder.CreateBitCast(val, toLL, "")
	default:
		return loweredValue{}, fmt.Errorf("unsupported conversion from %s to %s", v.Type.Kind, to.Kind)
	}
	return loweredValue{Value: val, Type: to}, nil
}

func isFloatKind(t llvm.Type) bool {
	switch t.TypeKind() {
	case llvm.FloatTypeKind, llvm.DoubleTypeKind, llvm.X86_FP80TypeKind:
		return true
	}
	return false
}

func floatRank(t llvm.Type) int {
	switch t.TypeKind() {
	case llvm.FloatTypeKind:
		return 1
	case llvm.DoubleTypeKind:
		return 2
	case llvm.X86_FP80TypeKind:
		return 3
	}
	return 0
}
