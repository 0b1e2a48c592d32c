package parser

// typedefScopes resolves the typedef/identifier ambiguity (spec §4.E.3) with a stack
// of sets rather than the flat shared hash set spec §9 flags as wrong: typedefs
// declared inside a block must stop being visible once the block closes, and a flat
// set can't express that when an inner scope shadows (or simply adds) a name.
type typedefScopes struct {
	scopes []map[string]struct{}
}

// builtinTypeNames seeds names a hosted C compiler must recognize as type specifiers
// even though they're never spelled by a typedef in the translation unit being
// compiled — the libc/runtime vocabulary spec §4.E.3 calls out by name.
var builtinTypeNames = []string{
	"__uint32_t", "__int32_t", "__uint16_t", "__int16_t", "__uint8_t", "__int8_t",
	"__uint64_t", "__int64_t", "size_t", "ssize_t", "ptrdiff_t", "wchar_t", "wint_t",
	"FILE", "va_list", "__builtin_va_list", "pthread_t", "pthread_mutex_t",
	"pthread_cond_t", "pthread_attr_t", "intptr_t", "uintptr_t",
	"int8_t", "int16_t", "int32_t", "int64_t",
	"uint8_t", "uint16_t", "uint32_t", "uint64_t", "time_t", "clock_t", "off_t",
	"mode_t", "pid_t", "uid_t", "gid_t", "socklen_t", "sa_family_t", "div_t", "ldiv_t",
}

func newTypedefScopes() *typedefScopes {
	t := &typedefScopes{}
	t.Push()
	for _, n := range builtinTypeNames {
		t.Declare(n)
	}
	return t
}

// Push enters a new scope, e.g. on compound-statement or parameter-list entry, per
// spec §4.E.10.
func (t *typedefScopes) Push() {
	t.scopes = append(t.scopes, make(map[string]struct{}))
}

// Pop exits the innermost scope. Callers must balance every Push with exactly one
// Pop; Parse's top-level scope is never popped.
func (t *typedefScopes) Pop() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// Depth reports the current scope nesting, for the sanity checks spec §4.E.10 calls
// for.
func (t *typedefScopes) Depth() int { return len(t.scopes) }

// Declare registers name as a typedef name in the innermost scope.
func (t *typedefScopes) Declare(name string) {
	t.scopes[len(t.scopes)-1][name] = struct{}{}
}

// IsTypeName reports whether name should be treated as a type specifier: it is a
// typedef name in some enclosing scope (walked top to bottom, innermost first so
// shadowing works), or it matches the __builtin_ prefix rule spec §4.E.3 names.
func (t *typedefScopes) IsTypeName(name string) bool {
	if len(name) >= len("__builtin_") && name[:len("__builtin_")] == "__builtin_" {
		return true
	}
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if _, ok := t.scopes[i][name]; ok {
			return true
		}
	}
	return false
}

// Snapshot captures the full set of visible typedef names, for the testable property
// in spec §8.1.4 ("after parsing a compound statement fully, the typedef set is
// bit-identical to its state at block entry").
func (t *typedefScopes) Snapshot() map[string]struct{} {
	out := make(map[string]struct{})
	for _, scope := range t.scopes {
		for name := range scope {
			out[name] = struct{}{}
		}
	}
	return out
}
