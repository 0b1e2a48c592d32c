package driver

import (
	"os"
	"path/filepath"
	"testing"

	"cfront/src/util"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestCompileOneWritesObjectFile(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.c", "int add(int a, int b) { return a + b; }\n")
	out := filepath.Join(dir, "a.o")

	opt := util.Options{Src: src, Out: out, Target: "x86_64-pc-linux-gnu"}
	if err := CompileOne(opt); err != nil {
		t.Fatalf("CompileOne: %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty object file at %s, stat err: %v", out, err)
	}
}

// TestCompileAllSequential exercises the opt.Threads<=1 path of CompileAll, which
// is otherwise unreachable from the CLI when only one file is given.
func TestCompileAllSequential(t *testing.T) {
	dir := t.TempDir()
	units := []util.Options{
		{Src: writeSource(t, dir, "seq_a.c", "int a(void) { return 1; }\n"), Target: "x86_64-pc-linux-gnu", Threads: 1},
		{Src: writeSource(t, dir, "seq_b.c", "int b(void) { return 2; }\n"), Target: "x86_64-pc-linux-gnu", Threads: 1},
	}
	for i, u := range units {
		units[i].Out = u.Src + ".o"
	}
	if err := CompileAll(units); err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	for _, u := range units {
		if info, err := os.Stat(u.Out); err != nil || info.Size() == 0 {
			t.Errorf("expected non-empty object file at %s, stat err: %v", u.Out, err)
		}
	}
}

// TestCompileAllParallel exercises the worker-pool partitioning path (opt.Threads >
// 1), the whole reason CompileAll exists as distinct from looping CompileOne.
func TestCompileAllParallel(t *testing.T) {
	dir := t.TempDir()
	var units []util.Options
	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "par")
		src := writeSource(t, dir, "par"+string(rune('a'+i))+".c", "int f(void) { return 0; }\n")
		units = append(units, util.Options{
			Src:     src,
			Out:     name + string(rune('a'+i)) + ".o",
			Target:  "x86_64-pc-linux-gnu",
			Threads: 3,
		})
	}
	if err := CompileAll(units); err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	for _, u := range units {
		if info, err := os.Stat(u.Out); err != nil || info.Size() == 0 {
			t.Errorf("expected non-empty object file at %s, stat err: %v", u.Out, err)
		}
	}
}

func TestCompileAllPropagatesErrors(t *testing.T) {
	dir := t.TempDir()
	units := []util.Options{
		{Src: writeSource(t, dir, "bad.c", "int f(void) { return 1 + ; }\n"), Target: "x86_64-pc-linux-gnu", Threads: 1},
	}
	if err := CompileAll(units); err == nil {
		t.Fatal("expected CompileAll to surface the syntax error, got nil")
	}
}
