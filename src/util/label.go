// label.go provides a thread safe generator of synthetic names, with kinds for
// anonymous struct/union tags and GNU statement-expression result temporaries
// (src/codegen/llvm does not call it). LLVM
// basic blocks auto-number themselves, so this no longer produces assembly jump
// labels (the teacher's original purpose) — what's kept is the thread-safe
// request/response counter idiom, generalized to a value any Emitter can own instead
// of a package-level singleton (spec §5 requires state to never leak across Emitter
// instances sharing a process).
package util

import "fmt"

// Synthetic name categories.
const (
	LabelAnonStruct = iota
	LabelAnonUnion
	LabelStmtExpr
	labelKindCount
)

var labelPrefixes = [labelKindCount]string{
	"anon.struct",
	"anon.union",
	"stmtexpr",
}

// NameGen hands out unique synthetic names of a given kind. One NameGen belongs to
// one Emitter; it must not be shared across Emitters compiling concurrently (each
// Emitter owns an independent llvm.Context per spec §5).
type NameGen struct {
	req   chan int
	res   chan string
	stop  chan struct{}
	index [labelKindCount]int
}

// NewNameGen starts the generator's listener goroutine and returns a ready-to-use
// NameGen. Call Close when the owning Emitter is disposed.
func NewNameGen() *NameGen {
	g := &NameGen{
		req:  make(chan int),
		res:  make(chan string),
		stop: make(chan struct{}),
	}
	go g.run()
	return g
}

func (g *NameGen) run() {
	defer close(g.res)
	for {
		select {
		case <-g.stop:
			return
		case kind := <-g.req:
			if kind < 0 || kind >= labelKindCount {
				g.res <- "<invalid-name-kind>"
				continue
			}
			g.res <- fmt.Sprintf("%s.%d", labelPrefixes[kind], g.index[kind])
			g.index[kind]++
		}
	}
}

// Next returns a new unique name of the given kind.
func (g *NameGen) Next(kind int) string {
	g.req <- kind
	return <-g.res
}

// Close terminates the generator's listener goroutine. Must be called exactly once.
func (g *NameGen) Close() {
	close(g.stop)
}
