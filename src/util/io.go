package util

import (
	"bufio"
	"errors"
	"os"
	"time"
)

// ReadSource reads source code from a file, or from stdin (with a short grace period)
// when no path is given. Adapted verbatim from the teacher's util.ReadSource: the
// teacher's parallel Writer/ListenWrite output broadcaster is not carried over, since
// object/IR/bitcode output in this spec is a single call into
// tinygo.org/x/go-llvm's own file-emission API (see src/codegen/llvm/output.go) —
// there is no multi-writer fan-in left to adapt it to.
func ReadSource(path string) (string, error) {
	if len(path) > 0 {
		b, err := os.ReadFile(path)
		return string(b), err
	}

	c := make(chan string)
	cerr := make(chan error)

	go func(c chan string, cerr chan error) {
		defer close(c)
		defer close(cerr)
		reader := bufio.NewReader(os.Stdin)
		text, err := reader.ReadString(0)
		if err == nil {
			c <- text
		} else if len(text) > 0 {
			c <- text
		} else {
			cerr <- err
		}
	}(c, cerr)

	select {
	case <-time.After(500 * time.Millisecond):
		return "", errors.New("expected input from stdin, got none")
	case s := <-c:
		return s, nil
	case err := <-cerr:
		return "", err
	}
}
