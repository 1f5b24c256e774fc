package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ricoeriii/pengelola-bansos/internal/service"
)

// promptConfirmer asks the operator on the terminal. Only y, yes or ya confirm.
// The reader is shared across prompts so buffered input is never lost.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)

	// A read on stdin cannot be interrupted: after cancellation this goroutine
	// stays parked until the process exits.
	answer := make(chan string, 1)
	go func() {
		line, _ := p.in.ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "ya":
			return true, nil
		default:
			return false, nil
		}
	}
}

func confirmerFor(assumeYes bool, in *bufio.Reader, out io.Writer) service.Confirmer {
	if assumeYes {
		return service.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	}
	return promptConfirmer{in: in, out: out}
}
