package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/metaws/metaws/pkg/metaws"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It asks the user before an existing file is
// overwritten.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover reading stdin and prompting on stderr.
func NewInteractiveApprover(verbose bool) metaws.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// RequestApproval prompts the user to confirm overwriting path.
// Only "y" or "yes" (any case) approves.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, path string) (bool, error) {
	fmt.Fprintf(a.output, "File '%s' already exists and will be replaced.\n", path)
	fmt.Fprint(a.output, "Overwrite? [y/N]: ")

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || input == "") {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		switch strings.ToLower(input) {
		case "y", "yes":
			if a.verbose {
				fmt.Fprintln(a.output, "✓ Confirmed. Overwriting...")
			}
			return true, nil
		}
		fmt.Fprintln(a.output, "✗ Write cancelled.")
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ metaws.Approver = (*InteractiveApprover)(nil)
