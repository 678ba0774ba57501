package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/metaws/metaws/pkg/metaws"
)

// ForcedApprover implements the Approver interface for forced (non-interactive)
// approval, used when the --force flag is provided or no terminal is attached.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
}

// NewForcedApprover creates a new ForcedApprover.
func NewForcedApprover(verbose bool) metaws.Approver {
	return &ForcedApprover{verbose: verbose, output: os.Stderr}
}

// RequestApproval approves immediately unless ctx is already done.
func (a *ForcedApprover) RequestApproval(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if a.verbose {
		fmt.Fprintf(a.output, "[VERBOSE] Overwriting existing file '%s' without confirmation\n", path)
	}
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ metaws.Approver = (*ForcedApprover)(nil)
