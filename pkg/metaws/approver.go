package metaws

import "context"

// Approver handles user interaction before destructive operations,
// namely overwriting a file that already exists.
//
// Implementations:
//   - ForcedApprover: approves without asking (--force)
//   - InteractiveApprover: asks the user to confirm on the terminal
type Approver interface {
	// RequestApproval asks for confirmation before overwriting path.
	// Returns true if approved, false if denied.
	RequestApproval(ctx context.Context, path string) (bool, error)
}
