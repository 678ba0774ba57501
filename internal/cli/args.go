package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireFilePath validates that exactly one file path argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireFilePath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <path>

Usage: %s

Example:
  %s ./stream/vehicles.meta`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// RequireCommandName validates a command name followed by an optional JSON argument object.
func RequireCommandName(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <command>

Usage: %s

Example:
  %s list_workspace_meta_files '{"path":"./stream"}'`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 2 {
		return fmt.Errorf("accepts at most 2 arg(s), received %d", len(args))
	}
	return nil
}
