package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/metaws/metaws/internal/tui"
	"github.com/metaws/metaws/internal/ui"
	"github.com/metaws/metaws/pkg/metaws"
)

var writeFlags struct {
	content string
	force   bool
}

var writeCmd = &cobra.Command{
	Use:   "write <path>",
	Short: "Replace the content of a meta file",
	Long: `Write text to a file, creating it if absent and replacing it entirely otherwise.
The parent directory must already exist.

The content is taken from --content, or read from stdin when the flag is not set.
Overwriting an existing file asks for confirmation on an interactive terminal
unless --force is given.`,
	Example: `  # Write inline content
  metaws write ./stream/vehicles.meta --content '<CVehicleModelInfo />'

  # Pipe content and skip the confirmation
  cat vehicles.meta | metaws write ./stream/vehicles.meta --force`,
	Args: RequireFilePath,
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVar(&writeFlags.content, "content", "", "Content to write (default: read from stdin)")
	writeCmd.Flags().BoolVarP(&writeFlags.force, "force", "f", false, "Overwrite existing files without asking")
}

func runWrite(cmd *cobra.Command, args []string) error {
	rt, err := newServices(cmd)
	if err != nil {
		return err
	}

	content := writeFlags.content
	if !cmd.Flags().Changed("content") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read content from stdin: %w", err)
		}
		content = string(data)
	}

	var approver metaws.Approver
	if writeFlags.force || rt.mode != tui.ModeInteractive {
		approver = ui.NewForcedApprover(rt.logger.IsVerbose())
	} else {
		approver = ui.NewInteractiveApprover(rt.logger.IsVerbose())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := writeFile(ctx, rt, approver, args[0], content); err != nil {
		return err
	}

	rt.logger.Verbose("Wrote %d byte(s) to %s", len(content), args[0])
	return nil
}

// writeFile asks approver before replacing an existing file, then writes content.
func writeFile(ctx context.Context, rt *services, approver metaws.Approver, path, content string) error {
	exists, err := rt.store.Exists(path)
	if err != nil {
		return describe(metaws.NewWorkspaceError(metaws.KindWriteFailed, path, err))
	}

	if exists {
		approved, err := approver.RequestApproval(ctx, path)
		if err != nil {
			return fmt.Errorf("approval failed: %w", err)
		}
		if !approved {
			return fmt.Errorf("%w: %s", metaws.ErrApprovalDenied, path)
		}
	}

	return describe(rt.store.WriteText(path, content))
}

func resetWriteFlags() {
	writeFlags.content = ""
	writeFlags.force = false
}
