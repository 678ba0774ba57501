package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/metaws/metaws/internal/tui"
)

var listFlags struct {
	json bool
}

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List the meta files of a workspace",
	Long: `List every regular file under the workspace whose extension is one of the
configured meta extensions (default: meta, xml), compared case-insensitively.

Paths are printed one per line, sorted byte-wise. Directories are followed
recursively, including symbolic links to directories. Any listing failure
aborts the whole scan.

When no path is given the configured workspace is used.`,
	Example: `  # List the current workspace
  metaws list

  # List a specific folder as a JSON array
  metaws list ./stream --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listFlags.json, "json", false, "Print the result as a JSON array")
}

func runList(cmd *cobra.Command, args []string) error {
	rt, err := newServices(cmd)
	if err != nil {
		return err
	}

	root := rt.workspaceArg(args)
	files, err := tui.RunWithSpinner(rt.mode, "Scanning "+root, func() ([]string, error) {
		return rt.scanner.ScanWorkspace(root)
	})
	if err != nil {
		return describe(err)
	}

	return printFileList(cmd.OutOrStdout(), files, listFlags.json)
}

func printFileList(w io.Writer, files []string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	}
	for _, f := range files {
		fmt.Fprintln(w, f)
	}
	return nil
}
