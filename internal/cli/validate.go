package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metaws/metaws/internal/metaxml"
	"github.com/metaws/metaws/internal/tui"
	"github.com/metaws/metaws/pkg/metaws"
)

var validateFlags struct {
	json bool
}

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check that every meta file in a workspace is well-formed XML",
	Long: `Scan the workspace and check each meta file for XML well-formedness:
balanced tags, a single root element, valid entities and quoted attributes.

Each problem is reported with its line, column and a hint. The command exits
with code 26 when at least one file is malformed.`,
	Example: `  metaws validate
  metaws validate ./stream --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateFlags.json, "json", false, "Print the reports as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	rt, err := newServices(cmd)
	if err != nil {
		return err
	}

	root := rt.workspaceArg(args)
	reports, err := tui.RunWithSpinner(rt.mode, "Validating "+root, func() ([]metaxml.FileReport, error) {
		return metaxml.ValidateWorkspace(rt.scanner, rt.store, root)
	})
	if err != nil {
		return describe(err)
	}

	out := cmd.OutOrStdout()
	if validateFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, tui.RenderValidation(reports))
	}

	if invalid := metaxml.CountInvalid(reports); invalid > 0 {
		return fmt.Errorf("%w: %d of %d file(s) are not well-formed", metaws.ErrInvalidXML, invalid, len(reports))
	}
	return nil
}
