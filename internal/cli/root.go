package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// rootFlags holds the persistent flag values shared by every command.
var rootFlags struct {
	verbose    bool
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "metaws",
	Short: "Workspace tooling for .meta and .xml game data files",
	Long: `metaws lists, reads, writes and validates the .meta and .xml files of an
editor workspace. The same operations are served to an editor UI over a
local JSON endpoint with 'metaws serve'.

Configuration is read from metaws.yaml in the working directory (or --config),
then .env, then METAWS_WORKSPACE, METAWS_ADDR and METAWS_VERBOSE.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  20 - Workspace path does not exist
  21 - Workspace path is not a directory
  22 - Workspace listing failed
  23 - File read failed
  24 - File write failed
  25 - User denied overwrite approval
  26 - Workspace contains malformed XML`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for metaws")
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "Path to a metaws.yaml file (default: ./metaws.yaml if present)")
}

func resetRootFlags() {
	rootFlags.verbose = false
	rootFlags.configPath = ""
}
