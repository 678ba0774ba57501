package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Print the content of a meta file",
	Long: `Read a text file and print its full content unchanged.

The file must be valid UTF-8.`,
	Example: `  metaws read ./stream/vehicles.meta`,
	Args:    RequireFilePath,
	RunE:    runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	rt, err := newServices(cmd)
	if err != nil {
		return err
	}

	content, err := rt.store.ReadText(args[0])
	if err != nil {
		return describe(err)
	}

	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}
