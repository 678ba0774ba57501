package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <command> [json-args]",
	Short: "Invoke a host command and print its JSON response",
	Long: `Invoke one of the host commands exactly as the editor UI does and print
the JSON response: {"ok": true, "result": ...} or {"ok": false, "error": "..."}.

Commands:
  read_meta_file             {"path": "..."}
  write_meta_file            {"path": "...", "content": "..."}
  list_workspace_meta_files  {"path": "..."}

Command failures are part of the response, so the exit code is 0 whenever a
response is printed.`,
	Example: `  metaws invoke list_workspace_meta_files '{"path":"./stream"}'
  metaws invoke read_meta_file '{"path":"./stream/vehicles.meta"}'`,
	Args: RequireCommandName,
	RunE: runInvoke,
}

func init() {
	rootCmd.AddCommand(invokeCmd)
}

func runInvoke(cmd *cobra.Command, args []string) error {
	rt, err := newServices(cmd)
	if err != nil {
		return err
	}

	var raw json.RawMessage
	if len(args) > 1 {
		raw = json.RawMessage(args[1])
	}

	resp := rt.dispatcher.Invoke(args[0], raw)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
