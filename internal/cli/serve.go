package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/metaws/metaws/internal/commands"
	"github.com/metaws/metaws/internal/files/filesystem"
	"github.com/metaws/metaws/internal/files/scanner"
	"github.com/metaws/metaws/internal/files/textio"
	"github.com/metaws/metaws/internal/server"
	"github.com/metaws/metaws/pkg/metaws"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the host commands over local HTTP",
	Long: `Start a JSON endpoint for an editor UI:

  GET  /health            liveness and the configured workspace
  GET  /commands          names of the available commands
  POST /invoke/{command}  run a command with a JSON argument object

The server binds to the loopback interface by default and stops gracefully
on Ctrl+C or SIGTERM. Command paths resolve beneath the workspace unless
server.confine is false in metaws.yaml. Browser pages may only call the
server from the origins listed in server.allowed_origins, and requests must
be sent as application/json.`,
	Example: `  metaws serve
  metaws serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (default: server.addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newServices(cmd)
	if err != nil {
		return err
	}

	addr := rt.cfg.Server.Addr
	if serveFlags.addr != "" {
		addr = serveFlags.addr
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := rt.dispatcher
	if rt.cfg.Server.Confine {
		dispatcher, err = confinedDispatcher(rt)
		if err != nil {
			return err
		}
	}

	srv := server.Server{
		Dispatcher:     dispatcher,
		Logger:         rt.logger,
		Workspace:      rt.cfg.Workspace,
		MaxBodyBytes:   rt.cfg.Server.MaxBodyBytes,
		AllowedOrigins: rt.cfg.Server.AllowedOrigins,
	}

	rt.logger.Verbose("Serving workspace %s (confined: %t)", rt.cfg.Workspace, rt.cfg.Server.Confine)
	return srv.ListenAndServe(ctx, addr)
}

// confinedDispatcher builds a dispatcher whose paths resolve beneath the
// configured workspace, which must be an existing directory.
func confinedDispatcher(rt *services) (*commands.Dispatcher, error) {
	root, err := filepath.Abs(rt.cfg.Workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace %s: %w", rt.cfg.Workspace, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, describe(metaws.NewWorkspaceError(metaws.KindPathNotFound, root, nil))
	}
	if !info.IsDir() {
		return nil, describe(metaws.NewWorkspaceError(metaws.KindNotADirectory, root, nil))
	}

	fsys := filesystem.NewBillyBoundOSFileSystem(root)
	s := scanner.NewScannerWithFS(fsys,
		scanner.WithExtensions(rt.cfg.Extensions...),
		scanner.WithLogger(rt.logger))
	return commands.NewDispatcher(s, textio.NewStoreWithFS(fsys), rt.logger), nil
}
