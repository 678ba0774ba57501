package cli

import (
	"github.com/spf13/cobra"

	"github.com/metaws/metaws/internal/commands"
	"github.com/metaws/metaws/internal/config"
	"github.com/metaws/metaws/internal/files/scanner"
	"github.com/metaws/metaws/internal/files/textio"
	"github.com/metaws/metaws/internal/logging"
	"github.com/metaws/metaws/internal/tui"
)

// services is the set of collaborators one command invocation works with.
type services struct {
	cfg        *config.Config
	logger     *logging.ConsoleLogger
	scanner    *scanner.Scanner
	store      *textio.Store
	dispatcher *commands.Dispatcher
	mode       tui.Mode
}

// newServices resolves configuration and wires the workspace services.
// Log output goes to the command's error stream.
func newServices(cmd *cobra.Command) (*services, error) {
	cfg, err := config.Resolve(rootFlags.configPath, ".")
	if err != nil {
		return nil, err
	}

	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), rootFlags.verbose || cfg.Verbose)
	s := scanner.NewScanner(scanner.WithExtensions(cfg.Extensions...), scanner.WithLogger(logger))
	store := textio.NewStore()

	logger.Verbose("Extensions: %v", cfg.Extensions)

	return &services{
		cfg:        cfg,
		logger:     logger,
		scanner:    s,
		store:      store,
		dispatcher: commands.NewDispatcher(s, store, logger),
		mode:       tui.DetectMode(),
	}, nil
}

// workspaceArg returns the path argument, or the configured workspace when absent.
func (rt *services) workspaceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return rt.cfg.Workspace
}

// hostError renders a workspace error the way a host shows it to a user
// while keeping the original error for exit-code mapping.
type hostError struct {
	err error
}

func (e hostError) Error() string { return commands.Describe(e.err) }
func (e hostError) Unwrap() error { return e.err }

func describe(err error) error {
	if err == nil {
		return nil
	}
	return hostError{err: err}
}
