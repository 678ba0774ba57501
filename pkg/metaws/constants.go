package metaws

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess        = 0  // Command completed successfully
	ExitGeneralError   = 1  // Unknown or unclassified error
	ExitUsageError     = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic          = 3  // Internal panic (unexpected crash)
	ExitConfigError    = 10 // Invalid configuration
	ExitPathNotFound   = 20 // Workspace path does not exist
	ExitNotADirectory  = 21 // Workspace path is not a directory
	ExitListingFailed  = 22 // I/O error during workspace traversal
	ExitReadFailed     = 23 // File could not be read
	ExitWriteFailed    = 24 // File could not be written
	ExitApprovalDenied = 25 // User declined to overwrite an existing file
	ExitInvalidXML     = 26 // One or more workspace files are not well-formed
)

// DefaultExtensions are the file extensions, without the leading dot and in
// lowercase, that make a file a meta file.
var DefaultExtensions = []string{"meta", "xml"}

const (
	// DefaultServerAddr is the loopback address the command server listens on.
	DefaultServerAddr = "127.0.0.1:7420"

	// DefaultMaxBodyBytes caps the size of a command request body.
	// Meta files are edited as a whole, so this bounds the largest writable file.
	DefaultMaxBodyBytes = 8 << 20

	// DefaultShutdownTimeout is how long the command server waits for in-flight
	// requests before closing.
	DefaultShutdownTimeout = 5 * time.Second

	// ConfigFileName is the project configuration file looked up in the working directory.
	ConfigFileName = "metaws.yaml"
)
