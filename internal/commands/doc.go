// Package commands exposes the workspace operations as named host commands.
//
// Host adapters (the CLI, the local JSON server) invoke read_meta_file,
// write_meta_file and list_workspace_meta_files through a Dispatcher.
// Internally every failure is a structured *metaws.WorkspaceError; it is
// rendered to a short human-readable string only here, at the boundary.
package commands
