// Package cmd implements the command-line interface for minutegen.
//
// This package provides the following commands:
//   - serve: Start the HTTP server with the OAuth flow and the pipeline API
//   - process: Run the pipeline once for a single audio file
//   - auth: Inspect or reset the stored Google Drive authorization
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
