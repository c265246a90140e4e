package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the minutegen application
var rootCmd = &cobra.Command{
	Use:   "minutegen",
	Short: "Generates meeting minutes from audio recordings",
	Long: `minutegen turns a meeting recording into structured meeting minutes.

It transcribes an audio file, generates a minutes document from the
transcript, and can pull recordings straight from Google Drive after a
one-time OAuth authorization.

It can run as:
  - An HTTP server with a JSON API and the OAuth callback (default)
  - A one-shot CLI pipeline run via the process command`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "minutegen version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
