package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/minutegen/internal/drive"
	"github.com/teemow/minutegen/internal/pipeline"
)

func newProcessCmd() *cobra.Command {
	var localPath string
	var remoteRef string
	var output string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the pipeline once for a single recording",
		Long: `Run the full pipeline for one audio source and print the minutes.

The source is either a local audio file (--file) or a Google Drive file ID
or share URL (--drive). Drive sources require a prior authorization; run the
server and complete the OAuth flow first, or check with "minutegen auth
status".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProcess(cmd, localPath, remoteRef, output)
		},
	}

	cmd.Flags().StringVar(&localPath, "file", "", "Path to a local audio file")
	cmd.Flags().StringVar(&remoteRef, "drive", "", "Google Drive file ID or share URL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the minutes to this file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("file", "drive")
	cmd.MarkFlagsOneRequired("file", "drive")

	return cmd
}

func runProcess(cmd *cobra.Command, localPath, remoteRef, output string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	authorizer, err := newAuthorizer(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session := drive.NewSession(authorizer, logger)
	orchestrator, err := newOrchestrator(ctx, cfg, session, nil, logger)
	if err != nil {
		return err
	}

	source := pipeline.Source{LocalPath: localPath, RemoteRef: remoteRef}

	var final pipeline.Update
	for update := range orchestrator.Run(ctx, source) {
		final = update
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", update.Stage, firstLine(update.Status))
	}

	if final.Failed() {
		return errors.New(strings.TrimPrefix(final.Status, pipeline.FailurePrefix))
	}

	if output != "" {
		return writeMinutes(output, final.Minutes)
	}
	fmt.Fprintln(cmd.OutOrStdout(), final.Minutes)
	return nil
}

// firstLine keeps the progress log one line per stage even when a status
// carries the full transcript.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func writeMinutes(path, minutes string) error {
	if err := os.WriteFile(path, []byte(minutes), 0o644); err != nil {
		return fmt.Errorf("failed to write minutes: %w", err)
	}
	return nil
}
