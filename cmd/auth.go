package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/minutegen/internal/config"
	"github.com/teemow/minutegen/internal/google"
	"github.com/teemow/minutegen/internal/logging"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect or reset the stored Google Drive authorization",
	}

	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthResetCmd())

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current authorization state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			authorizer, err := newAuthorizer(cfg, logging.NewLogger(cfg.LogFormat, cfg.LogLevel))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), authorizer.Status(cmd.Context()))
			return nil
		},
	}
}

func newAuthResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored credential record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Clearing the token file needs no client credentials.
			if err := google.NewCredentialStore(cfg.TokenFile).Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), google.StatusUnauthorized)
			return nil
		},
	}
}
