package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pitcrew/internal/config"
	"pitcrew/internal/infrastructure/sqlite"
	"pitcrew/internal/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session for the configured registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := sqlite.OpenRepository(config.SessionDBPath())
		if err != nil {
			return fmt.Errorf("opening session store: %w", err)
		}
		defer func() { _ = repo.Close() }()

		store := session.NewStore(repo, cfg.RegistryURL)
		if err := store.Clear(context.Background()); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", cfg.RegistryURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
