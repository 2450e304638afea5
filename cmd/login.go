package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pitcrew/internal/config"
	"pitcrew/internal/infrastructure/sqlite"
	"pitcrew/internal/registry"
	"pitcrew/internal/session"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the artifact registry",
	Long: `Authenticate against the artifact registry and store the session token.

The token is stored per registry URL, so switching registries in the config
keeps each session intact. Credentials not passed as flags are read from
stdin.

Examples:
  # Interactive
  pitcrew login

  # Non-interactive (e.g. CI)
  pitcrew login --username mags --password-stdin < token.txt`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "registry username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "registry password (prefer --password-stdin)")
	loginCmd.Flags().Bool("password-stdin", false, "read the password from stdin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	username := loginUsername
	if username == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	password := loginPassword
	if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin || password == "" {
		if !fromStdin {
			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimSpace(line)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	client, err := registry.NewClient(registry.ClientConfig{BaseURL: cfg.RegistryURL})
	if err != nil {
		return fmt.Errorf("creating registry client: %w", err)
	}

	token, err := client.Login(context.Background(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	repo, err := sqlite.OpenRepository(config.SessionDBPath())
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer func() { _ = repo.Close() }()

	store := session.NewStore(repo, cfg.RegistryURL)
	if err := store.Set(context.Background(), username, token); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", cfg.RegistryURL, username)
	return nil
}
