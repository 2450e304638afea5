package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pitcrew/internal/config"
	"pitcrew/internal/infrastructure/sqlite"
	"pitcrew/internal/registry"
	"pitcrew/internal/session"
)

var (
	artifactsMine   bool
	artifactsPublic bool
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List registry artifacts",
	Long: `List artifacts stored in the registry as JSON.

Uses the stored session when one exists; without a session the listing is
anonymous and registries running in open mode still answer.
Use --mine to show only artifacts you own.
Use --public to show only publicly visible artifacts.

Examples:
  # List all artifacts
  pitcrew artifacts

  # Only artifacts owned by the logged-in user
  pitcrew artifacts --mine

  # Combine filters (AND logic)
  pitcrew artifacts --mine --public

  # Parse specific fields with jq
  pitcrew artifacts | jq '.[].name'
  pitcrew artifacts | jq '.[] | select(.is_public)'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := registry.NewClient(registry.ClientConfig{BaseURL: cfg.RegistryURL})
		if err != nil {
			return fmt.Errorf("creating registry client: %w", err)
		}

		token, err := storedToken(cmd.Context())
		if err != nil {
			return err
		}

		artifacts, err := client.ListArtifacts(cmd.Context(), token)
		if err != nil {
			return fmt.Errorf("listing artifacts: %w", err)
		}

		if artifactsMine {
			artifacts = filterArtifacts(artifacts, func(a registry.Artifact) bool { return a.OwnedByMe })
		}
		if artifactsPublic {
			artifacts = filterArtifacts(artifacts, func(a registry.Artifact) bool { return a.IsPublic })
		}

		return writeArtifacts(cmd.OutOrStdout(), artifacts)
	},
}

func init() {
	artifactsCmd.Flags().BoolVarP(&artifactsMine, "mine", "m", false, "Only artifacts owned by the logged-in user")
	artifactsCmd.Flags().BoolVar(&artifactsPublic, "public", false, "Only publicly visible artifacts")
	rootCmd.AddCommand(artifactsCmd)
}

// storedToken loads the session token for the configured registry.
// A missing session is not an error; it simply means anonymous access.
func storedToken(ctx context.Context) (string, error) {
	repo, err := sqlite.OpenRepository(config.SessionDBPath())
	if err != nil {
		return "", fmt.Errorf("opening session store: %w", err)
	}
	defer func() { _ = repo.Close() }()

	token, _, err := session.NewStore(repo, cfg.RegistryURL).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}
	return token, nil
}

func filterArtifacts(artifacts []registry.Artifact, keep func(registry.Artifact) bool) []registry.Artifact {
	result := make([]registry.Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if keep(a) {
			result = append(result, a)
		}
	}
	return result
}

// writeArtifacts renders the listing as indented JSON. An empty listing is
// an empty array, not null, so jq pipelines keep working.
func writeArtifacts(w io.Writer, artifacts []registry.Artifact) error {
	if artifacts == nil {
		artifacts = []registry.Artifact{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(artifacts)
}
