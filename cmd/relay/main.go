package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"showdown-vote/internal/api"
	"showdown-vote/internal/constants"
	"showdown-vote/internal/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type relayOptions struct {
	url string
	key string
}

func main() {
	_ = godotenv.Load()

	log := logger.SetLevel(zerolog.InfoLevel)
	if err := rootCommand(log).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand(log zerolog.Logger) *cobra.Command {
	opts := &relayOptions{}

	rootCmd := &cobra.Command{
		Use:          "relay",
		Short:        "Push upstream contest snapshots to the showdown server",
		SilenceUsage: true,
	}

	defaultURL := os.Getenv("RELAY_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:" + envOr("SERVER_PORT", envOr("PORT", "3000"))
	}
	rootCmd.PersistentFlags().StringVar(&opts.url, "url", defaultURL, "server base URL")
	rootCmd.PersistentFlags().StringVar(&opts.key, "key", os.Getenv("RELAY_KEY"), "relay key sent as "+constants.RelayKeyHeader)

	rootCmd.AddCommand(pushCommand(opts, log), seedCommand(opts, log))
	return rootCmd
}

func pushCommand(opts *relayOptions, log zerolog.Logger) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a snapshot JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			if !json.Valid(payload) {
				return fmt.Errorf("%s is not valid JSON", file)
			}
			return push(cmd.Context(), opts, log, payload)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func seedCommand(opts *relayOptions, log zerolog.Logger) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Push a demo contest with one open showdown",
		Long:  "Builds a demo snapshot. Names and statuses can be overridden with SEED_* environment variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.MarshalIndent(api.SeedSnapshot(api.SeedOptionsFromEnv(os.Getenv)), "", "  ")
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}
			if err := push(cmd.Context(), opts, log, payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "{\"contestId\": %q, \"showdownId\": %q}\n", api.SeedContestID, api.SeedShowdownID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the snapshot instead of pushing it")
	return cmd
}

func push(ctx context.Context, opts *relayOptions, log zerolog.Logger, payload []byte) error {
	if opts.key == "" {
		return fmt.Errorf("relay key is required (--key or RELAY_KEY)")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := api.NewRelayClient(opts.url, opts.key)
	defer client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, constants.RelayTimeout)
	defer cancel()

	if _, err := client.Health(ctx); err != nil {
		log.Error().Err(err).Str("url", opts.url).Msg("server is not healthy")
		return fmt.Errorf("server at %s is not reachable: %w", opts.url, err)
	}

	if _, err := client.PushSnapshot(ctx, payload); err != nil {
		log.Error().Err(err).Str("url", opts.url).Msg("snapshot rejected")
		return err
	}
	log.Info().Str("url", opts.url).Int("bytes", len(payload)).Msg("snapshot pushed")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
