package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/favorite-movies-api/cmd/moviesctl/ui"
	"github.com/redmonkez12/favorite-movies-api/pkg/client"
)

const (
	envAPIURL     = "MOVIES_API_URL"
	envToken      = "MOVIES_TOKEN"
	defaultAPIURL = "http://localhost:8080"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "moviesctl",
		Short:         "Manage the favorite movies API",
		Long:          "Database maintenance and an interactive client for the favorite movies API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("api", envOr(envAPIURL, defaultAPIURL), "API base URL (env "+envAPIURL+")")
	rootCmd.PersistentFlags().String("token", os.Getenv(envToken), "Session token (env "+envToken+")")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newLoginCmd(),
		newMoviesCmd(),
	)
	return rootCmd
}

// apiClient builds a client from the persistent flags.
func apiClient(cmd *cobra.Command) *client.Client {
	baseURL, _ := cmd.Flags().GetString("api")
	token, _ := cmd.Flags().GetString("token")
	return client.New(baseURL, client.WithToken(token))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
