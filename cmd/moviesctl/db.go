package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/favorite-movies-api/cmd/moviesctl/ui"
	"github.com/redmonkez12/favorite-movies-api/internal/config"
	"github.com/redmonkez12/favorite-movies-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  runMigrate,
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo accounts and movies",
		Long:  "Apply migrations, then insert the demo accounts and the owner's movie list. Rows that already exist are left alone.",
		RunE:  runSeed,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sqlDB, err := database.Open(cmd.Context(), cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(cmd.Context(), sqlDB); err != nil {
		return err
	}

	ui.PrintSuccess(cmd.OutOrStdout(), "Migrations applied")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sqlDB, err := database.Open(cmd.Context(), cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(cmd.Context(), sqlDB); err != nil {
		return err
	}

	db := database.NewBunDB(sqlDB)
	result, err := database.Seed(cmd.Context(), db)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ui.PrintSuccess(out, fmt.Sprintf("Seeded %d users and %d movies", result.Users, result.Movies))
	ui.PrintHint(out, "Demo logins: owner@owner.com / owner123, test@test.com / test123")
	return nil
}
