package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"route-planner-service/internal/config"
	"route-planner-service/internal/platform/db"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

var (
	databaseURL string
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:          "planner <command>",
	Short:        "Plan multi-truck delivery routes for a depot",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if databaseURL == "" {
			databaseURL = config.Get("DATABASE_URL", "")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (default $DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(deleteRoutesCmd)
	rootCmd.AddCommand(initDBCmd)
}

func openDB() (*sql.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	conn, err := db.Open(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return conn, nil
}

func main() {
	config.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
