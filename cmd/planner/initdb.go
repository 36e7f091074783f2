package main

import (
	"context"
	"log"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/config"

	"github.com/spf13/cobra"
)

var seedPath string

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the schema and load the seed file",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDB()
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx := context.Background()
		log.Println("Initializing database schema...")
		if err := repositories.InitSchema(ctx, conn); err != nil {
			return err
		}
		log.Println("Schema ready.")

		if seedPath == "" {
			seedPath = config.Get("SEED_PATH", "")
		}
		if seedPath == "" {
			return nil
		}
		log.Println("Seeding database...")
		if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
			return err
		}
		log.Println("Seeding complete.")
		return nil
	},
}

func init() {
	initDBCmd.Flags().StringVar(&seedPath, "seed", "", "JSON seed file (default $SEED_PATH, none if unset)")
}
