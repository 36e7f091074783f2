package main

import (
	"context"
	"fmt"
	"route-planner-service/internal/adapters/repositories"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes <date>",
	Short: "List the routes saved for a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDB()
		if err != nil {
			return err
		}
		defer conn.Close()

		routes, err := repositories.NewPostgresRouteRepository(conn).LoadRoutes(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(routes) == 0 {
			fmt.Printf("No routes saved for %s\n", args[0])
			return nil
		}
		for _, r := range routes {
			printRoute(r)
		}
		return nil
	},
}

var deleteRoutesCmd = &cobra.Command{
	Use:   "delete-routes <route-id>...",
	Short: "Delete truck routes and release their trucks and drivers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDB()
		if err != nil {
			return err
		}
		defer conn.Close()

		n, err := repositories.NewPostgresRouteRepository(conn).DeleteRoutes(context.Background(), args)
		if err != nil {
			return fmt.Errorf("deleting routes: %w", err)
		}
		fmt.Printf("Deleted %d of %d routes\n", n, len(args))
		return nil
	},
}
