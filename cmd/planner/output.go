package main

import (
	"encoding/json"
	"fmt"
	"os"
	"route-planner-service/internal/adapters/events"
	"route-planner-service/internal/domain"
	"strings"
)

func printRoute(r *domain.Route) {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(events.NewRoutePlanned(r))
		return
	}

	status := "valid"
	if !r.IsValid {
		status = "INVALID"
	}
	fmt.Printf("Plan %s  %s  depot %s (%s)\n", r.ID, r.Date, r.DepotID, r.DepotAddress)
	fmt.Printf("  %s, %d trucks, %s, %s, optimized by %s = %d\n",
		status, len(r.Trucks), orDash(r.TotalTime), r.TotalDistance, r.OptimizeBy, r.TotalOptimized)

	for i, t := range r.Trucks {
		fmt.Printf("  Truck %d", i+1)
		if t.TruckID != "" {
			fmt.Printf(" [%s / driver %s]", t.TruckID, t.DriverID)
		}
		if t.RouteID != "" {
			fmt.Printf(" route %s", t.RouteID)
		}
		fmt.Printf(": %s, %s\n", orDash(t.TruckTime), t.TruckDistance)
		for _, s := range t.Stops {
			fmt.Printf("    %s. %-10s %s\n", s.SequenceLetter, s.StopID, s.Address)
		}
	}
	fmt.Printf("  Sequence: %s\n", strings.Join(r.Sequence, " > "))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
