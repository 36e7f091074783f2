package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"route-planner-service/internal/aco"
	"route-planner-service/internal/adapters/cache"
	"route-planner-service/internal/adapters/distance"
	"route-planner-service/internal/adapters/events"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/config"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/metrics"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var planFlags struct {
	agent        string
	date         string
	trucks       int
	capacity     int
	timeLimit    int
	optimizeBy   string
	initialOrder string
	iterations   int
	ants         int
	seed         int64
	configPath   string
	dryRun       bool
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Optimize and save the routes of an agent for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := planFlags.configPath
		if path == "" {
			path = config.Get("PLANNER_CONFIG", "")
		}
		planner, err := config.LoadPlanner(path, aco.DefaultParams())
		if err != nil {
			return err
		}
		params, err := applyPlanFlags(cmd, planner.Params)
		if err != nil {
			return err
		}

		seed := time.Now().UnixNano()
		if planner.Seed != nil {
			seed = *planner.Seed
		}
		if cmd.Flags().Changed("seed") {
			seed = planFlags.seed
		}

		conn, err := openDB()
		if err != nil {
			return err
		}
		defer conn.Close()

		provider, closeCaches, err := newProvider(conn)
		if err != nil {
			return err
		}
		defer closeCaches()

		var sinks services.Sinks
		if !planFlags.dryRun {
			sinks = append(sinks, repositories.NewPostgresRouteRepository(conn))
			if url := config.Get("NATS_URL", ""); url != "" {
				pub, err := events.NewNATSRoutePublisher(url)
				if err != nil {
					return err
				}
				defer pub.Close()
				sinks = append(sinks, pub)
			}
		}

		rec := metrics.DefaultRegistry()
		if addr := config.Get("METRICS_ADDR", ""); addr != "" {
			go serveMetrics(addr, rec)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		planID := uuid.NewString()
		ctx = obs.WithPlanID(ctx, planID)
		log.Printf("plan_id=%s op=plan agent=%s date=%s trucks=%d seed=%d", planID, planFlags.agent, planFlags.date, params.TruckCount, seed)

		res, err := services.PlanRoutes(
			ctx,
			services.PlanRequest{PlanID: planID, Agent: planFlags.agent, Date: planFlags.date, Params: params},
			repositories.NewPostgresStopRepository(conn),
			provider,
			sinks,
			aco.NewRand(seed),
			rec,
		)
		if res != nil {
			printRoute(res.Route)
		}
		if errors.Is(err, aco.ErrNoOrders) || errors.Is(err, aco.ErrNoRoute) {
			return err
		}
		if err != nil {
			return fmt.Errorf("plan: %w", err)
		}
		if res.Cancelled {
			fmt.Fprintln(os.Stderr, "interrupted: showing the best route found so far")
		}
		return nil
	},
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planFlags.agent, "agent", "", "agent (depot) name")
	f.StringVar(&planFlags.date, "date", "", "delivery date, YYYY-MM-DD")
	f.IntVar(&planFlags.trucks, "trucks", 0, "trucks available")
	f.IntVar(&planFlags.capacity, "capacity", 0, "stops per truck")
	f.IntVar(&planFlags.timeLimit, "time-limit", 0, "longest truck shift in seconds")
	f.StringVar(&planFlags.optimizeBy, "optimize-by", "", "seconds or meters")
	f.StringVar(&planFlags.initialOrder, "initial-order", "", "greedy walk order: discovery or nearest")
	f.IntVar(&planFlags.iterations, "iterations", 0, "optimizer iterations")
	f.IntVar(&planFlags.ants, "ants", 0, "ants per colony")
	f.Int64Var(&planFlags.seed, "seed", 0, "random seed (default: config file, then clock)")
	f.StringVar(&planFlags.configPath, "config", "", "planner YAML file (default $PLANNER_CONFIG)")
	f.BoolVar(&planFlags.dryRun, "dry-run", false, "print the route without saving or publishing it")
	_ = planCmd.MarkFlagRequired("agent")
	_ = planCmd.MarkFlagRequired("date")
}

// applyPlanFlags overrides p with the flags given on the command line.
func applyPlanFlags(cmd *cobra.Command, p aco.Params) (aco.Params, error) {
	f := cmd.Flags()
	if f.Changed("trucks") {
		p.TruckCount = planFlags.trucks
	}
	if f.Changed("capacity") {
		p.Capacity = planFlags.capacity
	}
	if f.Changed("time-limit") {
		p.TimeLimit = planFlags.timeLimit
	}
	if f.Changed("iterations") {
		p.Limit = planFlags.iterations
	}
	if f.Changed("ants") {
		p.Ants = planFlags.ants
	}
	if f.Changed("initial-order") {
		p.InitialOrder = planFlags.initialOrder
	}
	if f.Changed("optimize-by") {
		m, err := domain.ParseMetric(planFlags.optimizeBy)
		if err != nil {
			return aco.Params{}, err
		}
		p.OptimizeBy = m
	}
	return p, p.Validate()
}

// newProvider builds the ORS provider with Redis caches when REDIS_URL is
// set and Postgres caches otherwise.
func newProvider(conn *sql.DB) (ports.DistanceProvider, func(), error) {
	key := config.Get("ORS_API_KEY", "")
	if key == "" {
		return nil, nil, errors.New("ORS_API_KEY is required")
	}

	opts := []distance.Option{}
	rate, err := config.GetFloat("ORS_RATE_PER_SEC", 0)
	if err != nil {
		return nil, nil, err
	}
	if rate > 0 {
		opts = append(opts, distance.WithRateLimit(rate, 2))
	}

	closeFn := func() {}
	if url := config.Get("REDIS_URL", ""); url != "" {
		rc, err := cache.NewRedisCache(url, config.Get("REDIS_PREFIX", "planner"), 30*24*time.Hour)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() { _ = rc.Close() }
		opts = append(opts, distance.WithCaches(rc, rc.Geocodes()))
	} else {
		opts = append(opts, distance.WithCaches(cache.NewSQLDistanceCache(conn), cache.NewSQLGeocodeCache(conn)))
	}

	p, err := distance.NewORSDistanceProvider(key, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return p, closeFn, nil
}

func serveMetrics(addr string, rec *metrics.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("Metrics listening addr=%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("metrics server stopped: %v", err)
	}
}
