package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"route-planner-service/internal/aco"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/metrics"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"time"
)

type PlanRequest struct {
	// PlanID becomes the route id. Empty lets the sink pick one.
	PlanID string
	Agent  string
	Date   string
	Params aco.Params
}

// PlanResult is returned alongside aco.ErrNoRoute too, so callers can show
// the best infeasible route.
type PlanResult struct {
	Route        *domain.Route
	ActiveTrucks int // optimizer truck count after reductions
	TrucksUsed   int // segments in Route
	Iterations   int
	Cancelled    bool
}

// Sinks fans a route out to several sinks in order, stopping at the first error.
type Sinks []ports.RouteSink

func (s Sinks) SaveRoute(ctx context.Context, route *domain.Route) error {
	for i, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.SaveRoute(ctx, route); err != nil {
			return fmt.Errorf("sink #%d: %w", i+1, err)
		}
	}
	return nil
}

// PlanRoutes loads the stops for req, optimizes a route over them and hands
// a feasible route to sink. sink and rec may be nil.
func PlanRoutes(
	ctx context.Context,
	req PlanRequest,
	stops ports.StopRepository,
	provider ports.DistanceProvider,
	sink ports.RouteSink,
	rng aco.Rand,
	rec *metrics.Registry,
) (_ *PlanResult, err error) {
	defer obs.Time(ctx, "services.PlanRoutes")(&err)

	start := time.Now()
	outcome := metrics.OutcomeError
	defer func() { rec.RecordPlan(outcome, time.Since(start)) }()

	set, err := stops.ListStops(ctx, req.Agent, req.Date)
	if err != nil {
		return nil, fmt.Errorf("plan routes: list stops: %w", err)
	}
	if len(set.Orders) == 0 {
		outcome = metrics.OutcomeNoOrders
		return nil, aco.ErrNoOrders
	}

	g, err := BuildGraph(ctx, set, provider, rec)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	opt, err := aco.NewOptimizer(g, req.Params, rng)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}
	planID, _ := ctx.Value(obs.PlanIDKey).(string)
	opt.OnIteration = func(s aco.IterationStats) {
		rec.RecordIteration(s.TrucksReduced)
		log.Printf(
			"plan_id=%s op=aco.iteration n=%d trucks=%d best=%d valid=%t reduced=%t",
			planID, s.Iteration, s.ActiveTrucks, s.BestOptimized, s.BestValid, s.TrucksReduced,
		)
	}

	res, runErr := opt.Run(ctx)
	if res == nil {
		if errors.Is(runErr, aco.ErrNoOrders) {
			outcome = metrics.OutcomeNoOrders
		}
		return nil, runErr
	}

	route := res.Route
	route.ID = req.PlanID
	route.Date = set.Date
	route.SetTotals()

	out := &PlanResult{
		Route:        route,
		ActiveTrucks: res.ActiveTrucks,
		TrucksUsed:   len(route.Trucks),
		Iterations:   res.Iterations,
		Cancelled:    res.Cancelled,
	}
	if runErr != nil {
		outcome = metrics.OutcomeNoRoute
		if res.Cancelled {
			outcome = metrics.OutcomeCancelled
		}
		return out, runErr
	}

	if sink != nil {
		if err := sink.SaveRoute(ctx, route); err != nil {
			return out, fmt.Errorf("plan routes: save route: %w", err)
		}
	}

	outcome = metrics.OutcomeOK
	if res.Cancelled {
		outcome = metrics.OutcomeCancelled
	}
	rec.RecordBest(string(route.OptimizeBy), route.TotalOptimized, out.TrucksUsed)
	return out, nil
}
