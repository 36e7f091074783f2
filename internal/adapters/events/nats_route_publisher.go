package events

import (
	"context"
	"encoding/json"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"

	"github.com/nats-io/nats.go"
)

// SubjectRoutePlanned carries one message per accepted route.
const SubjectRoutePlanned = "routes.planned"

var _ ports.RouteSink = (*NATSRoutePublisher)(nil)

type StopEvent struct {
	StopID         string `json:"stop_id"`
	Address        string `json:"address"`
	SequenceNum    int    `json:"sequence_num"`
	SequenceLetter string `json:"sequence_letter"`
}

type TruckEvent struct {
	RouteID       string      `json:"route_id,omitempty"`
	TruckID       string      `json:"truck_id,omitempty"`
	DriverID      string      `json:"driver_id,omitempty"`
	Stops         []StopEvent `json:"stops"`
	TruckSeconds  int         `json:"truck_seconds"`
	TruckMeters   int         `json:"truck_meters"`
	TruckTime     string      `json:"truck_time"`
	TruckDistance string      `json:"truck_distance"`
}

// RoutePlanned is the JSON payload published on SubjectRoutePlanned.
type RoutePlanned struct {
	PlanID         string       `json:"plan_id,omitempty"`
	Date           string       `json:"date"`
	DepotID        string       `json:"depot_id"`
	DepotAddress   string       `json:"depot_address"`
	OptimizeBy     string       `json:"optimize_by"`
	Sequence       []string     `json:"sequence"`
	Trucks         []TruckEvent `json:"trucks"`
	TotalSeconds   int          `json:"total_seconds"`
	TotalMeters    int          `json:"total_meters"`
	TotalOptimized int          `json:"total_optimized"`
	TotalTime      string       `json:"total_time"`
	TotalDistance  string       `json:"total_distance"`
}

func NewRoutePlanned(r *domain.Route) RoutePlanned {
	ev := RoutePlanned{
		PlanID:         r.ID,
		Date:           r.Date,
		DepotID:        r.DepotID,
		DepotAddress:   r.DepotAddress,
		OptimizeBy:     string(r.OptimizeBy),
		Sequence:       r.Sequence,
		Trucks:         make([]TruckEvent, 0, len(r.Trucks)),
		TotalSeconds:   r.TotalSeconds,
		TotalMeters:    r.TotalMeters,
		TotalOptimized: r.TotalOptimized,
		TotalTime:      r.TotalTime,
		TotalDistance:  r.TotalDistance,
	}
	for _, t := range r.Trucks {
		te := TruckEvent{
			RouteID:       t.RouteID,
			TruckID:       t.TruckID,
			DriverID:      t.DriverID,
			Stops:         make([]StopEvent, 0, len(t.Stops)),
			TruckSeconds:  t.TruckSeconds,
			TruckMeters:   t.TruckMeters,
			TruckTime:     t.TruckTime,
			TruckDistance: t.TruckDistance,
		}
		for _, s := range t.Stops {
			te.Stops = append(te.Stops, StopEvent{
				StopID:         s.StopID,
				Address:        s.Address,
				SequenceNum:    s.SequenceNum,
				SequenceLetter: s.SequenceLetter,
			})
		}
		ev.Trucks = append(ev.Trucks, te)
	}
	return ev
}

// NATSRoutePublisher publishes accepted routes as JSON to a NATS subject.
type NATSRoutePublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSRoutePublisher(url string, opts ...nats.Option) (*NATSRoutePublisher, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSRoutePublisher{conn: nc, subject: SubjectRoutePlanned}, nil
}

func (p *NATSRoutePublisher) SaveRoute(ctx context.Context, route *domain.Route) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(NewRoutePlanned(route))
	if err != nil {
		return fmt.Errorf("marshaling route: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.subject, err)
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSRoutePublisher) Close() error {
	p.conn.Close()
	return nil
}
