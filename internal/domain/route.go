package domain

import "fmt"

// Metric selects which travel cost a route minimizes.
type Metric string

const (
	MetricSeconds Metric = "seconds"
	MetricMeters  Metric = "meters"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricSeconds, MetricMeters:
		return Metric(s), nil
	}
	return "", fmt.Errorf("parse metric: unknown optimize_by %q (want seconds or meters)", s)
}

// Pick returns whichever of the two values this metric measures.
func (m Metric) Pick(seconds, meters int) int {
	if m == MetricMeters {
		return meters
	}
	return seconds
}

// Represents one visited stop inside a truck segment.
type RouteStop struct {
	StopID         string
	Address        string
	SequenceNum    int
	SequenceLetter string
}

// TruckSegment is the ordered part of a route served by a single truck,
// from leaving the depot until it is back (or the route ends).
type TruckSegment struct {
	RouteID       string
	TruckID       string
	DriverID      string
	Stops         []RouteStop
	TruckSeconds  int
	TruckMeters   int
	TruckTime     string
	TruckDistance string
}

// Represents a full multi-truck plan for one depot and date.
//
// Sequence is the global visiting order with depot ids interleaved.
// Trucks holds the closed segments; stops are referenced by id only.
type Route struct {
	ID             string
	Date           string
	DepotID        string
	DepotAddress   string
	OptimizeBy     Metric
	Sequence       []string
	Trucks         []TruckSegment
	TotalSeconds   int
	TotalMeters    int
	TotalOptimized int
	TotalTime      string
	TotalDistance  string
	IsValid        bool

	open *TruckSegment
}

func NewRoute(depotID, depotAddress string, by Metric) *Route {
	return &Route{
		DepotID:      depotID,
		DepotAddress: depotAddress,
		OptimizeBy:   by,
		Sequence:     []string{},
		Trucks:       []TruckSegment{},
	}
}

// Visit records a stop id in the global sequence.
func (r *Route) Visit(stopID string) {
	r.Sequence = append(r.Sequence, stopID)
}

// AddStop appends a stop to the truck segment being built, opening one if needed.
func (r *Route) AddStop(stopID, address string) {
	if r.open == nil {
		r.open = &TruckSegment{}
	}
	r.open.Stops = append(r.open.Stops, RouteStop{
		StopID:      stopID,
		Address:     address,
		SequenceNum: len(r.open.Stops) + 1,
	})
}

// OpenStops is the number of stops on the segment currently being built.
func (r *Route) OpenStops() int {
	if r.open == nil {
		return 0
	}
	return len(r.open.Stops)
}

// CloseSegment adds the time and distance travelled since the last depot
// visit to the route totals and, if a segment is being built, records those
// values as its totals and appends it to Trucks.
func (r *Route) CloseSegment(seconds, meters int) {
	r.TotalSeconds += seconds
	r.TotalMeters += meters
	r.TotalOptimized += r.OptimizeBy.Pick(seconds, meters)

	if r.open == nil {
		return
	}
	r.open.TruckSeconds = seconds
	r.open.TruckMeters = meters
	r.Trucks = append(r.Trucks, *r.open)
	r.open = nil
}

// StopCount is the number of stops across all closed segments.
func (r *Route) StopCount() int {
	n := 0
	for _, t := range r.Trucks {
		n += len(t.Stops)
	}
	return n
}

// Validate sets and returns IsValid: true only when the route has at least
// one segment and every segment respects the capacity and time limit.
func (r *Route) Validate(capacity, timeLimit int) bool {
	r.IsValid = len(r.Trucks) > 0
	for _, t := range r.Trucks {
		if len(t.Stops) > capacity || t.TruckSeconds > timeLimit {
			r.IsValid = false
			break
		}
	}
	return r.IsValid
}

// SetTotals fills the human readable totals and the per-stop sequence letters.
func (r *Route) SetTotals() {
	r.TotalTime = FormatDuration(r.TotalSeconds)
	r.TotalDistance = FormatMiles(r.TotalMeters)
	for i := range r.Trucks {
		t := &r.Trucks[i]
		t.TruckTime = FormatDuration(t.TruckSeconds)
		t.TruckDistance = FormatMiles(t.TruckMeters)
		for j := range t.Stops {
			t.Stops[j].SequenceLetter = SequenceLetter(j)
		}
	}
}

// ReturnBest returns a when it is strictly better than b, otherwise b.
// Equal totals favor b.
func ReturnBest(a, b *Route) *Route {
	if a.TotalOptimized < b.TotalOptimized {
		return a
	}
	return b
}
