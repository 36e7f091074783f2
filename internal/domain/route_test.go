package domain

import "testing"

func segmentRoute(by Metric, segments ...[]string) *Route {
	r := NewRoute("D", "depot", by)
	for i, stops := range segments {
		r.Visit("D")
		for _, s := range stops {
			r.Visit(s)
			r.AddStop(s, s+" street")
		}
		r.CloseSegment(1000*(i+1), 500*(i+1))
	}
	r.Visit("D")
	return r
}

func TestRouteCloseSegmentTotals(t *testing.T) {
	r := segmentRoute(MetricSeconds, []string{"a", "b"}, []string{"c"})

	if len(r.Trucks) != 2 {
		t.Fatalf("trucks = %d, want 2", len(r.Trucks))
	}
	if r.TotalSeconds != 3000 || r.TotalMeters != 1500 {
		t.Fatalf("totals = %d s / %d m, want 3000 s / 1500 m", r.TotalSeconds, r.TotalMeters)
	}
	if r.TotalOptimized != 3000 {
		t.Fatalf("total optimized = %d, want 3000", r.TotalOptimized)
	}
	if r.StopCount() != 3 {
		t.Fatalf("stop count = %d, want 3", r.StopCount())
	}
	if got := r.Trucks[0].Stops[1].SequenceNum; got != 2 {
		t.Fatalf("sequence num = %d, want 2", got)
	}
	if r.OpenStops() != 0 {
		t.Fatalf("open stops = %d, want 0", r.OpenStops())
	}
}

func TestRouteCloseSegmentWithoutStops(t *testing.T) {
	r := NewRoute("D", "depot", MetricMeters)
	r.CloseSegment(100, 40)

	if len(r.Trucks) != 0 {
		t.Fatalf("trucks = %d, want 0", len(r.Trucks))
	}
	if r.TotalOptimized != 40 {
		t.Fatalf("total optimized = %d, want 40", r.TotalOptimized)
	}
}

func TestRouteValidate(t *testing.T) {
	cases := []struct {
		name      string
		route     *Route
		capacity  int
		timeLimit int
		want      bool
	}{
		{"no trucks", NewRoute("D", "depot", MetricSeconds), 10, 10000, false},
		{"within limits", segmentRoute(MetricSeconds, []string{"a", "b"}, []string{"c"}), 2, 2000, true},
		{"over capacity", segmentRoute(MetricSeconds, []string{"a", "b", "c"}), 2, 2000, false},
		{"over time", segmentRoute(MetricSeconds, []string{"a"}, []string{"b"}), 2, 1999, false},
		{"time limit inclusive", segmentRoute(MetricSeconds, []string{"a"}), 1, 1000, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.route.Validate(tc.capacity, tc.timeLimit); got != tc.want {
				t.Fatalf("Validate = %v, want %v", got, tc.want)
			}
			if tc.route.IsValid != tc.want {
				t.Fatalf("IsValid = %v, want %v", tc.route.IsValid, tc.want)
			}
		})
	}
}

func TestReturnBestTieFavorsSecond(t *testing.T) {
	a := &Route{TotalOptimized: 500}
	b := &Route{TotalOptimized: 500}

	if got := ReturnBest(a, b); got != b {
		t.Fatalf("ReturnBest on tie returned first argument, want second")
	}

	a.TotalOptimized = 499
	if got := ReturnBest(a, b); got != a {
		t.Fatalf("ReturnBest returned second argument, want strictly smaller first")
	}

	a.TotalOptimized = 501
	if got := ReturnBest(a, b); got != b {
		t.Fatalf("ReturnBest returned first argument, want smaller second")
	}
}

func TestRouteSetTotals(t *testing.T) {
	r := segmentRoute(MetricSeconds, []string{"a", "b"}, []string{"c"})
	r.SetTotals()

	if r.TotalTime != "50mins" {
		t.Fatalf("total time = %q, want %q", r.TotalTime, "50mins")
	}
	if r.TotalDistance != "1 mile" {
		t.Fatalf("total distance = %q, want %q", r.TotalDistance, "1 mile")
	}
	if got := r.Trucks[0].Stops[1].SequenceLetter; got != "B" {
		t.Fatalf("letter = %q, want B", got)
	}
}

func TestParseMetric(t *testing.T) {
	if m, err := ParseMetric("meters"); err != nil || m != MetricMeters {
		t.Fatalf("ParseMetric(meters) = %q, %v", m, err)
	}
	if _, err := ParseMetric("hours"); err == nil {
		t.Fatalf("expected error for unknown metric")
	}
}

func TestAddressFull(t *testing.T) {
	a := Address{Line1: " 12 Main St ", City: "Springfield", State: "IL", Zip: "62701"}
	if got, want := a.Full(), "12 Main St Springfield IL 62701"; got != want {
		t.Fatalf("Full = %q, want %q", got, want)
	}
}
