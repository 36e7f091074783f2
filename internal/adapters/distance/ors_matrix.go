package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Units        string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// fetchMatrixRow asks /v2/matrix for the row from origin to each destination.
// Location 0 is the origin; destinations follow in order.
func (o *ORSDistanceProvider) fetchMatrixRow(
	ctx context.Context,
	originCoord domain.Coordinates,
	destinations []string,
	destinationCoords []domain.Coordinates,
) (map[string]ports.DistanceResult, error) {
	if len(destinations) != len(destinationCoords) {
		return nil, errors.New("destinations and destinationCoords are expected to have the same length")
	}
	if len(destinations) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	body := matrixRequest{
		Locations:    [][]float64{originCoord.CoordsToList()},
		Sources:      []int{0},
		Destinations: make([]int, 0, len(destinationCoords)),
		Metrics:      []string{"distance", "duration"},
		Units:        "m",
	}
	for i, c := range destinationCoords {
		body.Locations = append(body.Locations, c.CoordsToList())
		body.Destinations = append(body.Destinations, i+1)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}
	if len(mr.Distances) != 1 || len(mr.Durations) != 1 {
		return nil, fmt.Errorf(
			"expected 1 source row; got distances=%d durations=%d",
			len(mr.Distances), len(mr.Durations),
		)
	}

	rowDistances, rowDurations := mr.Distances[0], mr.Durations[0]
	if len(rowDistances) != len(destinations) || len(rowDurations) != len(destinations) {
		return nil, fmt.Errorf(
			"row lengths do not match destinations: distances=%d durations=%d destinations=%d",
			len(rowDistances), len(rowDurations), len(destinations),
		)
	}

	out := make(map[string]ports.DistanceResult, len(destinations))
	for i, dest := range destinations {
		// ORS reports null for unroutable pairs.
		if rowDistances[i] == nil || rowDurations[i] == nil {
			return nil, fmt.Errorf("matrix returned no route to %q", dest)
		}
		out[dest] = ports.DistanceResult{
			DistanceMeters:  int(math.Round(*rowDistances[i])),
			DurationSeconds: int(math.Round(*rowDurations[i])),
		}
	}

	return out, nil
}
