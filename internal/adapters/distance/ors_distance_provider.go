package distance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var _ ports.DistanceMatrixProvider = (*ORSDistanceProvider)(nil)

// ORSDistanceProvider resolves travel metrics between stop addresses with
// OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Geocode and distance caching through the cache ports
//   - Client side rate limiting shared by every request
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSDistanceProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	country       string
	limiter       *rate.Limiter
	distanceCache ports.DistanceCache
	geocodeCache  ports.GeocodeCache
}

// Option customizes an ORSDistanceProvider.
type Option func(*ORSDistanceProvider)

func WithBaseURL(u string) Option {
	return func(o *ORSDistanceProvider) { o.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *ORSDistanceProvider) { o.session = c }
}

// WithRateLimit caps outgoing requests per second. Zero or less disables the limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *ORSDistanceProvider) {
		if perSecond <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithCaches(d ports.DistanceCache, g ports.GeocodeCache) Option {
	return func(o *ORSDistanceProvider) {
		o.distanceCache = d
		o.geocodeCache = g
	}
}

func NewORSDistanceProvider(apiKey string, opts ...Option) (*ORSDistanceProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDistanceProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
		country: "US",
		// The free ORS plan allows 40 matrix requests per minute.
		limiter: rate.NewLimiter(rate.Every(1500*time.Millisecond), 2),
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// GetDistance delegates to the batched path to reuse caching and matrix logic.
func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	origin string,
	destination string,
) (ports.DistanceResult, error) {
	normOrigin := normalize(origin)
	normDestination := normalize(destination)
	if normOrigin == "" || normDestination == "" {
		return ports.DistanceResult{}, errors.New("get ORS distance: origin and destination must be non-empty")
	}

	results, err := o.GetDistances(ctx, normOrigin, []string{normDestination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get ORS distance %q -> %q: %w", normOrigin, normDestination, err)
	}

	result, ok := results[normDestination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("get ORS distance: no result for %q -> %q", origin, destination)
	}

	return result, nil
}

// GetDistances computes metrics from one origin to many destinations. Keys of
// the result are the normalized destination addresses.
func (o *ORSDistanceProvider) GetDistances(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistances")(&err)

	normOrigin := normalize(origin)
	if normOrigin == "" {
		return nil, errors.New("get ORS distances: origin must be non-empty")
	}

	seen := make(map[string]struct{}, len(destinations))
	destList := make([]string, 0, len(destinations))
	for _, d := range destinations {
		nd := normalize(d)
		if nd == "" || nd == normOrigin {
			continue
		}
		if _, ok := seen[nd]; ok {
			continue
		}
		seen[nd] = struct{}{}
		destList = append(destList, nd)
	}
	if len(destList) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	hits := map[string]ports.DistanceResult{}
	// Check the distance cache before issuing external API calls.
	if o.distanceCache != nil {
		hits, err = o.distanceCache.GetMany(ctx, normOrigin, destList)
		if err != nil {
			return nil, fmt.Errorf("ORS get distance cache: %w", err)
		}
	}

	misses := make([]string, 0, len(destList))
	for _, d := range destList {
		if _, ok := hits[d]; !ok {
			misses = append(misses, d)
		}
	}
	if len(misses) == 0 {
		return hits, nil
	}

	coords, err := o.coordinates(ctx, append([]string{normOrigin}, misses...))
	if err != nil {
		return nil, err
	}

	destinationCoords := make([]domain.Coordinates, 0, len(misses))
	for _, d := range misses {
		destinationCoords = append(destinationCoords, coords[d])
	}

	// Fetch a single origin->many matrix row for all cache misses.
	fetched, err := o.fetchMatrixRow(ctx, coords[normOrigin], misses, destinationCoords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	var missing []string
	for _, d := range misses {
		if _, ok := fetched[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("ORS matrix service did not return the following destinations: %s", strings.Join(missing, ", "))
	}

	if o.distanceCache != nil {
		if err := o.distanceCache.PutMany(ctx, normOrigin, fetched); err != nil {
			log.Printf("op=ors.GetDistances distance cache write failed: %v", err)
		}
	}

	out := make(map[string]ports.DistanceResult, len(hits)+len(fetched))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fetched {
		out[k] = v
	}

	return out, nil
}

// coordinates resolves every address, from the geocode cache first, and
// fails if any address stays unknown.
func (o *ORSDistanceProvider) coordinates(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	coords := map[string]domain.Coordinates{}
	if o.geocodeCache != nil {
		var err error
		coords, err = o.geocodeCache.GetMany(ctx, addresses)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	var misses []string
	for _, a := range addresses {
		if _, ok := coords[a]; !ok {
			misses = append(misses, a)
		}
	}
	if len(misses) == 0 {
		return coords, nil
	}

	fresh, err := o.geocodeMany(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("retrieving coordinates: %w", err)
	}
	if o.geocodeCache != nil && len(fresh) > 0 {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			log.Printf("op=ors.coordinates geocode cache write failed: %v", err)
		}
	}

	out := make(map[string]domain.Coordinates, len(coords)+len(fresh))
	for k, v := range coords {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}
	for _, a := range addresses {
		if _, ok := out[a]; !ok {
			return nil, fmt.Errorf("missing coordinate for %q", a)
		}
	}
	return out, nil
}
