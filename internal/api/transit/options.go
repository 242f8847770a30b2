package transit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/vetnav/facility-agent/internal/cache"
	"github.com/vetnav/facility-agent/internal/types"
)

const (
	metersPerMile = 1609

	rideshareEstimatedTime = "15-25 minutes"
	rideshareEstimatedCost = "$12-25"
)

// Planner fans a trip out to every travel mode and folds the results into
// one ranked answer. Modes settle independently; a failed mode is reported
// as unavailable, never as a planner error.
type Planner struct {
	logger     *slog.Logger
	directions Directions
	cache      cache.Store
	cacheTTL   time.Duration
}

func NewPlanner(directions Directions, store cache.Store, cacheTTL time.Duration, logger *slog.Logger) *Planner {
	return &Planner{
		logger:     logger,
		directions: directions,
		cache:      store,
		cacheTTL:   cacheTTL,
	}
}

func (p *Planner) Options(ctx context.Context, origin, destination types.Coordinates) *types.TransportationOptions {
	ctx, span := otel.Tracer("TransitPlanner").Start(ctx, "Options")
	defer span.End()

	cacheKey := fmt.Sprintf("transit_%.4f_%.4f_%.4f_%.4f",
		origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	if cached, ok := p.cache.Get(cacheKey); ok {
		if opts, ok := cached.(*types.TransportationOptions); ok {
			p.logger.DebugContext(ctx, "Returning cached transportation options", slog.String("key", cacheKey))
			return opts
		}
	}

	modes := []types.TravelMode{types.ModeWalking, types.ModeDriving, types.ModeTransit}
	results := make([]*types.TransportOption, len(modes))

	var wg sync.WaitGroup
	for i, mode := range modes {
		wg.Add(1)
		go func(i int, mode types.TravelMode) {
			defer wg.Done()
			option, err := p.directions.Route(ctx, origin, destination, mode)
			if err != nil {
				p.logger.WarnContext(ctx, "Directions lookup failed",
					slog.String("mode", string(mode)), slog.Any("error", err))
				option = &types.TransportOption{Mode: mode, Error: err.Error()}
			}
			results[i] = option
		}(i, mode)
	}
	wg.Wait()

	opts := &types.TransportationOptions{
		Walking:   results[0],
		Driving:   results[1],
		Transit:   results[2],
		Rideshare: rideshareOptions(origin, destination),
	}
	scored := scoreOptions(opts)
	opts.BestOption = pickBest(scored)
	opts.Recommendations = buildRecommendations(scored)

	p.cache.Set(cacheKey, opts, p.cacheTTL)
	p.logger.InfoContext(ctx, "Transportation options resolved",
		slog.Int("available", len(scored)))
	return opts
}

type scoredOption struct {
	mode          types.TravelMode
	score         int
	minutes       float64
	distanceMiles float64
}

func scoreOptions(opts *types.TransportationOptions) []scoredOption {
	var scored []scoredOption

	if o := opts.Walking; o != nil && o.Available && o.BestRoute != nil {
		miles := float64(o.BestRoute.DistanceMeters) / metersPerMile
		score := 10
		switch {
		case miles <= 0.5:
			score = 90
		case miles <= 1:
			score = 70
		case miles <= 2:
			score = 40
		}
		scored = append(scored, scoredOption{
			mode:          types.ModeWalking,
			score:         score,
			minutes:       float64(o.BestRoute.DurationSeconds) / 60,
			distanceMiles: miles,
		})
	}

	if o := opts.Transit; o != nil && o.Available && o.BestRoute != nil {
		minutes := float64(o.BestRoute.DurationSeconds) / 60
		score := 80
		if minutes <= 30 {
			score += 10
		} else if minutes <= 60 {
			score += 5
		}
		scored = append(scored, scoredOption{mode: types.ModeTransit, score: score, minutes: minutes})
	}

	if o := opts.Driving; o != nil && o.Available && o.BestRoute != nil {
		minutes := float64(o.BestRoute.DurationSeconds) / 60
		score := 60
		if minutes <= 15 {
			score += 20
		} else if minutes <= 30 {
			score += 10
		}
		scored = append(scored, scoredOption{mode: types.ModeDriving, score: score, minutes: minutes})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	return scored
}

func pickBest(scored []scoredOption) *types.BestTransport {
	if len(scored) == 0 {
		return nil
	}
	best := scored[0]
	return &types.BestTransport{
		Mode:   best.mode,
		Score:  best.score,
		Reason: bestOptionReason(best),
	}
}

func bestOptionReason(o scoredOption) string {
	switch o.mode {
	case types.ModeWalking:
		if o.distanceMiles <= 0.5 {
			return "Very short distance, easy walk"
		}
		if o.distanceMiles <= 1 {
			return "Close enough for a pleasant walk"
		}
		return "Walkable distance, good exercise option"
	case types.ModeTransit:
		return "Public transit provides good value and avoids parking concerns"
	case types.ModeDriving:
		return "Driving offers flexibility and direct route"
	default:
		return "Recommended based on time and convenience"
	}
}

func buildRecommendations(scored []scoredOption) []string {
	if len(scored) == 0 {
		return []string{"No transportation options available - consider rideshare services"}
	}

	var recs []string
	best := scored[0]
	switch {
	case best.mode == types.ModeWalking && best.distanceMiles <= 1:
		recs = append(recs, fmt.Sprintf("Walking recommended: %.1f miles in %.0f minutes",
			math.Round(best.distanceMiles*10)/10, best.minutes))
	case best.mode == types.ModeTransit:
		recs = append(recs, fmt.Sprintf("Public transit recommended: %.0f minutes travel time", best.minutes))
	case best.mode == types.ModeDriving:
		recs = append(recs, fmt.Sprintf("Driving recommended: %.0f minutes drive time", best.minutes))
	}

	if len(scored) > 1 {
		alt := scored[1]
		recs = append(recs, fmt.Sprintf("Alternative: %s (%.0f minutes)", alt.mode, alt.minutes))
	}

	for _, o := range scored {
		if o.minutes > 45 {
			recs = append(recs, "For convenience, consider rideshare services (Uber/Lyft)")
			break
		}
	}
	return recs
}

func rideshareOptions(origin, destination types.Coordinates) []types.RideshareOption {
	uberDeep := fmt.Sprintf("uber://?action=setPickup&pickup[latitude]=%f&pickup[longitude]=%f&dropoff[latitude]=%f&dropoff[longitude]=%f",
		origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	uberWeb := fmt.Sprintf("https://uber.com/ul/?pickup[latitude]=%f&pickup[longitude]=%f&dropoff[latitude]=%f&dropoff[longitude]=%f",
		origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	lyftDeep := fmt.Sprintf("lyft://ridetype?id=lyft&destination[latitude]=%f&destination[longitude]=%f&pickup[latitude]=%f&pickup[longitude]=%f",
		destination.Lat, destination.Lng, origin.Lat, origin.Lng)
	lyftWeb := fmt.Sprintf("https://lyft.com/ride?destination[latitude]=%f&destination[longitude]=%f&pickup[latitude]=%f&pickup[longitude]=%f",
		destination.Lat, destination.Lng, origin.Lat, origin.Lng)

	return []types.RideshareOption{
		{
			Provider:      "Uber",
			DeepLink:      uberDeep,
			WebLink:       uberWeb,
			EstimatedTime: rideshareEstimatedTime,
			EstimatedCost: rideshareEstimatedCost,
			Description:   "Request an Uber ride",
		},
		{
			Provider:      "Lyft",
			DeepLink:      lyftDeep,
			WebLink:       lyftWeb,
			EstimatedTime: rideshareEstimatedTime,
			EstimatedCost: rideshareEstimatedCost,
			Description:   "Request a Lyft ride",
		},
	}
}
