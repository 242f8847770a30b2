package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vetnav/facility-agent/internal/types"
)

var _ Directions = (*GoogleDirections)(nil)

// Directions resolves a single-mode route between two points.
type Directions interface {
	Route(ctx context.Context, origin, destination types.Coordinates, mode types.TravelMode) (*types.TransportOption, error)
}

// GoogleDirections queries the Google Directions API.
type GoogleDirections struct {
	logger  *slog.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGoogleDirections(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *GoogleDirections {
	return &GoogleDirections{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Summary string `json:"summary"`
		Legs    []struct {
			Duration struct {
				Text  string `json:"text"`
				Value int    `json:"value"`
			} `json:"duration"`
			Distance struct {
				Text  string `json:"text"`
				Value int    `json:"value"`
			} `json:"distance"`
		} `json:"legs"`
	} `json:"routes"`
}

func (g *GoogleDirections) Route(ctx context.Context, origin, destination types.Coordinates, mode types.TravelMode) (*types.TransportOption, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("directions API key not configured")
	}

	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	q.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	q.Set("mode", string(mode))
	q.Set("key", g.apiKey)
	if mode == types.ModeTransit {
		q.Set("departure_time", "now")
		q.Set("alternatives", "true")
		q.Set("transit_routing_preference", "fewer_transfers")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "VeteranFacilityAgent/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions API returned status %d", resp.StatusCode)
	}

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}
	if body.Status != "OK" {
		return nil, fmt.Errorf("directions API error: %s - %s", body.Status, body.ErrorMessage)
	}

	option := &types.TransportOption{Mode: mode}
	for _, route := range body.Routes {
		if len(route.Legs) == 0 {
			continue
		}
		leg := route.Legs[0]
		summary := types.RouteSummary{
			DurationSeconds: leg.Duration.Value,
			DurationText:    leg.Duration.Text,
			DistanceMeters:  leg.Distance.Value,
			DistanceText:    leg.Distance.Text,
			Summary:         route.Summary,
		}
		if option.BestRoute == nil {
			option.BestRoute = &summary
		} else {
			option.Alternatives = append(option.Alternatives, summary)
		}
	}
	if option.BestRoute == nil {
		option.Error = "No routes found"
		return option, nil
	}
	option.Available = true
	return option, nil
}
