package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/vetnav/facility-agent/internal/types"
)

var _ Resolver = (*NominatimResolver)(nil)

// Resolver turns free-form location text into coordinates and back.
type Resolver interface {
	Resolve(ctx context.Context, text string) (*types.ResolvedLocation, error)
	ReverseResolve(ctx context.Context, lat, lng float64) (string, error)
}

// coordsPattern matches literal "lat, lng" input so we can skip the
// upstream call entirely.
var coordsPattern = regexp.MustCompile(`^(-?\d+\.?\d*),\s*(-?\d+\.?\d*)$`)

// NominatimResolver resolves addresses against the OpenStreetMap
// Nominatim API.
type NominatimResolver struct {
	logger    *slog.Logger
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatimResolver(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *NominatimResolver {
	return &NominatimResolver{
		logger:    logger,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

type nominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// Resolve converts an address into coordinates. Input that is already a
// coordinate pair is parsed locally without touching the network.
func (r *NominatimResolver) Resolve(ctx context.Context, text string) (*types.ResolvedLocation, error) {
	ctx, span := otel.Tracer("GeocodingResolver").Start(ctx, "Resolve")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty location text")
	}

	if m := coordsPattern.FindStringSubmatch(text); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lng, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return &types.ResolvedLocation{
				Lat:     lat,
				Lng:     lng,
				Address: text,
				Source:  "coordinates",
			}, nil
		}
	}

	q := url.Values{}
	q.Set("q", text)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("countrycodes", "us")
	q.Set("addressdetails", "1")

	var results []nominatimResult
	if err := r.get(ctx, "/search", q, &results); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocoding request failed")
		return nil, fmt.Errorf("geocoding failed for %q: %w", text, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no geocoding results for %q", text)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q from geocoder: %w", first.Lat, err)
	}
	lng, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q from geocoder: %w", first.Lon, err)
	}

	r.logger.DebugContext(ctx, "Geocoded address",
		slog.String("input", text), slog.Float64("lat", lat), slog.Float64("lng", lng))

	return &types.ResolvedLocation{
		Lat:     lat,
		Lng:     lng,
		Address: first.DisplayName,
		Source:  "openstreetmap",
	}, nil
}

type nominatimReverseResult struct {
	DisplayName string `json:"display_name"`
}

// ReverseResolve converts coordinates back into a display address.
func (r *NominatimResolver) ReverseResolve(ctx context.Context, lat, lng float64) (string, error) {
	ctx, span := otel.Tracer("GeocodingResolver").Start(ctx, "ReverseResolve")
	defer span.End()

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	var result nominatimReverseResult
	if err := r.get(ctx, "/reverse", q, &result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reverse geocoding request failed")
		return "", fmt.Errorf("reverse geocoding failed: %w", err)
	}
	if result.DisplayName == "" {
		return "", fmt.Errorf("no reverse geocoding result for %.4f,%.4f", lat, lng)
	}
	return result.DisplayName, nil
}

func (r *NominatimResolver) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	return nil
}
