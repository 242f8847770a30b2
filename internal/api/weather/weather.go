package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/vetnav/facility-agent/internal/cache"
	"github.com/vetnav/facility-agent/internal/types"
)

var _ Provider = (*OpenWeatherMap)(nil)

// Provider fetches current conditions plus a short forecast for a point.
type Provider interface {
	Fetch(ctx context.Context, lat, lng float64) (*types.WeatherData, error)
}

const (
	forecastPoints = 8 // 24h at 3h intervals
	analysisPoints = 4 // first 12h of the forecast

	coldThresholdF     = 20
	hotThresholdF      = 95
	freezingF          = 32
	heavyPrecipInches  = 0.5
	lightPrecipInches  = 0.1
	highWindMPH        = 25
	lowVisibilityMiles = 0.25
)

// OpenWeatherMap fetches imperial-unit weather from the OpenWeatherMap
// current and forecast endpoints.
type OpenWeatherMap struct {
	logger   *slog.Logger
	baseURL  string
	apiKey   string
	client   *http.Client
	cache    cache.Store
	cacheTTL time.Duration
}

func NewOpenWeatherMap(baseURL, apiKey string, timeout, cacheTTL time.Duration, store cache.Store, logger *slog.Logger) *OpenWeatherMap {
	return &OpenWeatherMap{
		logger:   logger,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		cache:    store,
		cacheTTL: cacheTTL,
	}
}

type owmCurrent struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility float64 `json:"visibility"`
	Rain       struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

type owmForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			ThreeHour float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

// Fetch retrieves the current observation and forecast concurrently. Both
// calls must succeed; weather is an all-or-nothing input to the assessment.
func (p *OpenWeatherMap) Fetch(ctx context.Context, lat, lng float64) (*types.WeatherData, error) {
	ctx, span := otel.Tracer("WeatherProvider").Start(ctx, "Fetch")
	defer span.End()

	if p.apiKey == "" {
		return nil, fmt.Errorf("no weather API key configured")
	}

	cacheKey := fmt.Sprintf("weather_%.4f_%.4f", lat, lng)
	if cached, ok := p.cache.Get(cacheKey); ok {
		if data, ok := cached.(*types.WeatherData); ok {
			p.logger.DebugContext(ctx, "Returning cached weather data", slog.String("key", cacheKey))
			return data, nil
		}
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("appid", p.apiKey)
	q.Set("units", "imperial")

	var current owmCurrent
	var forecast owmForecast

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.get(gctx, "/weather?"+q.Encode(), &current)
	})
	g.Go(func() error {
		return p.get(gctx, "/forecast?"+q.Encode(), &forecast)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "weather fetch failed")
		return nil, fmt.Errorf("weather data fetch failed: %w", err)
	}

	data := &types.WeatherData{
		Current: types.CurrentConditions{
			Temperature:   math.Round(current.Main.Temp),
			FeelsLike:     math.Round(current.Main.FeelsLike),
			Humidity:      current.Main.Humidity,
			WindSpeedMPH:  math.Round(current.Wind.Speed),
			VisibilityMi:  math.Round(current.Visibility * 0.000621371),
			Precipitation: current.Rain.OneHour,
		},
		Provider: "openweathermap",
	}
	if len(current.Weather) > 0 {
		data.Current.Condition = strings.ToLower(current.Weather[0].Main)
		data.Current.Description = current.Weather[0].Description
	} else {
		data.Current.Condition = "unknown"
		data.Current.Description = "No description available"
	}

	points := forecast.List
	if len(points) > forecastPoints {
		points = points[:forecastPoints]
	}
	for _, item := range points {
		fp := types.ForecastPoint{
			Time:          time.Unix(item.Dt, 0).UTC(),
			Temperature:   math.Round(item.Main.Temp),
			Precipitation: item.Rain.ThreeHour,
			WindSpeedMPH:  math.Round(item.Wind.Speed),
		}
		if len(item.Weather) > 0 {
			fp.Condition = strings.ToLower(item.Weather[0].Main)
			fp.Description = item.Weather[0].Description
		}
		data.Forecast = append(data.Forecast, fp)
	}

	p.cache.Set(cacheKey, data, p.cacheTTL)
	p.logger.InfoContext(ctx, "Weather data retrieved",
		slog.String("condition", data.Current.Condition),
		slog.Float64("temperature", data.Current.Temperature))
	return data, nil
}

func (p *OpenWeatherMap) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "VeteranFacilityAgent/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
}
