package finder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/vetnav/facility-agent/app/observability/metrics"
	"github.com/vetnav/facility-agent/internal/api/facility"
	"github.com/vetnav/facility-agent/internal/api/geocoding"
	"github.com/vetnav/facility-agent/internal/api/textgen"
	"github.com/vetnav/facility-agent/internal/api/weather"
	"github.com/vetnav/facility-agent/internal/types"
)

// TransportPlanner resolves all travel modes for one trip. Implementations
// settle modes independently and never fail the whole plan.
type TransportPlanner interface {
	Options(ctx context.Context, origin, destination types.Coordinates) *types.TransportationOptions
}

// GuidanceAnalyzer produces structured guidance from search findings.
type GuidanceAnalyzer interface {
	Available(ctx context.Context) bool
	Analyze(ctx context.Context, actx textgen.AnalysisContext) (*types.Analysis, error)
	AnalyzeStream(ctx context.Context, actx textgen.AnalysisContext, onUpdate func(types.AnalysisEvent)) (*types.Analysis, error)
}

// Service runs the five-stage facility search pipeline: resolve location,
// find facilities, fetch weather, fetch transportation, run AI analysis.
// Stages execute strictly in order; weather, transportation and analysis
// degrade without failing the request.
type Service struct {
	logger    *slog.Logger
	resolver  geocoding.Resolver
	directory facility.Directory
	weather   weather.Provider
	planner   TransportPlanner
	analyzer  GuidanceAnalyzer
}

func NewService(resolver geocoding.Resolver, directory facility.Directory, provider weather.Provider, planner TransportPlanner, analyzer GuidanceAnalyzer, logger *slog.Logger) *Service {
	return &Service{
		logger:    logger,
		resolver:  resolver,
		directory: directory,
		weather:   provider,
		planner:   planner,
		analyzer:  analyzer,
	}
}

const noFacilitiesMessage = "No VA facilities found within the specified radius. Try increasing the search radius."

// resolveLocation runs stage 1. Coordinates bypass the resolver; a failed
// reverse lookup falls back to a "lat, lng" display string rather than
// failing the stage.
func (s *Service) resolveLocation(ctx context.Context, req *types.SearchRequest) (*types.ResolvedLocation, error) {
	if req.Coordinates != nil {
		loc := &types.ResolvedLocation{
			Lat:    req.Coordinates.Lat,
			Lng:    req.Coordinates.Lng,
			Source: "coordinates",
		}
		addr, err := s.resolver.ReverseResolve(ctx, loc.Lat, loc.Lng)
		if err != nil {
			s.logger.DebugContext(ctx, "Reverse geocoding failed, using raw coordinates", slog.Any("error", err))
			addr = fmt.Sprintf("%g, %g", loc.Lat, loc.Lng)
		}
		loc.Address = addr
		return loc, nil
	}
	return s.resolver.Resolve(ctx, req.Address)
}

// FindStream runs the full pipeline, emitting one event per stage plus
// incremental AI analysis updates. The stream always terminates with a
// complete or error event unless the emitter itself fails.
func (s *Service) FindStream(ctx context.Context, req *types.SearchRequest, emitter Emitter) error {
	ctx, span := otel.Tracer("FinderService").Start(ctx, "FindStream")
	defer span.End()

	start := time.Now()
	outcome := "success"
	defer func() {
		if m := metrics.Get(); m != nil {
			attrs := metric.WithAttributes(attribute.String("mode", "stream"), attribute.String("outcome", outcome))
			m.SearchRequestsTotal.Add(ctx, 1, attrs)
			m.SearchDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
		}
	}()

	if err := emitter.Emit(ctx, types.EventTypeConnection, map[string]string{
		"message": "Connected to facility search stream",
	}); err != nil {
		outcome = "disconnected"
		return err
	}

	// Stage 1: resolve location. Fatal on failure.
	if err := emitter.Emit(ctx, types.EventTypeStatus, statusPayload("location", "Resolving location...")); err != nil {
		outcome = "disconnected"
		return err
	}
	loc, err := s.resolveLocation(ctx, req)
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "location resolution failed")
		s.logger.ErrorContext(ctx, "Location resolution failed", slog.Any("error", err))
		emitter.Emit(ctx, types.EventTypeError, map[string]string{"message": err.Error()})
		return err
	}
	if err := emitter.Emit(ctx, types.EventTypeLocation, map[string]any{"location": loc}); err != nil {
		outcome = "disconnected"
		return err
	}

	// Stage 2: find facilities. A provider error is fatal; an empty result
	// short-circuits to completion.
	if err := emitter.Emit(ctx, types.EventTypeStatus, statusPayload("facilities", "Searching for facilities...")); err != nil {
		outcome = "disconnected"
		return err
	}
	facilities, err := s.directory.Search(ctx, loc.Lat, loc.Lng, req.RadiusMiles, facility.SearchFilters{
		FacilityType: req.FacilityType,
	})
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "facility search failed")
		s.logger.ErrorContext(ctx, "Facility search failed", slog.Any("error", err))
		emitter.Emit(ctx, types.EventTypeError, map[string]string{"message": err.Error()})
		return err
	}
	if err := emitter.Emit(ctx, types.EventTypeFacilities, map[string]any{
		"facilities": facilities,
		"count":      len(facilities),
	}); err != nil {
		outcome = "disconnected"
		return err
	}
	if len(facilities) == 0 {
		s.logger.InfoContext(ctx, "No facilities found, completing early")
		return emitter.Emit(ctx, types.EventTypeComplete, types.CompleteSummary{
			FacilitiesFound: 0,
			Message:         noFacilitiesMessage,
		})
	}
	nearest := facilities[0]

	// Stage 3: weather. Degrades, never fatal.
	if err := emitter.Emit(ctx, types.EventTypeStatus, statusPayload("weather", "Checking weather conditions...")); err != nil {
		outcome = "disconnected"
		return err
	}
	assessment, hasWeather := s.fetchWeather(ctx, loc)
	if err := emitter.Emit(ctx, types.EventTypeWeather, map[string]any{"weather": assessment}); err != nil {
		outcome = "disconnected"
		return err
	}

	// Stage 4: transportation to the nearest facility. Degrades, never fatal.
	if err := emitter.Emit(ctx, types.EventTypeStatus, statusPayload("transportation", "Finding transportation options...")); err != nil {
		outcome = "disconnected"
		return err
	}
	transport := s.planner.Options(ctx, types.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nearest.Coordinates)
	hasTransport := transport != nil && transport.BestOption != nil
	if !hasTransport {
		recordDegradation(ctx, "transportation")
	}
	if err := emitter.Emit(ctx, types.EventTypeTransportation, map[string]any{"transportation": transport}); err != nil {
		outcome = "disconnected"
		return err
	}

	// Stage 5: streaming AI analysis. Skipped when the generator is down.
	if err := emitter.Emit(ctx, types.EventTypeStatus, statusPayload("ai_analysis", "Generating AI recommendations...")); err != nil {
		outcome = "disconnected"
		return err
	}
	hasGuidance := false
	if !s.analyzer.Available(ctx) {
		recordDegradation(ctx, "ai_analysis")
		if err := emitter.Emit(ctx, types.EventTypeAIAnalysis, types.AnalysisEvent{
			Type:    types.AnalysisUnavailable,
			Message: "AI analysis is not available right now",
		}); err != nil {
			outcome = "disconnected"
			return err
		}
	} else {
		actx := textgen.AnalysisContext{
			Query:          req.Query,
			Location:       loc,
			Facilities:     facilities,
			Weather:        assessment,
			Transportation: transport,
		}
		var emitErr error
		_, analyzeErr := s.analyzer.AnalyzeStream(ctx, actx, func(e types.AnalysisEvent) {
			if emitErr != nil {
				return
			}
			emitErr = emitter.Emit(ctx, types.EventTypeAIAnalysis, e)
		})
		if emitErr != nil {
			outcome = "disconnected"
			return emitErr
		}
		if analyzeErr != nil {
			recordDegradation(ctx, "ai_analysis")
			s.logger.WarnContext(ctx, "AI analysis failed", slog.Any("error", analyzeErr))
		} else {
			hasGuidance = true
		}
	}

	return emitter.Emit(ctx, types.EventTypeComplete, types.CompleteSummary{
		FacilitiesFound:       len(facilities),
		RecommendedFacility:   nearest.Name,
		HasWeatherData:        hasWeather,
		HasTransportationData: hasTransport,
		HasAIGuidance:         hasGuidance,
	})
}

// Find runs the same five stages to completion and returns one consolidated
// document. The AI stage uses the blocking generation path.
func (s *Service) Find(ctx context.Context, req *types.SearchRequest) (*types.FindResponse, error) {
	ctx, span := otel.Tracer("FinderService").Start(ctx, "Find")
	defer span.End()

	start := time.Now()
	outcome := "success"
	defer func() {
		if m := metrics.Get(); m != nil {
			attrs := metric.WithAttributes(attribute.String("mode", "blocking"), attribute.String("outcome", outcome))
			m.SearchRequestsTotal.Add(ctx, 1, attrs)
			m.SearchDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
		}
	}()

	loc, err := s.resolveLocation(ctx, req)
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		return nil, err
	}

	facilities, err := s.directory.Search(ctx, loc.Lat, loc.Lng, req.RadiusMiles, facility.SearchFilters{
		FacilityType: req.FacilityType,
	})
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		return nil, err
	}

	response := &types.FindResponse{
		Location:   loc,
		Facilities: facilities,
		SearchParameters: types.SearchParameters{
			RadiusMiles:  req.RadiusMiles,
			FacilityType: orDefault(req.FacilityType, "all"),
		},
		Timestamp: time.Now(),
	}
	if len(facilities) == 0 {
		response.Message = noFacilitiesMessage
		return response, nil
	}
	nearest := facilities[0]
	response.NearestFacility = &nearest

	assessment, _ := s.fetchWeather(ctx, loc)
	response.WeatherAnalysis = assessment

	response.TransportationOptions = s.planner.Options(ctx,
		types.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nearest.Coordinates)

	if s.analyzer.Available(ctx) {
		analysis, err := s.analyzer.Analyze(ctx, textgen.AnalysisContext{
			Query:          req.Query,
			Location:       loc,
			Facilities:     facilities,
			Weather:        assessment,
			Transportation: response.TransportationOptions,
		})
		if err != nil {
			recordDegradation(ctx, "ai_analysis")
			s.logger.WarnContext(ctx, "AI analysis failed, using fallback guidance", slog.Any("error", err))
		}
		response.AIGuidance = analysis
	} else {
		recordDegradation(ctx, "ai_analysis")
	}

	response.Recommendations = buildRecommendations(&nearest, assessment)
	return response, nil
}

// FacilityDetails looks up one facility, optionally attaching a weather
// assessment for its location.
func (s *Service) FacilityDetails(ctx context.Context, facilityID string, includeWeather bool) (*types.FacilityRecord, *types.WeatherAssessment, error) {
	ctx, span := otel.Tracer("FinderService").Start(ctx, "FacilityDetails")
	defer span.End()

	rec, err := s.directory.Details(ctx, facilityID)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	var assessment *types.WeatherAssessment
	if includeWeather {
		assessment, _ = s.fetchWeather(ctx, &types.ResolvedLocation{
			Lat: rec.Coordinates.Lat,
			Lng: rec.Coordinates.Lng,
		})
	}
	return rec, assessment, nil
}

// SearchFacilities is the direct coordinate search used by the non-streaming
// search endpoint.
func (s *Service) SearchFacilities(ctx context.Context, lat, lng, radiusMiles float64, facilityType, service string) ([]types.FacilityRecord, error) {
	filters := facility.SearchFilters{FacilityType: facilityType}
	if service != "" {
		filters.Services = []string{service}
	}
	return s.directory.Search(ctx, lat, lng, radiusMiles, filters)
}

// Geocode exposes bare address resolution.
func (s *Service) Geocode(ctx context.Context, address string) (*types.ResolvedLocation, error) {
	return s.resolver.Resolve(ctx, address)
}

// fetchWeather runs stage 3 and grades the result. The bool reports whether
// live data (rather than a degraded placeholder) was obtained.
func (s *Service) fetchWeather(ctx context.Context, loc *types.ResolvedLocation) (*types.WeatherAssessment, bool) {
	data, err := s.weather.Fetch(ctx, loc.Lat, loc.Lng)
	if err != nil {
		recordDegradation(ctx, "weather")
		s.logger.WarnContext(ctx, "Weather fetch failed, degrading", slog.Any("error", err))
		return weather.DegradedAssessment("Weather data temporarily unavailable"), false
	}
	return weather.AnalyzeForTravel(data), true
}

func statusPayload(stage, message string) map[string]string {
	return map[string]string{"stage": stage, "message": message}
}

func recordDegradation(ctx context.Context, stage string) {
	if m := metrics.Get(); m != nil {
		m.StageDegradationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
