package finder

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/vetnav/facility-agent/internal/api"
	"github.com/vetnav/facility-agent/internal/types"
)

type Handler struct {
	service       *Service
	logger        *slog.Logger
	defaultRadius float64
}

func NewHandler(service *Service, defaultRadius float64, logger *slog.Logger) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		defaultRadius: defaultRadius,
	}
}

// Find runs the full search pipeline and returns one consolidated response.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("Find").Start(r.Context(), "Find", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/facilities/find"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Find"))
	l.DebugContext(ctx, "Find handler invoked")

	var req types.SearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		l.WarnContext(ctx, "Invalid search request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.RadiusMiles <= 0 {
		req.RadiusMiles = h.defaultRadius
	}

	resp, err := h.service.Find(ctx, &req)
	if err != nil {
		l.ErrorContext(ctx, "Facility search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// FindStream runs the same pipeline over a server-sent event stream, emitting
// per-stage events and incremental AI analysis updates.
func (h *Handler) FindStream(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FindStream").Start(r.Context(), "FindStream", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/facilities/find-stream"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "FindStream"))
	l.DebugContext(ctx, "FindStream handler invoked")

	var req types.SearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		l.WarnContext(ctx, "Invalid search request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.RadiusMiles <= 0 {
		req.RadiusMiles = h.defaultRadius
	}

	emitter, err := NewSSEEmitter(w)
	if err != nil {
		l.ErrorContext(ctx, "Streaming unsupported", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	if err := h.service.FindStream(ctx, &req, emitter); err != nil {
		// The stream already carried an error event; nothing more to send.
		l.WarnContext(ctx, "Stream ended with error", slog.Any("error", err))
	}
}

// Search performs a direct coordinate search without the downstream stages.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SearchFacilities").Start(r.Context(), "SearchFacilities", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/facilities/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Search"))

	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		l.WarnContext(ctx, "Missing or invalid coordinates")
		api.ErrorResponse(w, r, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}
	radius := h.defaultRadius
	if v := q.Get("radius"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			radius = parsed
		}
	}

	facilities, err := h.service.SearchFacilities(ctx, lat, lng, radius, q.Get("type"), q.Get("service"))
	if err != nil {
		l.ErrorContext(ctx, "Facility search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"facilities": facilities,
		"count":      len(facilities),
	})
}

// Geocode resolves a free-form address to coordinates.
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("Geocode").Start(r.Context(), "Geocode", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/facilities/geocode"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Geocode"))

	var req struct {
		Address string `json:"address"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Address == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "address is required")
		return
	}

	loc, err := h.service.Geocode(ctx, req.Address)
	if err != nil {
		l.ErrorContext(ctx, "Geocoding failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{"location": loc})
}

// Details returns one facility by ID, with an optional weather assessment.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FacilityDetails").Start(r.Context(), "FacilityDetails", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/facilities/{facilityID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Details"))

	facilityID := chi.URLParam(r, "facilityID")
	if facilityID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "facility ID is required")
		return
	}
	includeWeather := r.URL.Query().Get("includeWeather") == "true"

	rec, assessment, err := h.service.FacilityDetails(ctx, facilityID, includeWeather)
	if err != nil {
		l.WarnContext(ctx, "Facility lookup failed", slog.String("facilityID", facilityID), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
		return
	}

	resp := map[string]any{"facility": rec}
	if assessment != nil {
		resp["weather"] = assessment
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
