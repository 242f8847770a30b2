package finder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vetnav/facility-agent/internal/types"
)

func newTestHandler() (*Handler, *serviceMocks) {
	svc, m := newTestService()
	return NewHandler(svc, 25, slog.New(slog.DiscardHandler)), m
}

func TestHandlerFind_RejectsInvalidRequestBeforeUpstreamCalls(t *testing.T) {
	h, m := newTestHandler()

	for name, body := range map[string]string{
		"no location":        `{"query": "need a checkup"}`,
		"ambiguous location": `{"address": "DC", "coordinates": {"lat": 38.9, "lng": -77.0}}`,
		"malformed json":     `{"address":`,
		"empty body":         ``,
		"unknown field":      `{"address": "DC", "zipcode": "20001"}`,
		"trailing data":      `{"address": "DC"}{"address": "MD"}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/facilities/find", strings.NewReader(body))
			h.Find(w, r)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	m.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	m.resolver.AssertNotCalled(t, "ReverseResolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlerFind_DecodingErrorsAreDescriptive(t *testing.T) {
	h, _ := newTestHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/facilities/find", strings.NewReader(`{"address": "DC", "zipcode": "20001"}`))
	h.Find(w, r)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, `unknown key "zipcode"`)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/facilities/find", strings.NewReader(``))
	h.Find(w, r)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "body must not be empty", resp.Error)
}

func TestHandlerFind_AppliesDefaultRadius(t *testing.T) {
	h, m := newTestHandler()
	loc := &types.ResolvedLocation{Lat: 38.9, Lng: -77.0, Address: "Washington, DC"}
	m.resolver.On("Resolve", mock.Anything, "Washington, DC").Return(loc, nil)
	m.directory.On("Search", mock.Anything, 38.9, -77.0, 25.0, mock.Anything).Return([]types.FacilityRecord{}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/facilities/find", strings.NewReader(`{"address": "Washington, DC"}`))
	h.Find(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.FindResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 25.0, resp.SearchParameters.RadiusMiles)
	m.directory.AssertExpectations(t)
}

func TestHandlerFindStream_EmitsEventStream(t *testing.T) {
	h, m := newTestHandler()
	loc := &types.ResolvedLocation{Lat: 39.0, Lng: -98.5, Address: "Rural Kansas"}
	m.resolver.On("Resolve", mock.Anything, "Rural Kansas").Return(loc, nil)
	m.directory.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]types.FacilityRecord{}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/facilities/find-stream", strings.NewReader(`{"address": "Rural Kansas"}`))
	h.FindStream(w, r)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var eventTypes []string
	for _, frame := range strings.Split(w.Body.String(), "\n\n") {
		if !strings.HasPrefix(frame, "data: ") {
			continue
		}
		var event types.StreamEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &event))
		eventTypes = append(eventTypes, event.Type)
	}
	assert.Equal(t, []string{
		types.EventTypeConnection,
		types.EventTypeStatus,
		types.EventTypeLocation,
		types.EventTypeStatus,
		types.EventTypeFacilities,
		types.EventTypeComplete,
	}, eventTypes)
}

func TestHandlerSearch_RequiresCoordinates(t *testing.T) {
	h, _ := newTestHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/facilities/search?lat=38.9", nil)
	h.Search(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerSearch_ReturnsFacilities(t *testing.T) {
	h, m := newTestHandler()
	m.directory.On("Search", mock.Anything, 38.9, -77.0, 10.0, mock.Anything).
		Return(testFacilities(), nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/facilities/search?lat=38.9&lng=-77.0&radius=10&type=va_health_facility", nil)
	h.Search(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Facilities []types.FacilityRecord `json:"facilities"`
		Count      int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "vha_688", resp.Facilities[0].ID)
}

func TestHandlerGeocode(t *testing.T) {
	h, m := newTestHandler()
	loc := &types.ResolvedLocation{Lat: 38.9, Lng: -77.0, Address: "Washington, DC", Source: "openstreetmap"}
	m.resolver.On("Resolve", mock.Anything, "Washington, DC").Return(loc, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/facilities/geocode", strings.NewReader(`{"address": "Washington, DC"}`))
	h.Geocode(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/facilities/geocode", strings.NewReader(`{}`))
	h.Geocode(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerDetails(t *testing.T) {
	h, m := newTestHandler()
	rec := &types.FacilityRecord{ID: "vha_688", Name: "Washington VA Medical Center"}
	m.directory.On("Details", mock.Anything, "vha_688").Return(rec, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("facilityID", "vha_688")
	r := httptest.NewRequest(http.MethodGet, "/facilities/vha_688", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	h.Details(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Facility types.FacilityRecord `json:"facility"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "vha_688", resp.Facility.ID)
}
