package transit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vetnav/facility-agent/internal/cache"
	"github.com/vetnav/facility-agent/internal/types"
)

type MockDirections struct {
	mock.Mock
}

func (m *MockDirections) Route(ctx context.Context, origin, destination types.Coordinates, mode types.TravelMode) (*types.TransportOption, error) {
	args := m.Called(ctx, origin, destination, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TransportOption), args.Error(1)
}

func routeOption(mode types.TravelMode, durationSec, distanceM int) *types.TransportOption {
	return &types.TransportOption{
		Available: true,
		Mode:      mode,
		BestRoute: &types.RouteSummary{
			DurationSeconds: durationSec,
			DistanceMeters:  distanceM,
		},
	}
}

func newTestPlanner(d Directions) *Planner {
	return NewPlanner(d, cache.Noop{}, time.Minute, slog.New(slog.DiscardHandler))
}

var (
	testOrigin      = types.Coordinates{Lat: 43.0481, Lng: -76.1474}
	testDestination = types.Coordinates{Lat: 43.0391, Lng: -76.1378}
)

func TestOptions_WalkingWinsShortDistance(t *testing.T) {
	d := new(MockDirections)
	d.On("Route", mock.Anything, testOrigin, testDestination, types.ModeWalking).
		Return(routeOption(types.ModeWalking, 600, 700), nil) // 0.43 mi
	d.On("Route", mock.Anything, testOrigin, testDestination, types.ModeDriving).
		Return(routeOption(types.ModeDriving, 300, 900), nil)
	d.On("Route", mock.Anything, testOrigin, testDestination, types.ModeTransit).
		Return(routeOption(types.ModeTransit, 1200, 900), nil)

	opts := newTestPlanner(d).Options(context.Background(), testOrigin, testDestination)

	require.NotNil(t, opts.BestOption)
	assert.Equal(t, types.ModeWalking, opts.BestOption.Mode)
	assert.Equal(t, 90, opts.BestOption.Score)
	assert.Equal(t, "Very short distance, easy walk", opts.BestOption.Reason)
	assert.Contains(t, opts.Recommendations[0], "Walking recommended")
	d.AssertExpectations(t)
}

func TestOptions_TransitBeatsLongWalk(t *testing.T) {
	d := new(MockDirections)
	d.On("Route", mock.Anything, testOrigin, testDestination, types.ModeWalking).
		Return(routeOption(types.ModeWalking, 7200, 8000), nil) // ~5 mi, score 10
	d.On("Route", mock.Anything, testOrigin, testDestination, types.ModeDriving).
		Return(routeOption(types.ModeDriving, 2400, 8000), nil) // 40 min, score 60
	d.On("Route", mock.Anything, testOrigin, testDestination, types.ModeTransit).
		Return(routeOption(types.ModeTransit, 1500, 8000), nil) // 25 min, score 90

	opts := newTestPlanner(d).Options(context.Background(), testOrigin, testDestination)

	require.NotNil(t, opts.BestOption)
	assert.Equal(t, types.ModeTransit, opts.BestOption.Mode)
	assert.Equal(t, 90, opts.BestOption.Score)
}

func TestOptions_FastDriveBonus(t *testing.T) {
	d := new(MockDirections)
	d.On("Route", mock.Anything, testOrigin, testDestination, types.ModeWalking).
		Return(nil, errors.New("no walking route"))
	d.On("Route", mock.Anything, testOrigin, testDestination, types.ModeTransit).
		Return(nil, errors.New("no transit coverage"))
	d.On("Route", mock.Anything, testOrigin, testDestination, types.ModeDriving).
		Return(routeOption(types.ModeDriving, 600, 8000), nil) // 10 min

	opts := newTestPlanner(d).Options(context.Background(), testOrigin, testDestination)

	require.NotNil(t, opts.BestOption)
	assert.Equal(t, types.ModeDriving, opts.BestOption.Mode)
	assert.Equal(t, 80, opts.BestOption.Score)
	assert.False(t, opts.Walking.Available)
	assert.Equal(t, "no walking route", opts.Walking.Error)
}

func TestOptions_AllModesFailStillReturns(t *testing.T) {
	d := new(MockDirections)
	d.On("Route", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("api key missing"))

	opts := newTestPlanner(d).Options(context.Background(), testOrigin, testDestination)

	assert.Nil(t, opts.BestOption)
	assert.Equal(t, []string{"No transportation options available - consider rideshare services"},
		opts.Recommendations)
	assert.Len(t, opts.Rideshare, 2)
}

func TestOptions_LongTripSuggestsRideshare(t *testing.T) {
	d := new(MockDirections)
	d.On("Route", mock.Anything, mock.Anything, mock.Anything, types.ModeWalking).
		Return(&types.TransportOption{Mode: types.ModeWalking, Error: "No routes found"}, nil)
	d.On("Route", mock.Anything, mock.Anything, mock.Anything, types.ModeTransit).
		Return(routeOption(types.ModeTransit, 4200, 30000), nil) // 70 min
	d.On("Route", mock.Anything, mock.Anything, mock.Anything, types.ModeDriving).
		Return(routeOption(types.ModeDriving, 3000, 30000), nil) // 50 min

	opts := newTestPlanner(d).Options(context.Background(), testOrigin, testDestination)

	assert.Contains(t, opts.Recommendations, "For convenience, consider rideshare services (Uber/Lyft)")
}

func TestOptions_RideshareLinks(t *testing.T) {
	d := new(MockDirections)
	d.On("Route", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("down"))

	opts := newTestPlanner(d).Options(context.Background(), testOrigin, testDestination)

	require.Len(t, opts.Rideshare, 2)
	assert.Equal(t, "Uber", opts.Rideshare[0].Provider)
	assert.Contains(t, opts.Rideshare[0].DeepLink, "uber://?action=setPickup")
	assert.Equal(t, "Lyft", opts.Rideshare[1].Provider)
	assert.Contains(t, opts.Rideshare[1].WebLink, "https://lyft.com/ride")
}

func TestOptions_CacheHit(t *testing.T) {
	d := new(MockDirections)
	d.On("Route", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(routeOption(types.ModeDriving, 600, 8000), nil).Times(3)

	p := NewPlanner(d, cache.NewMemoryStore(time.Minute), time.Minute, slog.New(slog.DiscardHandler))

	first := p.Options(context.Background(), testOrigin, testDestination)
	second := p.Options(context.Background(), testOrigin, testDestination)

	assert.Same(t, first, second)
	d.AssertExpectations(t)
}

func TestGoogleDirections_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/json", r.URL.Path)
		assert.Equal(t, "transit", r.URL.Query().Get("mode"))
		assert.Equal(t, "now", r.URL.Query().Get("departure_time"))
		w.Write([]byte(`{"status":"OK","routes":[
			{"summary":"Bus 30","legs":[{"duration":{"text":"25 mins","value":1500},"distance":{"text":"4.2 mi","value":6759}}]},
			{"summary":"Bus 44","legs":[{"duration":{"text":"33 mins","value":1980},"distance":{"text":"4.8 mi","value":7725}}]}
		]}`))
	}))
	defer srv.Close()

	g := NewGoogleDirections(srv.URL, "test-key", time.Second, slog.New(slog.DiscardHandler))

	option, err := g.Route(context.Background(), testOrigin, testDestination, types.ModeTransit)
	require.NoError(t, err)
	assert.True(t, option.Available)
	assert.Equal(t, 1500, option.BestRoute.DurationSeconds)
	assert.Equal(t, "Bus 30", option.BestRoute.Summary)
	require.Len(t, option.Alternatives, 1)
	assert.Equal(t, "Bus 44", option.Alternatives[0].Summary)
}

func TestGoogleDirections_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","routes":[]}`))
	}))
	defer srv.Close()

	g := NewGoogleDirections(srv.URL, "test-key", time.Second, slog.New(slog.DiscardHandler))

	option, err := g.Route(context.Background(), testOrigin, testDestination, types.ModeDriving)
	require.NoError(t, err)
	assert.False(t, option.Available)
	assert.Equal(t, "No routes found", option.Error)
}

func TestGoogleDirections_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"Invalid key"}`))
	}))
	defer srv.Close()

	g := NewGoogleDirections(srv.URL, "test-key", time.Second, slog.New(slog.DiscardHandler))

	_, err := g.Route(context.Background(), testOrigin, testDestination, types.ModeDriving)
	assert.ErrorContains(t, err, "REQUEST_DENIED")
}

func TestGoogleDirections_NoKey(t *testing.T) {
	g := NewGoogleDirections("http://unused.invalid", "", time.Second, slog.New(slog.DiscardHandler))
	_, err := g.Route(context.Background(), testOrigin, testDestination, types.ModeDriving)
	assert.ErrorContains(t, err, "not configured")
}
