package facility

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/vetnav/facility-agent/internal/cache"
	"github.com/vetnav/facility-agent/internal/types"
)

var _ Directory = (*VADirectory)(nil)

// SearchFilters narrows a facility search.
type SearchFilters struct {
	FacilityType string
	Services     []string
}

// Directory looks up veteran facilities near a point. Search returns an
// empty slice with a nil error when the area simply has no facilities;
// a non-nil error means the lookup itself failed.
type Directory interface {
	Search(ctx context.Context, lat, lng, radiusMiles float64, filters SearchFilters) ([]types.FacilityRecord, error)
	Details(ctx context.Context, facilityID string) (*types.FacilityRecord, error)
}

// VADirectory queries the VA facilities API, falling back to a curated
// dataset when no API key is configured or the upstream call fails.
type VADirectory struct {
	logger        *slog.Logger
	baseURL       string
	apiKey        string
	defaultRadius float64
	maxResults    int
	client        *http.Client
	cache         cache.Store
	cacheTTL      time.Duration
}

func NewVADirectory(baseURL, apiKey string, defaultRadius float64, maxResults int, timeout, cacheTTL time.Duration, store cache.Store, logger *slog.Logger) *VADirectory {
	return &VADirectory{
		logger:        logger,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		apiKey:        strings.TrimSpace(apiKey),
		defaultRadius: defaultRadius,
		maxResults:    maxResults,
		client:        &http.Client{Timeout: timeout},
		cache:         store,
		cacheTTL:      cacheTTL,
	}
}

// vaFacility mirrors the VA facilities API wire format.
type vaFacility struct {
	ID         string `json:"id"`
	Attributes struct {
		Name           string  `json:"name"`
		Lat            float64 `json:"lat"`
		Long           float64 `json:"long"`
		Classification string  `json:"classification"`
		FacilityType   string  `json:"facilityType"`
		Website        string  `json:"website"`
		Address        struct {
			Physical struct {
				Address1 string `json:"address1"`
				City     string `json:"city"`
				State    string `json:"state"`
				Zip      string `json:"zip"`
			} `json:"physical"`
		} `json:"address"`
		Phone struct {
			Main string `json:"main"`
		} `json:"phone"`
		Hours    map[string]string `json:"hours"`
		Services struct {
			Health []struct {
				Name string `json:"name"`
			} `json:"health"`
			Benefits []struct {
				Name string `json:"name"`
			} `json:"benefits"`
		} `json:"services"`
		OperatingStatus struct {
			Code string `json:"code"`
		} `json:"operatingStatus"`
	} `json:"attributes"`
}

type vaListResponse struct {
	Data []vaFacility `json:"data"`
}

type vaDetailResponse struct {
	Data vaFacility `json:"data"`
}

func (d *VADirectory) Search(ctx context.Context, lat, lng, radiusMiles float64, filters SearchFilters) ([]types.FacilityRecord, error) {
	ctx, span := otel.Tracer("FacilityDirectory").Start(ctx, "Search")
	defer span.End()

	if radiusMiles <= 0 {
		radiusMiles = d.defaultRadius
	}

	cacheKey := fmt.Sprintf("facilities_%.4f_%.4f_%.0f_%s_%s",
		lat, lng, radiusMiles, filters.FacilityType, strings.Join(filters.Services, ","))
	if cached, ok := d.cache.Get(cacheKey); ok {
		if records, ok := cached.([]types.FacilityRecord); ok {
			d.logger.DebugContext(ctx, "Returning cached facility results", slog.String("key", cacheKey))
			return records, nil
		}
	}

	var raw []vaFacility
	if d.apiKey != "" {
		fetched, err := d.searchUpstream(ctx, lat, lng, radiusMiles, filters.FacilityType)
		if err != nil {
			d.logger.WarnContext(ctx, "VA API search failed, using curated dataset", slog.Any("error", err))
			span.RecordError(err)
			raw = curatedFacilities()
		} else {
			raw = fetched
		}
	} else {
		d.logger.DebugContext(ctx, "No VA API key configured, using curated dataset")
		raw = curatedFacilities()
	}

	records := make([]types.FacilityRecord, 0, len(raw))
	for _, f := range raw {
		rec := transformFacility(f)
		if rec.Coordinates.Lat == 0 && rec.Coordinates.Lng == 0 {
			continue
		}
		rec.DistanceMiles = DistanceMiles(lat, lng, rec.Coordinates.Lat, rec.Coordinates.Lng)
		if rec.DistanceMiles > radiusMiles {
			continue
		}
		if !matchesServices(rec, filters.Services) {
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DistanceMiles < records[j].DistanceMiles
	})
	if len(records) > d.maxResults {
		records = records[:d.maxResults]
	}

	d.cache.Set(cacheKey, records, d.cacheTTL)
	d.logger.InfoContext(ctx, "Facility search complete",
		slog.Int("count", len(records)), slog.Float64("radius", radiusMiles))
	return records, nil
}

func (d *VADirectory) searchUpstream(ctx context.Context, lat, lng, radiusMiles float64, facilityType string) ([]vaFacility, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("long", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radiusMiles, 'f', -1, 64))
	q.Set("per_page", strconv.Itoa(d.maxResults*2))
	if facilityType != "" && facilityType != "all" {
		q.Set("type", facilityType)
	}

	var resp vaListResponse
	if err := d.get(ctx, "/facilities?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (d *VADirectory) Details(ctx context.Context, facilityID string) (*types.FacilityRecord, error) {
	ctx, span := otel.Tracer("FacilityDirectory").Start(ctx, "Details")
	defer span.End()

	if facilityID == "" {
		return nil, fmt.Errorf("facility ID is required")
	}

	cacheKey := "facility_details_" + facilityID
	if cached, ok := d.cache.Get(cacheKey); ok {
		if rec, ok := cached.(*types.FacilityRecord); ok {
			return rec, nil
		}
	}

	if d.apiKey == "" {
		for _, f := range curatedFacilities() {
			if f.ID == facilityID {
				rec := transformFacility(f)
				d.cache.Set(cacheKey, &rec, d.cacheTTL)
				return &rec, nil
			}
		}
		return nil, fmt.Errorf("facility %s not found", facilityID)
	}

	var resp vaDetailResponse
	if err := d.get(ctx, "/facilities/"+url.PathEscape(facilityID), &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "facility detail lookup failed")
		return nil, fmt.Errorf("failed to fetch facility details: %w", err)
	}

	rec := transformFacility(resp.Data)
	d.cache.Set(cacheKey, &rec, d.cacheTTL)
	return &rec, nil
}

func (d *VADirectory) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "VeteranFacilityAgent/1.0")
	if d.apiKey != "" {
		req.Header.Set("apikey", d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("VA API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode VA API response: %w", err)
	}
	return nil
}

// transformFacility normalizes the VA wire shape into a FacilityRecord.
func transformFacility(f vaFacility) types.FacilityRecord {
	attrs := f.Attributes

	var services []types.FacilityService
	for _, s := range attrs.Services.Health {
		services = append(services, types.FacilityService{Name: s.Name, Description: expandCamelCase(s.Name)})
	}
	for _, s := range attrs.Services.Benefits {
		services = append(services, types.FacilityService{Name: s.Name, Description: expandCamelCase(s.Name)})
	}

	name := attrs.Name
	if name == "" {
		name = "Unknown Facility"
	}
	classification := attrs.Classification
	if classification == "" {
		classification = "VA Facility"
	}

	phys := attrs.Address.Physical
	addr := types.FacilityAddress{
		Street:  phys.Address1,
		City:    phys.City,
		State:   phys.State,
		Zipcode: phys.Zip,
	}
	var parts []string
	for _, p := range []string{phys.Address1, phys.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if phys.State != "" || phys.Zip != "" {
		parts = append(parts, strings.TrimSpace(phys.State+" "+phys.Zip))
	}
	addr.Full = strings.Join(parts, ", ")

	return types.FacilityRecord{
		ID:              f.ID,
		Name:            name,
		Type:            attrs.FacilityType,
		Classification:  classification,
		Coordinates:     types.Coordinates{Lat: attrs.Lat, Lng: attrs.Long},
		Address:         addr,
		Services:        services,
		HoursByDay:      attrs.Hours,
		OperatingStatus: normalizeStatus(attrs.OperatingStatus.Code),
		Contact: types.FacilityContact{
			Phone:   attrs.Phone.Main,
			Website: attrs.Website,
		},
		HasShuttle: hasShuttleService(services),
		HasParking: hasParkingService(services),
	}
}

func normalizeStatus(code string) types.OperatingStatus {
	switch strings.ToUpper(code) {
	case "NORMAL", "OPEN":
		return types.StatusOpen
	case "LIMITED", "NOTICE":
		return types.StatusLimited
	case "CLOSED":
		return types.StatusClosed
	default:
		return types.StatusUnknown
	}
}

func matchesServices(rec types.FacilityRecord, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		for _, s := range rec.Services {
			if strings.Contains(strings.ToLower(s.Name), strings.ToLower(w)) {
				return true
			}
		}
	}
	return false
}

func hasShuttleService(services []types.FacilityService) bool {
	for _, s := range services {
		lower := strings.ToLower(s.Name)
		if strings.Contains(lower, "transportation") || strings.Contains(lower, "shuttle") {
			return true
		}
	}
	return false
}

func hasParkingService(services []types.FacilityService) bool {
	for _, s := range services {
		if strings.Contains(strings.ToLower(s.Name), "parking") {
			return true
		}
	}
	return false
}

// expandCamelCase turns "MentalHealthCare" into "Mental Health Care".
func expandCamelCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' && s[i-1] != ' ' && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
