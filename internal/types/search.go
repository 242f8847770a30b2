package types

import (
	"errors"
	"time"
)

// Coordinates is a WGS84 lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SearchRequest is the caller's facility search input. Exactly one of
// Address or Coordinates must be set.
type SearchRequest struct {
	Address      string       `json:"address,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	RadiusMiles  float64      `json:"radius,omitempty"`
	Query        string       `json:"query,omitempty"`
	FacilityType string       `json:"facility_type,omitempty"`
}

var (
	ErrMissingLocation   = errors.New("either address or coordinates must be provided")
	ErrAmbiguousLocation = errors.New("provide either address or coordinates, not both")
)

// Validate rejects malformed requests before any upstream call is made.
func (r *SearchRequest) Validate() error {
	hasAddress := r.Address != ""
	hasCoords := r.Coordinates != nil
	switch {
	case !hasAddress && !hasCoords:
		return ErrMissingLocation
	case hasAddress && hasCoords:
		return ErrAmbiguousLocation
	}
	return nil
}

// ResolvedLocation is the output of the location resolution stage.
// Immutable once produced.
type ResolvedLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
	Source  string  `json:"source"`
}

// SearchParameters echoes the effective parameters back to the caller.
type SearchParameters struct {
	RadiusMiles  float64 `json:"radius"`
	FacilityType string  `json:"facilityType"`
}

// FindResponse is the consolidated document returned by the blocking endpoint.
type FindResponse struct {
	Location              *ResolvedLocation      `json:"location"`
	Facilities            []FacilityRecord       `json:"facilities"`
	NearestFacility       *FacilityRecord        `json:"nearestFacility,omitempty"`
	Message               string                 `json:"message,omitempty"`
	WeatherAnalysis       *WeatherAssessment     `json:"weatherAnalysis,omitempty"`
	TransportationOptions *TransportationOptions `json:"transportationOptions,omitempty"`
	AIGuidance            *Analysis              `json:"aiGuidance,omitempty"`
	Recommendations       *Recommendations       `json:"recommendations,omitempty"`
	SearchParameters      SearchParameters       `json:"searchParameters"`
	Timestamp             time.Time              `json:"timestamp"`
}

// Recommendations groups the rule-based advice attached to a blocking response.
type Recommendations struct {
	Transportation []string `json:"transportation"`
	Timing         []string `json:"timing"`
	Preparation    []string `json:"preparation"`
	Alternatives   []string `json:"alternatives"`
}
