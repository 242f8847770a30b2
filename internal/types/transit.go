package types

// TravelMode identifies one directions request class.
type TravelMode string

const (
	ModeWalking TravelMode = "walking"
	ModeDriving TravelMode = "driving"
	ModeTransit TravelMode = "transit"
)

// RouteSummary describes one route between origin and destination.
type RouteSummary struct {
	DurationSeconds int    `json:"durationSeconds"`
	DurationText    string `json:"duration"`
	DistanceMeters  int    `json:"distanceMeters"`
	DistanceText    string `json:"distance"`
	Summary         string `json:"summary,omitempty"`
}

// TransportOption is the outcome of a single mode's directions lookup.
type TransportOption struct {
	Available    bool           `json:"available"`
	Mode         TravelMode     `json:"mode"`
	BestRoute    *RouteSummary  `json:"bestRoute,omitempty"`
	Alternatives []RouteSummary `json:"alternatives,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// RideshareOption is a deep-link suggestion for an on-demand ride provider.
type RideshareOption struct {
	Provider      string `json:"provider"`
	DeepLink      string `json:"deepLink"`
	WebLink       string `json:"webLink"`
	EstimatedTime string `json:"estimatedTime"`
	EstimatedCost string `json:"estimatedCost"`
	Description   string `json:"description"`
}

// BestTransport names the highest-scoring mode and why it won.
type BestTransport struct {
	Mode   TravelMode `json:"mode"`
	Score  int        `json:"score"`
	Reason string     `json:"reason"`
}

// TransportationOptions aggregates the per-mode results for one
// origin/destination pair. Modes settle independently; one mode failing
// never blanks the others.
type TransportationOptions struct {
	Walking         *TransportOption  `json:"walking,omitempty"`
	Driving         *TransportOption  `json:"driving,omitempty"`
	Transit         *TransportOption  `json:"transit,omitempty"`
	Rideshare       []RideshareOption `json:"rideshare,omitempty"`
	BestOption      *BestTransport    `json:"bestOption,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
}
