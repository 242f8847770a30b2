package types

import "time"

// StreamEvent is the envelope pushed over a live search stream. Each event is
// a complete, independently parseable unit; Data is never null on the wire.
type StreamEvent struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	EventID   string    `json:"event_id"`
}

// Stream event types, in emission order for a full search.
const (
	EventTypeConnection     = "connection"
	EventTypeStatus         = "status"
	EventTypeLocation       = "location"
	EventTypeFacilities     = "facilities"
	EventTypeWeather        = "weather"
	EventTypeTransportation = "transportation"
	EventTypeAIAnalysis     = "ai_analysis"
	EventTypeComplete       = "complete"
	EventTypeError          = "error"
)

// AI analysis sub-types carried inside EventTypeAIAnalysis payloads.
const (
	AnalysisChunk       = "analysis_chunk"
	AnalysisComplete    = "analysis_complete"
	AnalysisError       = "analysis_error"
	AnalysisUnavailable = "analysis_unavailable"
)

// AnalysisEvent is the payload of an ai_analysis stream event.
type AnalysisEvent struct {
	Type       string    `json:"type"`
	Analysis   *Analysis `json:"analysis,omitempty"`
	Fallback   *Analysis `json:"fallback,omitempty"`
	Error      string    `json:"error,omitempty"`
	Message    string    `json:"message,omitempty"`
	IsComplete bool      `json:"isComplete"`
}

// CompleteSummary is the payload of the terminal complete event.
type CompleteSummary struct {
	FacilitiesFound       int    `json:"facilitiesFound"`
	RecommendedFacility   string `json:"recommendedFacility,omitempty"`
	HasWeatherData        bool   `json:"hasWeatherData"`
	HasTransportationData bool   `json:"hasTransportationData"`
	HasAIGuidance         bool   `json:"hasAIGuidance"`
	Message               string `json:"message,omitempty"`
}
