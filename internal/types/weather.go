package types

import "time"

// Severity grades the transport impact of current weather.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityUnknown  Severity = "unknown"
)

// CurrentConditions is a snapshot of observed weather at a location.
type CurrentConditions struct {
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feelsLike"`
	Humidity      int     `json:"humidity,omitempty"`
	WindSpeedMPH  float64 `json:"windSpeed"`
	VisibilityMi  float64 `json:"visibility,omitempty"`
	Precipitation float64 `json:"precipitation"`
	Condition     string  `json:"condition"`
	Description   string  `json:"description"`
}

// ForecastPoint is one interval of upcoming weather.
type ForecastPoint struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	Condition     string    `json:"condition"`
	Description   string    `json:"description,omitempty"`
	Precipitation float64   `json:"precipitation"`
	WindSpeedMPH  float64   `json:"windSpeed"`
}

// WeatherData is the raw provider output: current observation plus a short
// forecast window.
type WeatherData struct {
	Current  CurrentConditions `json:"current"`
	Forecast []ForecastPoint   `json:"forecast"`
	Provider string            `json:"provider"`
}

// WeatherAssessment is the travel-impact view derived from WeatherData by
// fixed threshold rules.
type WeatherAssessment struct {
	Current         CurrentConditions `json:"current"`
	Severity        Severity          `json:"severity"`
	Warnings        []string          `json:"warnings"`
	Recommendations []string          `json:"recommendations"`
	Error           string            `json:"error,omitempty"`
}
