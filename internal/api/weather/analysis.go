package weather

import (
	"fmt"

	"github.com/vetnav/facility-agent/internal/types"
)

// AnalyzeForTravel grades raw weather data against fixed travel-impact
// thresholds. Severity only escalates; rules never downgrade it.
func AnalyzeForTravel(data *types.WeatherData) *types.WeatherAssessment {
	if data == nil {
		return DegradedAssessment("weather data unavailable")
	}

	current := data.Current
	assessment := &types.WeatherAssessment{
		Current:         current,
		Severity:        types.SeverityNormal,
		Warnings:        []string{},
		Recommendations: []string{},
	}

	if current.Temperature <= coldThresholdF {
		assessment.Severity = types.SeveritySevere
		assessment.Recommendations = append(assessment.Recommendations,
			"Minimize outdoor waiting time",
			"Consider covered transit options")
		assessment.Warnings = append(assessment.Warnings,
			fmt.Sprintf("Very cold: %.0f°F (feels like %.0f°F)", current.Temperature, current.FeelsLike))
	} else if current.Temperature >= hotThresholdF {
		assessment.Severity = types.SeveritySevere
		assessment.Recommendations = append(assessment.Recommendations,
			"Seek air-conditioned transportation",
			"Stay hydrated and avoid prolonged sun exposure")
		assessment.Warnings = append(assessment.Warnings,
			fmt.Sprintf("Very hot: %.0f°F (feels like %.0f°F)", current.Temperature, current.FeelsLike))
	}

	if current.Precipitation > heavyPrecipInches {
		assessment.Severity = types.SeveritySevere
		assessment.Recommendations = append(assessment.Recommendations,
			"Use covered transit stops",
			"Consider rideshare or taxi options")
		assessment.Warnings = append(assessment.Warnings,
			fmt.Sprintf("Heavy precipitation: %.1f\" per hour", current.Precipitation))
	} else if current.Precipitation > lightPrecipInches {
		if assessment.Severity == types.SeverityNormal {
			assessment.Severity = types.SeverityModerate
		}
		assessment.Recommendations = append(assessment.Recommendations,
			"Bring umbrella or rain gear")
		assessment.Warnings = append(assessment.Warnings, "Light precipitation expected")
	}

	if current.WindSpeedMPH > highWindMPH {
		assessment.Severity = types.SeveritySevere
		assessment.Recommendations = append(assessment.Recommendations,
			"Avoid outdoor waiting areas")
		assessment.Warnings = append(assessment.Warnings,
			fmt.Sprintf("High winds: %.0f mph", current.WindSpeedMPH))
	}

	if current.VisibilityMi > 0 && current.VisibilityMi < lowVisibilityMiles {
		assessment.Severity = types.SeveritySevere
		assessment.Recommendations = append(assessment.Recommendations,
			"Use transit with GPS/navigation")
		assessment.Warnings = append(assessment.Warnings,
			fmt.Sprintf("Very low visibility: %.2f miles", current.VisibilityMi))
	}

	window := data.Forecast
	if len(window) > analysisPoints {
		window = window[:analysisPoints]
	}
	upcomingRain := false
	upcomingCold := false
	for _, f := range window {
		if f.Precipitation > lightPrecipInches {
			upcomingRain = true
		}
		if f.Temperature < freezingF {
			upcomingCold = true
		}
	}
	if upcomingRain {
		assessment.Recommendations = append(assessment.Recommendations,
			"Rain expected later - plan accordingly")
	}
	if upcomingCold {
		assessment.Warnings = append(assessment.Warnings, "Freezing temperatures expected")
	}

	return assessment
}

// DegradedAssessment is the stand-in emitted when the weather stage fails.
// The search keeps going without it.
func DegradedAssessment(reason string) *types.WeatherAssessment {
	return &types.WeatherAssessment{
		Current: types.CurrentConditions{
			Condition:   "unknown",
			Description: "Weather data unavailable",
		},
		Severity:        types.SeverityUnknown,
		Warnings:        []string{"Weather information temporarily unavailable"},
		Recommendations: []string{"Check local weather conditions before traveling"},
		Error:           reason,
	}
}
