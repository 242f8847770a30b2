package textgen

import (
	"fmt"
	"strings"

	"github.com/vetnav/facility-agent/internal/types"
)

// AnalysisContext carries everything the guidance prompt can draw on.
// Nil fields render as "Unknown" rather than being omitted.
type AnalysisContext struct {
	Query          string
	Location       *types.ResolvedLocation
	Facilities     []types.FacilityRecord
	Weather        *types.WeatherAssessment
	Transportation *types.TransportationOptions
}

// BuildAnalysisPrompt renders the structured advisor prompt. The response
// format uses fixed ALL-CAPS section headers so the stream can be parsed
// progressively while tokens are still arriving.
func BuildAnalysisPrompt(actx AnalysisContext) string {
	query := actx.Query
	if query == "" {
		query = "Find nearby VA facilities"
	}

	location := "Not specified"
	if actx.Location != nil && actx.Location.Address != "" {
		location = actx.Location.Address
	}

	var facilities strings.Builder
	top := actx.Facilities
	if len(top) > 3 {
		top = top[:3]
	}
	for i, f := range top {
		fmt.Fprintf(&facilities, "%d. %s - %.2fmi, %s\n", i+1, f.Name, f.DistanceMiles, f.Type)
	}

	weather := "Unknown"
	if actx.Weather != nil && actx.Weather.Error == "" {
		weather = fmt.Sprintf("%s, %.0f°F", actx.Weather.Current.Condition, actx.Weather.Current.Temperature)
	}

	transport := "Unknown"
	if actx.Transportation != nil {
		transport = fmt.Sprintf("Drive: %s, Walk: %s",
			modeSummary(actx.Transportation.Driving),
			modeSummary(actx.Transportation.Walking))
	}

	return fmt.Sprintf(`You are a VA facility advisor helping a veteran. Provide a structured analysis that flows naturally.

REQUEST: %q
LOCATION: %s

TOP FACILITIES:
%s
WEATHER: %s

TRANSPORT: %s

Provide a structured response in this format:

PRIMARY_RECOMMENDATION: [Start with your main facility recommendation and why]

REASONING: [Brief explanation of why this is the best choice]

TRAVEL_ADVICE: [Best transportation method and any considerations]

WEATHER_CONSIDERATIONS: [Any weather-related advice if applicable]

ADDITIONAL_TIPS: [Veteran-specific tips or reminders]

URGENCY_LEVEL: [normal/moderate/high]`,
		query, location, facilities.String(), weather, transport)
}

func modeSummary(o *types.TransportOption) string {
	if o == nil || !o.Available || o.BestRoute == nil {
		return "Not available"
	}
	if o.Mode == types.ModeWalking && o.BestRoute.DistanceText != "" {
		return fmt.Sprintf("%s (%s)", o.BestRoute.DurationText, o.BestRoute.DistanceText)
	}
	return o.BestRoute.DurationText
}
