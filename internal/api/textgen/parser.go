package textgen

import (
	"regexp"
	"strings"

	"github.com/vetnav/facility-agent/internal/types"
)

// sectionPatterns extract each guidance slot from the accumulated model
// output. The boundary alternation stops a slot at the next ALL-CAPS header
// or the end of the buffer, so partial sections parse cleanly mid-stream.
var sectionPatterns = map[string]*regexp.Regexp{
	"primaryRecommendation": sectionPattern("PRIMARY_RECOMMENDATION"),
	"reasoning":             sectionPattern("REASONING"),
	"travelAdvice":          sectionPattern("TRAVEL_ADVICE"),
	"weatherConsiderations": sectionPattern("WEATHER_CONSIDERATIONS"),
	"additionalTips":        sectionPattern("ADDITIONAL_TIPS"),
	"urgencyLevel":          sectionPattern("URGENCY_LEVEL"),
}

func sectionPattern(header string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)` + header + `:\s*(.*?)(?:\n[A-Z_]{2,}:|\z)`)
}

var newlineRuns = regexp.MustCompile(`\n+`)

// ParseProgressive extracts the six guidance slots from text. It is safe to
// call on any prefix of the stream; missing sections stay empty and the
// result is idempotent for identical input.
func ParseProgressive(text string) types.Analysis {
	analysis := types.Analysis{UrgencyLevel: types.UrgencyNormal}

	extract := func(key string) string {
		m := sectionPatterns[key].FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		return newlineRuns.ReplaceAllString(strings.TrimSpace(m[1]), " ")
	}

	analysis.PrimaryRecommendation = extract("primaryRecommendation")
	analysis.Reasoning = extract("reasoning")
	analysis.TravelAdvice = extract("travelAdvice")
	analysis.WeatherConsiderations = extract("weatherConsiderations")
	analysis.AdditionalTips = extract("additionalTips")
	if raw := extract("urgencyLevel"); raw != "" {
		analysis.UrgencyLevel = normalizeUrgency(raw)
	}
	return analysis
}

// normalizeUrgency maps free-form urgency text (possibly bracketed or
// embellished by the model) onto the three-level scale.
func normalizeUrgency(raw string) types.UrgencyLevel {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "high"):
		return types.UrgencyHigh
	case strings.Contains(lower, "moderate"), strings.Contains(lower, "medium"):
		return types.UrgencyModerate
	default:
		return types.UrgencyNormal
	}
}

var (
	urgentKeywords   = []string{"emergency", "urgent", "crisis", "immediately", "asap", "now"}
	moderateKeywords = []string{"soon", "appointment", "today", "quickly"}
)

// DetermineUrgency classifies the caller's own words when the model has not
// supplied an urgency level.
func DetermineUrgency(query string) types.UrgencyLevel {
	lower := strings.ToLower(query)
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return types.UrgencyHigh
		}
	}
	for _, kw := range moderateKeywords {
		if strings.Contains(lower, kw) {
			return types.UrgencyModerate
		}
	}
	return types.UrgencyNormal
}

var transportKeywords = []string{"drive", "walk", "bus", "transit", "ride"}

// HeuristicAnalysis salvages guidance from model output that ignored the
// section format, scanning line by line for recommendation and travel hints.
func HeuristicAnalysis(text, query string, weather *types.WeatherAssessment) types.Analysis {
	analysis := types.Analysis{
		PrimaryRecommendation: "Consider the nearest facility that meets your needs",
		Reasoning:             "Based on proximity, services, and current conditions",
		TravelAdvice:          "Choose the transportation method that works best for you",
		AdditionalTips:        "Contact the facility ahead of time to confirm services and hours",
		UrgencyLevel:          DetermineUrgency(query),
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(strings.ToLower(trimmed), "recommend") && len(trimmed) > 20 {
			analysis.PrimaryRecommendation = trimmed
			break
		}
	}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		for _, kw := range transportKeywords {
			if strings.Contains(lower, kw) {
				analysis.TravelAdvice = trimmed
				return withWeatherNote(analysis, weather)
			}
		}
	}
	return withWeatherNote(analysis, weather)
}

// FallbackAnalysis is the fixed guidance substituted when generation fails
// outright.
func FallbackAnalysis(weather *types.WeatherAssessment) types.Analysis {
	return withWeatherNote(types.Analysis{
		PrimaryRecommendation: "Visit the nearest facility for your needs",
		Reasoning:             "Based on proximity and available services",
		TravelAdvice:          "Choose the most convenient transportation method",
		AdditionalTips:        "Contact the facility ahead of time to confirm services and hours",
		UrgencyLevel:          types.UrgencyNormal,
	}, weather)
}

func withWeatherNote(analysis types.Analysis, weather *types.WeatherAssessment) types.Analysis {
	if analysis.WeatherConsiderations == "" && weather != nil && weather.Severity != types.SeverityUnknown {
		analysis.WeatherConsiderations = "Consider " + string(weather.Severity) + " weather conditions"
	}
	return analysis
}
