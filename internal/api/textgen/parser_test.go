package textgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vetnav/facility-agent/internal/types"
)

const fullResponse = `PRIMARY_RECOMMENDATION: Go to the Syracuse VA Medical Center because it is closest and offers primary care.

REASONING: It is 1.2 miles away and currently open.

TRAVEL_ADVICE: Driving takes 5 minutes; street parking is available.

WEATHER_CONSIDERATIONS: Light rain expected, bring a jacket.

ADDITIONAL_TIPS: Bring your VA ID card and arrive 15 minutes early.

URGENCY_LEVEL: normal`

func TestParseProgressive_FullResponse(t *testing.T) {
	a := ParseProgressive(fullResponse)

	assert.Equal(t, "Go to the Syracuse VA Medical Center because it is closest and offers primary care.", a.PrimaryRecommendation)
	assert.Equal(t, "It is 1.2 miles away and currently open.", a.Reasoning)
	assert.Equal(t, "Driving takes 5 minutes; street parking is available.", a.TravelAdvice)
	assert.Equal(t, "Light rain expected, bring a jacket.", a.WeatherConsiderations)
	assert.Equal(t, "Bring your VA ID card and arrive 15 minutes early.", a.AdditionalTips)
	assert.Equal(t, types.UrgencyNormal, a.UrgencyLevel)
}

func TestParseProgressive_Idempotent(t *testing.T) {
	first := ParseProgressive(fullResponse)
	second := ParseProgressive(fullResponse)
	assert.Equal(t, first, second)
}

func TestParseProgressive_PartialPrefix(t *testing.T) {
	a := ParseProgressive("PRIMARY_RECOMMENDATION: Go to the Syracuse")
	assert.Equal(t, "Go to the Syracuse", a.PrimaryRecommendation)
	assert.Empty(t, a.Reasoning)
	assert.Equal(t, types.UrgencyNormal, a.UrgencyLevel)
}

func TestParseProgressive_GrowsAcrossTokenBoundaries(t *testing.T) {
	// Headers can be split across arbitrary token boundaries; re-parsing
	// the growing buffer must converge on the same slots.
	fragments := []string{
		"PRIM",
		"ARY_RECOMMENDATION: Go to X",
		"\nREASON",
		"ING: because Y",
	}

	var buffer string
	var emitted types.Analysis
	for _, f := range fragments {
		buffer += f
		next := ParseProgressive(buffer)
		if next.HasGrownSince(emitted) {
			emitted = next
		}
	}
	final := ParseProgressive(buffer)
	assert.Equal(t, "Go to X", final.PrimaryRecommendation)
	assert.Equal(t, "because Y", final.Reasoning)
	// The growth gate must have fired at least once along the way.
	assert.NotEmpty(t, emitted.PrimaryRecommendation)
}

func TestParseProgressive_CollapsesNewlines(t *testing.T) {
	a := ParseProgressive("REASONING: line one\nline two\n\nline three\nTRAVEL_ADVICE: drive")
	assert.Equal(t, "line one line two line three", a.Reasoning)
	assert.Equal(t, "drive", a.TravelAdvice)
}

func TestParseProgressive_BracketedUrgency(t *testing.T) {
	a := ParseProgressive("URGENCY_LEVEL: [High] due to emergency mention")
	assert.Equal(t, types.UrgencyHigh, a.UrgencyLevel)

	a = ParseProgressive("URGENCY_LEVEL: Medium priority")
	assert.Equal(t, types.UrgencyModerate, a.UrgencyLevel)

	a = ParseProgressive("URGENCY_LEVEL: nothing special")
	assert.Equal(t, types.UrgencyNormal, a.UrgencyLevel)
}

func TestParseProgressive_UnformattedText(t *testing.T) {
	a := ParseProgressive("The model decided to ramble instead of following the format.")
	assert.Empty(t, a.PrimaryRecommendation)
	assert.Empty(t, a.Reasoning)
	assert.Equal(t, types.UrgencyNormal, a.UrgencyLevel)
}

func TestDetermineUrgency(t *testing.T) {
	assert.Equal(t, types.UrgencyHigh, DetermineUrgency("I need help IMMEDIATELY"))
	assert.Equal(t, types.UrgencyHigh, DetermineUrgency("this is an emergency"))
	assert.Equal(t, types.UrgencyModerate, DetermineUrgency("I have an appointment today"))
	assert.Equal(t, types.UrgencyNormal, DetermineUrgency("looking for a facility with dental care"))
	assert.Equal(t, types.UrgencyNormal, DetermineUrgency(""))
}

func TestHeuristicAnalysis(t *testing.T) {
	text := "Here is my take.\nI would recommend the Syracuse VA Medical Center for you.\nYou can drive there in about ten minutes."
	a := HeuristicAnalysis(text, "need checkup soon", nil)

	assert.Equal(t, "I would recommend the Syracuse VA Medical Center for you.", a.PrimaryRecommendation)
	assert.Equal(t, "You can drive there in about ten minutes.", a.TravelAdvice)
	assert.Equal(t, types.UrgencyModerate, a.UrgencyLevel)
}

func TestHeuristicAnalysis_Defaults(t *testing.T) {
	a := HeuristicAnalysis("nothing useful here", "", nil)
	assert.Equal(t, "Consider the nearest facility that meets your needs", a.PrimaryRecommendation)
	assert.Equal(t, "Choose the transportation method that works best for you", a.TravelAdvice)
}

func TestFallbackAnalysis_WeatherNote(t *testing.T) {
	a := FallbackAnalysis(&types.WeatherAssessment{Severity: types.SeveritySevere})
	assert.Equal(t, "Consider severe weather conditions", a.WeatherConsiderations)

	a = FallbackAnalysis(&types.WeatherAssessment{Severity: types.SeverityUnknown})
	assert.Empty(t, a.WeatherConsiderations)

	a = FallbackAnalysis(nil)
	assert.Empty(t, a.WeatherConsiderations)
	assert.Equal(t, "Visit the nearest facility for your needs", a.PrimaryRecommendation)
}

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt := BuildAnalysisPrompt(AnalysisContext{
		Query:    "need a checkup",
		Location: &types.ResolvedLocation{Address: "Syracuse, NY"},
		Facilities: []types.FacilityRecord{
			{Name: "Syracuse VA Medical Center", DistanceMiles: 1.2, Type: "va_health_facility"},
			{Name: "A"}, {Name: "B"}, {Name: "C"},
		},
		Weather: &types.WeatherAssessment{
			Current: types.CurrentConditions{Condition: "rain", Temperature: 41},
		},
		Transportation: &types.TransportationOptions{
			Driving: &types.TransportOption{
				Available: true, Mode: types.ModeDriving,
				BestRoute: &types.RouteSummary{DurationText: "5 mins"},
			},
		},
	})

	assert.Contains(t, prompt, `REQUEST: "need a checkup"`)
	assert.Contains(t, prompt, "LOCATION: Syracuse, NY")
	assert.Contains(t, prompt, "1. Syracuse VA Medical Center - 1.20mi, va_health_facility")
	assert.NotContains(t, prompt, "4. ")
	assert.Contains(t, prompt, "WEATHER: rain, 41°F")
	assert.Contains(t, prompt, "Drive: 5 mins, Walk: Not available")
	assert.Contains(t, prompt, "URGENCY_LEVEL:")
}

func TestBuildAnalysisPrompt_Defaults(t *testing.T) {
	prompt := BuildAnalysisPrompt(AnalysisContext{})
	assert.Contains(t, prompt, `REQUEST: "Find nearby VA facilities"`)
	assert.Contains(t, prompt, "LOCATION: Not specified")
	assert.Contains(t, prompt, "WEATHER: Unknown")
	assert.Contains(t, prompt, "TRANSPORT: Unknown")
}
