package types

// UrgencyLevel classifies how time-sensitive the caller's request appears.
type UrgencyLevel string

const (
	UrgencyNormal   UrgencyLevel = "normal"
	UrgencyModerate UrgencyLevel = "moderate"
	UrgencyHigh     UrgencyLevel = "high"
)

// Analysis is the six-slot structured guidance extracted from the model's
// output. Slots fill in progressively while a stream is running; an empty
// string means the section has not been produced yet.
type Analysis struct {
	PrimaryRecommendation string       `json:"primaryRecommendation"`
	Reasoning             string       `json:"reasoning"`
	TravelAdvice          string       `json:"travelAdvice"`
	WeatherConsiderations string       `json:"weatherConsiderations"`
	AdditionalTips        string       `json:"additionalTips"`
	UrgencyLevel          UrgencyLevel `json:"urgencyLevel"`
}

// HasGrownSince reports whether at least one slot's content grew relative to
// prev. Length growth is a cheap monotonic proxy for "has new content" and
// bounds stream-update volume.
func (a Analysis) HasGrownSince(prev Analysis) bool {
	return len(a.PrimaryRecommendation) > len(prev.PrimaryRecommendation) ||
		len(a.Reasoning) > len(prev.Reasoning) ||
		len(a.TravelAdvice) > len(prev.TravelAdvice) ||
		len(a.WeatherConsiderations) > len(prev.WeatherConsiderations) ||
		len(a.AdditionalTips) > len(prev.AdditionalTips) ||
		len(a.UrgencyLevel) > len(prev.UrgencyLevel)
}
