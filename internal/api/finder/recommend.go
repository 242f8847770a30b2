package finder

import (
	"github.com/vetnav/facility-agent/internal/types"
)

// buildRecommendations derives rule-based advice for visiting a facility
// from its distance and the current weather assessment.
func buildRecommendations(facility *types.FacilityRecord, weather *types.WeatherAssessment) *types.Recommendations {
	recs := &types.Recommendations{
		Transportation: []string{},
		Timing:         []string{},
		Preparation:    []string{},
		Alternatives:   []string{},
	}
	if facility == nil {
		return recs
	}

	switch {
	case facility.DistanceMiles <= 5:
		recs.Transportation = append(recs.Transportation, "Facility is nearby - walking or short drive recommended")
	case facility.DistanceMiles <= 20:
		recs.Transportation = append(recs.Transportation, "Consider public transit or driving")
	default:
		recs.Transportation = append(recs.Transportation, "Long distance - plan for extended travel time")
		recs.Timing = append(recs.Timing, "Allow extra time for travel")
	}

	if weather != nil && weather.Severity != types.SeverityNormal {
		recs.Transportation = append(recs.Transportation, weather.Recommendations...)
		if weather.Severity == types.SeveritySevere {
			recs.Timing = append(recs.Timing, "Consider rescheduling if appointment is not urgent")
			recs.Preparation = append(recs.Preparation, "Check facility operating status before traveling")
		}
		recs.Preparation = append(recs.Preparation, weather.Warnings...)
	}

	if facility.HasShuttle {
		recs.Transportation = append(recs.Transportation, "VA shuttle service available - contact facility for schedule")
	}
	if facility.HasParking {
		recs.Transportation = append(recs.Transportation, "Parking available at facility")
	}

	recs.Preparation = append(recs.Preparation, "Bring your VA ID card and any required documentation")
	if facility.Contact.Phone != "" {
		recs.Preparation = append(recs.Preparation, "Call ahead to confirm appointment: "+facility.Contact.Phone)
	}
	return recs
}
