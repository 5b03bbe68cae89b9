package scenario

import (
	"fmt"

	"scenario-admin/internal/models"
)

// Input bounds for the numeric form fields, in seconds.
const (
	MaxSeconds          = 999
	MinTravelSeconds    = 20
	DefaultTravel       = 30
	MinStaySeconds      = 0
	MinEmergencyStart   = 0
	MinEmergencySeconds = 10
)

// TotalSeconds is the running time of a scenario video. The last stop's travel and
// stay are not part of the route; emergency durations of every stop are added on top.
func TotalSeconds(stops []models.Stop) int {
	total := 0
	for i, stop := range stops {
		if i < len(stops)-1 {
			total += stop.TravelTimeToNextStop + stop.StayTimeAtStop
		}
		for _, e := range stop.Emergencies {
			total += e.Seconds
		}
	}
	return total
}

// FormatDuration renders seconds as "1h 2m 3s", "2m 3s" or "3s".
func FormatDuration(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hrs := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	switch {
	case hrs > 0:
		return fmt.Sprintf("%dh %dm %ds", hrs, mins, secs)
	case mins > 0:
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// ClampSeconds bounds v to [minValue, MaxSeconds].
func ClampSeconds(v, minValue int) int {
	if v < minValue {
		return minValue
	}
	if v > MaxSeconds {
		return MaxSeconds
	}
	return v
}
