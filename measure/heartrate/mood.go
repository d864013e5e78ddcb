package heartrate

import "math"

// Mood returns a display label for a heart rate. Fractional rates are
// truncated to whole beats before the thresholds are applied.
func Mood(bpm float64) string {
	switch whole := math.Trunc(bpm); {
	case whole > 150:
		return "Extremely hyped"
	case whole > 130:
		return "Very Intense"
	case whole > 110:
		return "Highly excited"
	case whole > 90:
		return "Moderately excited"
	case whole > 75:
		return "Slightly excited"
	case whole > 60:
		return "Normal"
	case whole > 50:
		return "Very Calm"
	default:
		return "Extremely calm"
	}
}
