package trip

import "time"

// Penalty weights and per-category caps for the driving score. Each category
// contributes weight×count, capped, subtracted from a perfect 100.
const (
	brakingPenalty     = 2.0
	brakingCap         = 20.0
	hardBrakingPenalty = 3.0
	hardBrakingCap     = 10.0
	roughRoadPenalty   = 0.5
	roughRoadCap       = 5.0
	sharpTurnPenalty   = 3.0
	sharpTurnCap       = 15.0
	speedingPenalty    = 4.0
	speedingCap        = 25.0
	accelPenalty       = 2.0
	accelCap           = 15.0
	distractionPenalty = 3.0
	distractionCap     = 20.0
	hornPenalty        = 1.0
	hornCap            = 10.0
	slowTrafficPenalty = 2.0 // per full slow-traffic block
	slowTrafficCap     = 10.0
	slowTrafficBlock   = 3 * time.Minute
)

// Quality labels for score buckets.
const (
	QualityExcellent        = "Excellent"
	QualityGood             = "Good"
	QualityFair             = "Fair"
	QualityPoor             = "Poor"
	QualityNeedsImprovement = "Needs Improvement"
)

// Score computes the 0-100 driving score for a trip's metrics. It is a pure
// function: a fresh Metrics scores exactly 100, every counter can only pull
// the score down, and the result is clamped to [0, 100].
func Score(m Metrics) float64 {
	score := 100.0

	score -= capped(float64(m.BrakingCount)*brakingPenalty, brakingCap)
	score -= capped(float64(m.HardBrakingCount)*hardBrakingPenalty, hardBrakingCap)
	score -= capped(float64(m.RoughRoadCount)*roughRoadPenalty, roughRoadCap)
	score -= capped(float64(m.SharpTurnCount)*sharpTurnPenalty, sharpTurnCap)
	score -= capped(float64(m.SpeedViolationCount)*speedingPenalty, speedingCap)
	score -= capped(float64(m.AccelerationCount)*accelPenalty, accelCap)
	score -= capped(float64(m.PhoneDistractionCount)*distractionPenalty, distractionCap)
	score -= capped(float64(m.HornCount)*hornPenalty, hornCap)

	slowBlocks := float64(m.SlowTraffic / slowTrafficBlock)
	score -= capped(slowBlocks*slowTrafficPenalty, slowTrafficCap)

	if score < 0 {
		score = 0
	}
	return score
}

// QualityLabel maps a driving score onto its quality bucket.
func QualityLabel(score float64) string {
	switch {
	case score >= 90:
		return QualityExcellent
	case score >= 80:
		return QualityGood
	case score >= 70:
		return QualityFair
	case score >= 60:
		return QualityPoor
	default:
		return QualityNeedsImprovement
	}
}

func capped(penalty, cap float64) float64 {
	if penalty > cap {
		return cap
	}
	return penalty
}
