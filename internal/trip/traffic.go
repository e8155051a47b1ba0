package trip

import "time"

// Traffic-window detection thresholds.
const (
	// DefaultSlowSpeedKMH is the speed below which a point counts as slow
	// traffic.
	DefaultSlowSpeedKMH = 15.0

	// MinTrafficPeriod is the minimum sustained duration for a slow run to
	// be reported as a heavy-traffic period.
	MinTrafficPeriod = 60 * time.Second
)

// DetectHeavyTraffic scans an ordered path for sustained slow-speed runs and
// returns one HeavyTrafficPeriod per run lasting at least MinTrafficPeriod.
// The scan is a single O(n) pass; paths with fewer than two points, or with
// no point below the threshold, yield no periods.
func DetectHeavyTraffic(path []PathPoint, slowSpeedKMH float64) []HeavyTrafficPeriod {
	if len(path) < 2 {
		return nil
	}

	var periods []HeavyTrafficPeriod
	runStart := -1

	for i, p := range path {
		if p.SpeedKMH < slowSpeedKMH {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			if period, ok := buildPeriod(path, runStart, i-1); ok {
				periods = append(periods, period)
			}
			runStart = -1
		}
	}

	// Path ended while still in a slow run.
	if runStart >= 0 {
		if period, ok := buildPeriod(path, runStart, len(path)-1); ok {
			periods = append(periods, period)
		}
	}

	return periods
}

// buildPeriod constructs the period for path[start..end] if the run lasted
// long enough.
func buildPeriod(path []PathPoint, start, end int) (HeavyTrafficPeriod, bool) {
	duration := path[end].Time.Sub(path[start].Time)
	if duration < MinTrafficPeriod {
		return HeavyTrafficPeriod{}, false
	}

	var speedSum float64
	for i := start; i <= end; i++ {
		speedSum += path[i].SpeedKMH
	}

	return HeavyTrafficPeriod{
		Start:       path[start].Time,
		End:         path[end].Time,
		StartIndex:  start,
		EndIndex:    end,
		AvgSpeedKMH: speedSum / float64(end-start+1),
		Duration:    duration,
	}, true
}
