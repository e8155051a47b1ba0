// Package analytics provides offline batch analyses over finalized trip
// records: departure-window optimization and location-relevance ranking of
// trip types. Everything here is pure and read-only, safe to run on a
// background worker.
package analytics

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/commute.report/internal/trip"
)

// Departure buckets: 144 ten-minute windows per day.
const (
	BucketMinutes = 10
	BucketCount   = 24 * 60 / BucketMinutes

	// trafficWeight scales the heavy-traffic term of the bucket score.
	trafficWeight = 2.0
)

// ErrInsufficientData is returned when no historical trips exist for the
// requested trip type.
var ErrInsufficientData = errors.New("analytics: no historical trips for trip type")

// BucketStats aggregates the trips whose start time falls in one
// ten-minute-of-day bucket.
type BucketStats struct {
	Bucket          int // 0..143
	TripCount       int
	AvgDuration     time.Duration
	AvgHeavyTraffic time.Duration
	Score           float64 // minutes; lower is better

	// LowConfidence marks buckets backed by a single trip. Callers should
	// present these recommendations with a caveat.
	LowConfidence bool
}

// StartOfDay returns the bucket's window start as an offset from midnight.
func (b BucketStats) StartOfDay() time.Duration {
	return time.Duration(b.Bucket) * BucketMinutes * time.Minute
}

// Recommendation is the result of a departure-window optimization.
type Recommendation struct {
	Best    BucketStats
	Buckets []BucketStats // all populated buckets, ascending bucket order
}

// BucketOf returns the ten-minute-of-day bucket for a start time.
func BucketOf(t time.Time) int {
	return t.Hour()*6 + t.Minute()/BucketMinutes
}

// HeavyTrafficTotal sums the durations of a record's heavy-traffic periods.
func HeavyTrafficTotal(r trip.Record) time.Duration {
	var total time.Duration
	for _, p := range r.TrafficPeriods {
		total += p.Duration
	}
	return total
}

// BestDeparture groups the given trips (assumed to share one trip type) into
// ten-minute-of-day buckets by start time, scores each populated bucket by
// expected duration plus a weighted traffic penalty, and recommends the
// bucket with the lowest score. Equal scores resolve to the earliest bucket
// of the day, so the recommendation is deterministic.
func BestDeparture(trips []trip.Record) (*Recommendation, error) {
	if len(trips) == 0 {
		return nil, ErrInsufficientData
	}

	durations := make([][]float64, BucketCount) // minutes
	traffic := make([][]float64, BucketCount)   // minutes
	for _, r := range trips {
		b := BucketOf(r.Start)
		durations[b] = append(durations[b], r.Duration.Minutes())
		traffic[b] = append(traffic[b], HeavyTrafficTotal(r).Minutes())
	}

	rec := &Recommendation{}
	bestScore := 0.0
	found := false

	for b := 0; b < BucketCount; b++ {
		if len(durations[b]) == 0 {
			continue
		}
		avgDuration := stat.Mean(durations[b], nil)
		avgTraffic := stat.Mean(traffic[b], nil)

		stats := BucketStats{
			Bucket:          b,
			TripCount:       len(durations[b]),
			AvgDuration:     time.Duration(avgDuration * float64(time.Minute)),
			AvgHeavyTraffic: time.Duration(avgTraffic * float64(time.Minute)),
			Score:           avgDuration + trafficWeight*avgTraffic,
			LowConfidence:   len(durations[b]) == 1,
		}
		rec.Buckets = append(rec.Buckets, stats)

		// Strict less-than keeps the earliest bucket on equal scores.
		if !found || stats.Score < bestScore {
			rec.Best = stats
			bestScore = stats.Score
			found = true
		}
	}

	return rec, nil
}
