package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/banshee-data/commute.report/internal/trip"
)

// Location-relevance parameters.
const (
	// RelevanceRadiusMeters is the cutoff beyond which historical starts do
	// not contribute to a type's relevance.
	RelevanceRadiusMeters = 5000.0

	distanceDecay     = 3.0  // exponent scale over normalized distance
	recencyHalfDays   = 30.0 // e-folding time of the recency weight, days
	frequencyPerEntry = 0.1
	frequencyCap      = 1.0
)

// RankedType is one trip type with its location-relevance score.
type RankedType struct {
	Type  trip.Type
	Score float64

	// SampleCount is the number of nearby historical starts that
	// contributed to the score.
	SampleCount int
}

// RankTypes scores every candidate trip type by how near, recent and
// frequent its historical start locations are to the current location, and
// returns the types ordered by descending score. Types with no nearby
// history score zero and sort last, keeping their input order.
func RankTypes(types []trip.Type, history []trip.Record, lat, lon float64, now time.Time) []RankedType {
	byType := make(map[string][]trip.Record, len(types))
	for _, r := range history {
		if r.StartLocation == nil {
			continue
		}
		byType[r.TripTypeID] = append(byType[r.TripTypeID], r)
	}

	ranked := make([]RankedType, 0, len(types))
	for _, t := range types {
		score, count := relevanceScore(byType[t.ID], lat, lon, now)
		ranked = append(ranked, RankedType{Type: t, Score: score, SampleCount: count})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// relevanceScore computes the per-type score: the mean of
// distance-score × recency-weight over history entries within the radius,
// plus a frequency bonus for having many nearby entries.
func relevanceScore(records []trip.Record, lat, lon float64, now time.Time) (float64, int) {
	var sum float64
	var kept int

	for _, r := range records {
		d := trip.DistanceMeters(lat, lon, r.StartLocation.Latitude, r.StartLocation.Longitude)
		if d > RelevanceRadiusMeters {
			continue
		}

		distScore := math.Exp(-distanceDecay * d / RelevanceRadiusMeters)
		days := now.Sub(r.Start).Hours() / 24
		if days < 0 {
			days = 0
		}
		recency := math.Exp(-days / recencyHalfDays)

		sum += distScore * recency
		kept++
	}

	if kept == 0 {
		return 0, 0
	}

	bonus := math.Min(frequencyPerEntry*float64(kept), frequencyCap)
	return sum/float64(kept) + bonus, kept
}
