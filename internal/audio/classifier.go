// Package audio maps sound-classification results from an external
// classifier onto horn and siren driving events. The engine never touches
// raw audio; it consumes (label, confidence) pairs whose contract is fixed.
package audio

import (
	"strings"
	"time"

	"github.com/banshee-data/commute.report/internal/config"
)

// Rate limits for emitted events.
const (
	hornInterval  = time.Second
	sirenInterval = time.Minute
)

// Classification is one result from the external sound classifier.
type Classification struct {
	Label      string
	Confidence float64
	Time       time.Time
}

// EventKind is the engine-relevant category of a classification.
type EventKind string

const (
	KindNone  EventKind = ""
	KindHorn  EventKind = "horn"
	KindSiren EventKind = "siren"
)

// Mapper turns classifier results into rate-limited horn/siren detections.
// Label sets and confidence tiers come from tuning: the primary horn set
// needs high confidence, the broader secondary set (known to be noisy) a
// lower one.
type Mapper struct {
	cfg *config.Tuning

	lastHorn  time.Time
	lastSiren time.Time
}

// NewMapper creates a Mapper with the given tuning.
func NewMapper(cfg *config.Tuning) *Mapper {
	if cfg == nil {
		cfg = config.Empty()
	}
	return &Mapper{cfg: cfg}
}

// Map classifies one result. It returns KindNone for anything that does not
// clear its confidence tier or falls inside a rate-limit window.
func (m *Mapper) Map(c Classification) EventKind {
	label := strings.ToLower(c.Label)

	switch {
	case m.isHorn(label, c.Confidence):
		if !m.lastHorn.IsZero() && c.Time.Sub(m.lastHorn) < hornInterval {
			return KindNone
		}
		m.lastHorn = c.Time
		return KindHorn

	case m.isSiren(label, c.Confidence):
		if !m.lastSiren.IsZero() && c.Time.Sub(m.lastSiren) < sirenInterval {
			return KindNone
		}
		m.lastSiren = c.Time
		return KindSiren
	}
	return KindNone
}

// Reset clears the rate-limit state.
func (m *Mapper) Reset() {
	m.lastHorn = time.Time{}
	m.lastSiren = time.Time{}
}

func (m *Mapper) isHorn(label string, confidence float64) bool {
	if confidence > m.cfg.GetHornConfidence() && matchesAny(label, m.cfg.GetHornLabels()) {
		return true
	}
	// Secondary tier: broader labels at lower confidence.
	return confidence > m.cfg.GetHornSecondaryConfidence() && matchesAny(label, m.cfg.GetHornSecondaryLabels())
}

func (m *Mapper) isSiren(label string, confidence float64) bool {
	return confidence > m.cfg.GetSirenConfidence() && matchesAny(label, m.cfg.GetSirenLabels())
}

func matchesAny(label string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(label, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
