package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/commute.report/internal/audio"
	"github.com/banshee-data/commute.report/internal/monitoring"
	"github.com/banshee-data/commute.report/internal/motion"
	"github.com/banshee-data/commute.report/internal/trip"
	"github.com/banshee-data/commute.report/internal/units"
)

// Fixed per-type event intensities. Braking events carry the measured
// combined magnitude instead; horn/siren events carry the classifier
// confidence.
const (
	roughRoadIntensity   = 0.5
	sharpTurnIntensity   = 0.6
	accelIntensity       = 0.4
	distractionIntensity = 0.8
)

// run is the single ingestion loop: every piece of trip state is owned by
// this goroutine, so sample bursts and aggregator ticks never race.
func (s *Session) run() {
	defer close(s.doneCh)

	ticker := s.ticker
	defer ticker.Stop()

	for {
		select {
		case frame := <-s.motionCh:
			s.handleMotion(frame)

		case fix := <-s.locationCh:
			s.handleLocation(fix)

		case c := <-s.audioCh:
			s.handleAudio(c)

		case <-ticker.C():
			// Consume any samples queued behind the tick first so the
			// detectors see everything delivered before this instant.
			s.drainInputs()
			s.aggregate()

		case <-s.stopCh:
			ticker.Stop()
			s.drainInputs()
			s.finalize()
			return
		}
	}
}

// drainInputs consumes all currently queued samples without blocking.
func (s *Session) drainInputs() {
	for {
		select {
		case frame := <-s.motionCh:
			s.handleMotion(frame)
		case fix := <-s.locationCh:
			s.handleLocation(fix)
		case c := <-s.audioCh:
			s.handleAudio(c)
		default:
			return
		}
	}
}

// handleMotion resolves orientation, rotates the frame into the vehicle
// frame and feeds the detector buffer.
func (s *Session) handleMotion(frame motion.SampleFrame) {
	if !s.caps.Motion {
		return
	}

	s.resolver.Observe(frame.Gravity)
	stable := s.resolver.Stable()

	s.mu.Lock()
	s.orientation = stable
	s.mu.Unlock()

	accel := s.transform.Apply(stable, frame.Acceleration, frame.Gravity)
	s.detector.Push(frame.Time, accel, frame.RotationRate)
}

// handleLocation filters, converts and records one GPS fix.
func (s *Session) handleLocation(fix LocationFix) {
	if !s.caps.Location {
		return
	}
	// Poor fixes are transient read noise: drop silently.
	if fix.Accuracy > s.cfg.GetFixMaxAccuracy() {
		return
	}

	speedKMH := units.MPSToKMH(fix.SpeedMPS)

	if s.currentFix != nil {
		s.metrics.DistanceMeters += trip.DistanceMeters(
			s.currentFix.Latitude, s.currentFix.Longitude,
			fix.Latitude, fix.Longitude,
		)
	}
	kept := fix
	s.currentFix = &kept

	if speedKMH > s.metrics.MaxSpeedKMH {
		s.metrics.MaxSpeedKMH = speedKMH
	}
	s.speedSumKMH += speedKMH
	s.speedCount++

	point := trip.PathPoint{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Time:      fix.Time,
		SpeedKMH:  speedKMH,
		Accuracy:  fix.Accuracy,
	}
	if maxPoints := s.cfg.GetPathPointCap(); len(s.path) >= maxPoints {
		copy(s.path, s.path[1:])
		s.path = s.path[:maxPoints-1]
	}
	s.path = append(s.path, point)
}

// handleAudio maps one classifier result onto a horn or siren event.
func (s *Session) handleAudio(c audio.Classification) {
	if !s.caps.Audio {
		return
	}

	switch s.mapper.Map(c) {
	case audio.KindHorn:
		s.metrics.HornCount++
		s.appendEvent(trip.EventHorn, clamp01(c.Confidence))
	case audio.KindSiren:
		s.metrics.SirenCount++
		s.appendEvent(trip.EventSiren, clamp01(c.Confidence))
	}
}

// aggregate is one detector-polling tick.
func (s *Session) aggregate() {
	now := s.clock.Now()

	if s.caps.Motion {
		braking := s.detector.Braking()
		switch {
		case braking.HardBraking:
			s.metrics.HardBrakingCount++
			s.appendEvent(trip.EventHardBraking, clamp01(braking.Intensity))
		case braking.Braking:
			s.metrics.BrakingCount++
			s.appendEvent(trip.EventBraking, clamp01(braking.Intensity))
		}

		if s.detector.RoughRoad() {
			s.metrics.RoughRoadCount++
			s.appendEvent(trip.EventRoughRoad, roughRoadIntensity)
		}
		if s.detector.SharpTurn() {
			s.metrics.SharpTurnCount++
			s.appendEvent(trip.EventSharpTurn, sharpTurnIntensity)
		}
		if s.detector.Acceleration() {
			s.metrics.AccelerationCount++
			s.appendEvent(trip.EventAcceleration, accelIntensity)
		}
		if s.detector.PhoneDistraction() {
			s.metrics.PhoneDistractionCount++
			s.appendEvent(trip.EventPhoneDistraction, distractionIntensity)
		}
	}

	if s.caps.Location && s.currentFix != nil {
		speedKMH := units.MPSToKMH(s.currentFix.SpeedMPS)

		if s.detector.SpeedViolation(now, speedKMH) {
			s.metrics.SpeedViolationCount++
		}

		// Slow-traffic state machine: accumulate on exit.
		if speedKMH < s.cfg.GetSlowSpeedKMH() {
			if s.slowSince.IsZero() {
				s.slowSince = now
			}
		} else if !s.slowSince.IsZero() {
			s.metrics.SlowTraffic += now.Sub(s.slowSince)
			s.slowSince = time.Time{}
		}
	}

	s.emitSnapshot(now)
}

// appendEvent materializes a driving event when a location fix is
// available. Without one only the counter moves.
func (s *Session) appendEvent(t trip.EventType, intensity float64) {
	if s.currentFix == nil {
		return
	}
	s.events = append(s.events, trip.Event{
		ID:        uuid.New().String(),
		Type:      t,
		Latitude:  s.currentFix.Latitude,
		Longitude: s.currentFix.Longitude,
		SpeedKMH:  units.MPSToKMH(s.currentFix.SpeedMPS),
		Accuracy:  s.currentFix.Accuracy,
		Intensity: intensity,
		Time:      s.clock.Now(),
	})
}

// emitSnapshot publishes an immutable snapshot, dropping it if the consumer
// is not keeping up.
func (s *Session) emitSnapshot(now time.Time) {
	snap := Snapshot{
		Time:          now,
		Metrics:       s.metrics,
		Score:         trip.Score(s.metrics),
		InSlowTraffic: !s.slowSince.IsZero(),
		EventCount:    len(s.events),
		PathPoints:    len(s.path),
	}
	select {
	case s.updates <- snap:
	default:
	}
}

// finalize freezes the trip into its immutable record.
func (s *Session) finalize() {
	now := s.clock.Now()

	// A trip that ends while still crawling keeps the partial interval.
	if !s.slowSince.IsZero() {
		s.metrics.SlowTraffic += now.Sub(s.slowSince)
		s.slowSince = time.Time{}
	}

	if s.speedCount > 0 {
		s.metrics.AvgSpeedKMH = s.speedSumKMH / float64(s.speedCount)
	}

	record := &trip.Record{
		ID:             uuid.New().String(),
		TripTypeID:     s.tripTypeID,
		Start:          s.start,
		End:            now,
		Duration:       now.Sub(s.start),
		Metrics:        s.metrics,
		Path:           s.path,
		TrafficPeriods: trip.DetectHeavyTraffic(s.path, s.cfg.GetSlowSpeedKMH()),
		Events:         s.events,
	}
	if len(s.path) > 0 {
		record.StartLocation = &trip.Location{Latitude: s.path[0].Latitude, Longitude: s.path[0].Longitude}
		record.EndLocation = &trip.Location{Latitude: s.path[len(s.path)-1].Latitude, Longitude: s.path[len(s.path)-1].Longitude}
	}

	s.mu.Lock()
	s.record = record
	s.mu.Unlock()

	monitoring.Logf("session: trip finished (duration=%s events=%d score=%.1f)",
		record.Duration, len(record.Events), trip.Score(record.Metrics))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
