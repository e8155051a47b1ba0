// Package session runs one active trip: it consumes the motion, location and
// audio sample streams through a single ingestion loop, aggregates driving
// metrics on a fixed tick, and freezes the result into an immutable trip
// record when the trip is stopped.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/banshee-data/commute.report/internal/audio"
	"github.com/banshee-data/commute.report/internal/config"
	"github.com/banshee-data/commute.report/internal/monitoring"
	"github.com/banshee-data/commute.report/internal/motion"
	"github.com/banshee-data/commute.report/internal/timeutil"
	"github.com/banshee-data/commute.report/internal/trip"
)

// Channel capacities. Input channels are bounded so a stalled loop applies
// backpressure to producers instead of growing without bound; the updates
// channel is small because stale snapshots are worthless.
const (
	inputBuffer   = 32
	updatesBuffer = 4
)

// ErrNotRunning is returned by Stop when the session was never started or
// already stopped.
var ErrNotRunning = errors.New("session: not running")

// ErrStopped is returned by Start on a session that has already recorded a
// trip. Sessions are single-use; start a new one for the next trip.
var ErrStopped = errors.New("session: already stopped")

// Capabilities declares which sample sources are available for a trip.
// Missing capabilities degrade the engine (fewer event types) rather than
// failing it.
type Capabilities struct {
	Motion   bool
	Location bool
	Audio    bool
}

// LocationFix is one GPS reading pushed into the session. SpeedMPS is the
// raw Doppler speed and may be negative on a poor fix.
type LocationFix struct {
	Latitude  float64
	Longitude float64
	Time      time.Time
	SpeedMPS  float64
	Accuracy  float64 // horizontal accuracy, metres
}

// Snapshot is an immutable metrics snapshot emitted on every aggregator
// tick. Presentation layers subscribe to these instead of sharing mutable
// state with the engine.
type Snapshot struct {
	Time          time.Time
	Metrics       trip.Metrics
	Score         float64
	InSlowTraffic bool
	EventCount    int
	PathPoints    int
}

// Status reports the session's externally visible state.
type Status struct {
	Active       bool
	Capabilities Capabilities
	Orientation  motion.Orientation
}

// Session owns the state of one active trip. All mutable trip state is
// confined to the ingestion goroutine; the exported API is safe for
// concurrent use.
type Session struct {
	cfg        *config.Tuning
	clock      timeutil.Clock
	caps       Capabilities
	tripTypeID string

	motionCh   chan motion.SampleFrame
	locationCh chan LocationFix
	audioCh    chan audio.Classification
	updates    chan Snapshot

	stopCh chan struct{}
	doneCh chan struct{}

	// ticker is created in Start, before the ingestion goroutine launches,
	// so it is registered with the clock by the time Start returns.
	ticker timeutil.Ticker

	mu          sync.Mutex
	running     bool
	stopped     bool
	orientation motion.Orientation
	record      *trip.Record

	// Loop-owned state; never touched outside the ingestion goroutine.
	resolver  *motion.OrientationResolver
	transform *motion.FrameTransform
	detector  *motion.Detector
	mapper    *audio.Mapper

	start      time.Time
	metrics    trip.Metrics
	events     []trip.Event
	path       []trip.PathPoint
	currentFix *LocationFix

	speedSumKMH float64
	speedCount  int
	slowSince   time.Time
}

// New creates a session for one trip of the given type. A nil cfg uses
// defaults; a nil clock uses the real clock.
func New(cfg *config.Tuning, clock timeutil.Clock, caps Capabilities, tripTypeID string) *Session {
	if cfg == nil {
		cfg = config.Empty()
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Session{
		cfg:        cfg,
		clock:      clock,
		caps:       caps,
		tripTypeID: tripTypeID,

		motionCh:   make(chan motion.SampleFrame, inputBuffer),
		locationCh: make(chan LocationFix, inputBuffer),
		audioCh:    make(chan audio.Classification, inputBuffer),
		updates:    make(chan Snapshot, updatesBuffer),

		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),

		resolver:  motion.NewOrientationResolver(),
		transform: motion.NewFrameTransform(),
		detector:  motion.NewDetector(cfg),
		mapper:    audio.NewMapper(cfg),

		orientation: motion.OrientationUnknown,
	}
}

// Start launches the ingestion loop. It is an error to start a session
// twice, or to restart one that has already been stopped.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.running {
		return errors.New("session: already started")
	}
	s.running = true
	s.start = s.clock.Now()
	s.ticker = s.clock.NewTicker(s.cfg.GetTickInterval())

	monitoring.Logf("session: trip started (type=%s motion=%v location=%v audio=%v)",
		s.tripTypeID, s.caps.Motion, s.caps.Location, s.caps.Audio)

	go s.run()
	return nil
}

// Motion returns the channel for motion sample frames. Ignored when the
// motion capability is absent.
func (s *Session) Motion() chan<- motion.SampleFrame { return s.motionCh }

// Location returns the channel for GPS fixes.
func (s *Session) Location() chan<- LocationFix { return s.locationCh }

// Audio returns the channel for sound-classification results.
func (s *Session) Audio() chan<- audio.Classification { return s.audioCh }

// Updates returns the snapshot channel. Snapshots are dropped, not queued,
// when the consumer falls behind.
func (s *Session) Updates() <-chan Snapshot { return s.updates }

// Status returns the current session status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Active:       s.running,
		Capabilities: s.caps,
		Orientation:  s.orientation,
	}
}

// Stop halts ingestion, waits for the loop to finish, and returns the
// finalized immutable trip record. The ticker is cancelled and the loop
// drained before the record is built, so finalization never races the
// aggregator.
func (s *Session) Stop(ctx context.Context) (*trip.Record, error) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil, ErrNotRunning
	}
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	close(s.stopCh)

	select {
	case <-s.doneCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record, nil
}
