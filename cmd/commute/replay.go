package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/banshee-data/commute.report/internal/config"
	"github.com/banshee-data/commute.report/internal/session"
	"github.com/banshee-data/commute.report/internal/store"
	"github.com/banshee-data/commute.report/internal/timeutil"
	"github.com/banshee-data/commute.report/internal/trace"
	"github.com/banshee-data/commute.report/internal/trip"
	"github.com/banshee-data/commute.report/internal/units"
)

func runReplay(s *store.Store, cfg *config.Tuning, args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	tripTypeID := fs.String("type", "type-commute", "trip type id to record under")
	persist := fs.Bool("save", false, "store the resulting trip")
	fs.Parse(args)

	if fs.NArg() < 1 {
		log.Fatal("Usage: commute replay [options] <trace.csv>")
	}
	tracePath := fs.Arg(0)

	f, err := os.Open(tracePath)
	if err != nil {
		log.Fatalf("Failed to open trace: %v", err)
	}
	defer f.Close()

	rows, err := trace.NewReader(f).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read trace: %v", err)
	}
	if len(rows) == 0 {
		log.Fatal("Trace is empty")
	}

	record, err := replayTrace(cfg, rows, *tripTypeID)
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}

	printRecord(*record, units.KMPH)

	if *persist {
		if err := s.InsertTrip(*record); err != nil {
			log.Fatalf("Failed to store trip: %v", err)
		}
		log.Printf("✓ Stored trip %s", record.ID)
	}
}

// replayTrace feeds a recorded trace through a session on a mock clock, so a
// ten-minute trace replays in milliseconds with the original timing intact.
func replayTrace(cfg *config.Tuning, rows []trace.Row, tripTypeID string) (*trip.Record, error) {
	caps := session.Capabilities{}
	for _, row := range rows {
		switch row.Kind {
		case trace.KindMotion:
			caps.Motion = true
		case trace.KindLocation:
			caps.Location = true
		case trace.KindAudio:
			caps.Audio = true
		}
	}

	clock := timeutil.NewMockClock(rows[0].Time)
	sess := session.New(cfg, clock, caps, tripTypeID)
	if err := sess.Start(); err != nil {
		return nil, err
	}
	go drainUpdates(sess.Updates())

	for _, row := range rows {
		if d := row.Time.Sub(clock.Now()); d > 0 {
			clock.Advance(d)
		}
		switch row.Kind {
		case trace.KindMotion:
			sess.Motion() <- *row.Motion
		case trace.KindLocation:
			sess.Location() <- *row.Location
		case trace.KindAudio:
			sess.Audio() <- *row.Audio
		}
	}
	// One final tick so trailing samples are aggregated.
	clock.Advance(cfg.GetTickInterval())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return sess.Stop(ctx)
}

func drainUpdates(updates <-chan session.Snapshot) {
	for range updates {
	}
}

// speedIn converts a stored km/h speed into the requested display units.
func speedIn(kmh float64, speedUnits string) float64 {
	return units.ConvertSpeed(units.KMHToMPS(kmh), speedUnits)
}

func speedSuffix(speedUnits string) string {
	switch speedUnits {
	case units.MPS:
		return "m/s"
	case units.MPH:
		return "mph"
	default:
		return "km/h"
	}
}

func printRecord(r trip.Record, speedUnits string) {
	score := trip.Score(r.Metrics)
	suffix := speedSuffix(speedUnits)
	fmt.Printf("Trip %s (%s)\n", r.ID, r.TripTypeID)
	fmt.Printf("  %s .. %s (%s)\n", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339), r.Duration.Round(time.Second))
	fmt.Printf("  Score: %.1f (%s)\n", score, trip.QualityLabel(score))
	fmt.Printf("  Distance: %.1f km, max %.1f %s, avg %.1f %s\n",
		r.Metrics.DistanceMeters/1000,
		speedIn(r.Metrics.MaxSpeedKMH, speedUnits), suffix,
		speedIn(r.Metrics.AvgSpeedKMH, speedUnits), suffix)
	fmt.Printf("  Events: %d braking (%d hard), %d acceleration, %d sharp turns, %d rough road\n",
		r.Metrics.BrakingCount, r.Metrics.HardBrakingCount,
		r.Metrics.AccelerationCount, r.Metrics.SharpTurnCount, r.Metrics.RoughRoadCount)
	fmt.Printf("          %d speed violations, %d distractions, %d horns, %d sirens\n",
		r.Metrics.SpeedViolationCount, r.Metrics.PhoneDistractionCount,
		r.Metrics.HornCount, r.Metrics.SirenCount)
	fmt.Printf("  Slow traffic: %s in %d heavy-traffic periods\n",
		r.Metrics.SlowTraffic.Round(time.Second), len(r.TrafficPeriods))
	for _, p := range r.TrafficPeriods {
		fmt.Printf("    %s .. %s avg %.1f %s\n",
			p.Start.Format("15:04:05"), p.End.Format("15:04:05"),
			speedIn(p.AvgSpeedKMH, speedUnits), suffix)
	}
}
