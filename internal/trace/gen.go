package trace

import (
	"math/rand"
	"time"

	"github.com/banshee-data/commute.report/internal/audio"
	"github.com/banshee-data/commute.report/internal/motion"
	"github.com/banshee-data/commute.report/internal/session"
)

// GenOptions controls the synthetic commute generator.
type GenOptions struct {
	Start    time.Time
	Duration time.Duration
	Seed     int64

	// Phone lies flat, screen up, unless overridden.
	Gravity motion.Vector3
}

// degPerMeter approximates one metre of northward travel in latitude degrees.
const degPerMeter = 1.0 / 111320.0

// Synthesize builds a deterministic commute trace: pull-away, cruise, one
// hard braking spike, a rough-road stretch, a slow-traffic crawl with a horn,
// and a short speeding burst near the end. Motion rows at 5 Hz, location rows
// at 1 Hz.
func Synthesize(opts GenOptions) []Row {
	if opts.Duration <= 0 {
		opts.Duration = 10 * time.Minute
	}
	if opts.Gravity == (motion.Vector3{}) {
		opts.Gravity = motion.Vector3{Z: -1}
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	total := int(opts.Duration / time.Second)
	var rows []Row
	lat, lng := 52.5200, 13.4050

	for sec := 0; sec < total; sec++ {
		speedMPS := speedAt(sec, total)

		// 5 Hz motion.
		for sub := 0; sub < 5; sub++ {
			ts := opts.Start.Add(time.Duration(sec)*time.Second + time.Duration(sub)*200*time.Millisecond)
			accel := motion.Vector3{
				X: rng.NormFloat64() * 0.02,
				Y: rng.NormFloat64() * 0.02,
				Z: rng.NormFloat64() * 0.02,
			}
			rotation := motion.Vector3{Z: rng.NormFloat64() * 0.02}

			switch {
			case inWindow(sec, 70, 72):
				// Hard braking: strong rearward pull for two seconds.
				// Face-up, the vehicle's forward axis is the device Y axis.
				accel.Y = -0.4 + rng.NormFloat64()*0.02
			case inWindow(sec, 120, 150):
				// Rough road: vertical churn.
				accel.Z = rng.NormFloat64() * 0.6
			case inWindow(sec, 200, 202):
				// Sharp turn: fast yaw.
				rotation.Z = 0.9
			}

			rows = append(rows, Row{
				Time: ts,
				Kind: KindMotion,
				Motion: &motion.SampleFrame{
					Time:         ts,
					Acceleration: accel,
					Gravity:      opts.Gravity,
					RotationRate: rotation,
				},
			})
		}

		// 1 Hz location.
		ts := opts.Start.Add(time.Duration(sec) * time.Second)
		lat += speedMPS * degPerMeter
		rows = append(rows, Row{
			Time: ts,
			Kind: KindLocation,
			Location: &session.LocationFix{
				Time:      ts,
				Latitude:  lat,
				Longitude: lng,
				SpeedMPS:  speedMPS,
				Accuracy:  5 + rng.Float64()*5,
			},
		})

		if sec == 400 {
			rows = append(rows, Row{
				Time:  ts,
				Kind:  KindAudio,
				Audio: &audio.Classification{Time: ts, Label: "vehicle horn", Confidence: 0.85},
			})
		}
	}
	return rows
}

// speedAt scripts the commute's speed profile in metres per second.
func speedAt(sec, total int) float64 {
	switch {
	case sec < 10: // pulling away
		return float64(sec) * 1.4
	case inWindow(sec, 70, 75): // braking spike and recovery
		return 4
	case inWindow(sec, 300, 420): // slow traffic crawl
		return 2.2
	case inWindow(sec, 450, 470): // speeding burst
		return 30
	case sec > total-10: // arriving
		return float64(total-sec) * 1.4
	default: // cruise at ~50 km/h
		return 13.9
	}
}

func inWindow(sec, from, to int) bool { return sec >= from && sec < to }
