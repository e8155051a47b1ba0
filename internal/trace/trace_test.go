package trace

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/banshee-data/commute.report/internal/audio"
	"github.com/banshee-data/commute.report/internal/motion"
	"github.com/banshee-data/commute.report/internal/session"
)

func TestTraceRoundTrip(t *testing.T) {
	start := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	rows := []Row{
		{
			Time: start,
			Kind: KindMotion,
			Motion: &motion.SampleFrame{
				Time:         start,
				Acceleration: motion.Vector3{X: 0.01, Y: -0.3, Z: 0.02},
				Gravity:      motion.Vector3{Z: -1},
				RotationRate: motion.Vector3{Z: 0.1},
			},
		},
		{
			Time: start.Add(time.Second),
			Kind: KindLocation,
			Location: &session.LocationFix{
				Time: start.Add(time.Second), Latitude: 52.52, Longitude: 13.405,
				SpeedMPS: 13.9, Accuracy: 6,
			},
		},
		{
			Time:  start.Add(2 * time.Second),
			Kind:  KindAudio,
			Audio: &audio.Classification{Time: start.Add(2 * time.Second), Label: "vehicle horn", Confidence: 0.9},
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	got, err := NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}

	if got[0].Kind != KindMotion || got[0].Motion == nil {
		t.Fatalf("row 0 = %+v, want motion", got[0])
	}
	if got[0].Motion.Acceleration.Y != -0.3 {
		t.Errorf("acceleration Y = %v", got[0].Motion.Acceleration.Y)
	}
	if got[1].Kind != KindLocation || got[1].Location == nil {
		t.Fatalf("row 1 = %+v, want location", got[1])
	}
	if got[1].Location.SpeedMPS != 13.9 {
		t.Errorf("speed = %v", got[1].Location.SpeedMPS)
	}
	if got[2].Kind != KindAudio || got[2].Audio == nil {
		t.Fatalf("row 2 = %+v, want audio", got[2])
	}
	if got[2].Audio.Label != "vehicle horn" {
		t.Errorf("label = %q", got[2].Audio.Label)
	}
	if !got[2].Time.Equal(rows[2].Time) {
		t.Errorf("time = %v, want %v", got[2].Time, rows[2].Time)
	}
}

func TestReaderRejectsUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(Row{Time: time.Now(), Kind: KindAudio, Audio: &audio.Classification{Label: "x"}}); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	mangled := bytes.Replace(buf.Bytes(), []byte(",audio,"), []byte(",sonar,"), 1)

	_, err := NewReader(bytes.NewReader(mangled)).ReadAll()
	if err == nil {
		t.Fatal("expected error for unknown row kind")
	}
}

func TestWriterRejectsMissingPayload(t *testing.T) {
	w := NewWriter(io.Discard)
	if err := w.Write(Row{Time: time.Now(), Kind: KindMotion}); err == nil {
		t.Fatal("expected error for motion row without payload")
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	opts := GenOptions{
		Start:    time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
		Duration: 2 * time.Minute,
		Seed:     42,
	}
	a := Synthesize(opts)
	b := Synthesize(opts)
	if len(a) == 0 {
		t.Fatal("empty trace")
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || !a[i].Time.Equal(b[i].Time) {
			t.Fatalf("row %d differs", i)
		}
	}

	// 5 Hz motion plus 1 Hz location.
	motionRows := 0
	for _, row := range a {
		if row.Kind == KindMotion {
			motionRows++
		}
	}
	if want := 120 * 5; motionRows != want {
		t.Errorf("motion rows = %d, want %d", motionRows, want)
	}
}

func TestSynthesizeIncludesBrakingSpike(t *testing.T) {
	rows := Synthesize(GenOptions{
		Start:    time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
		Duration: 2 * time.Minute,
		Seed:     1,
	})
	spike := false
	for _, row := range rows {
		if row.Kind == KindMotion && row.Motion.Acceleration.Y < -0.3 {
			spike = true
			break
		}
	}
	if !spike {
		t.Error("expected a braking spike in the synthetic trace")
	}
}

func TestSynthesizeRoundTripThroughCodec(t *testing.T) {
	rows := Synthesize(GenOptions{
		Start:    time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
		Duration: time.Minute,
		Seed:     7,
	})
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			t.Fatal(err)
		}
	}
	w.Flush()

	got, err := NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
}
