// Package trace reads and writes sensor trace files: CSV logs of timestamped
// motion, location and audio rows. Traces are recorded from live sessions or
// generated synthetically, and can be replayed through a session to reproduce
// a trip offline.
package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/banshee-data/commute.report/internal/audio"
	"github.com/banshee-data/commute.report/internal/motion"
	"github.com/banshee-data/commute.report/internal/session"
)

// Kind tags a trace row with its sensor source.
type Kind string

const (
	KindMotion   Kind = "motion"
	KindLocation Kind = "location"
	KindAudio    Kind = "audio"
)

// Row is one timestamped sensor sample. Exactly one of the payload pointers
// is set, matching Kind.
type Row struct {
	Time     time.Time
	Kind     Kind
	Motion   *motion.SampleFrame
	Location *session.LocationFix
	Audio    *audio.Classification
}

var header = []string{
	"time", "kind",
	"ax", "ay", "az", "gx", "gy", "gz", "rx", "ry", "rz",
	"latitude", "longitude", "speed_mps", "accuracy",
	"label", "confidence",
}

// Writer streams rows to a CSV trace file.
type Writer struct {
	cw          *csv.Writer
	wroteHeader bool
}

// NewWriter wraps w for trace output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: csv.NewWriter(w)}
}

// Write appends one row.
func (w *Writer) Write(row Row) error {
	if !w.wroteHeader {
		if err := w.cw.Write(header); err != nil {
			return fmt.Errorf("writing trace header: %w", err)
		}
		w.wroteHeader = true
	}

	out := make([]string, len(header))
	out[0] = row.Time.UTC().Format(time.RFC3339Nano)
	out[1] = string(row.Kind)

	switch row.Kind {
	case KindMotion:
		if row.Motion == nil {
			return fmt.Errorf("motion row without motion payload")
		}
		f := row.Motion
		out[2], out[3], out[4] = ftoa(f.Acceleration.X), ftoa(f.Acceleration.Y), ftoa(f.Acceleration.Z)
		out[5], out[6], out[7] = ftoa(f.Gravity.X), ftoa(f.Gravity.Y), ftoa(f.Gravity.Z)
		out[8], out[9], out[10] = ftoa(f.RotationRate.X), ftoa(f.RotationRate.Y), ftoa(f.RotationRate.Z)
	case KindLocation:
		if row.Location == nil {
			return fmt.Errorf("location row without location payload")
		}
		l := row.Location
		out[11], out[12] = ftoa(l.Latitude), ftoa(l.Longitude)
		out[13], out[14] = ftoa(l.SpeedMPS), ftoa(l.Accuracy)
	case KindAudio:
		if row.Audio == nil {
			return fmt.Errorf("audio row without audio payload")
		}
		out[15], out[16] = row.Audio.Label, ftoa(row.Audio.Confidence)
	default:
		return fmt.Errorf("unknown trace row kind %q", row.Kind)
	}

	if err := w.cw.Write(out); err != nil {
		return fmt.Errorf("writing trace row: %w", err)
	}
	return nil
}

// Flush writes buffered rows through to the underlying writer.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

// Reader streams rows from a CSV trace file.
type Reader struct {
	cr      *csv.Reader
	started bool
}

// NewReader wraps r for trace input.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return &Reader{cr: cr}
}

// Next returns the next row, or io.EOF when the trace is exhausted.
func (r *Reader) Next() (Row, error) {
	for {
		rec, err := r.cr.Read()
		if err != nil {
			return Row{}, err
		}
		if !r.started {
			r.started = true
			if len(rec) > 0 && rec[0] == header[0] {
				continue
			}
		}
		row, err := parseRow(rec)
		if err != nil {
			return Row{}, err
		}
		return row, nil
	}
}

// ReadAll consumes the whole trace.
func (r *Reader) ReadAll() ([]Row, error) {
	var rows []Row
	for {
		row, err := r.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func parseRow(rec []string) (Row, error) {
	if len(rec) < len(header) {
		return Row{}, fmt.Errorf("trace row has %d columns, want %d", len(rec), len(header))
	}
	ts, err := time.Parse(time.RFC3339Nano, rec[0])
	if err != nil {
		return Row{}, fmt.Errorf("parsing trace timestamp %q: %w", rec[0], err)
	}

	row := Row{Time: ts, Kind: Kind(rec[1])}
	switch row.Kind {
	case KindMotion:
		row.Motion = &motion.SampleFrame{
			Time:         ts,
			Acceleration: motion.Vector3{X: atof(rec[2]), Y: atof(rec[3]), Z: atof(rec[4])},
			Gravity:      motion.Vector3{X: atof(rec[5]), Y: atof(rec[6]), Z: atof(rec[7])},
			RotationRate: motion.Vector3{X: atof(rec[8]), Y: atof(rec[9]), Z: atof(rec[10])},
		}
	case KindLocation:
		row.Location = &session.LocationFix{
			Time:      ts,
			Latitude:  atof(rec[11]),
			Longitude: atof(rec[12]),
			SpeedMPS:  atof(rec[13]),
			Accuracy:  atof(rec[14]),
		}
	case KindAudio:
		row.Audio = &audio.Classification{
			Time:       ts,
			Label:      rec[15],
			Confidence: atof(rec[16]),
		}
	default:
		return Row{}, fmt.Errorf("unknown trace row kind %q", rec[1])
	}
	return row, nil
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
