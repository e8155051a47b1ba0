package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/commute.report/internal/trip"
)

// ErrEmptyCSV is returned when an import source holds no data rows at all.
var ErrEmptyCSV = errors.New("csv input has no data rows")

// csvDateLayout is the human-readable date column of the summary export. It
// contains a comma on purpose: consumers must handle quoted fields.
const csvDateLayout = "Jan 2, 2006"

// duplicateSlack is the matching tolerance when deciding whether an imported
// row duplicates an existing record.
const duplicateSlack = 60 * time.Second

// summaryHeader is the fixed column order of the summary export. Import
// relies on these positions.
var summaryHeader = []string{
	"date", "trip_type", "start", "end", "duration_seconds", "score",
	"braking", "hard_braking", "rough_road", "sharp_turns", "speed_violations",
	"acceleration", "phone_distraction", "horn", "siren",
	"max_speed_kmh", "avg_speed_kmh", "distance_meters", "slow_traffic_seconds",
	"start_latitude", "start_longitude", "end_latitude", "end_longitude",
	"traffic_periods",
}

// WriteSummaryCSV exports one row per record in the fixed summary layout.
func WriteSummaryCSV(w io.Writer, records []trip.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Start.Format(csvDateLayout),
			r.TripTypeID,
			r.Start.Format(time.RFC3339),
			r.End.Format(time.RFC3339),
			formatFloat(r.Duration.Seconds()),
			formatFloat(trip.Score(r.Metrics)),
			strconv.Itoa(r.Metrics.BrakingCount),
			strconv.Itoa(r.Metrics.HardBrakingCount),
			strconv.Itoa(r.Metrics.RoughRoadCount),
			strconv.Itoa(r.Metrics.SharpTurnCount),
			strconv.Itoa(r.Metrics.SpeedViolationCount),
			strconv.Itoa(r.Metrics.AccelerationCount),
			strconv.Itoa(r.Metrics.PhoneDistractionCount),
			strconv.Itoa(r.Metrics.HornCount),
			strconv.Itoa(r.Metrics.SirenCount),
			formatFloat(r.Metrics.MaxSpeedKMH),
			formatFloat(r.Metrics.AvgSpeedKMH),
			formatFloat(r.Metrics.DistanceMeters),
			formatFloat(r.Metrics.SlowTraffic.Seconds()),
			formatLocation(r.StartLocation, func(l *trip.Location) float64 { return l.Latitude }),
			formatLocation(r.StartLocation, func(l *trip.Location) float64 { return l.Longitude }),
			formatLocation(r.EndLocation, func(l *trip.Location) float64 { return l.Latitude }),
			formatLocation(r.EndLocation, func(l *trip.Location) float64 { return l.Longitude }),
			strconv.Itoa(len(r.TrafficPeriods)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDetailCSV exports one row per path point and per event of a single
// record, tagged by a kind column.
func WriteDetailCSV(w io.Writer, r trip.Record) error {
	cw := csv.NewWriter(w)
	header := []string{"kind", "time", "latitude", "longitude", "speed_kmh", "accuracy", "event_type", "intensity"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, p := range r.Path {
		row := []string{
			"path", p.Time.Format(time.RFC3339),
			formatFloat(p.Latitude), formatFloat(p.Longitude),
			formatFloat(p.SpeedKMH), formatFloat(p.Accuracy),
			"", "",
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	for _, e := range r.Events {
		row := []string{
			"event", e.Time.Format(time.RFC3339),
			formatFloat(e.Latitude), formatFloat(e.Longitude),
			formatFloat(e.SpeedKMH), formatFloat(e.Accuracy),
			string(e.Type), formatFloat(e.Intensity),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportResult reports the outcome of a CSV import. Skipped rows are not an
// error; a source with no usable structure at all is.
type ImportResult struct {
	Records []trip.Record
	Skipped int
}

// ReadSummaryCSV parses a summary export back into records. Rows with too
// few columns or unparseable dates are skipped and counted. An input without
// any data row is a format error. Imported records get fresh IDs; paths and
// events are not part of the summary format.
func ReadSummaryCSV(r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var result ImportResult
	rows := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("reading csv: %w", err)
		}
		rows++
		if rows == 1 && looksLikeHeader(row) {
			continue
		}
		rec, ok := parseSummaryRow(row)
		if !ok {
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	if rows == 0 || (rows == 1 && result.Records == nil && result.Skipped == 0) {
		return ImportResult{}, ErrEmptyCSV
	}
	return result, nil
}

// IsDuplicate reports whether candidate matches an already stored record:
// same trip type, start times within a minute and durations within a minute.
func IsDuplicate(candidate trip.Record, existing []trip.Record) bool {
	for _, e := range existing {
		if e.TripTypeID != candidate.TripTypeID {
			continue
		}
		if absDuration(e.Start.Sub(candidate.Start)) > duplicateSlack {
			continue
		}
		if absDuration(e.Duration-candidate.Duration) > duplicateSlack {
			continue
		}
		return true
	}
	return false
}

func parseSummaryRow(row []string) (trip.Record, bool) {
	if len(row) < len(summaryHeader) {
		return trip.Record{}, false
	}
	start, err := ParseFlexibleDate(row[2])
	if err != nil {
		return trip.Record{}, false
	}
	end, err := ParseFlexibleDate(row[3])
	if err != nil {
		return trip.Record{}, false
	}
	durationS, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return trip.Record{}, false
	}

	rec := trip.Record{
		ID:         uuid.New().String(),
		TripTypeID: row[1],
		Start:      start,
		End:        end,
		Duration:   secondsToDuration(durationS),
		Metrics: trip.Metrics{
			BrakingCount:          parseIntDefault(row[6]),
			HardBrakingCount:      parseIntDefault(row[7]),
			RoughRoadCount:        parseIntDefault(row[8]),
			SharpTurnCount:        parseIntDefault(row[9]),
			SpeedViolationCount:   parseIntDefault(row[10]),
			AccelerationCount:     parseIntDefault(row[11]),
			PhoneDistractionCount: parseIntDefault(row[12]),
			HornCount:             parseIntDefault(row[13]),
			SirenCount:            parseIntDefault(row[14]),
			MaxSpeedKMH:           parseFloatDefault(row[15]),
			AvgSpeedKMH:           parseFloatDefault(row[16]),
			DistanceMeters:        parseFloatDefault(row[17]),
			SlowTraffic:           secondsToDuration(parseFloatDefault(row[18])),
		},
	}
	if lat, lng, ok := parseCoordinate(row[19], row[20]); ok {
		rec.StartLocation = &trip.Location{Latitude: lat, Longitude: lng}
	}
	if lat, lng, ok := parseCoordinate(row[21], row[22]); ok {
		rec.EndLocation = &trip.Location{Latitude: lat, Longitude: lng}
	}
	return rec, true
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	return row[0] == summaryHeader[0]
}

func parseIntDefault(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parseFloatDefault(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseCoordinate(latS, lngS string) (float64, float64, bool) {
	if latS == "" || lngS == "" {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(latS, 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(lngS, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatLocation(l *trip.Location, pick func(*trip.Location) float64) string {
	if l == nil {
		return ""
	}
	return formatFloat(pick(l))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
