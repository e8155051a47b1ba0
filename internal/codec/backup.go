package codec

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/commute.report/internal/trip"
)

// BackupVersion is the schema version written into new backup envelopes.
const BackupVersion = 2

// Backup bundles the full persisted state for export and restore.
type Backup struct {
	Version    int
	ExportedAt time.Time
	Records    []trip.Record
	Settings   trip.Settings
	TripTypes  []trip.Type

	// Skipped counts records that could not be decoded. Populated by
	// DecodeBackup only; never serialized.
	Skipped int
}

type backupJSON struct {
	Version    int             `json:"version"`
	ExportedAt FlexTime        `json:"exportedAt"`
	Records    json.RawMessage `json:"records"`
	Settings   json.RawMessage `json:"settings"`
	TripTypes  []tripTypeJSON  `json:"tripTypes"`
}

// EncodeBackup writes a versioned backup envelope to w, gzip-compressed when
// compress is set.
func EncodeBackup(w io.Writer, b Backup, compress bool) error {
	records := make([]recordJSON, 0, len(b.Records))
	for _, r := range b.Records {
		records = append(records, toRecordJSON(r))
	}
	recordsRaw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding backup records: %w", err)
	}
	settingsRaw, err := EncodeSettings(b.Settings)
	if err != nil {
		return err
	}
	types := make([]tripTypeJSON, 0, len(b.TripTypes))
	for _, t := range b.TripTypes {
		types = append(types, tripTypeJSON(t))
	}

	version := b.Version
	if version == 0 {
		version = BackupVersion
	}
	exportedAt := b.ExportedAt
	if exportedAt.IsZero() {
		exportedAt = time.Now().UTC()
	}
	env := backupJSON{
		Version:    version,
		ExportedAt: FlexTime(exportedAt),
		Records:    recordsRaw,
		Settings:   settingsRaw,
		TripTypes:  types,
	}

	out := w
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(w)
		out = gz
	}
	if err := json.NewEncoder(out).Encode(env); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}

// DecodeBackup reads a backup envelope, transparently handling gzip input
// (sniffed by magic bytes) and older record schemas. A missing export date
// is replaced with the current time. Records that fail to decode are skipped
// and counted in Backup.Skipped instead of failing the whole restore.
func DecodeBackup(r io.Reader) (Backup, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return Backup{}, fmt.Errorf("opening compressed backup: %w", err)
		}
		defer gz.Close()
		return decodeBackupJSON(gz)
	}
	return decodeBackupJSON(br)
}

func decodeBackupJSON(r io.Reader) (Backup, error) {
	var env backupJSON
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Backup{}, fmt.Errorf("decoding backup: %w", err)
	}

	out := Backup{
		Version:    env.Version,
		ExportedAt: env.ExportedAt.Time(),
		Settings:   trip.DefaultSettings(),
	}
	if out.ExportedAt.IsZero() {
		out.ExportedAt = time.Now().UTC()
	}

	if len(env.Records) > 0 {
		var rawRecords []json.RawMessage
		if err := json.Unmarshal(env.Records, &rawRecords); err != nil {
			return Backup{}, fmt.Errorf("decoding backup records: %w", err)
		}
		out.Records = make([]trip.Record, 0, len(rawRecords))
		for _, raw := range rawRecords {
			rec, err := DecodeRecord(raw)
			if err != nil {
				// One bad record must not lose the rest of the backup.
				out.Skipped++
				continue
			}
			out.Records = append(out.Records, rec)
		}
	}
	if len(env.Settings) > 0 {
		settings, err := DecodeSettings(env.Settings)
		if err != nil {
			return Backup{}, err
		}
		out.Settings = settings
	}
	out.TripTypes = make([]trip.Type, 0, len(env.TripTypes))
	for _, t := range env.TripTypes {
		out.TripTypes = append(out.TripTypes, trip.Type(t))
	}
	return out, nil
}
