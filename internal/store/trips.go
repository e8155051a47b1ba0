package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/banshee-data/commute.report/internal/codec"
	"github.com/banshee-data/commute.report/internal/monitoring"
	"github.com/banshee-data/commute.report/internal/trip"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// TripList is the result of loading stored trips. Corrupt counts rows whose
// JSON blob failed to decode; those rows are skipped, never fatal.
type TripList struct {
	Records []trip.Record
	Corrupt int
}

// InsertTrip stores a finished trip. When the history cap is exceeded the
// oldest trips are evicted so the newest always fits.
func (s *Store) InsertTrip(r trip.Record) error {
	blob, err := codec.EncodeRecord(r)
	if err != nil {
		return fmt.Errorf("encoding trip %s: %w", r.ID, err)
	}

	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO trips (id, trip_type_id, start_time, duration_seconds, record)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.TripTypeID, r.Start.UTC(), r.Duration.Seconds(), string(blob),
	)
	if err != nil {
		return fmt.Errorf("inserting trip %s: %w", r.ID, err)
	}

	// Evict beyond the cap, oldest first.
	_, err = tx.Exec(`
		DELETE FROM trips WHERE id NOT IN (
			SELECT id FROM trips ORDER BY start_time DESC LIMIT ?
		)`, s.historyCap)
	if err != nil {
		return fmt.Errorf("evicting old trips: %w", err)
	}

	return tx.Commit()
}

// GetTrip loads a single trip by id.
func (s *Store) GetTrip(id string) (trip.Record, error) {
	var blob string
	err := s.QueryRow(`SELECT record FROM trips WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return trip.Record{}, fmt.Errorf("trip %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return trip.Record{}, fmt.Errorf("loading trip %s: %w", id, err)
	}
	return codec.DecodeRecord([]byte(blob))
}

// ListTrips loads all stored trips, newest first.
func (s *Store) ListTrips() (TripList, error) {
	return s.listTrips(`SELECT id, record FROM trips ORDER BY start_time DESC`)
}

// ListTripsByType loads the stored trips of one trip type, newest first.
func (s *Store) ListTripsByType(tripTypeID string) (TripList, error) {
	return s.listTrips(
		`SELECT id, record FROM trips WHERE trip_type_id = ? ORDER BY start_time DESC`,
		tripTypeID,
	)
}

func (s *Store) listTrips(query string, args ...interface{}) (TripList, error) {
	rows, err := s.Query(query, args...)
	if err != nil {
		return TripList{}, fmt.Errorf("listing trips: %w", err)
	}
	defer rows.Close()

	var list TripList
	for rows.Next() {
		var id, blob string
		if err := rows.Scan(&id, &blob); err != nil {
			return TripList{}, fmt.Errorf("scanning trip row: %w", err)
		}
		rec, err := codec.DecodeRecord([]byte(blob))
		if err != nil {
			monitoring.Logf("skipping corrupt trip %s: %v", id, err)
			list.Corrupt++
			continue
		}
		list.Records = append(list.Records, rec)
	}
	return list, rows.Err()
}

// DeleteTrip removes a single trip.
func (s *Store) DeleteTrip(id string) error {
	res, err := s.Exec(`DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting trip %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("trip %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAllTrips clears the trip history and reports how many were removed.
func (s *Store) DeleteAllTrips() (int, error) {
	res, err := s.Exec(`DELETE FROM trips`)
	if err != nil {
		return 0, fmt.Errorf("deleting trips: %w", err)
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

// TripCount returns the number of stored trips.
func (s *Store) TripCount() (int, error) {
	var n int
	if err := s.QueryRow(`SELECT COUNT(*) FROM trips`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting trips: %w", err)
	}
	return n, nil
}
