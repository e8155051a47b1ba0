package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/banshee-data/commute.report/internal/trip"
)

// ErrTypeCapReached is returned when creating a trip type beyond the cap.
var ErrTypeCapReached = errors.New("trip type limit reached")

// ErrBuiltinType is returned when deleting a builtin trip type.
var ErrBuiltinType = errors.New("builtin trip types cannot be deleted")

// CreateTripType stores a new trip type, enforcing the type cap.
func (s *Store) CreateTripType(t trip.Type) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM trip_types`).Scan(&count); err != nil {
		return fmt.Errorf("counting trip types: %w", err)
	}
	if count >= s.typeCap {
		return fmt.Errorf("%w (%d)", ErrTypeCapReached, s.typeCap)
	}

	_, err = tx.Exec(`
		INSERT INTO trip_types (id, name, builtin, one_off) VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.Builtin, t.OneOff,
	)
	if err != nil {
		return fmt.Errorf("inserting trip type %s: %w", t.ID, err)
	}
	return tx.Commit()
}

// RenameTripType updates the display name. The id never changes.
func (s *Store) RenameTripType(id, name string) error {
	res, err := s.Exec(`UPDATE trip_types SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("renaming trip type %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("trip type %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTripType removes a trip type. Builtin types are protected.
func (s *Store) DeleteTripType(id string) error {
	t, err := s.GetTripType(id)
	if err != nil {
		return err
	}
	if t.Builtin {
		return fmt.Errorf("trip type %s: %w", id, ErrBuiltinType)
	}
	_, err = s.Exec(`DELETE FROM trip_types WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting trip type %s: %w", id, err)
	}
	return nil
}

// GetTripType loads a single trip type by id.
func (s *Store) GetTripType(id string) (trip.Type, error) {
	var t trip.Type
	err := s.QueryRow(
		`SELECT id, name, builtin, one_off FROM trip_types WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Builtin, &t.OneOff)
	if errors.Is(err, sql.ErrNoRows) {
		return trip.Type{}, fmt.Errorf("trip type %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return trip.Type{}, fmt.Errorf("loading trip type %s: %w", id, err)
	}
	return t, nil
}

// ListTripTypes returns all trip types ordered by name.
func (s *Store) ListTripTypes() ([]trip.Type, error) {
	rows, err := s.Query(`SELECT id, name, builtin, one_off FROM trip_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing trip types: %w", err)
	}
	defer rows.Close()

	var types []trip.Type
	for rows.Next() {
		var t trip.Type
		if err := rows.Scan(&t.ID, &t.Name, &t.Builtin, &t.OneOff); err != nil {
			return nil, fmt.Errorf("scanning trip type row: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// EnsureTripType inserts the type if its id is not present yet. Used to seed
// the builtin defaults and during backup restore.
func (s *Store) EnsureTripType(t trip.Type) error {
	_, err := s.Exec(`
		INSERT INTO trip_types (id, name, builtin, one_off) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		t.ID, t.Name, t.Builtin, t.OneOff,
	)
	if err != nil {
		return fmt.Errorf("ensuring trip type %s: %w", t.ID, err)
	}
	return nil
}
