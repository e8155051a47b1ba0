package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/banshee-data/commute.report/internal/monitoring"
	"github.com/banshee-data/commute.report/internal/trip"
)

// Setting keys. Values are stored as text; each typed accessor falls back to
// its default when the stored value is missing or unparseable.
const (
	settingSpeedLimit       = "speed_limit_kmh"
	settingKeepScreenOn     = "keep_screen_on"
	settingLocationOrdering = "location_ordering"
	settingMotionEnabled    = "motion_enabled"
	settingLocationEnabled  = "location_enabled"
	settingAudioEnabled     = "audio_enabled"
)

func (s *Store) getSetting(key string) (string, bool) {
	var value string
	err := s.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		monitoring.Logf("reading setting %s: %v", key, err)
		return "", false
	}
	return value, true
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) floatSetting(key string, fallback float64) float64 {
	raw, ok := s.getSetting(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		monitoring.Logf("setting %s has unparseable value %q, using default", key, raw)
		return fallback
	}
	return v
}

func (s *Store) boolSetting(key string, fallback bool) bool {
	raw, ok := s.getSetting(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		monitoring.Logf("setting %s has unparseable value %q, using default", key, raw)
		return fallback
	}
	return v
}

// SpeedLimitKMH returns the configured speed alert threshold.
func (s *Store) SpeedLimitKMH() float64 {
	return s.floatSetting(settingSpeedLimit, trip.DefaultSettings().SpeedLimitKMH)
}

// SetSpeedLimitKMH stores the speed alert threshold.
func (s *Store) SetSpeedLimitKMH(v float64) error {
	return s.setSetting(settingSpeedLimit, strconv.FormatFloat(v, 'f', -1, 64))
}

// LoadSettings assembles the full settings struct, applying the defaults for
// anything missing or unparseable.
func (s *Store) LoadSettings() trip.Settings {
	def := trip.DefaultSettings()
	return trip.Settings{
		SpeedLimitKMH:    s.floatSetting(settingSpeedLimit, def.SpeedLimitKMH),
		KeepScreenOn:     s.boolSetting(settingKeepScreenOn, def.KeepScreenOn),
		LocationOrdering: s.boolSetting(settingLocationOrdering, def.LocationOrdering),
		MotionEnabled:    s.boolSetting(settingMotionEnabled, def.MotionEnabled),
		LocationEnabled:  s.boolSetting(settingLocationEnabled, def.LocationEnabled),
		AudioEnabled:     s.boolSetting(settingAudioEnabled, def.AudioEnabled),
	}
}

// SaveSettings persists every field of the settings struct.
func (s *Store) SaveSettings(settings trip.Settings) error {
	values := map[string]string{
		settingSpeedLimit:       strconv.FormatFloat(settings.SpeedLimitKMH, 'f', -1, 64),
		settingKeepScreenOn:     strconv.FormatBool(settings.KeepScreenOn),
		settingLocationOrdering: strconv.FormatBool(settings.LocationOrdering),
		settingMotionEnabled:    strconv.FormatBool(settings.MotionEnabled),
		settingLocationEnabled:  strconv.FormatBool(settings.LocationEnabled),
		settingAudioEnabled:     strconv.FormatBool(settings.AudioEnabled),
	}
	for key, value := range values {
		if err := s.setSetting(key, value); err != nil {
			return err
		}
	}
	return nil
}
