package trip

// Settings are the user-tunable scalar preferences persisted alongside trip
// history. Each field is independently loadable and saveable; unparseable
// stored values fall back to these defaults rather than failing.
type Settings struct {
	SpeedLimitKMH    float64
	KeepScreenOn     bool
	LocationOrdering bool // order trip types by location relevance

	MotionEnabled   bool
	LocationEnabled bool
	AudioEnabled    bool
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		SpeedLimitKMH:    80,
		KeepScreenOn:     false,
		LocationOrdering: true,
		MotionEnabled:    true,
		LocationEnabled:  true,
		AudioEnabled:     false,
	}
}
