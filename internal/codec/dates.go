// Package codec serializes trip records, settings and backup envelopes to a
// structured JSON interchange format and a flat CSV format. Decoding
// tolerates older schema variants: legacy field names, missing optional
// fields and several historical date encodings. Schema migration is kept
// apart from the canonical model types so the core data structures have a
// single shape.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// epochMillisThreshold separates epoch-second from epoch-millisecond
// timestamps by magnitude: anything at or above this is milliseconds.
const epochMillisThreshold = 1e12

// textualDateLayouts are the accepted textual encodings, tried in order.
var textualDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

// FlexTime is a time.Time that decodes from any historical export format:
// epoch seconds, epoch milliseconds (auto-detected by magnitude) or one of
// several textual layouts. It always encodes as RFC3339.
type FlexTime time.Time

// Time returns the underlying time.Time.
func (t FlexTime) Time() time.Time { return time.Time(t) }

// MarshalJSON encodes the time as RFC3339.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

// UnmarshalJSON decodes any supported date representation.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}

	if s != "" && s[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		parsed, err := ParseFlexibleDate(text)
		if err != nil {
			return err
		}
		*t = FlexTime(parsed)
		return nil
	}

	// Numeric: epoch seconds or milliseconds.
	epoch, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("unsupported date value %s", s)
	}
	*t = FlexTime(EpochToTime(epoch))
	return nil
}

// EpochToTime converts a numeric epoch value to a time, treating large
// magnitudes as milliseconds.
func EpochToTime(epoch float64) time.Time {
	if epoch >= epochMillisThreshold || epoch <= -epochMillisThreshold {
		return time.UnixMilli(int64(epoch)).UTC()
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// ParseFlexibleDate parses a textual date in any accepted layout. Numeric
// strings are treated as epoch values.
func ParseFlexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if epoch, err := strconv.ParseFloat(s, 64); err == nil {
		return EpochToTime(epoch), nil
	}

	for _, layout := range textualDateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}
