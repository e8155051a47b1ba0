package codec

import (
	"encoding/json"
	"fmt"
)

// legacyRecordKeys maps field names found in older exports to their current
// names. Migration renames only; the value is passed through untouched and
// parsed by the flexible decoders.
var legacyRecordKeys = map[string]string{
	"carHornEvents":   "hornEvents",
	"policeCarEvents": "sirenEvents",
	"tripTypeID":      "tripTypeId",
	"startDate":       "start",
	"endDate":         "end",
	"routePoints":     "path",
	"heavyTraffic":    "trafficPeriods",
}

// migrateRecord rewrites a raw record document to the current schema:
// legacy keys are renamed and nothing else is touched. A current key always
// wins over its legacy alias if both are present.
func migrateRecord(data []byte) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("migrating trip record: %w", err)
	}
	migrateKeys(raw, legacyRecordKeys)
	return json.Marshal(raw)
}

func migrateKeys(raw map[string]json.RawMessage, aliases map[string]string) {
	for legacy, current := range aliases {
		val, ok := raw[legacy]
		if !ok {
			continue
		}
		delete(raw, legacy)
		if _, exists := raw[current]; !exists {
			raw[current] = val
		}
	}
}
