// Package timex contains a JSON-friendly duration wrapper used by the config
// layer.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration unmarshals either a string like "90s"/"24h" or a plain integer
// number of nanoseconds. It exists so config files can spell intervals
// naturally while the runtime config keeps time.Duration.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}
