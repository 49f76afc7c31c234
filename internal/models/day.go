package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/totoro/internal/cycle"
)

var ErrMalformedDay = errors.New("malformed stored day")

// Day is a calendar date stored as YYYY-MM-DD text, so it reads back as the
// same day regardless of the process time zone. The zero Day is stored as NULL.
type Day struct {
	time.Time
}

func NewDay(value time.Time) Day {
	return Day{Time: cycle.DateOnly(value)}
}

func (day Day) String() string {
	return cycle.FormatDay(day.Time)
}

func (day Day) Value() (driver.Value, error) {
	if day.IsZero() {
		return nil, nil
	}
	return day.String(), nil
}

func (day *Day) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		day.Time = time.Time{}
		return nil
	case string:
		return day.parse(value)
	case []byte:
		return day.parse(string(value))
	case time.Time:
		day.Time = cycle.DateOnly(value)
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrMalformedDay, src)
	}
}

func (day Day) MarshalJSON() ([]byte, error) {
	if day.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(day.String())
}

func (day *Day) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		day.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDay, err)
	}
	return day.parse(raw)
}

func (day *Day) parse(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		day.Time = time.Time{}
		return nil
	}
	// timestamps written by older builds keep their leading calendar date
	if len(raw) > len(cycle.DayLayout) {
		switch raw[len(cycle.DayLayout)] {
		case 'T', ' ':
			raw = raw[:len(cycle.DayLayout)]
		default:
			return fmt.Errorf("%w: %q", ErrMalformedDay, raw)
		}
	}
	parsed, err := cycle.ParseDay(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrMalformedDay, raw)
	}
	day.Time = parsed
	return nil
}
