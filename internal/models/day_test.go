package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDayValueKeepsCalendarDate(t *testing.T) {
	lateNight := time.Date(2024, time.January, 5, 23, 45, 0, 0, time.FixedZone("UTC-8", -8*3600))

	value, err := NewDay(lateNight).Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	if value != "2024-01-05" {
		t.Fatalf("expected stored value 2024-01-05, got %v", value)
	}

	var scanned Day
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if scanned.String() != "2024-01-05" {
		t.Fatalf("expected scanned day 2024-01-05, got %s", scanned.String())
	}
}

func TestDayZeroIsNull(t *testing.T) {
	value, err := Day{}.Value()
	if err != nil || value != nil {
		t.Fatalf("expected nil value for zero day, got %v (%v)", value, err)
	}

	var scanned Day
	if err := scanned.Scan(nil); err != nil || !scanned.IsZero() {
		t.Fatalf("expected NULL to scan as zero day, got %v (%v)", scanned, err)
	}
}

func TestDayScanAcceptsLegacyTimestamp(t *testing.T) {
	var scanned Day
	if err := scanned.Scan([]byte("2024-02-29T22:00:00-05:00")); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if scanned.String() != "2024-02-29" {
		t.Fatalf("expected 2024-02-29, got %s", scanned.String())
	}
}

func TestDayScanAcceptsSpaceSeparatedTimestamp(t *testing.T) {
	var scanned Day
	if err := scanned.Scan("2024-01-05 00:00:00+00:00"); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if scanned.String() != "2024-01-05" {
		t.Fatalf("expected 2024-01-05, got %s", scanned.String())
	}
}

func TestDayScanRejectsMalformedValue(t *testing.T) {
	var scanned Day
	for _, raw := range []string{"not-a-day", "2024-01-05garbage", "10000-01-17", "2024-01-051"} {
		if err := scanned.Scan(raw); !errors.Is(err, ErrMalformedDay) {
			t.Fatalf("expected ErrMalformedDay for %q, got %v", raw, err)
		}
	}
	if err := scanned.Scan(42); !errors.Is(err, ErrMalformedDay) {
		t.Fatalf("expected ErrMalformedDay for integer, got %v", err)
	}
}

func TestDayJSON(t *testing.T) {
	payload := struct {
		Start Day `json:"start"`
		End   Day `json:"end"`
	}{Start: NewDay(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))}

	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(encoded) != `{"start":"2024-03-01","end":null}` {
		t.Fatalf("unexpected json %s", encoded)
	}

	var decoded struct {
		Start Day `json:"start"`
	}
	if err := json.Unmarshal([]byte(`{"start":"2024-03-01"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded.Start.String() != "2024-03-01" {
		t.Fatalf("expected decoded 2024-03-01, got %s", decoded.Start.String())
	}
}
