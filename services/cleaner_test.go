package services

import (
	"errors"
	"testing"
	"time"

	"sales-dashboard/models"
	"sales-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func TestCleanerNormalizeSpreadsheetRow(t *testing.T) {
	c := NewCleaner(newTestLogger())
	row := models.Row{
		"Address":            "  1  Main St ",
		"Closed Date":        "2022-05-01",
		"Price":              "$200,000",
		"Price Per SqFt":     "$133.33",
		"SqFt":               "1,500",
		"Days on Market":     "21",
		"Beds":               "3",
		"Baths":              "2.5",
		"City":               "Austin",
		"Subdivision":        "Mueller",
		"New Construction":   "Y",
		"Inside City Limits": "n",
	}

	s, err := c.Normalize(row)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.Address != "1 Main St" {
		t.Errorf("Address: got %q", s.Address)
	}
	if s.Price != 200000 || s.PricePerSqFt != 133.33 {
		t.Errorf("Price/PPSF: got %v/%v", s.Price, s.PricePerSqFt)
	}
	if s.SqFt != 1500 || s.DaysOnMarket != 21 || s.Beds != 3 || s.Baths != 2.5 {
		t.Errorf("counts: got %+v", s)
	}
	if s.Year != 2022 {
		t.Errorf("Year: got %d, want 2022", s.Year)
	}
	if s.NewConstruction != "Yes" || s.InsideCityLimits != "No" {
		t.Errorf("flags: got %q/%q", s.NewConstruction, s.InsideCityLimits)
	}
	want := Fingerprint(time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC), "1 Main St", 200000)
	if s.Fingerprint != want {
		t.Errorf("Fingerprint: got %q, want %q", s.Fingerprint, want)
	}
}

func TestCleanerNormalizeStoreRow(t *testing.T) {
	c := NewCleaner(newTestLogger())
	date := time.Date(2023, 7, 9, 0, 0, 0, 0, time.UTC)
	row := models.Row{
		"address":      "9 Elm Rd",
		"date":         fakeTimestamp{date},
		"price":        410000.0,
		"pricePerSqFt": 205.0,
		"sqFt":         2000,
		"daysOnMarket": 4,
	}

	s, err := c.Normalize(row)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !s.Date.Equal(date) || s.Price != 410000 || s.SqFt != 2000 {
		t.Errorf("got %+v", s)
	}
	if s.City != "Unknown" {
		t.Errorf("City default: got %q, want Unknown", s.City)
	}
	if s.NewConstruction != "No" || s.InsideCityLimits != "Unknown" {
		t.Errorf("flag defaults: got %q/%q", s.NewConstruction, s.InsideCityLimits)
	}
	if s.Subdivision != "" {
		t.Errorf("Subdivision default: got %q", s.Subdivision)
	}
}

func TestCleanerRejects(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		name string
		row  models.Row
		want error
	}{
		{"missing date", models.Row{"Price": "$100"}, ErrInvalidDate},
		{"bad date", models.Row{"Closed Date": "soon", "Price": "$100"}, ErrInvalidDate},
		{"zero price", models.Row{"Closed Date": "2022-05-01", "Price": "$0"}, ErrInvalidPrice},
		{"negative price", models.Row{"Closed Date": "2022-05-01", "Price": -5.0}, ErrInvalidPrice},
		{"text price", models.Row{"Closed Date": "2022-05-01", "Price": "TBD"}, ErrInvalidPrice},
		{"missing price", models.Row{"Closed Date": "2022-05-01"}, ErrInvalidPrice},
		{"year 2000", models.Row{"Closed Date": "2000-12-31", "Price": "$100"}, ErrTooOld},
		{"bad date checked before price", models.Row{"Closed Date": "x", "Price": "x"}, ErrInvalidDate},
	}

	for _, tt := range tests {
		_, err := c.Normalize(tt.row)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestCleanerYearBoundary(t *testing.T) {
	c := NewCleaner(newTestLogger())

	if _, err := c.Normalize(models.Row{"Closed Date": "2001-01-01", "Price": "1"}); err != nil {
		t.Errorf("year 2001 should be retained, got %v", err)
	}
	if _, err := c.Normalize(models.Row{"Closed Date": "2000-06-15", "Price": "1"}); !errors.Is(err, ErrTooOld) {
		t.Errorf("year 2000 should be rejected, got %v", err)
	}
}

func TestCleanerDeduplicatesIdenticalRows(t *testing.T) {
	c := NewCleaner(newTestLogger())
	rows := []models.Row{
		{"Address": "1 Main St", "Closed Date": "2022-05-01", "Price": "$200,000"},
		{"Address": "1 Main St", "Closed Date": "2022-05-01", "Price": "$200,000"},
	}

	cleaned, stats := c.Clean(rows)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 sale after deduplication, got %d", len(cleaned))
	}
	if cleaned[0].Price != 200000 || cleaned[0].Year != 2022 {
		t.Errorf("got price %v year %d", cleaned[0].Price, cleaned[0].Year)
	}
	if stats.Duplicates != 1 || stats.Retained != 1 || stats.Input != 2 {
		t.Errorf("stats: got %+v", stats)
	}
}

func TestCleanerCountsDrops(t *testing.T) {
	c := NewCleaner(newTestLogger())
	rows := []models.Row{
		{"Closed Date": "bad", "Price": "$1"},
		{"Closed Date": "2022-01-01", "Price": "free"},
		{"Closed Date": "1999-01-01", "Price": "$1"},
		{"Closed Date": "2022-01-01", "Price": "$1", "Address": "A"},
	}

	cleaned, stats := c.Clean(rows)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 retained sale, got %d", len(cleaned))
	}
	if stats.BadDate != 1 || stats.BadPrice != 1 || stats.TooOld != 1 {
		t.Errorf("stats: got %+v", stats)
	}
}
