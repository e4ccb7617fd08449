package services

import (
	"reflect"
	"testing"
	"time"

	"sales-dashboard/models"
)

func TestFingerprintFormat(t *testing.T) {
	date := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
	got := Fingerprint(date, "  1 Main St ", 200000)
	want := "1651363200000|1 main st|200000"
	if got != want {
		t.Errorf("Fingerprint: got %q, want %q", got, want)
	}
}

func TestFingerprintIgnoresOtherFields(t *testing.T) {
	c := NewCleaner(newTestLogger())
	a, err := c.Normalize(models.Row{"Address": "1 Main St", "Closed Date": "2022-05-01", "Price": "$200,000", "SqFt": "1000", "City": "Austin"})
	if err != nil {
		t.Fatalf("Normalize a: %v", err)
	}
	b, err := c.Normalize(models.Row{"address": "1 MAIN ST", "date": "2022-05-01", "price": 200000, "sqFt": 2400})
	if err != nil {
		t.Fatalf("Normalize b: %v", err)
	}
	if a.Fingerprint != b.Fingerprint {
		t.Errorf("fingerprints differ: %q vs %q", a.Fingerprint, b.Fingerprint)
	}
}

func TestDocumentIDReplacesPathSeparators(t *testing.T) {
	got := DocumentID("1651363200000|12/B main st|200000")
	want := "1651363200000|12_B main st|200000"
	if got != want {
		t.Errorf("DocumentID: got %q, want %q", got, want)
	}
}

func TestDedupeKeepsFirstInOrder(t *testing.T) {
	sales := []models.Sale{
		{Fingerprint: "a", SqFt: 1},
		{Fingerprint: "b", SqFt: 2},
		{Fingerprint: "a", SqFt: 3},
		{Fingerprint: "c", SqFt: 4},
	}

	got := Dedupe(sales)
	if len(got) != 3 {
		t.Fatalf("expected 3 sales, got %d", len(got))
	}
	if got[0].SqFt != 1 || got[1].Fingerprint != "b" || got[2].Fingerprint != "c" {
		t.Errorf("unexpected order or winner: %+v", got)
	}
}

func TestDedupeIsIdempotent(t *testing.T) {
	sales := []models.Sale{
		{Fingerprint: "x"}, {Fingerprint: "y"}, {Fingerprint: "x"}, {Fingerprint: "z"}, {Fingerprint: "y"},
	}
	once := Dedupe(sales)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedupe not idempotent: %+v vs %+v", once, twice)
	}
}
