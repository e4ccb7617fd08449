package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sales-dashboard/models"
)

func tempStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "sales.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func doc(id, address string, date time.Time, price float64, sqft int) Document {
	return Document{ID: id, Fields: models.Row{
		"address":          address,
		"date":             date,
		"price":            price,
		"pricePerSqFt":     price / 1000,
		"sqFt":             sqft,
		"daysOnMarket":     12,
		"beds":             3,
		"baths":            2.5,
		"city":             "Austin",
		"subdivision":      "Mueller",
		"year":             date.Year(),
		"newConstruction":  "No",
		"insideCityLimits": "Yes",
		"fingerprint":      id,
	}}
}

func TestOpenSQLiteStoreCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sales.db")
	store, err := OpenSQLiteStore(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}

	docs, err := store.QueryAll(context.Background(), "sales", OrderBy{Field: "date", Desc: true})
	if err != nil {
		t.Fatalf("QueryAll on empty db: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected 0 documents, got %d", len(docs))
	}
}

func TestBatchUpsertRoundTrip(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	older := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
	err := store.BatchUpsert(ctx, "sales", []Document{
		doc("a", "1 Main St", older, 150000, 1200),
		doc("b", "2 Oak Ave", newer, 300000, 2000),
	})
	if err != nil {
		t.Fatalf("BatchUpsert: %v", err)
	}

	docs, err := store.QueryAll(ctx, "sales", OrderBy{Field: "date", Desc: true})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "b" {
		t.Errorf("first document: got %q, want most recent %q", docs[0].ID, "b")
	}

	f := docs[0].Fields
	if got := f["date"].(time.Time); !got.Equal(newer) {
		t.Errorf("date: got %v, want %v", got, newer)
	}
	if f["price"] != 300000.0 {
		t.Errorf("price: got %v, want 300000", f["price"])
	}
	if f["sqFt"] != 2000 {
		t.Errorf("sqFt: got %v, want 2000", f["sqFt"])
	}
	if f["baths"] != 2.5 {
		t.Errorf("baths: got %v, want 2.5", f["baths"])
	}
	if f["insideCityLimits"] != "Yes" {
		t.Errorf("insideCityLimits: got %v, want Yes", f["insideCityLimits"])
	}
}

func TestBatchUpsertOverwritesSameID(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()
	date := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)

	if err := store.BatchUpsert(ctx, "sales", []Document{doc("same", "1 Main St", date, 200000, 1000)}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.BatchUpsert(ctx, "sales", []Document{doc("same", "1 Main St", date, 200000, 1800)}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	docs, err := store.QueryAll(ctx, "sales", OrderBy{Field: "date"})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Fields["sqFt"] != 1800 {
		t.Errorf("sqFt: got %v, want the later 1800", docs[0].Fields["sqFt"])
	}
}

func TestBatchUpsertSameIDWithinBatchLastWins(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()
	date := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)

	err := store.BatchUpsert(ctx, "sales", []Document{
		doc("dup", "1 Main St", date, 200000, 1000),
		doc("dup", "1 Main St", date, 200000, 1500),
	})
	if err != nil {
		t.Fatalf("BatchUpsert: %v", err)
	}

	docs, _ := store.QueryAll(ctx, "sales", OrderBy{})
	if len(docs) != 1 || docs[0].Fields["sqFt"] != 1500 {
		t.Fatalf("expected single document with sqFt 1500, got %+v", docs)
	}
}

func TestBatchUpsertIsAtomic(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()
	date := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)

	bad := doc("bad", "2 Oak Ave", date, 100000, 900)
	bad.Fields["price"] = "not a number"

	err := store.BatchUpsert(ctx, "sales", []Document{doc("good", "1 Main St", date, 200000, 1000), bad})
	if err == nil {
		t.Fatal("expected error for bad field type")
	}

	docs, err := store.QueryAll(ctx, "sales", OrderBy{})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected rollback to leave 0 documents, got %d", len(docs))
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()
	date := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)

	if err := store.BatchUpsert(ctx, "sales", []Document{doc("a", "1 Main St", date, 1, 1)}); err != nil {
		t.Fatalf("BatchUpsert: %v", err)
	}
	docs, err := store.QueryAll(ctx, "archive", OrderBy{})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty archive collection, got %d", len(docs))
	}
}

func TestQueryAllRejectsUnknownOrderField(t *testing.T) {
	store := tempStore(t)
	if _, err := store.QueryAll(context.Background(), "sales", OrderBy{Field: "price; DROP TABLE x"}); err == nil {
		t.Fatal("expected error for unknown order field")
	}
}
