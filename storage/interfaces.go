package storage

import (
	"context"

	"sales-dashboard/models"
)

// Document is one stored record: its identifier and its fields keyed by
// canonical field name.
type Document struct {
	ID     string
	Fields models.Row
}

// OrderBy selects the sort field of QueryAll.
type OrderBy struct {
	Field string
	Desc  bool
}

// DocumentStore is the interface any storage backend must satisfy.
type DocumentStore interface {
	// QueryAll returns every document of collection, sorted by order.
	QueryAll(ctx context.Context, collection string, order OrderBy) ([]Document, error)
	// BatchUpsert writes docs atomically: either all of them are stored, keyed
	// by ID and overwriting existing documents, or none are.
	BatchUpsert(ctx context.Context, collection string, docs []Document) error
	Close() error
}

// SaleWriter persists canonical sales outside the document store.
type SaleWriter interface {
	WriteSales(sales []models.Sale) error
	Close() error
}
