package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type columnKind int

const (
	kindText columnKind = iota
	kindReal
	kindInt
	kindTime
)

type column struct {
	name  string
	field string
	kind  columnKind
}

// saleColumns maps the persisted fields to table columns. Dates are stored
// as epoch milliseconds so both dialects sort and compare them identically.
var saleColumns = []column{
	{"address", "address", kindText},
	{"date_ms", "date", kindTime},
	{"price", "price", kindReal},
	{"price_per_sqft", "pricePerSqFt", kindReal},
	{"sqft", "sqFt", kindInt},
	{"days_on_market", "daysOnMarket", kindInt},
	{"beds", "beds", kindInt},
	{"baths", "baths", kindReal},
	{"city", "city", kindText},
	{"subdivision", "subdivision", kindText},
	{"year", "year", kindInt},
	{"new_construction", "newConstruction", kindText},
	{"inside_city_limits", "insideCityLimits", kindText},
	{"fingerprint", "fingerprint", kindText},
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sale_documents (
		collection         TEXT             NOT NULL,
		id                 TEXT             NOT NULL,
		address            TEXT             NOT NULL DEFAULT '',
		date_ms            BIGINT           NOT NULL,
		price              DOUBLE PRECISION NOT NULL DEFAULT 0,
		price_per_sqft     DOUBLE PRECISION NOT NULL DEFAULT 0,
		sqft               BIGINT           NOT NULL DEFAULT 0,
		days_on_market     BIGINT           NOT NULL DEFAULT 0,
		beds               BIGINT           NOT NULL DEFAULT 0,
		baths              DOUBLE PRECISION NOT NULL DEFAULT 0,
		city               TEXT             NOT NULL DEFAULT 'Unknown',
		subdivision        TEXT             NOT NULL DEFAULT '',
		year               BIGINT           NOT NULL DEFAULT 0,
		new_construction   TEXT             NOT NULL DEFAULT 'No',
		inside_city_limits TEXT             NOT NULL DEFAULT 'Unknown',
		fingerprint        TEXT             NOT NULL DEFAULT '',
		updated_at_ms      BIGINT           NOT NULL,
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_documents_date ON sale_documents(collection, date_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_documents_city ON sale_documents(collection, city)`,
}

// sqlStore implements DocumentStore over database/sql. The dialects differ
// only in bind placeholder syntax.
type sqlStore struct {
	db          *sql.DB
	placeholder func(n int) string
}

func (s *sqlStore) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqlStore) QueryAll(ctx context.Context, collection string, order OrderBy) ([]Document, error) {
	orderCol := "date_ms"
	if order.Field != "" {
		col, ok := columnForField(order.Field)
		if !ok {
			return nil, fmt.Errorf("query all: cannot order by unknown field %q", order.Field)
		}
		orderCol = col
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}

	names := make([]string, 0, len(saleColumns)+1)
	names = append(names, "id")
	for _, c := range saleColumns {
		names = append(names, c.name)
	}
	query := fmt.Sprintf("SELECT %s FROM sale_documents WHERE collection = %s ORDER BY %s %s, id",
		strings.Join(names, ", "), s.placeholder(1), orderCol, dir)

	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("query all: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("query all: scan row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query all: %w", err)
	}
	return docs, nil
}

func scanDocument(rows *sql.Rows) (Document, error) {
	var id string
	texts := make([]string, len(saleColumns))
	reals := make([]float64, len(saleColumns))
	ints := make([]int64, len(saleColumns))

	dest := make([]any, 0, len(saleColumns)+1)
	dest = append(dest, &id)
	for i, c := range saleColumns {
		switch c.kind {
		case kindText:
			dest = append(dest, &texts[i])
		case kindReal:
			dest = append(dest, &reals[i])
		default:
			dest = append(dest, &ints[i])
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return Document{}, err
	}

	fields := make(map[string]any, len(saleColumns))
	for i, c := range saleColumns {
		switch c.kind {
		case kindText:
			fields[c.field] = texts[i]
		case kindReal:
			fields[c.field] = reals[i]
		case kindInt:
			fields[c.field] = int(ints[i])
		case kindTime:
			fields[c.field] = time.UnixMilli(ints[i]).UTC()
		}
	}
	return Document{ID: id, Fields: fields}, nil
}

func (s *sqlStore) BatchUpsert(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("batch upsert: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.upsertSQL())
	if err != nil {
		return fmt.Errorf("batch upsert: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, d := range docs {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("batch upsert: document without id")
		}
		args, err := columnArgs(d)
		if err != nil {
			return fmt.Errorf("batch upsert %s: %w", d.ID, err)
		}
		args = append([]any{collection, d.ID}, args...)
		args = append(args, now)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("batch upsert %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("batch upsert: commit: %w", err)
	}
	return nil
}

func (s *sqlStore) upsertSQL() string {
	cols := []string{"collection", "id"}
	for _, c := range saleColumns {
		cols = append(cols, c.name)
	}
	cols = append(cols, "updated_at_ms")

	binds := make([]string, len(cols))
	for i := range cols {
		binds[i] = s.placeholder(i + 1)
	}

	updates := make([]string, 0, len(cols)-2)
	for _, c := range cols[2:] {
		updates = append(updates, c+" = excluded."+c)
	}

	return fmt.Sprintf(`INSERT INTO sale_documents (%s) VALUES (%s)
		ON CONFLICT (collection, id) DO UPDATE SET %s`,
		strings.Join(cols, ", "), strings.Join(binds, ", "), strings.Join(updates, ", "))
}

// columnArgs converts document fields to bind values in saleColumns order.
// Missing fields get the column's zero value.
func columnArgs(d Document) ([]any, error) {
	args := make([]any, 0, len(saleColumns))
	for _, c := range saleColumns {
		v := d.Fields[c.field]
		switch c.kind {
		case kindText:
			s, ok := v.(string)
			if v != nil && !ok {
				return nil, fmt.Errorf("field %s: expected text, got %T", c.field, v)
			}
			args = append(args, s)
		case kindReal:
			f, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("field %s: expected number, got %T", c.field, v)
			}
			args = append(args, f)
		case kindInt:
			f, ok := asFloat(v)
			if !ok {
				return nil, fmt.Errorf("field %s: expected number, got %T", c.field, v)
			}
			args = append(args, int64(f))
		case kindTime:
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("field %s: expected time, got %T", c.field, v)
			}
			args = append(args, t.UnixMilli())
		}
	}
	return args, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func columnForField(field string) (string, bool) {
	for _, c := range saleColumns {
		if c.field == field {
			return c.name, true
		}
	}
	return "", false
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
