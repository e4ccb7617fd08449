package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"sales-dashboard/models"
)

var csvHeader = []string{
	"date", "address", "city", "subdivision", "price", "price_per_sqft", "sqft",
	"beds", "baths", "days_on_market", "year", "new_construction", "inside_city_limits",
	"fingerprint",
}

// CSVWriter exports canonical sales to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteSales appends one row per sale.
func (c *CSVWriter) WriteSales(sales []models.Sale) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range sales {
		if err := c.writer.Write(SaleRecord(s)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// CSVHeader returns the export column names.
func CSVHeader() []string {
	return append([]string(nil), csvHeader...)
}

// SaleRecord renders a sale in export column order.
func SaleRecord(s models.Sale) []string {
	return []string{
		s.Date.Format(time.DateOnly),
		s.Address,
		s.City,
		s.Subdivision,
		formatFloat(s.Price),
		formatFloat(s.PricePerSqFt),
		strconv.Itoa(s.SqFt),
		strconv.Itoa(s.Beds),
		formatFloat(s.Baths),
		strconv.Itoa(s.DaysOnMarket),
		strconv.Itoa(s.Year),
		s.NewConstruction,
		s.InsideCityLimits,
		s.Fingerprint,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
