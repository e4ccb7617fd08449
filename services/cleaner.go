package services

import (
	"errors"
	"math"
	"strings"
	"unicode"

	"sales-dashboard/models"
	"sales-dashboard/utils"
)

// Rejection reasons returned by Normalize.
var (
	ErrInvalidDate  = errors.New("date is missing or unparsable")
	ErrInvalidPrice = errors.New("price is not a positive number")
	ErrTooOld       = errors.New("sale year is not after 2000")
)

const minSaleYear = 2001

// CleanStats counts what happened to the input rows of one Clean call.
type CleanStats struct {
	Input      int `json:"input"`
	BadDate    int `json:"badDate"`
	BadPrice   int `json:"badPrice"`
	TooOld     int `json:"tooOld"`
	Duplicates int `json:"duplicates"`
	Retained   int `json:"retained"`
}

// Cleaner transforms raw rows from either source into canonical sales.
type Cleaner struct {
	logger  *utils.Logger
	aliases AliasTable
}

// NewCleaner creates a Cleaner using the default alias table.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return NewCleanerWithAliases(logger, DefaultAliases())
}

// NewCleanerWithAliases creates a Cleaner with a custom alias table.
func NewCleanerWithAliases(logger *utils.Logger, aliases AliasTable) *Cleaner {
	return &Cleaner{logger: logger, aliases: aliases}
}

// Normalize maps one raw row to a Sale, or returns the reason it was rejected.
// The date is checked first, then the price, then the year.
func (c *Cleaner) Normalize(row models.Row) (models.Sale, error) {
	rawDate, _ := c.aliases.Lookup(row, FieldDate)
	date, ok := ToDate(rawDate)
	if !ok {
		return models.Sale{}, ErrInvalidDate
	}

	rawPrice, _ := c.aliases.Lookup(row, FieldPrice)
	price := ToPrice(rawPrice)
	if !(price > 0) {
		return models.Sale{}, ErrInvalidPrice
	}

	if date.Year() < minSaleYear {
		return models.Sale{}, ErrTooOld
	}

	address := normaliseText(c.text(row, FieldAddress))
	city := normaliseText(c.text(row, FieldCity))
	if city == "" {
		city = models.Unknown
	}

	sale := models.Sale{
		Address:          address,
		Date:             date,
		Price:            price,
		PricePerSqFt:     c.count(row, FieldPricePerSqFt),
		SqFt:             int(math.Round(c.count(row, FieldSqFt))),
		DaysOnMarket:     int(math.Round(c.count(row, FieldDaysOnMarket))),
		Beds:             int(math.Round(c.count(row, FieldBeds))),
		Baths:            c.count(row, FieldBaths),
		City:             city,
		Subdivision:      normaliseText(c.text(row, FieldSubdivision)),
		Year:             date.Year(),
		NewConstruction:  ToYesNo(c.value(row, FieldNewConstruction)),
		InsideCityLimits: ToCityLimits(c.value(row, FieldInsideCityLimits)),
	}
	sale.Fingerprint = Fingerprint(sale.Date, sale.Address, sale.Price)
	return sale, nil
}

// NormalizeAll normalizes rows in order, dropping rejects. Duplicates are kept.
func (c *Cleaner) NormalizeAll(rows []models.Row) ([]models.Sale, CleanStats) {
	stats := CleanStats{Input: len(rows)}
	out := make([]models.Sale, 0, len(rows))

	for i, r := range rows {
		sale, err := c.Normalize(r)
		switch {
		case errors.Is(err, ErrInvalidDate):
			stats.BadDate++
		case errors.Is(err, ErrInvalidPrice):
			stats.BadPrice++
		case errors.Is(err, ErrTooOld):
			stats.TooOld++
		}
		if err != nil {
			c.logger.Debug("[cleaner] Dropping row %d: %v", i, err)
			continue
		}
		out = append(out, sale)
	}

	stats.Retained = len(out)
	return out, stats
}

// Clean normalizes rows and removes duplicate fingerprints, keeping the first
// occurrence in input order.
func (c *Cleaner) Clean(rows []models.Row) ([]models.Sale, CleanStats) {
	sales, stats := c.NormalizeAll(rows)
	deduped := Dedupe(sales)
	stats.Duplicates = len(sales) - len(deduped)
	stats.Retained = len(deduped)

	c.logger.Info("[cleaner] Cleaned %d → %d sales (bad date %d, bad price %d, too old %d, duplicates %d)",
		stats.Input, stats.Retained, stats.BadDate, stats.BadPrice, stats.TooOld, stats.Duplicates)
	return deduped, stats
}

func (c *Cleaner) value(row models.Row, f Field) any {
	v, _ := c.aliases.Lookup(row, f)
	return v
}

func (c *Cleaner) text(row models.Row, f Field) string {
	return toText(c.value(row, f))
}

func (c *Cleaner) count(row models.Row, f Field) float64 {
	return toCount(c.value(row, f))
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
