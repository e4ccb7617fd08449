package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"sales-dashboard/models"
)

// Field names a canonical Sale attribute that can be read from a raw row.
type Field string

const (
	FieldAddress          Field = "address"
	FieldDate             Field = "date"
	FieldPrice            Field = "price"
	FieldPricePerSqFt     Field = "pricePerSqFt"
	FieldSqFt             Field = "sqFt"
	FieldDaysOnMarket     Field = "daysOnMarket"
	FieldBeds             Field = "beds"
	FieldBaths            Field = "baths"
	FieldCity             Field = "city"
	FieldSubdivision      Field = "subdivision"
	FieldNewConstruction  Field = "newConstruction"
	FieldInsideCityLimits Field = "insideCityLimits"
)

// AliasTable lists, per canonical field, the source keys that may carry it.
// Keys are tried in order; the first present, non-empty value wins.
type AliasTable map[Field][]string

// DefaultAliases covers the document store's camelCase keys followed by the
// spreadsheet export's column headers.
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldAddress:          {"address", "Address", "Full Address", "Street Address"},
		FieldDate:             {"date", "Closed Date", "Close Date", "Sold Date", "Date"},
		FieldPrice:            {"price", "Price", "Close Price", "Sold Price", "Sale Price"},
		FieldPricePerSqFt:     {"pricePerSqFt", "Price Per SqFt", "Price/SqFt", "$/SqFt", "PPSF"},
		FieldSqFt:             {"sqFt", "SqFt", "Sq Ft", "Square Feet", "Total SqFt"},
		FieldDaysOnMarket:     {"daysOnMarket", "Days On Market", "Days on Market", "DOM", "CDOM"},
		FieldBeds:             {"beds", "Beds", "Bedrooms", "Total Bedrooms"},
		FieldBaths:            {"baths", "Baths", "Bathrooms", "Total Baths"},
		FieldCity:             {"city", "City"},
		FieldSubdivision:      {"subdivision", "Subdivision", "Subdivision Name"},
		FieldNewConstruction:  {"newConstruction", "New Construction", "New Construction YN"},
		FieldInsideCityLimits: {"insideCityLimits", "Inside City Limits", "In City Limits", "City Limits"},
	}
}

// LoadAliases reads additional aliases from a YAML file shaped like
//
//	price: ["Closing Price", "Final Price"]
//
// and appends them after the defaults. Unknown field names are rejected.
func LoadAliases(path string) (AliasTable, error) {
	table := DefaultAliases()
	if strings.TrimSpace(path) == "" {
		return table, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases file: %w", err)
	}

	var extra map[string][]string
	if err := yaml.Unmarshal(raw, &extra); err != nil {
		return nil, fmt.Errorf("parse aliases file %s: %w", path, err)
	}

	for name, keys := range extra {
		field := Field(name)
		if _, known := table[field]; !known {
			return nil, fmt.Errorf("aliases file %s: unknown field %q", path, name)
		}
		table[field] = append(table[field], keys...)
	}
	return table, nil
}

// Lookup returns the first usable value for field. Exact key matches are
// preferred; a case- and space-insensitive match is the fallback.
func (t AliasTable) Lookup(row models.Row, field Field) (any, bool) {
	keys := t[field]
	for _, k := range keys {
		if v, ok := row[k]; ok && present(v) {
			return v, true
		}
	}

	for _, k := range keys {
		want := foldKey(k)
		for rk, v := range row {
			if foldKey(rk) == want && present(v) {
				return v, true
			}
		}
	}
	return nil, false
}

func foldKey(k string) string {
	return strings.ToLower(strings.Join(strings.Fields(k), " "))
}

func present(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(s) != ""
	}
	return true
}
