package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"sales-dashboard/models"
)

// ErrInvalidDimension is returned for unknown dimensions or values that do
// not fit the dimension's declared type.
var ErrInvalidDimension = errors.New("invalid filter dimension")

// Dimension is one filterable attribute of a sale.
type Dimension string

const (
	DimYear             Dimension = "year"
	DimCity             Dimension = "city"
	DimNewConstruction  Dimension = "newConstruction"
	DimInsideCityLimits Dimension = "insideCityLimits"
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{DimYear, DimCity, DimNewConstruction, DimInsideCityLimits}

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDimension, s)
}

// Numeric reports whether values of the dimension are compared as integers.
func (d Dimension) Numeric() bool {
	return d == DimYear
}

func (d Dimension) text(s models.Sale) string {
	switch d {
	case DimCity:
		return s.City
	case DimNewConstruction:
		return s.NewConstruction
	case DimInsideCityLimits:
		return s.InsideCityLimits
	}
	return ""
}

// FilterState holds, per dimension, the set of allowed values and the set of
// values observed in the current record set. A sale is visible only when its
// value is allowed on every dimension.
type FilterState struct {
	years        map[int]struct{}
	text         map[Dimension]map[string]struct{}
	observedYear map[int]struct{}
	observedText map[Dimension]map[string]struct{}
}

// NewFilterState returns a state with every dimension empty.
func NewFilterState() *FilterState {
	f := &FilterState{}
	f.init()
	return f
}

func (f *FilterState) init() {
	f.years = map[int]struct{}{}
	f.observedYear = map[int]struct{}{}
	f.text = map[Dimension]map[string]struct{}{}
	f.observedText = map[Dimension]map[string]struct{}{}
	for _, d := range Dimensions {
		if !d.Numeric() {
			f.text[d] = map[string]struct{}{}
			f.observedText[d] = map[string]struct{}{}
		}
	}
}

// ResetToAll selects every observed value on every dimension. New
// construction always offers both Yes and No.
func (f *FilterState) ResetToAll(sales []models.Sale) {
	f.init()
	for _, s := range sales {
		f.observedYear[s.Year] = struct{}{}
		f.years[s.Year] = struct{}{}
		for _, d := range []Dimension{DimCity, DimInsideCityLimits} {
			v := d.text(s)
			f.observedText[d][v] = struct{}{}
			f.text[d][v] = struct{}{}
		}
	}
	for _, v := range []string{models.Yes, models.No} {
		f.observedText[DimNewConstruction][v] = struct{}{}
		f.text[DimNewConstruction][v] = struct{}{}
	}
}

// Toggle adds or removes value from the allowed set of dim. The value is
// interpreted using the dimension's declared type.
func (f *FilterState) Toggle(dim Dimension, value string, included bool) error {
	if dim.Numeric() {
		year, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s value %q is not an integer", ErrInvalidDimension, dim, value)
		}
		if included {
			f.years[year] = struct{}{}
		} else {
			delete(f.years, year)
		}
		return nil
	}

	set, ok := f.text[dim]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDimension, dim)
	}
	if included {
		set[value] = struct{}{}
	} else {
		delete(set, value)
	}
	return nil
}

// Clear empties the allowed set of dim, hiding every sale until values are
// selected again.
func (f *FilterState) Clear(dim Dimension) error {
	if dim.Numeric() {
		f.years = map[int]struct{}{}
		return nil
	}
	if _, ok := f.text[dim]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDimension, dim)
	}
	f.text[dim] = map[string]struct{}{}
	return nil
}

// Allows reports whether s passes all four dimensions.
func (f *FilterState) Allows(s models.Sale) bool {
	if _, ok := f.years[s.Year]; !ok {
		return false
	}
	for _, d := range []Dimension{DimCity, DimNewConstruction, DimInsideCityLimits} {
		if _, ok := f.text[d][d.text(s)]; !ok {
			return false
		}
	}
	return true
}

// Apply returns the sales allowed by the state, in input order.
func (f *FilterState) Apply(sales []models.Sale) []models.Sale {
	out := make([]models.Sale, 0, len(sales))
	for _, s := range sales {
		if f.Allows(s) {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns an independent copy of the state.
func (f *FilterState) Clone() *FilterState {
	c := NewFilterState()
	for y := range f.years {
		c.years[y] = struct{}{}
	}
	for y := range f.observedYear {
		c.observedYear[y] = struct{}{}
	}
	for d, set := range f.text {
		for v := range set {
			c.text[d][v] = struct{}{}
		}
	}
	for d, set := range f.observedText {
		for v := range set {
			c.observedText[d][v] = struct{}{}
		}
	}
	return c
}

// FilterOption is one selectable value of a dimension.
type FilterOption struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// Options lists the observed values of every dimension with their selection
// flag. Years sort numerically, text values alphabetically.
func (f *FilterState) Options() map[Dimension][]FilterOption {
	out := make(map[Dimension][]FilterOption, len(Dimensions))

	years := make([]int, 0, len(f.observedYear))
	for y := range f.observedYear {
		years = append(years, y)
	}
	sort.Ints(years)
	yearOpts := make([]FilterOption, 0, len(years))
	for _, y := range years {
		_, sel := f.years[y]
		yearOpts = append(yearOpts, FilterOption{Value: strconv.Itoa(y), Selected: sel})
	}
	out[DimYear] = yearOpts

	for d, observed := range f.observedText {
		values := make([]string, 0, len(observed))
		for v := range observed {
			values = append(values, v)
		}
		sort.Strings(values)
		opts := make([]FilterOption, 0, len(values))
		for _, v := range values {
			_, sel := f.text[d][v]
			opts = append(opts, FilterOption{Value: v, Selected: sel})
		}
		out[d] = opts
	}
	return out
}
