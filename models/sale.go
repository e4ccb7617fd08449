package models

import "time"

// Row is one untyped input row as produced by the document store query or the
// spreadsheet parser. Key spelling differs between the two sources.
type Row map[string]any

// Yes/No/Unknown flag values carried by Sale.
const (
	Yes     = "Yes"
	No      = "No"
	Unknown = "Unknown"
)

// Sale is the normalized record every downstream stage operates on.
// It is never mutated after the normalizer creates it.
type Sale struct {
	Address          string    `json:"address"`
	Date             time.Time `json:"date"`
	Price            float64   `json:"price"`
	PricePerSqFt     float64   `json:"pricePerSqFt"`
	SqFt             int       `json:"sqFt"`
	DaysOnMarket     int       `json:"daysOnMarket"`
	Beds             int       `json:"beds"`
	Baths            float64   `json:"baths"`
	City             string    `json:"city"`
	Subdivision      string    `json:"subdivision"`
	Year             int       `json:"year"`
	NewConstruction  string    `json:"newConstruction"`
	InsideCityLimits string    `json:"insideCityLimits"`
	Fingerprint      string    `json:"fingerprint"`
}

// Fields returns the persisted shape of the sale, keyed the way the document
// store names them.
func (s Sale) Fields() Row {
	return Row{
		"address":          s.Address,
		"date":             s.Date,
		"price":            s.Price,
		"pricePerSqFt":     s.PricePerSqFt,
		"sqFt":             s.SqFt,
		"daysOnMarket":     s.DaysOnMarket,
		"beds":             s.Beds,
		"baths":            s.Baths,
		"city":             s.City,
		"subdivision":      s.Subdivision,
		"year":             s.Year,
		"newConstruction":  s.NewConstruction,
		"insideCityLimits": s.InsideCityLimits,
		"fingerprint":      s.Fingerprint,
	}
}

// KPIs holds the scalar values shown on the dashboard header.
type KPIs struct {
	Count              int     `json:"count"`
	TotalVolume        float64 `json:"totalVolume"`
	MedianPrice        float64 `json:"medianPrice"`
	MedianPPSF         float64 `json:"medianPpsf"`
	MedianDaysOnMarket float64 `json:"medianDaysOnMarket"`
}

// ChartSeries is what a chart surface consumes: parallel labels and values.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Series []float64 `json:"series"`
}

// Point is one labelled value of a grouped aggregation.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Bin is one non-empty histogram bucket, [Lower, Upper).
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Label string  `json:"label"`
	Count int     `json:"count"`
}

// Dashboard bundles every derived view over one filtered record set.
type Dashboard struct {
	KPIs        KPIs                   `json:"kpis"`
	Charts      map[string]ChartSeries `json:"charts"`
	ChartErrors map[string]string      `json:"chartErrors,omitempty"`
}
