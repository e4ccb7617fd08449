package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sales-dashboard/models"
	"sales-dashboard/utils"
)

// DefaultBinWidth is the price histogram bucket width in dollars.
const DefaultBinWidth = 50000

// Chart names used as keys of models.Dashboard.Charts.
const (
	ChartMonthlyTrend      = "monthlyTrend"
	ChartPriceDistribution = "priceDistribution"
	ChartCityMedians       = "cityMedians"
	ChartSalesByYear       = "salesByYear"
)

// Median sorts a copy of numbers and returns the middle value, or the mean of
// the two middle values for an even count. Empty input yields 0.
func Median(numbers []float64) float64 {
	n := len(numbers)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, numbers)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// TotalVolume sums the sale prices.
func TotalVolume(sales []models.Sale) float64 {
	var total float64
	for _, s := range sales {
		total += s.Price
	}
	return total
}

// GroupByMonth returns the median price per "YYYY-MM", ascending by month.
// Months without sales are absent.
func GroupByMonth(sales []models.Sale) []models.Point {
	prices := make(map[string][]float64)
	for _, s := range sales {
		key := fmt.Sprintf("%04d-%02d", s.Date.Year(), int(s.Date.Month()))
		prices[key] = append(prices[key], s.Price)
	}

	keys := make([]string, 0, len(prices))
	for k := range prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.Point, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.Point{Label: k, Value: Median(prices[k])})
	}
	return out
}

// PriceHistogram counts sales per price bucket floor(price/binWidth)*binWidth.
// Only non-empty buckets are returned, ascending by lower bound.
func PriceHistogram(sales []models.Sale, binWidth float64) []models.Bin {
	if !(binWidth > 0) {
		binWidth = DefaultBinWidth
	}

	counts := make(map[float64]int)
	for _, s := range sales {
		lower := math.Floor(s.Price/binWidth) * binWidth
		counts[lower]++
	}

	lowers := make([]float64, 0, len(counts))
	for l := range counts {
		lowers = append(lowers, l)
	}
	sort.Float64s(lowers)

	out := make([]models.Bin, 0, len(lowers))
	for _, l := range lowers {
		upper := l + binWidth
		out = append(out, models.Bin{
			Lower: l,
			Upper: upper,
			Label: compactAmount(l) + "-" + compactAmount(upper),
			Count: counts[l],
		})
	}
	return out
}

// GroupByCity returns the median price per city in order of first appearance.
func GroupByCity(sales []models.Sale) []models.Point {
	var order []string
	prices := make(map[string][]float64)
	for _, s := range sales {
		if _, ok := prices[s.City]; !ok {
			order = append(order, s.City)
		}
		prices[s.City] = append(prices[s.City], s.Price)
	}

	out := make([]models.Point, 0, len(order))
	for _, city := range order {
		out = append(out, models.Point{Label: city, Value: Median(prices[city])})
	}
	return out
}

// SalesByYear counts sales per calendar year, ascending.
func SalesByYear(sales []models.Sale) []models.Point {
	counts := make(map[int]int)
	for _, s := range sales {
		counts[s.Year]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]models.Point, 0, len(years))
	for _, y := range years {
		out = append(out, models.Point{Label: strconv.Itoa(y), Value: float64(counts[y])})
	}
	return out
}

// ComputeKPIs derives the headline numbers. Median price per square foot and
// median days on market ignore sales where the value is missing (zero).
func ComputeKPIs(sales []models.Sale) models.KPIs {
	prices := make([]float64, 0, len(sales))
	var ppsf, dom []float64
	for _, s := range sales {
		prices = append(prices, s.Price)
		if s.PricePerSqFt > 0 {
			ppsf = append(ppsf, s.PricePerSqFt)
		}
		if s.DaysOnMarket > 0 {
			dom = append(dom, float64(s.DaysOnMarket))
		}
	}
	return models.KPIs{
		Count:              len(sales),
		TotalVolume:        TotalVolume(sales),
		MedianPrice:        Median(prices),
		MedianPPSF:         Median(ppsf),
		MedianDaysOnMarket: Median(dom),
	}
}

// PointsSeries converts grouped points into chart input.
func PointsSeries(points []models.Point) models.ChartSeries {
	cs := models.ChartSeries{
		Labels: make([]string, 0, len(points)),
		Series: make([]float64, 0, len(points)),
	}
	for _, p := range points {
		cs.Labels = append(cs.Labels, p.Label)
		cs.Series = append(cs.Series, p.Value)
	}
	return cs
}

// BinsSeries converts histogram buckets into chart input.
func BinsSeries(bins []models.Bin) models.ChartSeries {
	cs := models.ChartSeries{
		Labels: make([]string, 0, len(bins)),
		Series: make([]float64, 0, len(bins)),
	}
	for _, b := range bins {
		cs.Labels = append(cs.Labels, b.Label)
		cs.Series = append(cs.Series, float64(b.Count))
	}
	return cs
}

// InsightService builds dashboard views over a sale set.
type InsightService struct {
	logger   *utils.Logger
	binWidth float64
	charts   []chartBuilder
}

func NewInsightService(logger *utils.Logger, binWidth float64) *InsightService {
	if !(binWidth > 0) {
		binWidth = DefaultBinWidth
	}
	s := &InsightService{logger: logger, binWidth: binWidth}
	s.charts = s.defaultCharts()
	return s
}

type chartBuilder struct {
	name  string
	build func([]models.Sale) models.ChartSeries
}

func (s *InsightService) defaultCharts() []chartBuilder {
	return []chartBuilder{
		{ChartMonthlyTrend, func(in []models.Sale) models.ChartSeries { return PointsSeries(GroupByMonth(in)) }},
		{ChartPriceDistribution, func(in []models.Sale) models.ChartSeries { return BinsSeries(PriceHistogram(in, s.binWidth)) }},
		{ChartCityMedians, func(in []models.Sale) models.ChartSeries { return PointsSeries(GroupByCity(in)) }},
		{ChartSalesByYear, func(in []models.Sale) models.ChartSeries { return PointsSeries(SalesByYear(in)) }},
	}
}

// Dashboard computes the KPIs and every chart. A chart that fails is recorded
// in ChartErrors and does not affect the others.
func (s *InsightService) Dashboard(sales []models.Sale) models.Dashboard {
	d := models.Dashboard{
		KPIs:   ComputeKPIs(sales),
		Charts: make(map[string]models.ChartSeries),
	}
	for _, c := range s.charts {
		series, err := guard(c.build, sales)
		if err != nil {
			s.logger.Error("[insights] Chart %s failed: %v", c.name, err)
			if d.ChartErrors == nil {
				d.ChartErrors = make(map[string]string)
			}
			d.ChartErrors[c.name] = err.Error()
			continue
		}
		d.Charts[c.name] = series
	}
	return d
}

func guard(build func([]models.Sale) models.ChartSeries, sales []models.Sale) (cs models.ChartSeries, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return build(sales), nil
}

// Print renders the dashboard to the terminal.
func (s *InsightService) Print(d models.Dashboard) {
	p := message.NewPrinter(language.English)
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 SALES DASHBOARD\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	p.Printf("  Sales               : \033[1m%d\033[0m\n", d.KPIs.Count)
	p.Printf("  Total volume        : \033[1;32m$%.0f\033[0m\n", d.KPIs.TotalVolume)
	p.Printf("  Median price        : \033[1;32m$%.0f\033[0m\n", d.KPIs.MedianPrice)
	p.Printf("  Median $/sqft       : \033[1;32m$%.2f\033[0m\n", d.KPIs.MedianPPSF)
	p.Printf("  Median days on mkt  : \033[1m%.1f\033[0m\n", d.KPIs.MedianDaysOnMarket)
	fmt.Println()

	titles := []struct{ key, title string }{
		{ChartMonthlyTrend, "Median Price by Month"},
		{ChartPriceDistribution, "Price Distribution"},
		{ChartCityMedians, "Median Price by City"},
		{ChartSalesByYear, "Sales by Year"},
	}
	for _, t := range titles {
		fmt.Printf("\033[1;33m  %s\033[0m\n", t.title)
		fmt.Printf("  %s\n", thin)
		if msg, failed := d.ChartErrors[t.key]; failed {
			fmt.Printf("  \033[1;31mUnavailable: %s\033[0m\n\n", msg)
			continue
		}
		cs := d.Charts[t.key]
		if len(cs.Labels) == 0 {
			fmt.Printf("  No data\n\n")
			continue
		}
		for i, label := range cs.Labels {
			p.Printf("  %-24s %.0f\n", truncate(label, 24), cs.Series[i])
		}
		fmt.Println()
	}

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}

// compactAmount formats a dollar bound as 0, 500, 50k or 1.05M.
func compactAmount(v float64) string {
	switch {
	case v >= 1e6:
		return trimFloat(v/1e6) + "M"
	case v >= 1e3:
		return trimFloat(v/1e3) + "k"
	default:
		return trimFloat(v)
	}
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
