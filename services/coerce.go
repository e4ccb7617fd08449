package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"sales-dashboard/models"
)

// timestamp is satisfied by source-provided timestamp wrappers such as
// timestamppb.Timestamp.
type timestamp interface {
	AsTime() time.Time
}

var priceStripper = strings.NewReplacer("$", "", ",", "")

// dateLayouts are tried in order for textual dates. All are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01-02-06",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"02-Jan-06",
}

// ToPrice returns numeric values as-is; text has "$" and "," stripped before
// parsing. Anything else, or unparsable text, yields 0.
func ToPrice(v any) float64 {
	if f, ok := numeric(v); ok {
		return f
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(priceStripper.Replace(s)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToDate converts timestamps, time values, text and epoch milliseconds into a
// UTC time. ok is false when no valid date can be produced.
func ToDate(v any) (t time.Time, ok bool) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return validDate(d)
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return validDate(*d)
	case timestamp:
		return validDate(d.AsTime())
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return validDate(parsed)
			}
		}
		return time.Time{}, false
	}

	if ms, ok := numeric(v); ok {
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			return time.Time{}, false
		}
		return validDate(time.UnixMilli(int64(ms)))
	}
	return time.Time{}, false
}

// ToYesNo maps Y/YES (any case) to "Yes" and everything else to "No".
func ToYesNo(v any) string {
	switch strings.ToUpper(strings.TrimSpace(toText(v))) {
	case "Y", "YES":
		return models.Yes
	default:
		return models.No
	}
}

// ToCityLimits maps Y/YES to "Yes", N/NO to "No" and anything else to "Unknown".
func ToCityLimits(v any) string {
	switch strings.ToUpper(strings.TrimSpace(toText(v))) {
	case "Y", "YES":
		return models.Yes
	case "N", "NO":
		return models.No
	default:
		return models.Unknown
	}
}

// toCount coerces a non-negative quantity; negatives and garbage become 0.
func toCount(v any) float64 {
	f := ToPrice(v)
	if f < 0 {
		return 0
	}
	return f
}

func toText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case json.Number:
		return s.String()
	}
	if f, ok := numeric(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func validDate(t time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	return t.UTC(), true
}
