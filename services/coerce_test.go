package services

import (
	"encoding/json"
	"testing"
	"time"
)

type fakeTimestamp struct{ t time.Time }

func (f fakeTimestamp) AsTime() time.Time { return f.t }

func TestToPrice(t *testing.T) {
	tests := []struct {
		raw  any
		want float64
	}{
		{"$200,000", 200000},
		{" $1,200.50 ", 1200.50},
		{"350000", 350000},
		{250000.0, 250000},
		{int64(99), 99},
		{json.Number("12.5"), 12.5},
		{"", 0},
		{"call for price", 0},
		{"NaN", 0},
		{nil, 0},
		{true, 0},
		{[]string{"1"}, 0},
	}

	for _, tt := range tests {
		if got := ToPrice(tt.raw); got != tt.want {
			t.Errorf("ToPrice(%#v) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestToDate(t *testing.T) {
	may1 := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		raw    any
		want   time.Time
		wantOK bool
	}{
		{"iso date", "2022-05-01", may1, true},
		{"us date", "05/01/2022", may1, true},
		{"short us date", "5/1/2022", may1, true},
		{"excel short", "05-01-22", may1, true},
		{"rfc3339", "2022-05-01T00:00:00Z", may1, true},
		{"long form", "May 1, 2022", may1, true},
		{"time value", may1, may1, true},
		{"time pointer", &may1, may1, true},
		{"timestamp wrapper", fakeTimestamp{may1}, may1, true},
		{"epoch millis", may1.UnixMilli(), may1, true},
		{"epoch millis float", float64(may1.UnixMilli()), may1, true},
		{"garbage", "not a date", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"nil", nil, time.Time{}, false},
		{"zero time", time.Time{}, time.Time{}, false},
		{"bool", true, time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := ToDate(tt.raw)
		if ok != tt.wantOK {
			t.Errorf("%s: ok = %v; want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("%s: got %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestToYesNo(t *testing.T) {
	tests := []struct {
		raw  any
		want string
	}{
		{"Y", "Yes"},
		{"yes", "Yes"},
		{" YES ", "Yes"},
		{"N", "No"},
		{"", "No"},
		{nil, "No"},
		{"maybe", "No"},
		{1, "No"},
	}
	for _, tt := range tests {
		if got := ToYesNo(tt.raw); got != tt.want {
			t.Errorf("ToYesNo(%#v) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestToCityLimits(t *testing.T) {
	tests := []struct {
		raw  any
		want string
	}{
		{"y", "Yes"},
		{"Yes", "Yes"},
		{"n", "No"},
		{"NO", "No"},
		{"", "Unknown"},
		{nil, "Unknown"},
		{"partial", "Unknown"},
	}
	for _, tt := range tests {
		if got := ToCityLimits(tt.raw); got != tt.want {
			t.Errorf("ToCityLimits(%#v) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}
