package fx

import (
	"math"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Record holds the rates quoted against the base currency for a single day. A target
// currency is missing from Rates if the provider had no rate for it on that day.
type Record struct {
	Date  civil.Date
	Base  string
	Rates map[string]float64
}

// Row is a single worksheet row: date, base currency and one rate cell per target currency.
type Row []string

const precision = 6

// Header returns the worksheet header row for the target currencies.
func Header(targets []string) Row {
	header := Row{"Date", "Base"}

	return append(header, targets...)
}

// Shape converts the fetched records into worksheet rows in ascending date order. Rates
// are formatted as fixed 6 decimal place strings in target currency order, with missing
// or non-finite rates left as empty cells. A date without any of the target rates still
// produces a row.
func Shape(records []Record, targets []string) []Row {
	sorted := make([]Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	rows := make([]Row, 0, len(sorted))
	for _, record := range sorted {
		row := make(Row, 0, 2+len(targets))
		row = append(row, record.Date.String(), record.Base)

		for _, currency := range targets {
			row = append(row, format(record.Rates, currency))
		}

		rows = append(rows, row)
	}

	return rows
}

func format(rates map[string]float64, currency string) string {
	rate, ok := rates[currency]
	if !ok || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return ""
	}

	// -1074 is the smallest binary exponent of a float64 so the conversion is exact and
	// the rounding is of the stored value, half to even.
	return decimal.NewFromFloatWithExponent(rate, -1074).StringFixedBank(precision)
}
