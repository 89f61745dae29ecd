package fx

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
)

// MakeTSV writes the rates worksheet values to a TSV file. The first row must be a
// 'Date, Base, ...' header. Rows without a valid date are skipped and short rows are
// padded to the width of the header.
func MakeTSV(f io.Writer, values [][]any) error {
	if len(values) == 0 {
		return fmt.Errorf("Empty sheet")
	}

	// ... header
	row := values[0]
	header := make([]string, len(row))
	for i, v := range row {
		header[i] = clean(v)
	}

	if len(header) == 0 {
		return fmt.Errorf("Missing/invalid header row")
	}

	if len(header) < 1 || normalise(header[0]) != "date" {
		return fmt.Errorf("Missing 'date' column")
	}

	if len(header) < 2 || normalise(header[1]) != "base" {
		return fmt.Errorf("Missing 'base' column")
	}

	// ... records
	records := [][]string{}
	for _, row := range values[1:] {
		if len(row) == 0 {
			continue
		} else if _, err := civil.ParseDate(clean(row[0])); err != nil {
			continue
		}

		record := make([]string, len(header))
		for i := range record {
			if i < len(row) {
				record[i] = clean(row[i])
			}
		}

		records = append(records, record)
	}

	// ... write to file
	w := csv.NewWriter(f)
	w.Comma = '\t'

	w.Write(header)
	for _, record := range records {
		w.Write(record)
	}

	w.Flush()

	return w.Error()
}

func clean(v any) string {
	if v == nil {
		return ""
	}

	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}
