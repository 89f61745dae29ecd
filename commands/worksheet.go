package commands

import (
	"context"
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/civil"
	"google.golang.org/api/sheets/v4"

	"github.com/maniAgarwal29/fx-sheets/fx"
)

// worksheet is the Google Sheets rates worksheet.
type worksheet struct {
	google      *sheets.Service
	spreadsheet string
	name        string
	input       string
	debug       bool
}

func (w *worksheet) Column(ctx context.Context) ([]string, error) {
	area := fmt.Sprintf("%v!A:A", quote(w.name))

	response, err := w.google.Spreadsheets.Values.Get(w.spreadsheet, area).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("Unable to retrieve data from sheet (%v)", err)
	}

	column := make([]string, 0, len(response.Values))
	for _, row := range response.Values {
		if len(row) == 0 || row[0] == nil {
			column = append(column, "")
		} else if serial, ok := row[0].(float64); ok {
			column = append(column, fromSerial(serial))
		} else {
			column = append(column, fmt.Sprintf("%v", row[0]))
		}
	}

	if w.debug {
		debugf("Retrieved %v rows from %v", len(column), area)
	}

	return column, nil
}

func (w *worksheet) Append(ctx context.Context, rows []fx.Row) error {
	area := fmt.Sprintf("%v!A1", quote(w.name))
	values := sheets.ValueRange{
		Values: make([][]any, 0, len(rows)),
	}

	for _, row := range rows {
		record := make([]any, len(row))
		for i, v := range row {
			record[i] = v
		}

		values.Values = append(values.Values, record)
	}

	response, err := w.google.Spreadsheets.Values.Append(w.spreadsheet, area, &values).
		ValueInputOption(w.input).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("Error writing rates to Google Sheets (%w)", err)
	}

	if w.debug && response.Updates != nil {
		debugf("Updated range %v (%v rows)", response.Updates.UpdatedRange, response.Updates.UpdatedRows)
	}

	return nil
}

// fromSerial converts a Google Sheets date serial number (days since 1899-12-30) to
// YYYY-MM-DD. Dates are read as serial numbers so that the display format of the
// date column doesn't affect the watermark.
func fromSerial(serial float64) string {
	epoch := civil.Date{Year: 1899, Month: time.December, Day: 30}

	return epoch.AddDays(int(math.Floor(serial))).String()
}

// dryrun wraps a worksheet, logging the rows instead of appending them.
type dryrun struct {
	fx.Destination
}

func (d dryrun) Append(ctx context.Context, rows []fx.Row) error {
	for _, row := range rows {
		infof("DRYRUN  %v", row)
	}

	return nil
}
