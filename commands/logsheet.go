package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/maniAgarwal29/fx-sheets/fx"
)

// logsheet records a summary of each run in a 'log' worksheet and prunes old entries.
type logsheet struct {
	google      *sheets.Service
	spreadsheet *sheets.Spreadsheet
	area        string
	retention   uint
	debug       bool
}

const timestampFormat = "2006-01-02 15:04:05"

var logHeader = []any{"Timestamp", "Run ID", "Result", "From", "To", "Rows", "Error"}

func logRecord(timestamp time.Time, id string, result fx.Result) []any {
	from := ""
	to := ""
	if result.Window != nil {
		from = result.Window.Start.String()
		to = result.Window.End.String()
	}

	errmsg := ""
	if result.Err != nil {
		errmsg = result.Err.Error()
	}

	return []any{
		timestamp.Format(timestampFormat),
		id,
		result.Outcome.String(),
		from,
		to,
		result.Rows,
		errmsg,
	}
}

func (l *logsheet) update(ctx context.Context, id string, result fx.Result, timestamp time.Time) error {
	response, err := l.google.Spreadsheets.Values.Get(l.spreadsheet.SpreadsheetId, l.area).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Unable to retrieve log sheet (%v)", err)
	}

	rows := sheets.ValueRange{
		Values: [][]any{},
	}

	if len(response.Values) == 0 {
		rows.Values = append(rows.Values, logHeader)
	}

	rows.Values = append(rows.Values, logRecord(timestamp, id, result))

	if _, err := l.google.Spreadsheets.Values.Append(l.spreadsheet.SpreadsheetId, l.area, &rows).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("Error writing log to Google Sheets (%w)", err)
	}

	return nil
}

func (l *logsheet) prune(ctx context.Context, now time.Time) error {
	name, err := sheetName(l.area)
	if err != nil {
		return err
	}

	sheet, err := getSheet(l.spreadsheet, name)
	if err != nil {
		return err
	}

	response, err := l.google.Spreadsheets.Values.Get(l.spreadsheet.SpreadsheetId, l.area).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Unable to retrieve data from log sheet (%v)", err)
	}

	cutoff := cutoff(now, l.retention)
	list := expired(response.Values, cutoff)

	infof("Pruning log records from before %v", cutoff.Format("2006-01-02"))

	ranges := contiguous(list)
	deleted := 0

	if len(ranges) > 0 {
		rq := sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{},
		}

		for _, r := range ranges {
			rq.Requests = append(rq.Requests, &sheets.Request{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheet.Properties.SheetId,
						Dimension:  "ROWS",
						StartIndex: int64(r[0] - deleted),
						EndIndex:   int64(r[1] - deleted + 1),
					},
				},
			})

			deleted += r[1] - r[0] + 1
		}

		if _, err := l.google.Spreadsheets.BatchUpdate(l.spreadsheet.SpreadsheetId, &rq).Context(ctx).Do(); err != nil {
			return err
		}
	}

	infof("Pruned %d log records from log sheet", deleted)

	return nil
}

// cutoff returns the start of the oldest day retained in the log.
func cutoff(now time.Time, retention uint) time.Time {
	days := int(retention)
	if days > 0 {
		days--
	}

	before := now.In(time.Local).AddDate(0, 0, -days)

	return time.Date(before.Year(), before.Month(), before.Day(), 0, 0, 0, 0, before.Location())
}

// expired returns the (sorted) row indices of log records older than the cutoff.
func expired(values [][]any, cutoff time.Time) []int {
	list := []int{}

	for row, record := range values {
		if len(record) == 0 {
			continue
		}

		if s, ok := record[0].(string); ok {
			timestamp, err := time.ParseInLocation(timestampFormat, s, time.Local)
			if err == nil && timestamp.Before(cutoff) {
				list = append(list, row)
			}
		}
	}

	sort.Ints(list)

	return list
}

// contiguous groups sorted row indices into [start,end] ranges in ascending order.
func contiguous(list []int) [][2]int {
	ranges := [][2]int{}
	if len(list) == 0 {
		return ranges
	}

	start := list[0]
	last := list[0]
	for _, row := range list[1:] {
		if row != last+1 {
			ranges = append(ranges, [2]int{start, last})
			start = row
		}

		last = row
	}

	return append(ranges, [2]int{start, last})
}
