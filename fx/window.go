package fx

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// Window is an inclusive range of dates to be fetched from the rate provider.
type Window struct {
	Start civil.Date
	End   civil.Date
}

func (w Window) String() string {
	return fmt.Sprintf("%v..%v", w.Start, w.End)
}

// Contains returns true if the date falls within the window (inclusive).
func (w Window) Contains(d civil.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Watermark returns the latest date in a worksheet date column. The values are the
// data rows only i.e. the header has already been stripped. Blank cells are skipped.
//
// Returns false if there are no dates and ErrInvalidDate if any non-blank value is not
// a valid YYYY-MM-DD date, in which case the caller is expected to treat the watermark
// as absent.
func Watermark(values []string) (civil.Date, bool, error) {
	var latest civil.Date
	found := false

	for i, v := range values {
		s := strings.TrimSpace(v)
		if s == "" {
			continue
		}

		date, err := civil.ParseDate(s)
		if err != nil || !date.IsValid() {
			return civil.Date{}, false, fmt.Errorf("%w '%v' at row %v", ErrInvalidDate, v, i+2)
		}

		if !found || date.After(latest) {
			latest = date
			found = true
		}
	}

	return latest, found, nil
}

// Resolve computes the fetch window from the latest date already stored. If latest is
// nil the window starts at the beginning of history, otherwise on the day after latest.
// The window always ends today and is empty (returns false) if the start is after today.
func Resolve(latest *civil.Date, today civil.Date, start civil.Date) (Window, bool) {
	if latest != nil {
		start = latest.AddDays(1)
	}

	if start.After(today) {
		return Window{}, false
	}

	return Window{
		Start: start,
		End:   today,
	}, true
}
