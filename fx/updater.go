package fx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Destination is the worksheet that holds the rates history.
type Destination interface {
	// Column returns all the values of the first (date) column, including the header.
	Column(ctx context.Context) ([]string, error)

	// Append adds the rows after the last row of the worksheet. Existing rows are never
	// changed.
	Append(ctx context.Context, rows []Row) error
}

// Fetcher retrieves the daily rates for a window with a single request.
type Fetcher interface {
	Fetch(ctx context.Context, window Window, base string, targets []string) ([]Record, error)
}

// Config is the immutable configuration for an Updater.
type Config struct {
	Start   civil.Date
	Base    string
	Targets []string
}

// Outcome is the terminal state of a run.
type Outcome int

const (
	Updated Outcome = iota
	NoOp
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case NoOp:
		return "no-op"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("unknown (%d)", int(o))
	}
}

// Result summarises a run. Rows is the number of data rows appended (excluding any
// header) and Window is nil if nothing needed fetching.
type Result struct {
	Outcome Outcome
	Rows    int
	Window  *Window
	Err     error
}

// Updater brings a rates worksheet up to date with the rate provider.
type Updater struct {
	Config  Config
	Connect func(context.Context) (Destination, error)
	Fetcher Fetcher
	Now     func() time.Time
	Debug   bool
}

// Run executes a single update:
//
//   - connect to the worksheet
//   - find the latest date already stored (falling back to the start of history if the
//     worksheet can't be read or holds an invalid date)
//   - fetch the missing rates
//   - append the new rows to the worksheet
//
// The returned Result is NoOp if the worksheet is already up to date or the provider has
// no new rates, Updated if rows were appended and Failed otherwise.
func (u *Updater) Run(ctx context.Context) Result {
	if u.Connect == nil || u.Fetcher == nil {
		return failed(nil, fmt.Errorf("updater is missing a destination or rate provider"))
	}

	destination, err := u.Connect(ctx)
	if err != nil {
		return failed(nil, fmt.Errorf("%w (%v)", ErrAuth, err))
	}

	latest, empty := u.watermark(ctx, destination)

	window, ok := Resolve(latest, u.today(), u.Config.Start)
	if !ok {
		infof("Worksheet is up to date")
		return Result{Outcome: NoOp}
	}

	infof("Fetching %v rates for %v from %v to %v", u.Config.Base, u.Config.Targets, window.Start, window.End)

	records, err := u.Fetcher.Fetch(ctx, window, u.Config.Base, u.Config.Targets)
	if err != nil {
		if !errors.Is(err, ErrFetch) {
			err = fmt.Errorf("%w (%v)", ErrFetch, err)
		}

		return failed(&window, err)
	}

	if len(records) == 0 {
		infof("No new rates available for %v", window)
		return Result{Outcome: NoOp, Window: &window}
	}

	rows := Shape(records, u.Config.Targets)

	if u.Debug {
		for _, row := range rows {
			debugf("%v", row)
		}
	}

	if empty {
		infof("Worksheet is empty - adding header row")
		rows = append([]Row{Header(u.Config.Targets)}, rows...)
	}

	if err := destination.Append(ctx, rows); err != nil {
		return failed(&window, fmt.Errorf("%w (%v)", ErrDestinationWrite, err))
	}

	count := len(rows)
	if empty {
		count--
	}

	infof("Appended %v rows to worksheet", count)

	return Result{
		Outcome: Updated,
		Rows:    count,
		Window:  &window,
	}
}

// watermark returns the latest stored date (nil if none or unusable) and whether the
// worksheet is known to be completely empty (i.e. needs a header).
func (u *Updater) watermark(ctx context.Context, destination Destination) (*civil.Date, bool) {
	column, err := destination.Column(ctx)
	if err != nil {
		warnf("%v (%v) - fetching full history", ErrDestinationRead, err)
		return nil, false
	}

	if len(column) == 0 {
		infof("Worksheet is empty - fetching full history")
		return nil, true
	}

	latest, ok, err := Watermark(column[1:])
	if err != nil {
		warnf("Could not determine latest date (%v) - fetching full history", err)
		return nil, false
	} else if !ok {
		infof("No rates in worksheet - fetching full history")
		return nil, false
	}

	infof("Latest date in worksheet is %v", latest)

	return &latest, false
}

func (u *Updater) today() civil.Date {
	if u.Now != nil {
		return civil.DateOf(u.Now())
	}

	return civil.DateOf(time.Now())
}

func failed(window *Window, err error) Result {
	return Result{
		Outcome: Failed,
		Window:  window,
		Err:     err,
	}
}
