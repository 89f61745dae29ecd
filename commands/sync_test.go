package commands

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"github.com/maniAgarwal29/fx-sheets/config"
	"github.com/maniAgarwal29/fx-sheets/fx"
)

func TestSyncReportWithLogSheetError(t *testing.T) {
	window := fx.Window{
		Start: civil.Date{Year: 2020, Month: time.May, Day: 30},
		End:   civil.Date{Year: 2020, Month: time.June, Day: 1},
	}

	tests := []struct {
		result   fx.Result
		expected error
	}{
		{fx.Result{Outcome: fx.Updated, Rows: 2, Window: &window}, nil},
		{fx.Result{Outcome: fx.NoOp}, nil},
		{fx.Result{Outcome: fx.Failed, Window: &window, Err: fx.ErrFetch}, fx.ErrFetch},
	}

	conf := config.Config{
		Sheets: config.Sheets{
			LogRange:     "Log!A1:G",
			LogRetention: 30,
		},
	}

	for _, test := range tests {
		t.Run(test.result.Outcome.String(), func(t *testing.T) {
			assert := require.New(t)

			google, requests := mockSheetsWithStatus(t, `{"range":"Log!A1:G1000"}`, http.StatusForbidden)
			cmd := Sync{}
			now := time.Now()

			err := cmd.report(context.Background(), &conf, "1234", test.result, google, &logSpreadsheet, now, now)

			if test.expected == nil {
				assert.NoError(err)
			} else {
				assert.ErrorIs(err, test.expected)
			}

			// the failed append is the last request, i.e. nothing is pruned
			assert.Len(*requests, 2)
			assert.Equal(http.MethodPost, (*requests)[1].method)
		})
	}
}

func TestSyncReportWithoutLogSheet(t *testing.T) {
	conf := config.Config{
		Sheets: config.Sheets{
			LogRange: "Log!A1:G",
		},
	}

	tests := map[string]Sync{
		"no-log": {nolog: true},
		"dryrun": {dryrun: true},
	}

	for name, cmd := range tests {
		t.Run(name, func(t *testing.T) {
			google, requests := mockSheets(t, `{}`)

			err := cmd.report(context.Background(), &conf, "1234", fx.Result{Outcome: fx.Updated, Rows: 1}, google, &logSpreadsheet, time.Now(), time.Now())

			require.NoError(t, err)
			require.Empty(t, *requests)
		})
	}

	t.Run("not connected", func(t *testing.T) {
		err := (&Sync{}).report(context.Background(), &conf, "1234", fx.Result{Outcome: fx.Failed, Err: fmt.Errorf("no credentials")}, nil, nil, time.Now(), time.Now())

		require.EqualError(t, err, "no credentials")
	})
}
