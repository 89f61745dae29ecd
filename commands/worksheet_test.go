package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/maniAgarwal29/fx-sheets/fx"
)

type request struct {
	method string
	path   string
	query  map[string]string
	body   sheets.ValueRange
	batch  sheets.BatchUpdateSpreadsheetRequest
}

func mockSheets(t *testing.T, values string) (*sheets.Service, *[]request) {
	return mockSheetsWithStatus(t, values, http.StatusOK)
}

// mockSheetsWithStatus emulates the Sheets API values and batchUpdate endpoints. GET
// requests return the values JSON and appends fail with the status if it isn't 200.
func mockSheetsWithStatus(t *testing.T, values string, status int) (*sheets.Service, *[]request) {
	t.Helper()

	requests := []request{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rq := request{
			method: r.Method,
			path:   r.URL.Path,
			query:  map[string]string{},
		}

		for _, k := range []string{"valueInputOption", "insertDataOption", "valueRenderOption", "dateTimeRenderOption"} {
			rq.query[k] = r.URL.Query().Get(k)
		}

		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
			if err := json.NewDecoder(r.Body).Decode(&rq.body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			requests = append(requests, rq)

			if status != http.StatusOK {
				w.WriteHeader(status)
				fmt.Fprintf(w, `{"error":{"code":%v,"message":"request failed"}}`, status)
				return
			}

			w.Write([]byte(`{"spreadsheetId":"abc","updates":{"updatedRange":"Rates!A4:E5","updatedRows":2}}`))

		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
			if err := json.NewDecoder(r.Body).Decode(&rq.batch); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			requests = append(requests, rq)
			w.Write([]byte(`{"spreadsheetId":"abc"}`))

		case r.Method == http.MethodGet:
			requests = append(requests, rq)
			w.Write([]byte(values))

		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))

	t.Cleanup(srv.Close)

	google, err := sheets.NewService(context.Background(), option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	return google, &requests
}

func TestWorksheetColumn(t *testing.T) {
	assert := require.New(t)

	google, requests := mockSheets(t, `{"range":"Rates!A1:A4","majorDimension":"ROWS","values":[["Date"],["2020-05-29"],[],["2020-05-31"]]}`)

	w := worksheet{
		google:      google,
		spreadsheet: "abc",
		name:        "Rates",
		input:       "USER_ENTERED",
	}

	column, err := w.Column(context.Background())

	assert.NoError(err)
	assert.Equal([]string{"Date", "2020-05-29", "", "2020-05-31"}, column)
	assert.Len(*requests, 1)
	assert.Equal("/v4/spreadsheets/abc/values/'Rates'!A:A", (*requests)[0].path)
	assert.Equal("UNFORMATTED_VALUE", (*requests)[0].query["valueRenderOption"])
	assert.Equal("SERIAL_NUMBER", (*requests)[0].query["dateTimeRenderOption"])
}

func TestWorksheetColumnWithSerialDates(t *testing.T) {
	assert := require.New(t)

	google, _ := mockSheets(t, `{"range":"Rates!A1:A4","majorDimension":"ROWS","values":[["Date"],[43980],[43981.75],["2020-05-31"]]}`)

	w := worksheet{
		google:      google,
		spreadsheet: "abc",
		name:        "Rates",
	}

	column, err := w.Column(context.Background())

	assert.NoError(err)
	assert.Equal([]string{"Date", "2020-05-29", "2020-05-30", "2020-05-31"}, column)
}

func TestWorksheetColumnWithEmptySheet(t *testing.T) {
	assert := require.New(t)

	google, _ := mockSheets(t, `{"range":"Rates!A1:A1000","majorDimension":"ROWS"}`)

	w := worksheet{
		google:      google,
		spreadsheet: "abc",
		name:        "Rates",
	}

	column, err := w.Column(context.Background())

	assert.NoError(err)
	assert.Empty(column)
}

func TestWorksheetAppend(t *testing.T) {
	assert := require.New(t)

	google, requests := mockSheets(t, `{}`)

	w := worksheet{
		google:      google,
		spreadsheet: "abc",
		name:        "Rates",
		input:       "USER_ENTERED",
	}

	rows := []fx.Row{
		{"2020-06-01", "USD", "75.550000", ""},
		{"2020-06-02", "USD", "75.610000", "0.897500"},
	}

	err := w.Append(context.Background(), rows)

	assert.NoError(err)
	assert.Len(*requests, 1)

	rq := (*requests)[0]
	assert.Equal(http.MethodPost, rq.method)
	assert.Equal("/v4/spreadsheets/abc/values/'Rates'!A1:append", rq.path)
	assert.Equal("USER_ENTERED", rq.query["valueInputOption"])
	assert.Equal("INSERT_ROWS", rq.query["insertDataOption"])
	assert.Equal([][]any{
		{"2020-06-01", "USD", "75.550000", ""},
		{"2020-06-02", "USD", "75.610000", "0.897500"},
	}, rq.body.Values)
}

func TestWorksheetAppendWithError(t *testing.T) {
	google, _ := mockSheetsWithStatus(t, `{}`, http.StatusForbidden)

	w := worksheet{
		google:      google,
		spreadsheet: "abc",
		name:        "Rates",
		input:       "RAW",
	}

	require.Error(t, w.Append(context.Background(), []fx.Row{{"2020-06-01", "USD", "75.550000"}}))
}

func TestDryRun(t *testing.T) {
	assert := require.New(t)

	google, requests := mockSheets(t, `{"values":[["Date"],["2020-05-29"]]}`)

	d := dryrun{&worksheet{google: google, spreadsheet: "abc", name: "Rates", input: "RAW"}}

	column, err := d.Column(context.Background())
	assert.NoError(err)
	assert.Equal([]string{"Date", "2020-05-29"}, column)

	assert.NoError(d.Append(context.Background(), []fx.Row{{"2020-06-01", "USD", "75.550000"}}))
	assert.Len(*requests, 1)
	assert.Equal(http.MethodGet, (*requests)[0].method)
}
