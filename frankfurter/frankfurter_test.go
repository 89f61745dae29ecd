package frankfurter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"github.com/maniAgarwal29/fx-sheets/fx"
)

func window(start, end string) fx.Window {
	s, _ := civil.ParseDate(start)
	e, _ := civil.ParseDate(end)

	return fx.Window{Start: s, End: e}
}

func server(t *testing.T, status int, body string, requests *[]*http.Request) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			*requests = append(*requests, r)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))

	t.Cleanup(srv.Close)

	return srv
}

func TestFetch(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	requests := []*http.Request{}
	srv := server(t, http.StatusOK, `{
		"amount": 1.0,
		"base": "USD",
		"start_date": "2009-12-31",
		"end_date": "2010-01-04",
		"rates": {
			"2010-01-04": {"INR": 46.21, "EUR": 0.6975, "GBP": 0.61951},
			"2009-12-31": {"INR": 46.53, "EUR": 0.6942, "GBP": 0.6197},
			"2010-01-02": {"INR": 83.5, "GBP": "n/a"}
		}
	}`, &requests)

	client := NewClient(srv.URL, 5*time.Second)
	records, err := client.Fetch(context.Background(), window("2010-01-01", "2010-01-04"), "USD", []string{"INR", "EUR", "GBP"})

	assert.NoError(err)
	assert.Len(requests, 1)
	assert.Equal(http.MethodGet, requests[0].Method)
	assert.Equal("/2010-01-01..2010-01-04", requests[0].URL.Path)
	assert.Equal("USD", requests[0].URL.Query().Get("from"))
	assert.Equal("INR,EUR,GBP", requests[0].URL.Query().Get("to"))

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	assert.Len(records, 2)
	assert.Equal("2010-01-02", records[0].Date.String())
	assert.Equal("USD", records[0].Base)
	assert.Equal(map[string]float64{"INR": 83.5}, records[0].Rates)
	assert.Equal("2010-01-04", records[1].Date.String())
	assert.Equal(map[string]float64{"INR": 46.21, "EUR": 0.6975, "GBP": 0.61951}, records[1].Rates)
}

func TestFetchWithNoRates(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	for _, body := range []string{
		`{"amount":1.0,"base":"USD","start_date":"2020-06-06","end_date":"2020-06-07","rates":{}}`,
		`{"amount":1.0,"base":"USD"}`,
		``,
	} {
		srv := server(t, http.StatusOK, body, nil)

		records, err := NewClient(srv.URL, 5*time.Second).Fetch(context.Background(), window("2020-06-06", "2020-06-07"), "USD", []string{"EUR"})

		assert.NoError(err)
		assert.Empty(records)
	}
}

func TestFetchWithHTTPError(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	tests := map[int]error{
		http.StatusBadRequest:          ErrClient,
		http.StatusNotFound:            ErrClient,
		http.StatusInternalServerError: ErrServer,
		http.StatusBadGateway:          ErrServer,
	}

	for status, expected := range tests {
		srv := server(t, status, `{"message":"not found"}`, nil)

		_, err := NewClient(srv.URL, 5*time.Second).Fetch(context.Background(), window("2020-06-01", "2020-06-02"), "USD", []string{"EUR"})

		assert.ErrorIs(err, fx.ErrFetch)
		assert.ErrorContains(err, expected.Error())
	}
}

func TestFetchWithInvalidResponse(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	srv := server(t, http.StatusOK, `<html>oops</html>`, nil)

	_, err := NewClient(srv.URL, 5*time.Second).Fetch(context.Background(), window("2020-06-01", "2020-06-02"), "USD", []string{"EUR"})

	assert.ErrorIs(err, fx.ErrFetch)
}

func TestFetchWithUnreachableServer(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	uri := srv.URL
	srv.Close()

	_, err := NewClient(uri, time.Second).Fetch(context.Background(), window("2020-06-01", "2020-06-02"), "USD", []string{"EUR"})

	assert.ErrorIs(err, fx.ErrFetch)
}
