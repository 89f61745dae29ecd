// Package frankfurter retrieves historical exchange rates from the Frankfurter API
// (https://www.frankfurter.app).
package frankfurter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/maniAgarwal29/fx-sheets/fx"
)

const DefaultURL = "https://api.frankfurter.app"

var (
	ErrClient  = errors.New("client error")
	ErrServer  = errors.New("server error")
	ErrUnknown = errors.New("unknown error")
)

// Client fetches a time series of daily rates with a single request per window.
type Client struct {
	URL        string
	HTTPClient *http.Client
	Debug      bool
}

type response struct {
	Amount    float64                   `json:"amount"`
	Base      string                    `json:"base"`
	StartDate string                    `json:"start_date"`
	EndDate   string                    `json:"end_date"`
	Rates     map[string]map[string]any `json:"rates"`
}

func NewClient(uri string, timeout time.Duration) *Client {
	if uri == "" {
		uri = DefaultURL
	}

	return &Client{
		URL: uri,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves the rates for the target currencies against the base currency for
// every business day in the window. Days outside the window (the API may return the
// preceding business day for a window that starts on a weekend) are discarded, as are
// rates that are not numbers. An empty result is not an error.
func (c *Client) Fetch(ctx context.Context, window fx.Window, base string, targets []string) ([]fx.Record, error) {
	rq, err := c.request(ctx, window, base, targets)
	if err != nil {
		return nil, fmt.Errorf("%w (%v)", fx.ErrFetch, err)
	}

	if c.Debug {
		debugf("GET %v", rq.URL)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	rs, err := client.Do(rq)
	if err != nil {
		return nil, fmt.Errorf("%w (%v)", fx.ErrFetch, err)
	}

	defer rs.Body.Close()

	if err := status(rs); err != nil {
		return nil, fmt.Errorf("%w (%v)", fx.ErrFetch, err)
	}

	var reply response
	if err := json.NewDecoder(rs.Body).Decode(&reply); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w (invalid response: %v)", fx.ErrFetch, err)
	}

	return records(reply, window, base), nil
}

func (c *Client) request(ctx context.Context, window fx.Window, base string, targets []string) (*http.Request, error) {
	uri, err := url.Parse(strings.TrimRight(c.URL, "/"))
	if err != nil {
		return nil, err
	}

	uri = uri.JoinPath(fmt.Sprintf("%v..%v", window.Start, window.End))

	q := uri.Query()
	q.Set("from", base)
	q.Set("to", strings.Join(targets, ","))

	uri.RawQuery = q.Encode()

	rq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), nil)
	if err != nil {
		return nil, err
	}

	rq.Header.Add("Accept", "application/json")

	return rq, nil
}

func status(rs *http.Response) error {
	switch {
	case rs.StatusCode >= 200 && rs.StatusCode < 300:
		return nil

	case rs.StatusCode >= 400 && rs.StatusCode < 500:
		return fmt.Errorf("%w: %v", ErrClient, rs.Status)

	case rs.StatusCode >= 500:
		return fmt.Errorf("%w: %v", ErrServer, rs.Status)

	default:
		return fmt.Errorf("%w: %v", ErrUnknown, rs.Status)
	}
}

func records(reply response, window fx.Window, base string) []fx.Record {
	if reply.Base != "" {
		base = reply.Base
	}

	list := []fx.Record{}
	for k, v := range reply.Rates {
		date, err := civil.ParseDate(k)
		if err != nil {
			warnf("ignoring rates with invalid date '%v'", k)
			continue
		}

		if !window.Contains(date) {
			continue
		}

		record := fx.Record{
			Date:  date,
			Base:  base,
			Rates: map[string]float64{},
		}

		for currency, rate := range v {
			if f, ok := rate.(float64); ok {
				record.Rates[currency] = f
			}
		}

		list = append(list, record)
	}

	return list
}
