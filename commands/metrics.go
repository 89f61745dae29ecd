package commands

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/maniAgarwal29/fx-sheets/fx"
)

// metrics are the batch job metrics pushed to a Prometheus Pushgateway after each run.
type metrics struct {
	registry    *prometheus.Registry
	rows        prometheus.Gauge
	duration    prometheus.Gauge
	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
	outcome     *prometheus.GaugeVec
}

func newMetrics() *metrics {
	m := metrics{
		registry: prometheus.NewRegistry(),

		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fx_sheets_rows_appended",
			Help: "Number of rate rows appended to the worksheet by the last run",
		}),

		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fx_sheets_run_duration_seconds",
			Help: "Duration of the last run in seconds",
		}),

		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fx_sheets_last_run_timestamp_seconds",
			Help: "Unix time of the last run",
		}),

		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fx_sheets_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),

		outcome: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fx_sheets_last_run_outcome",
				Help: "Outcome of the last run (1 for the outcome of the last run, 0 otherwise)",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(m.rows, m.duration, m.lastRun, m.lastSuccess, m.outcome)

	return &m
}

func (m *metrics) record(result fx.Result, started time.Time, finished time.Time) {
	m.rows.Set(float64(result.Rows))
	m.duration.Set(finished.Sub(started).Seconds())
	m.lastRun.Set(float64(finished.Unix()))

	for _, o := range []fx.Outcome{fx.Updated, fx.NoOp, fx.Failed} {
		if o == result.Outcome {
			m.outcome.WithLabelValues(o.String()).Set(1)
		} else {
			m.outcome.WithLabelValues(o.String()).Set(0)
		}
	}
}

// push sends the metrics to the Pushgateway. The last success timestamp is only
// included for a successful run so that a failed run doesn't overwrite it.
func (m *metrics) push(ctx context.Context, url string, job string, result fx.Result, finished time.Time) error {
	pusher := push.New(url, job).
		Collector(m.rows).
		Collector(m.duration).
		Collector(m.lastRun).
		Collector(m.outcome)

	if result.Outcome != fx.Failed {
		m.lastSuccess.Set(float64(finished.Unix()))
		pusher = pusher.Collector(m.lastSuccess)
	}

	return pusher.AddContext(ctx)
}
