package commands

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/sheets/v4"

	"github.com/maniAgarwal29/fx-sheets/config"
	"github.com/maniAgarwal29/fx-sheets/frankfurter"
	"github.com/maniAgarwal29/fx-sheets/fx"
)

var SyncCmd = Sync{
	command: command{
		workdir: DEFAULT_WORKDIR,
	},

	nolog:        false,
	logRange:     "",
	logRetention: 0,

	dryrun: false,
}

type Sync struct {
	command

	start       string
	base        string
	currencies  string
	provider    string
	inputOption string
	pushgateway string

	nolog        bool
	logRange     string
	logRetention uint

	dryrun bool
}

func (cmd *Sync) Name() string {
	return "sync"
}

func (cmd *Sync) Description() string {
	return "Appends the exchange rates missing from a Google Sheets worksheet"
}

func (cmd *Sync) Usage() string {
	return "--credentials <file> --url <url>"
}

func (cmd *Sync) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] sync [options] --url <URL>\n", APP)
	fmt.Println()
	fmt.Println("  Fetches the daily exchange rates since the last date in the rates worksheet and appends")
	fmt.Println("  them to the worksheet. An empty worksheet is populated from the configured start date.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    fx-sheets sync --credentials "credentials.json" \`)
	fmt.Println(`                   --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"`)
	fmt.Println()
	fmt.Println(`    fx-sheets --debug sync --config fx-sheets.yaml --base EUR --currencies USD,GBP,CHF --dryrun`)
	fmt.Println()
}

func (cmd *Sync) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("sync")

	flagset.StringVar(&cmd.start, "start", cmd.start, "Start date (YYYY-MM-DD) for an empty worksheet. Defaults to 2010-01-01")
	flagset.StringVar(&cmd.base, "base", cmd.base, "Base currency. Defaults to USD")
	flagset.StringVar(&cmd.currencies, "currencies", cmd.currencies, "Comma separated list of target currencies e.g. INR,EUR,GBP")
	flagset.StringVar(&cmd.provider, "provider", cmd.provider, "Exchange rates API URL. Defaults to https://api.frankfurter.app")
	flagset.StringVar(&cmd.inputOption, "input-option", cmd.inputOption, "Google Sheets value input option (USER_ENTERED or RAW)")
	flagset.StringVar(&cmd.pushgateway, "pushgateway", cmd.pushgateway, "Prometheus Pushgateway URL for run metrics")
	flagset.StringVar(&cmd.logRange, "log-range", cmd.logRange, "Spreadsheet range for the run log. Defaults to Log!A1:G")
	flagset.UintVar(&cmd.logRetention, "log-retention", cmd.logRetention, "Log sheet records older than 'log-retention' days are automatically pruned. Defaults to 30")
	flagset.BoolVar(&cmd.nolog, "no-log", cmd.nolog, "Disables writing a summary to the 'log' worksheet")
	flagset.BoolVar(&cmd.dryrun, "dryrun", cmd.dryrun, "Fetches the missing rates without updating the worksheet")

	return flagset
}

func (cmd *Sync) Execute(args ...any) error {
	ctx, options := parse(args...)

	cmd.debug = options.Debug

	conf, err := cmd.configure()
	if err != nil {
		return err
	}

	spreadsheetId, _ := conf.SpreadsheetID()
	id := uuid.New().String()

	if cmd.debug {
		debugf("Run ID:%v  spreadsheet:%v  worksheet:%v  log:%v", id, spreadsheetId, conf.Sheets.Worksheet, conf.Sheets.LogRange)
	}

	lockfile, err := lock(filepath.Join(cmd.workdir, fmt.Sprintf("%s.lock", APP)))
	if err != nil {
		return err
	}

	defer lockfile.release()

	var google *sheets.Service
	var spreadsheet *sheets.Spreadsheet

	fetcher := frankfurter.NewClient(conf.Rates.URL, conf.Rates.Timeout)
	fetcher.Debug = cmd.debug

	started := time.Now()
	updater := fx.Updater{
		Config: fx.Config{
			Start:   conf.Rates.Start,
			Base:    conf.Rates.Base,
			Targets: conf.Rates.Currencies,
		},
		Connect: func(ctx context.Context) (fx.Destination, error) {
			g, err := cmd.connect(ctx, conf.Sheets.Credentials, SHEETS)
			if err != nil {
				return nil, err
			}

			s, err := getSpreadsheet(ctx, g, spreadsheetId)
			if err != nil {
				return nil, err
			}

			sheet, err := getSheet(s, conf.Sheets.Worksheet)
			if err != nil {
				return nil, err
			}

			google = g
			spreadsheet = s

			w := worksheet{
				google:      g,
				spreadsheet: spreadsheetId,
				name:        sheet.Properties.Title,
				input:       conf.Sheets.InputOption,
				debug:       cmd.debug,
			}

			if cmd.dryrun {
				return dryrun{&w}, nil
			}

			return &w, nil
		},
		Fetcher: fetcher,
		Debug:   cmd.debug,
	}

	result := updater.Run(ctx)
	finished := time.Now()

	return cmd.report(ctx, conf, id, result, google, spreadsheet, started, finished)
}

// report logs the run outcome, writes the run to the log worksheet and pushes the run
// metrics. Log sheet and metrics failures are warnings and never change the result of
// the run.
func (cmd *Sync) report(ctx context.Context, conf *config.Config, id string, result fx.Result, google *sheets.Service, spreadsheet *sheets.Spreadsheet, started, finished time.Time) error {
	switch result.Outcome {
	case fx.Updated:
		infof("%v  appended %v rows for %v", id, result.Rows, result.Window)
	case fx.NoOp:
		infof("%v  worksheet is up to date", id)
	default:
		errorf("%v  %v", id, result.Err)
	}

	if !cmd.nolog && !cmd.dryrun && google != nil && spreadsheet != nil {
		l := logsheet{
			google:      google,
			spreadsheet: spreadsheet,
			area:        conf.Sheets.LogRange,
			retention:   conf.Sheets.LogRetention,
			debug:       cmd.debug,
		}

		if err := l.update(ctx, id, result, finished); err != nil {
			warnf("%v", err)
		} else if err := l.prune(ctx, finished); err != nil {
			warnf("%v", err)
		}
	}

	if conf.Metrics.Pushgateway != "" {
		m := newMetrics()
		m.record(result, started, finished)
		if err := m.push(ctx, conf.Metrics.Pushgateway, conf.Metrics.Job, result, finished); err != nil {
			warnf("Error pushing metrics to %v (%v)", conf.Metrics.Pushgateway, err)
		}
	}

	if result.Outcome == fx.Failed {
		return result.Err
	}

	return nil
}

func (cmd *Sync) configure() (*config.Config, error) {
	overrides := map[string]any{}

	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			overrides[key] = v
		}
	}

	set("rates.start", cmd.start)
	set("rates.base", cmd.base)
	set("rates.currencies", cmd.currencies)
	set("rates.url", cmd.provider)
	set("sheets.input-option", cmd.inputOption)
	set("sheets.log-range", cmd.logRange)
	set("metrics.pushgateway", cmd.pushgateway)

	if cmd.logRetention > 0 {
		overrides["sheets.log-retention"] = cmd.logRetention
	}

	conf, err := cmd.load(overrides)
	if err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	if !cmd.nolog {
		if _, err := sheetName(conf.Sheets.LogRange); err != nil {
			return nil, err
		}
	}

	return conf, nil
}
