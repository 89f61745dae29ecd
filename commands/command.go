package commands

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/maniAgarwal29/fx-sheets/config"
)

const APP = "fx-sheets"

const (
	SHEETS          = "https://www.googleapis.com/auth/spreadsheets"
	SHEETS_READONLY = "https://www.googleapis.com/auth/spreadsheets.readonly"
)

type Options struct {
	Debug bool
}

// command holds the options common to the commands that access the rates worksheet.
// Flags are optional and override the configuration file and environment.
type command struct {
	config      string
	workdir     string
	credentials string
	url         string
	worksheet   string
	debug       bool
}

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&c.config, "config", c.config, "Configuration file path")
	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for working files (tokens, lockfile, etc)")
	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Path for the 'credentials.json' file")
	flagset.StringVar(&c.url, "url", c.url, "Spreadsheet URL")
	flagset.StringVar(&c.worksheet, "worksheet", c.worksheet, "Rates worksheet name. Defaults to the first worksheet in the spreadsheet")

	return flagset
}

func (c *command) load(overrides map[string]any) (*config.Config, error) {
	if overrides == nil {
		overrides = map[string]any{}
	}

	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			overrides[key] = v
		}
	}

	set("sheets.credentials", c.credentials)
	set("sheets.url", c.url)
	set("sheets.worksheet", c.worksheet)

	file := c.config
	if file == "" {
		file = filepath.Join(c.workdir, "fx-sheets.yaml")
	}

	conf, err := config.Load(file, overrides)
	if err != nil {
		return nil, err
	}

	if conf.Sheets.Credentials == "" {
		conf.Sheets.Credentials = DEFAULT_CREDENTIALS
	}

	return conf, nil
}

func (c *command) tokens() string {
	return filepath.Join(c.workdir, ".google")
}

// connect authorises access to Google Sheets and returns a Sheets service client.
func (c *command) connect(ctx context.Context, credentials string, scope string) (*sheets.Service, error) {
	client, err := authorize(ctx, credentials, scope, c.tokens())
	if err != nil {
		return nil, fmt.Errorf("Authentication/authorization error (%w)", err)
	}

	google, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("Unable to create new Sheets client (%w)", err)
	}

	return google, nil
}

// parse extracts the context and global options from the Execute arguments.
func parse(args ...any) (context.Context, Options) {
	ctx := context.Background()
	options := Options{}

	for _, arg := range args {
		switch v := arg.(type) {
		case context.Context:
			ctx = v
		case *Options:
			if v != nil {
				options = *v
			}
		}
	}

	return ctx, options
}

func getSpreadsheet(ctx context.Context, google *sheets.Service, id string) (*sheets.Spreadsheet, error) {
	spreadsheet, err := google.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch spreadsheet (%v)", err)
	}

	return spreadsheet, nil
}

// getSheet returns the named worksheet or the first worksheet if the name is blank.
func getSheet(spreadsheet *sheets.Spreadsheet, name string) (*sheets.Sheet, error) {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties == nil {
			continue
		}

		if strings.TrimSpace(name) == "" {
			return sheet, nil
		}

		if normalise(sheet.Properties.Title) == normalise(name) {
			return sheet, nil
		}
	}

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("Spreadsheet has no worksheets")
	}

	return nil, fmt.Errorf("Unable to identify worksheet for '%s'", name)
}

// sheetName extracts the worksheet name from an A1 range e.g. 'Log' from 'Log!A1:G'.
func sheetName(area string) (string, error) {
	match := regexp.MustCompile(`^(.+?)!.*`).FindStringSubmatch(strings.TrimSpace(area))
	if len(match) < 2 {
		return "", fmt.Errorf("Invalid range '%s' - expected something like 'Log!A1:G'", area)
	}

	return strings.Trim(match[1], "'"), nil
}

// quote returns the worksheet name quoted for use in an A1 range.
func quote(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func helpOptions(flagset *flag.FlagSet) {
	count := 0
	flag.VisitAll(func(f *flag.Flag) {
		count++
	})

	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	if count > 0 {
		fmt.Println()
		fmt.Println("  Options:")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
		})
	}
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}

func debugf(format string, args ...any) {
	log.Printf("%-5s %s", "DEBUG", fmt.Sprintf(format, args...))
}

func infof(format string, args ...any) {
	log.Printf("%-5s %s", "INFO", fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %s", "WARN", fmt.Sprintf(format, args...))
}

func errorf(format string, args ...any) {
	log.Printf("%-5s %s", "ERROR", fmt.Sprintf(format, args...))
}
