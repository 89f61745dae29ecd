package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maniAgarwal29/fx-sheets/fx"
)

var GetCmd = Get{
	command: command{
		workdir: DEFAULT_WORKDIR,
	},

	file: time.Now().Format("rates-2006-01-02T150405.tsv"),
}

type Get struct {
	command
	file string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the exchange rates from a Google Sheets worksheet and stores them to a local file"
}

func (cmd *Get) Usage() string {
	return "--credentials <file> --url <url> --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] get [options] --url <URL> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the exchange rates worksheet to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    fx-sheets --debug get --credentials "credentials.json" \`)
	fmt.Println(`                          --url "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" \`)
	fmt.Println(`                          --worksheet "Rates" \`)
	fmt.Println(`                          --file "rates.tsv"`)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to 'rates-<yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
	ctx, options := parse(args...)

	cmd.debug = options.Debug

	conf, err := cmd.load(nil)
	if err != nil {
		return err
	}

	spreadsheetId, err := conf.SpreadsheetID()
	if err != nil {
		return err
	}

	google, err := cmd.connect(ctx, conf.Sheets.Credentials, SHEETS_READONLY)
	if err != nil {
		return err
	}

	spreadsheet, err := getSpreadsheet(ctx, google, spreadsheetId)
	if err != nil {
		return err
	}

	sheet, err := getSheet(spreadsheet, conf.Sheets.Worksheet)
	if err != nil {
		return err
	}

	area := quote(sheet.Properties.Title)

	if cmd.debug {
		debugf("Spreadsheet - ID:%s  range:%s", spreadsheetId, area)
	}

	response, err := google.Spreadsheets.Values.Get(spreadsheetId, area).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Unable to retrieve data from sheet (%v)", err)
	}

	if len(response.Values) == 0 {
		return fmt.Errorf("No data in spreadsheet/range")
	}

	tmp, err := os.CreateTemp(os.TempDir(), "rates")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := fx.MakeTSV(tmp, response.Values); err != nil {
		return fmt.Errorf("Error creating TSV file (%v)", err)
	}

	tmp.Close()

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	infof("Retrieved exchange rates to file %s", cmd.file)

	return nil
}
