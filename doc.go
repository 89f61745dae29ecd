// Copyright 2026 fx-sheets authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package fx-sheets maintains a Google Sheets worksheet of daily foreign exchange rates.

fx-sheets can be used from the command line but is really intended to be run from a cron job. Each run reads
the last date in the rates worksheet, fetches the rates published since then from the Frankfurter API and
appends them to the worksheet. An empty worksheet is populated from the configured start date.

fx-sheets supports the following commands:

  - authorise, to authorise application access to the Google Sheets spreadsheet
  - sync, to append the missing exchange rates to the rates worksheet
  - get, to download the rates worksheet as a TSV file
  - version, to display the current version
*/
package fxsheets
