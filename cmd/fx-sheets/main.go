package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	uhppoted "github.com/uhppoted/uhppoted-lib/command"

	"github.com/maniAgarwal29/fx-sheets/commands"
)

var cli = []uhppoted.CommandV{
	&commands.VersionCmd,
	&commands.AuthoriseCmd,
	&commands.SyncCmd,
	&commands.GetCmd,
}

var options = commands.Options{
	Debug: false,
}

var help = uhppoted.NewHelpV("fx-sheets", cli, nil)

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	cmd, err := uhppoted.ParseV(cli, nil, help)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	if cmd == nil {
		help.Execute(ctx)
		os.Exit(1)
	}

	if err = cmd.Execute(ctx, &options); err != nil {
		cancel()
		log.Fatalf("%-5s %v", "ERROR", err)
	}
}
