package commands

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var AuthoriseCmd = Authorise{
	command: command{
		workdir: DEFAULT_WORKDIR,
	},
	port: 8080,
}

type Authorise struct {
	command
	port uint
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises fx-sheets to access a Google Sheets spreadsheet"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options] --credentials <file>\n", APP)
	fmt.Println()
	fmt.Println("  Authorises fx-sheets to read and update Google Sheets spreadsheets using OAuth2 client")
	fmt.Println("  credentials. The access token is stored in the .google folder in the working directory.")
	fmt.Println("  Not required for service account credentials.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    fx-sheets authorise --credentials "credentials.json"`)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("authorise", flag.ExitOnError)

	flagset.StringVar(&cmd.config, "config", cmd.config, "Configuration file path")
	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, lockfile, etc)")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the 'credentials.json' file")
	flagset.UintVar(&cmd.port, "port", cmd.port, "Local port for the OAuth2 redirect")

	return flagset
}

func (cmd *Authorise) Execute(args ...any) error {
	ctx, options := parse(args...)

	cmd.debug = options.Debug

	conf, err := cmd.load(nil)
	if err != nil {
		return err
	}

	credentials := conf.Sheets.Credentials
	if strings.TrimSpace(credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	b, err := os.ReadFile(credentials)
	if err != nil {
		return err
	}

	if isServiceAccount(b) {
		infof("%v contains service account credentials - no authorisation required", credentials)
		return nil
	}

	config, err := google.ConfigFromJSON(b, SHEETS)
	if err != nil {
		return fmt.Errorf("Authorisation error (%v)", err)
	}

	tokens := tokenFile(credentials, SHEETS, cmd.tokens())

	if err := cmd.authenticate(ctx, config, tokens); err != nil {
		return fmt.Errorf("Authorisation error (%v)", err)
	}

	return nil
}

// authenticate runs the OAuth2 'installed application' flow with a redirect to a local
// HTTP server and saves the resulting token.
func (cmd *Authorise) authenticate(ctx context.Context, config *oauth2.Config, tokens string) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%v", cmd.port))
	if err != nil {
		return err
	}

	config.RedirectURL = fmt.Sprintf("http://localhost:%v/", cmd.port)

	authorised := make(chan string, 1)
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, rq *http.Request) {
		state := rq.FormValue("state")
		code := rq.FormValue("code")

		if cmd.debug {
			debugf("RQ  %v  state:%v", rq.URL.Path, state)
		}

		if state == "state-token" && code != "" {
			fmt.Fprintln(w, "fx-sheets authorised - you can close this window")
			select {
			case authorised <- code:
			default:
			}
			return
		}

		http.Error(w, "invalid authorisation response", http.StatusBadRequest)
	})

	srv := &http.Server{
		Handler: mux,
	}

	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			errorf("%v", err)
		}
	}()

	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			warnf("%v", err)
		}
	}()

	// ... CTRL-C handler
	interrupt := make(chan os.Signal, 1)

	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	fmt.Println()
	fmt.Println("Open the following link in your browser to authorise access to Google Sheets:")
	fmt.Println()
	fmt.Printf("  %v\n", config.AuthCodeURL("state-token", oauth2.AccessTypeOffline))
	fmt.Println()

	// ... wait for authorisation
	select {
	case <-interrupt:
		fmt.Printf("\n.. cancelled\n\n")
		return nil

	case <-ctx.Done():
		return ctx.Err()

	case code := <-authorised:
		token, err := config.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("Unable to retrieve token from web (%v)", err)
		}

		if err := saveToken(tokens, token); err != nil {
			return err
		}

		infof("Saved OAuth2 token to %v", tokens)
	}

	return nil
}
