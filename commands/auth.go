package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/context"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// authorize returns an HTTP client authorised for the scope. Service account credentials
// are used as is, OAuth2 client credentials require a token previously saved by the
// 'authorise' command.
func authorize(ctx context.Context, credentials, scope, dir string) (*http.Client, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	if isServiceAccount(b) {
		config, err := google.JWTConfigFromJSON(b, scope)
		if err != nil {
			return nil, err
		}

		return config.Client(ctx), nil
	}

	config, err := google.ConfigFromJSON(b, scope)
	if err != nil {
		return nil, err
	}

	tokens := tokenFile(credentials, scope, dir)
	token, err := tokenFromFile(tokens)
	if err != nil {
		return nil, fmt.Errorf("Missing or invalid OAuth2 token file %v - use '%s authorise' to create it (%v)", tokens, APP, err)
	}

	return config.Client(ctx, token), nil
}

func isServiceAccount(credentials []byte) bool {
	var v struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(credentials, &v); err != nil {
		return false
	}

	return v.Type == "service_account"
}

// tokenFile returns the path of the token file for the credentials and scope e.g.
// <workdir>/.google/credentials.sheets
func tokenFile(credentials, scope, dir string) string {
	_, file := filepath.Split(credentials)
	name := strings.TrimSuffix(file, filepath.Ext(file))

	switch {
	case strings.HasPrefix(scope, SHEETS):
		return filepath.Join(dir, fmt.Sprintf("%s.sheets", name))

	default:
		return filepath.Join(dir, fmt.Sprintf("%s.tokens", name))
	}
}

// Retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// Saves a token to a file path.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("Unable to cache OAuth2 token (%v)", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
