package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/elboulangero/exaile-webradio-title/utils"
)

var ErrMissingCredentials = errors.New("spotify client id and secret are required")

// Credentials of a Spotify application. Searching the catalog needs no user
// login so the client credentials flow is enough.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
}

// tokenSource returns tokens from the token file while they are valid, and
// asks Spotify for a new one otherwise.
type tokenSource struct {
	path string
	base oauth2.TokenSource
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	token, err := loadTokenFromFile(ts.path)
	if err != nil {
		utils.Logger.Debug("Error loading token: ", err)
	}
	if token != nil && token.Valid() {
		return token, nil
	}

	token, err = ts.base.Token()
	if err != nil {
		return nil, err
	}
	if err := saveTokenToFile(ts.path, token); err != nil {
		utils.Logger.Warnf("Error saving token to %s: %v", ts.path, err)
	}
	return token, nil
}

// NewClient authenticates against Spotify and returns a catalog client.
func NewClient(ctx context.Context, creds Credentials) (*spotify.Client, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	utils.Logger.Debugf("Initializing Spotify client with client ID: %s", creds.ClientID)

	conf := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	var source oauth2.TokenSource = conf.TokenSource(ctx)
	if creds.TokenFile != "" {
		source = &tokenSource{path: creds.TokenFile, base: source}
	}
	source = oauth2.ReuseTokenSource(nil, source)

	if _, err := source.Token(); err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, source)
	return spotify.New(httpClient, spotify.WithRetry(true)), nil
}

func saveTokenToFile(path string, token *oauth2.Token) error {
	if token == nil {
		return nil
	}
	utils.Logger.Debugf("Saving token to file: %s", path)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(token)
}

func loadTokenFromFile(path string) (*oauth2.Token, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer file.Close()

	var token oauth2.Token
	err = json.NewDecoder(file).Decode(&token)
	if err != nil {
		return nil, err
	}

	return &token, nil
}
