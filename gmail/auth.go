// OAuth handshake and token cache for the Gmail capability.
//
// The flow is the standard installed-app exchange: read an OAuth client
// from a credentials JSON, send the user to the consent URL, trade the
// pasted code for a token and cache it under the user cache directory.
package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

const oobRedirect = "urn:ietf:wg:oauth:2.0:oob"

// tokenPath returns the cached-token location, creating nothing.
func tokenPath() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(cache, "famulus", "gmail.token"), nil
}

// HasToken reports whether a cached OAuth token exists. It does not
// validate the token; an expired refresh token surfaces on first use.
func HasToken() bool {
	path, err := tokenPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// oauthConfig builds the OAuth2 configuration from a credentials JSON
// file (the artifact downloaded from the Google Cloud console).
func oauthConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsPath, err)
	}
	conf, err := google.ConfigFromJSON(data, gmail.MailGoogleComScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	conf.RedirectURL = oobRedirect
	return conf, nil
}

// AuthURL returns the consent URL for the one-time authorization step.
func AuthURL(credentialsPath string) (string, error) {
	conf, err := oauthConfig(credentialsPath)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline), nil
}

// Exchange trades an authorization code for a token and caches it.
func Exchange(ctx context.Context, credentialsPath, authCode string) error {
	conf, err := oauthConfig(credentialsPath)
	if err != nil {
		return err
	}

	tok, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// httpClient returns an HTTP client backed by the cached token,
// refreshing it as needed.
func httpClient(ctx context.Context, credentialsPath string) (*http.Client, error) {
	conf, err := oauthConfig(credentialsPath)
	if err != nil {
		return nil, err
	}

	path, err := tokenPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no cached Gmail token; run the auth command first")
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}

	return oauth2.NewClient(ctx, conf.TokenSource(ctx, &tok)), nil
}
