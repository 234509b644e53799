package clickup

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAuthorizeURL is where the user approves the OAuth app.
	DefaultAuthorizeURL = "https://app.clickup.com/api"

	// DefaultTokenURL is the code-for-token exchange endpoint.
	DefaultTokenURL = "https://api.clickup.com/api/v2/oauth/token"

	oauthTimeout = 10 * time.Second
)

// OAuthConfig holds the OAuth app registration. AuthorizeURL and TokenURL
// default to the ClickUp endpoints when empty.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthorizeURL string
	TokenURL     string
}

// OAuth performs the ClickUp authorization-code exchange.
type OAuth struct {
	cfg        OAuthConfig
	httpClient *http.Client
}

// NewOAuth creates the OAuth helper.
func NewOAuth(cfg OAuthConfig) *OAuth {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	return &OAuth{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: oauthTimeout},
	}
}

// AuthorizationURL builds the browser URL that starts the flow. The state
// value comes back on the redirect and guards against forged callbacks.
func (o *OAuth) AuthorizationURL(state string) string {
	query := url.Values{}
	query.Set("client_id", o.cfg.ClientID)
	query.Set("redirect_uri", o.cfg.RedirectURI)
	if state != "" {
		query.Set("state", state)
	}
	return o.cfg.AuthorizeURL + "?" + query.Encode()
}

// ExchangeCode trades an authorization code for an access token. A 2xx
// response without an access_token is a hard failure (ErrMissingToken).
func (o *OAuth) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", o.cfg.ClientID)
	form.Set("client_secret", o.cfg.ClientSecret)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", ErrInvalidURL
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Cause: err, Timeout: isTimeout(err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Cause: err, Timeout: isTimeout(err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", ErrInvalidResponse
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &token); err != nil {
		return "", &DecodeError{Path: "access_token", Cause: err}
	}
	if token.AccessToken == "" {
		return "", ErrMissingToken
	}
	return token.AccessToken, nil
}
