package zoho

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultAccountsURL = "https://accounts.zoho.com"
	DefaultAPIURL      = "https://www.zohoapis.com"

	scopeModulesAll = "ZohoCRM.modules.ALL"
)

// ExternalCredential is the long-lived OAuth client + refresh token pair
type ExternalCredential struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// CredentialProvider supplies the credential used for every token exchange
type CredentialProvider interface {
	Credentials(ctx context.Context) (ExternalCredential, error)
}

// StaticCredentials serves a fixed credential, typically read from the environment
type StaticCredentials ExternalCredential

func (s StaticCredentials) Credentials(ctx context.Context) (ExternalCredential, error) {
	return ExternalCredential(s), nil
}

// BearerToken is a short-lived access token, valid for a single sync invocation
type BearerToken struct {
	AccessToken string
	Expiry      time.Time
}

type TokenProvider struct {
	creds       CredentialProvider
	accountsURL string
	httpClient  *http.Client
}

func NewTokenProvider(creds CredentialProvider, accountsURL string, httpClient *http.Client) *TokenProvider {
	if strings.TrimSpace(accountsURL) == "" {
		accountsURL = DefaultAccountsURL
	}
	return &TokenProvider{
		creds:       creds,
		accountsURL: strings.TrimRight(accountsURL, "/"),
		httpClient:  httpClient,
	}
}

// AccessToken exchanges the refresh token for a fresh bearer token.
// Nothing is cached; every call hits the token endpoint.
func (p *TokenProvider) AccessToken(ctx context.Context) (BearerToken, error) {
	cred, err := p.creds.Credentials(ctx)
	if err != nil {
		return BearerToken{}, err
	}

	var missing []string
	if cred.ClientID == "" {
		missing = append(missing, "ZOHO_CLIENT_ID")
	}
	if cred.ClientSecret == "" {
		missing = append(missing, "ZOHO_CLIENT_SECRET")
	}
	if cred.RefreshToken == "" {
		missing = append(missing, "ZOHO_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return BearerToken{}, &ConfigurationError{Missing: missing}
	}

	config := p.oauthConfig(cred, "")
	tokenSource := config.TokenSource(p.withHTTPClient(ctx), &oauth2.Token{
		RefreshToken: cred.RefreshToken,
	})

	token, err := tokenSource.Token()
	if err != nil {
		return BearerToken{}, toAuthError(err)
	}
	if token.AccessToken == "" {
		return BearerToken{}, &AuthError{Details: "empty access token"}
	}

	log.Printf("[zoho] Access token obtained, expires at: %s", token.Expiry)

	return BearerToken{AccessToken: token.AccessToken, Expiry: token.Expiry}, nil
}

func (p *TokenProvider) oauthConfig(cred ExternalCredential, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{scopeModulesAll},
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.accountsURL + "/oauth/v2/auth",
			TokenURL:  p.accountsURL + "/oauth/v2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (p *TokenProvider) withHTTPClient(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func toAuthError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		authErr := &AuthError{Details: strings.TrimSpace(string(retrieveErr.Body)), Err: err}
		if retrieveErr.Response != nil {
			authErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return authErr
	}
	return &AuthError{Err: err}
}
