package zoho

import (
	"context"

	"golang.org/x/oauth2"
)

// AuthCodeURL builds the consent URL for the one-time offline authorization
func (p *TokenProvider) AuthCodeURL(ctx context.Context, redirectURL string) (string, error) {
	cred, err := p.creds.Credentials(ctx)
	if err != nil {
		return "", err
	}
	if cred.ClientID == "" {
		return "", &ConfigurationError{Missing: []string{"ZOHO_CLIENT_ID"}}
	}

	config := p.oauthConfig(cred, redirectURL)
	return config.AuthCodeURL("", oauth2.AccessTypeOffline), nil
}

// Exchange trades an authorization code for a refresh token
func (p *TokenProvider) Exchange(ctx context.Context, code string, redirectURL string) (string, error) {
	cred, err := p.creds.Credentials(ctx)
	if err != nil {
		return "", err
	}
	if cred.ClientID == "" || cred.ClientSecret == "" {
		return "", &ConfigurationError{Missing: []string{"ZOHO_CLIENT_ID", "ZOHO_CLIENT_SECRET"}}
	}

	config := p.oauthConfig(cred, redirectURL)
	token, err := config.Exchange(p.withHTTPClient(ctx), code)
	if err != nil {
		return "", toAuthError(err)
	}
	if token.RefreshToken == "" {
		return "", &AuthError{Details: "no refresh token in response (access_type=offline required)"}
	}

	return token.RefreshToken, nil
}
