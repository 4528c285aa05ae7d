package zoho

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/v2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "client", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
}

func TestTokenProvider_AccessToken(t *testing.T) {
	server := newTokenServer(t, http.StatusOK, `{"access_token":"abc","token_type":"Bearer","expires_in":3600}`)
	defer server.Close()

	creds := StaticCredentials{ClientID: "client", ClientSecret: "secret", RefreshToken: "refresh"}
	provider := NewTokenProvider(creds, server.URL, server.Client())

	token, err := provider.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token.AccessToken)
	assert.False(t, token.Expiry.IsZero())
}

func TestTokenProvider_MissingCredentials(t *testing.T) {
	provider := NewTokenProvider(StaticCredentials{ClientID: "client"}, "", nil)

	_, err := provider.AccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"ZOHO_CLIENT_SECRET", "ZOHO_REFRESH_TOKEN"}, cfgErr.Missing)
}

func TestTokenProvider_RejectedExchange(t *testing.T) {
	server := newTokenServer(t, http.StatusBadRequest, `{"error":"invalid_code"}`)
	defer server.Close()

	creds := StaticCredentials{ClientID: "client", ClientSecret: "secret", RefreshToken: "refresh"}
	provider := NewTokenProvider(creds, server.URL, server.Client())

	_, err := provider.AccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Details, "invalid_code")
}

func TestTokenProvider_NoAccessTokenInBody(t *testing.T) {
	server := newTokenServer(t, http.StatusOK, `{"error":"invalid_client"}`)
	defer server.Close()

	creds := StaticCredentials{ClientID: "client", ClientSecret: "secret", RefreshToken: "refresh"}
	provider := NewTokenProvider(creds, server.URL, server.Client())

	_, err := provider.AccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))
}

func TestTokenProvider_AuthCodeURL(t *testing.T) {
	provider := NewTokenProvider(StaticCredentials{ClientID: "client"}, "https://accounts.example.com", nil)

	authURL, err := provider.AuthCodeURL(context.Background(), "https://portal.example.com/api/zoho/callback")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/oauth/v2/auth", parsed.Path)
	assert.Equal(t, "client", parsed.Query().Get("client_id"))
	assert.Equal(t, "code", parsed.Query().Get("response_type"))
	assert.Equal(t, "offline", parsed.Query().Get("access_type"))
	assert.Equal(t, "ZohoCRM.modules.ALL", parsed.Query().Get("scope"))
	assert.Equal(t, "https://portal.example.com/api/zoho/callback", parsed.Query().Get("redirect_uri"))
}

func TestTokenProvider_Exchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"abc","refresh_token":"long-lived","expires_in":3600}`)
	}))
	defer server.Close()

	creds := StaticCredentials{ClientID: "client", ClientSecret: "secret"}
	provider := NewTokenProvider(creds, server.URL, server.Client())

	refreshToken, err := provider.Exchange(context.Background(), "the-code", "https://portal.example.com/cb")
	require.NoError(t, err)
	assert.Equal(t, "long-lived", refreshToken)
}
