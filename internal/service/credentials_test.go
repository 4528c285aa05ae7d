package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/repository"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

type mockAdminLookup struct {
	adminFunc func(ctx context.Context) (*models.User, error)
}

func (m *mockAdminLookup) AdminWithRefreshToken(ctx context.Context) (*models.User, error) {
	return m.adminFunc(ctx)
}

func TestFallbackCredentials(t *testing.T) {
	base := zoho.ExternalCredential{ClientID: "id", ClientSecret: "secret"}

	tests := []struct {
		name      string
		static    zoho.ExternalCredential
		admin     *models.User
		adminErr  error
		expected  string
		expectErr bool
	}{
		{
			name:     "configured token wins",
			static:   zoho.ExternalCredential{ClientID: "id", ClientSecret: "secret", RefreshToken: "env"},
			admin:    &models.User{Email: "admin@example.com", ZohoRefreshToken: strPtr("stored")},
			expected: "env",
		},
		{
			name:     "stored token fills the gap",
			static:   base,
			admin:    &models.User{Email: "admin@example.com", ZohoRefreshToken: strPtr("stored")},
			expected: "stored",
		},
		{
			name:     "admin without token",
			static:   base,
			admin:    &models.User{Email: "admin@example.com"},
			expected: "",
		},
		{
			name:     "no admin",
			static:   base,
			adminErr: repository.ErrUserNotFound,
			expected: "",
		},
		{
			name:      "store failure",
			static:    base,
			adminErr:  errors.New("connection refused"),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admins := &mockAdminLookup{
				adminFunc: func(ctx context.Context) (*models.User, error) {
					return tt.admin, tt.adminErr
				},
			}

			cred, err := NewFallbackCredentials(tt.static, admins).Credentials(context.Background())
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cred.RefreshToken != tt.expected {
				t.Errorf("expected refresh token %q, got %q", tt.expected, cred.RefreshToken)
			}
			if cred.ClientID != "id" {
				t.Errorf("expected client id to be kept, got %q", cred.ClientID)
			}
		})
	}
}

func TestFallbackCredentials_UsesAdminHoldingToken(t *testing.T) {
	store := newMemoryStore()
	created := time.Now().Add(-time.Hour)
	store.users["owner"] = models.User{ID: "owner", Email: "owner@example.com", Role: models.RoleAdmin, CreatedAt: created, UpdatedAt: created}
	store.users["ops"] = models.User{ID: "ops", Email: "ops@example.com", Role: models.RoleAdmin, CreatedAt: created.Add(time.Minute), UpdatedAt: created.Add(time.Minute)}

	ctx := context.Background()
	credentials := NewFallbackCredentials(zoho.ExternalCredential{ClientID: "id"}, userRepo{store})

	cred, err := credentials.Credentials(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cred.RefreshToken != "" {
		t.Errorf("expected no refresh token before one is saved, got %q", cred.RefreshToken)
	}

	connection := NewConnectionService(&mockOAuthFlow{}, userRepo{store})
	if err := connection.SaveRefreshToken(ctx, "ops", "refresh-ops"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cred, err = credentials.Credentials(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cred.RefreshToken != "refresh-ops" {
		t.Errorf("expected refresh token from the newer admin, got %q", cred.RefreshToken)
	}
}

type mockOAuthFlow struct {
	exchangeFunc func(code string, redirectURL string) (string, error)
}

func (m *mockOAuthFlow) AuthCodeURL(ctx context.Context, redirectURL string) (string, error) {
	return "https://accounts.example.com/oauth/v2/auth?redirect_uri=" + redirectURL, nil
}

func (m *mockOAuthFlow) Exchange(ctx context.Context, code string, redirectURL string) (string, error) {
	return m.exchangeFunc(code, redirectURL)
}

func TestConnectionService(t *testing.T) {
	store := newMemoryStore()
	store.users["admin"] = models.User{ID: "admin", Email: "admin@example.com", Role: models.RoleAdmin}

	flow := &mockOAuthFlow{exchangeFunc: func(code string, redirectURL string) (string, error) {
		if code != "grant" {
			return "", &zoho.AuthError{StatusCode: 400, Details: "invalid_code"}
		}
		return "refresh-1", nil
	}}
	service := NewConnectionService(flow, userRepo{store})
	ctx := context.Background()

	token, err := service.CompleteAuthorization(ctx, "grant", "https://portal.example.com/callback")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token != "refresh-1" {
		t.Errorf("expected refresh-1, got %q", token)
	}

	if _, err := service.CompleteAuthorization(ctx, "", "x"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := service.CompleteAuthorization(ctx, "bad", "x"); !errors.Is(err, zoho.ErrAuth) {
		t.Errorf("expected auth error, got %v", err)
	}

	if err := service.SaveRefreshToken(ctx, "admin", " refresh-2 "); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := store.users["admin"].ZohoRefreshToken; got == nil || *got != "refresh-2" {
		t.Errorf("expected stored token refresh-2, got %v", got)
	}

	if err := service.SaveRefreshToken(ctx, "admin", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
