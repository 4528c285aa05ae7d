package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/repository"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

// AdminLookup finds the admin whose stored refresh token backs sync
type AdminLookup interface {
	AdminWithRefreshToken(ctx context.Context) (*models.User, error)
}

// FallbackCredentials serves the configured credential, taking the refresh
// token from the admin that last stored one when none is configured
type FallbackCredentials struct {
	static zoho.ExternalCredential
	admins AdminLookup
}

func NewFallbackCredentials(static zoho.ExternalCredential, admins AdminLookup) *FallbackCredentials {
	return &FallbackCredentials{
		static: static,
		admins: admins,
	}
}

func (c *FallbackCredentials) Credentials(ctx context.Context) (zoho.ExternalCredential, error) {
	cred := c.static
	if cred.RefreshToken != "" || c.admins == nil {
		return cred, nil
	}

	admin, err := c.admins.AdminWithRefreshToken(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return cred, nil
		}
		return zoho.ExternalCredential{}, fmt.Errorf("failed to read stored refresh token: %w", err)
	}

	if admin.ZohoRefreshToken != nil && *admin.ZohoRefreshToken != "" {
		log.Printf("[sync] Using refresh token stored on admin %s", admin.Email)
		cred.RefreshToken = *admin.ZohoRefreshToken
	}
	return cred, nil
}
