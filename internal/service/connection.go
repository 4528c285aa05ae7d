package service

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// OAuthFlow is the CRM authorization code flow
type OAuthFlow interface {
	AuthCodeURL(ctx context.Context, redirectURL string) (string, error)
	Exchange(ctx context.Context, code string, redirectURL string) (string, error)
}

// ConnectionService connects the portal to the CRM account whose data it syncs
type ConnectionService struct {
	flow  OAuthFlow
	users UserRepository
}

func NewConnectionService(flow OAuthFlow, users UserRepository) *ConnectionService {
	return &ConnectionService{
		flow:  flow,
		users: users,
	}
}

// AuthURL builds the consent URL an admin opens to authorize offline access
func (s *ConnectionService) AuthURL(ctx context.Context, redirectURL string) (string, error) {
	return s.flow.AuthCodeURL(ctx, redirectURL)
}

// CompleteAuthorization trades the callback code for a refresh token
func (s *ConnectionService) CompleteAuthorization(ctx context.Context, code string, redirectURL string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("%w: code is required", ErrInvalidRequest)
	}

	refreshToken, err := s.flow.Exchange(ctx, code, redirectURL)
	if err != nil {
		return "", err
	}

	log.Printf("[connection] CRM authorization completed")
	return refreshToken, nil
}

// SaveRefreshToken stores a refresh token on the admin, used when none is configured
func (s *ConnectionService) SaveRefreshToken(ctx context.Context, userID string, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return fmt.Errorf("%w: refresh token is required", ErrInvalidRequest)
	}

	if err := s.users.SetZohoRefreshToken(ctx, userID, strings.TrimSpace(refreshToken)); err != nil {
		return err
	}

	log.Printf("[connection] Stored CRM refresh token for user %s", userID)
	return nil
}
