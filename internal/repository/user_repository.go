package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/silverbackhw/portal-sync/internal/models"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "LOWER(email) = LOWER(TRIM(?))", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}
	return &user, nil
}

// AdminWithRefreshToken retrieves the admin that most recently stored a CRM refresh token
func (r *UserRepository) AdminWithRefreshToken(ctx context.Context) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).
		Where("role = ? AND zoho_refresh_token IS NOT NULL AND zoho_refresh_token <> ''", models.RoleAdmin).
		Order("updated_at DESC").
		First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get admin user: %w", result.Error)
	}
	return &user, nil
}

// UpdateCustomerType sets the customer type tag of a user
func (r *UserRepository) UpdateCustomerType(ctx context.Context, userID string, customerType string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"customer_type": customerType,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update customer type: %w", result.Error)
	}
	return nil
}

// SetZohoRefreshToken stores a CRM refresh token on the user
func (r *UserRepository) SetZohoRefreshToken(ctx context.Context, userID string, refreshToken string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"zoho_refresh_token": refreshToken,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save refresh token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
