package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/silverbackhw/portal-sync/internal/models"
	"gorm.io/gorm"
)

var ErrClaimNotFound = errors.New("claim not found")

type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// FindByZohoID retrieves the claim synced from the given CRM record
func (r *ClaimRepository) FindByZohoID(ctx context.Context, zohoID string) (*models.Claim, error) {
	var claim models.Claim
	result := r.db.WithContext(ctx).First(&claim, "zoho_id = ?", zohoID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", result.Error)
	}
	return &claim, nil
}

// Create inserts a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	if err := r.db.WithContext(ctx).Create(claim).Error; err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing claim
func (r *ClaimRepository) Update(ctx context.Context, claim *models.Claim) error {
	if err := r.db.WithContext(ctx).Save(claim).Error; err != nil {
		return fmt.Errorf("failed to update claim: %w", err)
	}
	return nil
}

// Delete removes a claim by local ID
func (r *ClaimRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Claim{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete claim: %w", err)
	}
	return nil
}
