package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/silverbackhw/portal-sync/internal/models"
	"gorm.io/gorm"
)

var ErrPolicyNotFound = errors.New("policy not found")

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// FindByZohoID retrieves the policy synced from the given CRM record
func (r *PolicyRepository) FindByZohoID(ctx context.Context, zohoID string) (*models.Policy, error) {
	var policy models.Policy
	result := r.db.WithContext(ctx).First(&policy, "zoho_id = ?", zohoID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", result.Error)
	}
	return &policy, nil
}

// Create inserts a new policy
func (r *PolicyRepository) Create(ctx context.Context, policy *models.Policy) error {
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		return fmt.Errorf("failed to create policy: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing policy
func (r *PolicyRepository) Update(ctx context.Context, policy *models.Policy) error {
	if err := r.db.WithContext(ctx).Save(policy).Error; err != nil {
		return fmt.Errorf("failed to update policy: %w", err)
	}
	return nil
}

// Delete removes a policy by local ID
func (r *PolicyRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Policy{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	return nil
}

// ExistsByCustomerEmail reports whether any policy lists the email as its customer
func (r *PolicyRepository) ExistsByCustomerEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Policy{}).
		Where("LOWER(TRIM(customer_email)) = LOWER(TRIM(?))", email).
		Limit(1).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to query policies by customer email: %w", result.Error)
	}
	return count > 0, nil
}
