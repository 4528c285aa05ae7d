package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/silverbackhw/portal-sync/internal/models"
	"gorm.io/gorm"
)

var ErrREProNotFound = errors.New("re pro not found")

type REProRepository struct {
	db *gorm.DB
}

func NewREProRepository(db *gorm.DB) *REProRepository {
	return &REProRepository{db: db}
}

// FindByZohoID retrieves the RE Pro synced from the given CRM record
func (r *REProRepository) FindByZohoID(ctx context.Context, zohoID string) (*models.REPro, error) {
	var rePro models.REPro
	result := r.db.WithContext(ctx).First(&rePro, "zoho_id = ?", zohoID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrREProNotFound
		}
		return nil, fmt.Errorf("failed to get re pro: %w", result.Error)
	}
	return &rePro, nil
}

// Create inserts a new RE Pro
func (r *REProRepository) Create(ctx context.Context, rePro *models.REPro) error {
	if err := r.db.WithContext(ctx).Create(rePro).Error; err != nil {
		return fmt.Errorf("failed to create re pro: %w", err)
	}
	return nil
}

// Update overwrites every column of an existing RE Pro
func (r *REProRepository) Update(ctx context.Context, rePro *models.REPro) error {
	if err := r.db.WithContext(ctx).Save(rePro).Error; err != nil {
		return fmt.Errorf("failed to update re pro: %w", err)
	}
	return nil
}
