package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/silverbackhw/portal-sync/internal/models"
	"gorm.io/gorm"
)

var ErrMappingNotFound = errors.New("field mapping not found")

type FieldMappingRepository struct {
	db *gorm.DB
}

func NewFieldMappingRepository(db *gorm.DB) *FieldMappingRepository {
	return &FieldMappingRepository{db: db}
}

// ActiveMappings retrieves active mappings of a record type, oldest first
func (r *FieldMappingRepository) ActiveMappings(ctx context.Context, recordType models.RecordType) ([]models.FieldMapping, error) {
	var mappings []models.FieldMapping
	result := r.db.WithContext(ctx).
		Where("module_type = ? AND is_active = ?", recordType, true).
		Order("created_at ASC").
		Find(&mappings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query active mappings: %w", result.Error)
	}
	return mappings, nil
}

// ListByType retrieves all mappings of a record type, active or not
func (r *FieldMappingRepository) ListByType(ctx context.Context, recordType models.RecordType) ([]models.FieldMapping, error) {
	var mappings []models.FieldMapping
	result := r.db.WithContext(ctx).
		Where("module_type = ?", recordType).
		Order("created_at ASC").
		Find(&mappings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", result.Error)
	}
	return mappings, nil
}

// GetByID retrieves a mapping by ID
func (r *FieldMappingRepository) GetByID(ctx context.Context, id string) (*models.FieldMapping, error) {
	var mapping models.FieldMapping
	result := r.db.WithContext(ctx).First(&mapping, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to get mapping: %w", result.Error)
	}
	return &mapping, nil
}

// Create inserts a new mapping
func (r *FieldMappingRepository) Create(ctx context.Context, mapping *models.FieldMapping) error {
	if err := r.db.WithContext(ctx).Create(mapping).Error; err != nil {
		return fmt.Errorf("failed to create mapping: %w", err)
	}
	return nil
}

// SetActive toggles a mapping on or off
func (r *FieldMappingRepository) SetActive(ctx context.Context, id string, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.FieldMapping{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update mapping: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMappingNotFound
	}
	return nil
}

// Delete removes a mapping
func (r *FieldMappingRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.FieldMapping{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete mapping: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMappingNotFound
	}
	return nil
}
