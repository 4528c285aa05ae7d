package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/silverbackhw/portal-sync/internal/mapping"
	"github.com/silverbackhw/portal-sync/internal/models"
)

// MappingService backs the field mapping editor.
// It keeps at most one active mapping per record type and app field.
type MappingService struct {
	mappings FieldMappingRepository
}

func NewMappingService(mappings FieldMappingRepository) *MappingService {
	return &MappingService{mappings: mappings}
}

// List returns every mapping of a record type, oldest first
func (s *MappingService) List(ctx context.Context, recordType models.RecordType) ([]models.FieldMapping, error) {
	if !recordType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecordType, recordType)
	}
	return s.mappings.ListByType(ctx, recordType)
}

// Create adds an active mapping from an app field to a CRM field path
func (s *MappingService) Create(ctx context.Context, recordType models.RecordType, appField string, zohoField string) (*models.FieldMapping, error) {
	appField = strings.TrimSpace(appField)
	zohoField = strings.TrimSpace(zohoField)

	if !recordType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecordType, recordType)
	}
	if !mapping.IsKnownField(recordType, appField) {
		return nil, &UnknownFieldError{Field: appField, Known: mapping.KnownFields(recordType)}
	}
	if zohoField == "" {
		return nil, fmt.Errorf("%w: zoho_field is required", ErrInvalidRequest)
	}

	if err := s.ensureUnmapped(ctx, recordType, appField, ""); err != nil {
		return nil, err
	}

	m := &models.FieldMapping{
		ID:         uuid.New().String(),
		ModuleType: recordType,
		AppField:   appField,
		ZohoField:  zohoField,
		IsActive:   true,
	}
	if err := s.mappings.Create(ctx, m); err != nil {
		return nil, err
	}

	log.Printf("[mapping] Created %s mapping %s -> %s", recordType, appField, zohoField)
	return m, nil
}

// SetActive toggles a mapping. Activating fails when another mapping for the
// same field is already active.
func (s *MappingService) SetActive(ctx context.Context, id string, active bool) (*models.FieldMapping, error) {
	m, err := s.mappings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if active && !m.IsActive {
		if err := s.ensureUnmapped(ctx, m.ModuleType, m.AppField, m.ID); err != nil {
			return nil, err
		}
	}

	if err := s.mappings.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	m.IsActive = active
	return m, nil
}

// Delete removes a mapping; the field reverts to its default rule on the next sync
func (s *MappingService) Delete(ctx context.Context, id string) error {
	return s.mappings.Delete(ctx, id)
}

func (s *MappingService) ensureUnmapped(ctx context.Context, recordType models.RecordType, appField string, exceptID string) error {
	active, err := s.mappings.ActiveMappings(ctx, recordType)
	if err != nil {
		return err
	}
	for _, m := range active {
		if m.AppField == appField && m.ID != exceptID {
			return fmt.Errorf("%w: %s.%s -> %s", ErrMappingExists, recordType, appField, m.ZohoField)
		}
	}
	return nil
}
