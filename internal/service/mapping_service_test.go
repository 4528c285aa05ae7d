package service

import (
	"context"
	"errors"
	"testing"

	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/repository"
)

func TestMappingService_Create(t *testing.T) {
	store := newMemoryStore()
	service := NewMappingService(mappingRepo{store})
	ctx := context.Background()

	m, err := service.Create(ctx, models.RecordTypePolicy, " customer_email ", "Contact.Email")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !m.IsActive || m.AppField != "customer_email" || m.ZohoField != "Contact.Email" {
		t.Errorf("unexpected mapping %+v", m)
	}

	_, err = service.Create(ctx, models.RecordTypePolicy, "customer_email", "Owner.Email")
	if !errors.Is(err, ErrMappingExists) {
		t.Errorf("expected ErrMappingExists, got %v", err)
	}

	// The same field on another record type is independent
	if _, err := service.Create(ctx, models.RecordTypeClaim, "customer_email", "Owner.Email"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestMappingService_CreateValidation(t *testing.T) {
	tests := []struct {
		name       string
		recordType models.RecordType
		appField   string
		zohoField  string
		expected   error
	}{
		{"unknown record type", "Deal", "policy_id", "Name", ErrInvalidRecordType},
		{"unknown field", models.RecordTypeClaim, "policy_number", "Name", ErrUnknownField},
		{"RE Pro fields are not mappable", models.RecordTypePolicy, "rep_email", "Email", ErrUnknownField},
		{"empty path", models.RecordTypeClaim, "claim_type", "  ", ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMappingService(mappingRepo{newMemoryStore()}).Create(context.Background(), tt.recordType, tt.appField, tt.zohoField)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestMappingService_UnknownFieldListsKnown(t *testing.T) {
	_, err := NewMappingService(mappingRepo{newMemoryStore()}).Create(context.Background(), models.RecordTypeClaim, "nope", "X")

	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
	if len(unknown.Known) == 0 || unknown.Known[0] != "claim_name" {
		t.Errorf("expected known claim fields, got %v", unknown.Known)
	}
}

func TestMappingService_SetActive(t *testing.T) {
	store := newMemoryStore()
	store.mappings = []models.FieldMapping{
		{ID: "m1", ModuleType: models.RecordTypePolicy, AppField: "policy_status", ZohoField: "Stage", IsActive: true},
		{ID: "m2", ModuleType: models.RecordTypePolicy, AppField: "policy_status", ZohoField: "Status_Text", IsActive: false},
	}
	service := NewMappingService(mappingRepo{store})
	ctx := context.Background()

	if _, err := service.SetActive(ctx, "m2", true); !errors.Is(err, ErrMappingExists) {
		t.Fatalf("expected ErrMappingExists, got %v", err)
	}

	m, err := service.SetActive(ctx, "m1", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if m.IsActive {
		t.Error("expected m1 to be inactive")
	}

	if _, err := service.SetActive(ctx, "m2", true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Re-activating an active mapping is not a conflict with itself
	if _, err := service.SetActive(ctx, "m2", true); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if _, err := service.SetActive(ctx, "missing", true); !errors.Is(err, repository.ErrMappingNotFound) {
		t.Errorf("expected ErrMappingNotFound, got %v", err)
	}
}

func TestMappingService_ListAndDelete(t *testing.T) {
	store := newMemoryStore()
	store.mappings = []models.FieldMapping{
		{ID: "m1", ModuleType: models.RecordTypePolicy, AppField: "policy_status", ZohoField: "Stage", IsActive: false},
		{ID: "m2", ModuleType: models.RecordTypeClaim, AppField: "claim_type", ZohoField: "Kind", IsActive: true},
	}
	service := NewMappingService(mappingRepo{store})
	ctx := context.Background()

	list, err := service.List(ctx, models.RecordTypePolicy)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 1 || list[0].ID != "m1" {
		t.Errorf("expected inactive mappings to be listed too, got %v", list)
	}

	if _, err := service.List(ctx, "RE_Pro"); !errors.Is(err, ErrInvalidRecordType) {
		t.Errorf("expected ErrInvalidRecordType, got %v", err)
	}

	if err := service.Delete(ctx, "m2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.mappings) != 1 {
		t.Errorf("expected 1 mapping left, got %d", len(store.mappings))
	}
}
