package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/silverbackhw/portal-sync/internal/mapping"
	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/repository"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

// WebhookEvent is a CRM change notification. Only the first record is applied.
type WebhookEvent struct {
	Module    string
	Operation string
	Data      []zoho.Record
}

const OperationDelete = "delete"

// ApplyWebhook mirrors a single CRM change into the local store.
// Updates overlay only the values present in the payload. Deleting a record
// that was never synced is a no-op.
func (s *SyncService) ApplyWebhook(ctx context.Context, event WebhookEvent) (string, error) {
	if len(event.Data) == 0 {
		return "No data received", nil
	}

	record := event.Data[0]
	if record.ID() == "" {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, ErrMissingRecordID)
	}

	operation := strings.ToLower(strings.TrimSpace(event.Operation))

	var err error
	switch event.Module {
	case ModulePolicies:
		err = s.applyPolicyEvent(ctx, operation, record)
	case ModuleClaims:
		err = s.applyClaimEvent(ctx, operation, record)
	default:
		log.Printf("[webhook] Ignoring %s event for module %q", operation, event.Module)
		return "Module not handled", nil
	}
	if err != nil {
		return "", err
	}

	log.Printf("[webhook] Applied %s %s for record %s", event.Module, operation, record.ID())
	return "Webhook processed", nil
}

func (s *SyncService) applyPolicyEvent(ctx context.Context, operation string, record zoho.Record) error {
	existing, err := s.stores.Policies.FindByZohoID(ctx, record.ID())
	if err != nil && !errors.Is(err, repository.ErrPolicyNotFound) {
		return err
	}

	if operation == OperationDelete {
		if existing == nil {
			return nil
		}
		return s.stores.Policies.Delete(ctx, existing.ID)
	}

	if existing != nil {
		values := (*mapping.Rules)(nil).Apply(record, mapping.WebhookPolicyUpdateFields)
		assignColumns(policyColumns(existing), values, true)
		return s.stores.Policies.Update(ctx, existing)
	}

	values := (*mapping.Rules)(nil).Apply(record, mapping.WebhookPolicyFields)

	policy := &models.Policy{
		ID:       uuid.New().String(),
		ZohoID:   record.ID(),
		AddOns:   mapping.JSONList(nil),
		REProIDs: mapping.JSONList(nil),
	}
	assignColumns(policyColumns(policy), values, false)
	return s.stores.Policies.Create(ctx, policy)
}

func (s *SyncService) applyClaimEvent(ctx context.Context, operation string, record zoho.Record) error {
	existing, err := s.stores.Claims.FindByZohoID(ctx, record.ID())
	if err != nil && !errors.Is(err, repository.ErrClaimNotFound) {
		return err
	}

	if operation == OperationDelete {
		if existing == nil {
			return nil
		}
		return s.stores.Claims.Delete(ctx, existing.ID)
	}

	if existing != nil {
		values := (*mapping.Rules)(nil).Apply(record, mapping.WebhookClaimUpdateFields)
		assignColumns(claimColumns(existing), values, true)
		existing.PolicyID = models.NewPolicyRef(existing.PolicyID).Ptr()
		return s.stores.Claims.Update(ctx, existing)
	}

	claim := claimFromValues((*mapping.Rules)(nil).Apply(record, mapping.WebhookClaimFields))
	claim.ID = uuid.New().String()
	claim.ZohoID = record.ID()
	return s.stores.Claims.Create(ctx, claim)
}
