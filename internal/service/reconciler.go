package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/silverbackhw/portal-sync/internal/mapping"
	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/repository"
	"github.com/silverbackhw/portal-sync/internal/zoho"
	"gorm.io/datatypes"
)

const relatedClaimsList = "Claim_Info"

// Reconciler writes raw CRM records into the local store, deduplicating by CRM id.
// Records are processed one at a time; a failing record never aborts the batch.
type Reconciler struct {
	policies PolicyRepository
	claims   ClaimRepository
	rePros   REProRepository
	remote   RemoteAPI
	resolver *mapping.Resolver
}

func NewReconciler(
	policies PolicyRepository,
	claims ClaimRepository,
	rePros REProRepository,
	remote RemoteAPI,
	resolver *mapping.Resolver,
) *Reconciler {
	return &Reconciler{
		policies: policies,
		claims:   claims,
		rePros:   rePros,
		remote:   remote,
		resolver: resolver,
	}
}

// ReconcilePolicies upserts policies, then the claims related to each of them
func (r *Reconciler) ReconcilePolicies(ctx context.Context, accessToken string, module string, raws []zoho.Record) (*SyncResult, error) {
	policyRules, err := r.resolver.Rules(ctx, models.RecordTypePolicy)
	if err != nil {
		return nil, err
	}
	claimRules, err := r.resolver.Rules(ctx, models.RecordTypeClaim)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Total: len(raws)}
	for _, raw := range raws {
		var policy *models.Policy
		err := isolate(func() error {
			var created bool
			var upsertErr error
			policy, created, upsertErr = r.upsertPolicy(ctx, raw, policyRules)
			if upsertErr != nil {
				return upsertErr
			}
			result.Policies.count(created)
			return nil
		})
		if err != nil {
			log.Printf("[reconciler] Error processing policy %s: %v", raw.Identifier(), err)
			result.addError(raw.Identifier(), err)
			continue
		}

		result.addREProIDs(jsonStrings(policy.REProIDs))
		r.cascadeClaims(ctx, accessToken, module, policy, claimRules, result)
	}

	log.Printf("[reconciler] Policies: %d created, %d updated; related claims: %d created, %d updated; %d errors",
		result.Policies.Created, result.Policies.Updated, result.Claims.Created, result.Claims.Updated, len(result.Errors))

	return result, nil
}

// ReconcileClaims upserts standalone claims
func (r *Reconciler) ReconcileClaims(ctx context.Context, raws []zoho.Record) (*SyncResult, error) {
	rules, err := r.resolver.Rules(ctx, models.RecordTypeClaim)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Total: len(raws)}
	for _, raw := range raws {
		err := isolate(func() error {
			claim := claimFromValues(rules.Apply(raw, mapping.ClaimFields))
			claim.ZohoID = raw.ID()
			created, err := r.upsertClaim(ctx, claim)
			if err != nil {
				return err
			}
			result.Claims.count(created)
			return nil
		})
		if err != nil {
			log.Printf("[reconciler] Error processing claim %s: %v", raw.Identifier(), err)
			result.addError(raw.Identifier(), err)
		}
	}

	log.Printf("[reconciler] Claims: %d created, %d updated, %d errors",
		result.Claims.Created, result.Claims.Updated, len(result.Errors))

	return result, nil
}

// ReconcileREPros upserts RE Pros and reports their emails for user tagging
func (r *Reconciler) ReconcileREPros(ctx context.Context, raws []zoho.Record) (*SyncResult, error) {
	result := &SyncResult{Total: len(raws)}
	for _, raw := range raws {
		err := isolate(func() error {
			rePro := &models.REPro{}
			assignColumns(reProColumns(rePro), (*mapping.Rules)(nil).Apply(raw, mapping.REProFields), false)
			rePro.ZohoID = raw.ID()

			created, err := r.upsertREPro(ctx, rePro)
			if err != nil {
				return err
			}
			result.REPros.count(created)
			if rePro.RepEmail != nil {
				result.REProEmails = append(result.REProEmails, *rePro.RepEmail)
			}
			return nil
		})
		if err != nil {
			log.Printf("[reconciler] Error processing RE Pro %s: %v", raw.Identifier(), err)
			result.addError(raw.Identifier(), err)
		}
	}

	log.Printf("[reconciler] RE Pros: %d created, %d updated, %d errors",
		result.REPros.Created, result.REPros.Updated, len(result.Errors))

	return result, nil
}

func (r *Reconciler) upsertPolicy(ctx context.Context, raw zoho.Record, rules *mapping.Rules) (*models.Policy, bool, error) {
	values := rules.Apply(raw, mapping.PolicyFields)

	policy := &models.Policy{}
	assignColumns(policyColumns(policy), values, false)
	policy.AddOns = mapping.JSONList(values["add_ons"])
	policy.BuyerAgentEmail = mapping.LookupEmail(raw, "Buyer_Agent")
	policy.ListingAgentEmail = mapping.LookupEmail(raw, "Listing_Agent")
	policy.TitleEscrowEmail = mapping.LookupEmail(raw, "Title_Escrow")
	policy.REProIDs = mapping.JSONList(toAnySlice(extractREProIDs(raw)))
	policy.ZohoID = raw.ID()

	if policy.ZohoID == "" {
		return nil, false, ErrMissingRecordID
	}

	existing, err := r.policies.FindByZohoID(ctx, policy.ZohoID)
	switch {
	case err == nil:
		policy.ID = existing.ID
		policy.CreatedAt = existing.CreatedAt
		if err := r.policies.Update(ctx, policy); err != nil {
			return nil, false, err
		}
		return policy, false, nil
	case errors.Is(err, repository.ErrPolicyNotFound):
		policy.ID = uuid.New().String()
		if err := r.policies.Create(ctx, policy); err != nil {
			return nil, false, err
		}
		return policy, true, nil
	default:
		return nil, false, err
	}
}

// cascadeClaims syncs the claims listed under a policy.
// Values the child lacks are inherited from the parent.
func (r *Reconciler) cascadeClaims(ctx context.Context, accessToken string, module string, policy *models.Policy, rules *mapping.Rules, result *SyncResult) {
	children, err := r.remote.Related(ctx, accessToken, module, policy.ZohoID, relatedClaimsList)
	if err != nil {
		log.Printf("[reconciler] Failed to fetch related claims for policy %s: %v", policy.ZohoID, err)
		return
	}
	if len(children) == 0 {
		return
	}

	log.Printf("[reconciler] Found %d related claims for policy %s", len(children), policy.ZohoID)

	for _, child := range children {
		err := isolate(func() error {
			claim := claimFromValues(rules.Apply(child, mapping.RelatedClaimFields))
			claim.ZohoID = child.ID()

			// A value the child resolves itself, mapped or not, beats the parent's
			if claim.PolicyID == nil {
				claim.PolicyID = models.NewPolicyRef(policy.PolicyNumber).Ptr()
			}
			if claim.CustomerEmail == nil {
				claim.CustomerEmail = policy.CustomerEmail
			}
			if claim.PropertyAddress == nil {
				claim.PropertyAddress = policy.PropertyAddress
			}
			claim.BuyerAgentEmail = mapping.LookupEmail(child, "Buyer_Agent")
			if claim.BuyerAgentEmail == nil {
				claim.BuyerAgentEmail = policy.BuyerAgentEmail
			}

			created, err := r.upsertClaim(ctx, claim)
			if err != nil {
				return err
			}
			result.Claims.count(created)
			return nil
		})
		if err != nil {
			log.Printf("[reconciler] Error processing claim %s: %v", child.Identifier(), err)
			result.addError(child.Identifier(), err)
		}
	}
}

func (r *Reconciler) upsertClaim(ctx context.Context, claim *models.Claim) (bool, error) {
	if claim.ZohoID == "" {
		return false, ErrMissingRecordID
	}

	existing, err := r.claims.FindByZohoID(ctx, claim.ZohoID)
	switch {
	case err == nil:
		claim.ID = existing.ID
		claim.CreatedAt = existing.CreatedAt
		return false, r.claims.Update(ctx, claim)
	case errors.Is(err, repository.ErrClaimNotFound):
		claim.ID = uuid.New().String()
		return true, r.claims.Create(ctx, claim)
	default:
		return false, err
	}
}

func (r *Reconciler) upsertREPro(ctx context.Context, rePro *models.REPro) (bool, error) {
	if rePro.ZohoID == "" {
		return false, ErrMissingRecordID
	}

	existing, err := r.rePros.FindByZohoID(ctx, rePro.ZohoID)
	switch {
	case err == nil:
		rePro.ID = existing.ID
		rePro.CreatedAt = existing.CreatedAt
		return false, r.rePros.Update(ctx, rePro)
	case errors.Is(err, repository.ErrREProNotFound):
		rePro.ID = uuid.New().String()
		return true, r.rePros.Create(ctx, rePro)
	default:
		return false, err
	}
}

func (c *Counts) count(created bool) {
	if created {
		c.Created++
	} else {
		c.Updated++
	}
}

// isolate runs one record's work, turning a panic on a malformed record into an error
func isolate(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed record: %v", rec)
		}
	}()
	return fn()
}

// extractREProIDs reads RE Pro references from Re_Pros, else RE_Pros, else Agent.
// Each may be a single lookup object or a list of them.
func extractREProIDs(raw zoho.Record) []string {
	for _, key := range []string{"Re_Pros", "RE_Pros", "Agent"} {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		return lookupIDs(value)
	}
	return []string{}
}

func lookupIDs(value any) []string {
	ids := []string{}
	appendID := func(item any) {
		if obj, ok := item.(map[string]any); ok {
			if id, ok := obj["id"].(string); ok && id != "" {
				ids = append(ids, id)
			}
		}
	}

	switch v := value.(type) {
	case []any:
		for _, item := range v {
			appendID(item)
		}
	case zoho.Record:
		appendID(map[string]any(v))
	default:
		appendID(v)
	}
	return ids
}

func toAnySlice(ids []string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}

func jsonStrings(column datatypes.JSON) []string {
	var ids []string
	if len(column) == 0 {
		return nil
	}
	if err := json.Unmarshal(column, &ids); err != nil {
		return nil
	}
	return ids
}
