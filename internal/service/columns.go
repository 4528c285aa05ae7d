package service

import (
	"github.com/silverbackhw/portal-sync/internal/mapping"
	"github.com/silverbackhw/portal-sync/internal/models"
)

// Column tables bind resolved app field names to nullable model columns

func policyColumns(p *models.Policy) map[string]**string {
	return map[string]**string{
		"policy_id":           &p.PolicyID,
		"policy_number":       &p.PolicyNumber,
		"policy_name":         &p.PolicyName,
		"details_of_coverage": &p.DetailsOfCoverage,
		"policy_status":       &p.PolicyStatus,
		"effective_date":      &p.EffectiveDate,
		"expiration_date":     &p.ExpirationDate,
		"customer_name":       &p.CustomerName,
		"customer_email":      &p.CustomerEmail,
		"property_address":    &p.PropertyAddress,
	}
}

func claimColumns(c *models.Claim) map[string]**string {
	return map[string]**string{
		"claim_name":                  &c.ClaimName,
		"policy_id":                   &c.PolicyID,
		"customer_email":              &c.CustomerEmail,
		"customer_phone":              &c.CustomerPhone,
		"claim_type":                  &c.ClaimType,
		"claim_status":                &c.ClaimStatus,
		"contractor":                  &c.Contractor,
		"contractor_email":            &c.ContractorEmail,
		"property_address":            &c.PropertyAddress,
		"customer_facing_description": &c.CustomerFacingDescription,
		"claim_date":                  &c.ClaimDate,
	}
}

func reProColumns(r *models.REPro) map[string]**string {
	return map[string]**string{
		"rep_name":       &r.RepName,
		"rep_email":      &r.RepEmail,
		"rep_phone":      &r.RepPhone,
		"brokerage":      &r.Brokerage,
		"license_number": &r.LicenseNumber,
		"rep_type":       &r.RepType,
	}
}

// assignColumns copies resolved values into their columns.
// With keepExisting, empty values leave the current column untouched.
func assignColumns(columns map[string]**string, values map[string]any, keepExisting bool) {
	for name, column := range columns {
		value, ok := values[name]
		if !ok {
			continue
		}
		converted := mapping.StringPtr(value)
		if converted == nil && keepExisting {
			continue
		}
		*column = converted
	}
}

// claimFromValues builds a claim, normalizing its policy reference
func claimFromValues(values map[string]any) *models.Claim {
	claim := &models.Claim{}
	assignColumns(claimColumns(claim), values, false)
	claim.PolicyID = models.NewPolicyRef(claim.PolicyID).Ptr()
	return claim
}
