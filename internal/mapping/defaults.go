package mapping

import (
	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

// Field pairs an app field with its default extraction rule
type Field struct {
	Name    string
	Default Extractor
}

func at(p string) Extractor {
	return func(raw map[string]any) any { return lookup(raw, p) }
}

func firstOf(paths ...string) Extractor {
	return func(raw map[string]any) any { return first(raw, paths...) }
}

func firstOrLiteral(fallback any, paths ...string) Extractor {
	return func(raw map[string]any) any { return firstOr(raw, fallback, paths...) }
}

// PolicyFields are the mappable Policy fields in their default form
var PolicyFields = []Field{
	{Name: "policy_id", Default: at("Name")},
	{Name: "policy_number", Default: at("Policy_Number")},
	{Name: "policy_name", Default: at("Plan_Name")},
	{Name: "add_ons", Default: func(raw map[string]any) any {
		if options, ok := lookup(raw, "Options").([]any); ok {
			return options
		}
		return []any{}
	}},
	{Name: "details_of_coverage", Default: firstOf("Details_of_Coverage", "Coverage_Details")},
	{Name: "policy_status", Default: firstOrLiteral("Active", "Status")},
	{Name: "effective_date", Default: at("Effective_Date")},
	{Name: "expiration_date", Default: at("Expiration_Date")},
	{Name: "customer_name", Default: at("Customer.name")},
	{Name: "customer_email", Default: at("Email")},
	{Name: "property_address", Default: func(raw map[string]any) any {
		return joinAddress(
			lookup(raw, "Address_1"),
			lookup(raw, "Address_2"),
			lookup(raw, "City"),
			lookup(raw, "State"),
			lookup(raw, "Zip"),
		)
	}},
}

// ClaimFields are the mappable Claim fields in their default form
var ClaimFields = []Field{
	{Name: "claim_name", Default: firstOf("Claim_Number", "Name")},
	{Name: "policy_id", Default: claimPolicyRef},
	{Name: "customer_email", Default: at("Email")},
	{Name: "customer_phone", Default: at("Phone")},
	{Name: "claim_type", Default: firstOf("Claim_Type", "Type")},
	{Name: "claim_status", Default: firstOrLiteral("Pending", "Status")},
	{Name: "contractor", Default: at("Contractor_Info.name")},
	{Name: "contractor_email", Default: at("Contractor_Email")},
	{Name: "property_address", Default: func(raw map[string]any) any {
		return joinAddress(
			first(raw, "Street_Address", "Street", "Address"),
			lookup(raw, "City"),
			lookup(raw, "State"),
			first(raw, "Zip", "Zip_Code"),
		)
	}},
	{Name: "customer_facing_description", Default: firstOf("Description", "Customer_Facing_Description")},
	{Name: "claim_date", Default: firstOf("Claim_Date", "Created_Time")},
}

// RelatedClaimFields are the Claim defaults used for claims fetched through a
// policy's related list. policy_id, customer_email and property_address have no
// default there; the parent policy supplies them.
var RelatedClaimFields = []Field{
	{Name: "claim_name", Default: firstOf("Claim_Number", "Name")},
	{Name: "policy_id"},
	{Name: "customer_email"},
	{Name: "customer_phone", Default: at("Phone")},
	{Name: "claim_type", Default: at("System")},
	{Name: "claim_status", Default: firstOrLiteral("Pending", "Stage", "Status")},
	{Name: "contractor", Default: at("Contractor.name")},
	{Name: "contractor_email", Default: at("Contractor_Email")},
	{Name: "property_address"},
	{Name: "customer_facing_description", Default: at("Issue_Description")},
	{Name: "claim_date", Default: firstOf("Created_Time", "Claim_Date")},
}

// REProFields are the RE Pro defaults. RE Pros are not operator-mappable.
var REProFields = []Field{
	{Name: "rep_name", Default: firstOf("Name", "Full_Name")},
	{Name: "rep_email", Default: at("Email")},
	{Name: "rep_phone", Default: firstOf("Phone", "Mobile")},
	{Name: "brokerage", Default: firstOf("Brokerage", "Company")},
	{Name: "license_number", Default: at("License_Number")},
	{Name: "rep_type", Default: firstOrLiteral("Other", "Type")},
}

// Webhook payloads carry a flatter record shape than the list API
var (
	WebhookPolicyFields = []Field{
		{Name: "policy_number", Default: firstOf("Policy_Number", "Name")},
		{Name: "policy_name", Default: firstOf("Policy_Name", "Plan_Name")},
		{Name: "details_of_coverage", Default: firstOf("Coverage_Details", "Details_of_Coverage")},
		{Name: "policy_status", Default: firstOrLiteral("Active", "Status")},
		{Name: "effective_date", Default: at("Effective_Date")},
		{Name: "expiration_date", Default: at("Expiration_Date")},
		{Name: "customer_name", Default: at("Customer_Name")},
		{Name: "customer_email", Default: firstOf("Customer_Email", "Email")},
		{Name: "property_address", Default: firstOf("Property_Address", "Address")},
	}

	WebhookClaimFields = []Field{
		{Name: "claim_name", Default: firstOf("Claim_Number", "Name")},
		{Name: "policy_id", Default: at("Policy_ID")},
		{Name: "customer_email", Default: firstOf("Customer_Email", "Email")},
		{Name: "claim_type", Default: firstOf("Claim_Type", "Type")},
		{Name: "claim_status", Default: firstOrLiteral("Pending", "Status")},
		{Name: "contractor", Default: firstOf("Contractor", "Contractor_Name")},
		{Name: "contractor_email", Default: at("Contractor_Email")},
		{Name: "customer_facing_description", Default: firstOf("Description", "Customer_Facing_Description")},
		{Name: "claim_date", Default: firstOf("Claim_Date", "Created_Time")},
	}
)

// Webhook updates overlay only what the payload carries, so the status
// fields there have no literal fallback
var (
	WebhookPolicyUpdateFields = replaceField(WebhookPolicyFields, Field{Name: "policy_status", Default: at("Status")})
	WebhookClaimUpdateFields  = replaceField(WebhookClaimFields, Field{Name: "claim_status", Default: at("Status")})
)

// replaceField returns a copy of fields with the same-named entry swapped for f
func replaceField(fields []Field, f Field) []Field {
	out := make([]Field, len(fields))
	for i, field := range fields {
		if field.Name == f.Name {
			field = f
		}
		out[i] = field
	}
	return out
}

// claimPolicyRef reads the policy number out of the claim's policy lookup.
// The lookup may be an object or a bare string.
func claimPolicyRef(raw map[string]any) any {
	switch ref := lookup(raw, "Policy_Name").(type) {
	case zoho.Record:
		return first(ref, "Policy_Number", "name")
	case map[string]any:
		return first(ref, "Policy_Number", "name")
	case string:
		if ref != "" {
			return ref
		}
	}
	return nil
}

// LookupEmail reads the email of a lookup object such as Buyer_Agent
func LookupEmail(raw map[string]any, lookupField string) *string {
	return StringPtr(first(raw, lookupField+".email"))
}

// KnownFields lists the app fields an operator may map for a record type
func KnownFields(recordType models.RecordType) []string {
	var fields []Field
	switch recordType {
	case models.RecordTypePolicy:
		fields = PolicyFields
	case models.RecordTypeClaim:
		fields = ClaimFields
	default:
		return nil
	}

	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.Name)
	}
	return names
}

// IsKnownField reports whether appField is mappable for the record type
func IsKnownField(recordType models.RecordType, appField string) bool {
	for _, name := range KnownFields(recordType) {
		if name == appField {
			return true
		}
	}
	return false
}
