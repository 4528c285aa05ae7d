package mapping

import (
	"testing"

	"github.com/silverbackhw/portal-sync/internal/zoho"
)

func TestLookupPath(t *testing.T) {
	raw := zoho.Record{
		"System":   map[string]any{"label": "Plumbing"},
		"Empty":    nil,
		"Agents":   []any{map[string]any{"id": "a1"}},
		"Name":     "P-1",
		"Customer": map[string]any{"name": nil},
	}

	tests := []struct {
		name      string
		path      string
		expected  any
		expectHit bool
	}{
		{"top level", "Name", "P-1", true},
		{"nested", "System.label", "Plumbing", true},
		{"null intermediate", "Empty.label", nil, false},
		{"missing intermediate", "Nope.label", nil, false},
		{"through a string", "Name.length", nil, false},
		{"array index", "Agents.0.id", "a1", true},
		{"array out of range", "Agents.3.id", nil, false},
		{"null leaf", "Customer.name", nil, false},
		{"empty path", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LookupPath(raw, tt.path)
			if ok != tt.expectHit {
				t.Errorf("Expected hit=%v, got %v", tt.expectHit, ok)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLookupPath_NullSegmentDoesNotPanic(t *testing.T) {
	got, ok := LookupPath(zoho.Record{"System": nil}, "System.label")
	if ok || got != nil {
		t.Errorf("Expected (nil, false), got (%v, %v)", got, ok)
	}
}

func TestClaimDefaults(t *testing.T) {
	tests := []struct {
		name     string
		raw      zoho.Record
		field    string
		expected any
	}{
		{"claim name falls back to Name", zoho.Record{"Name": "C100"}, "claim_name", "C100"},
		{"claim number preferred", zoho.Record{"Claim_Number": "C1", "Name": "C100"}, "claim_name", "C1"},
		{"empty claim number skipped", zoho.Record{"Claim_Number": "", "Name": "C100"}, "claim_name", "C100"},
		{"status defaults to Pending", zoho.Record{}, "claim_status", "Pending"},
		{"type falls back to Type", zoho.Record{"Type": "HVAC"}, "claim_type", "HVAC"},
		{"policy ref from lookup number", zoho.Record{"Policy_Name": map[string]any{"Policy_Number": "SB-1", "name": "Gold"}}, "policy_id", "SB-1"},
		{"policy ref from lookup name", zoho.Record{"Policy_Name": map[string]any{"name": "SB-2"}}, "policy_id", "SB-2"},
		{"policy ref from string", zoho.Record{"Policy_Name": "SB-3"}, "policy_id", "SB-3"},
		{"policy ref missing", zoho.Record{}, "policy_id", nil},
		{"contractor from lookup", zoho.Record{"Contractor_Info": map[string]any{"name": "Ace"}}, "contractor", "Ace"},
		{"address joined", zoho.Record{"Street": "1 Main", "City": "Austin", "Zip_Code": "78701"}, "property_address", "1 Main, Austin, 78701"},
		{"address empty is nil", zoho.Record{"City": ""}, "property_address", nil},
		{"claim date falls back", zoho.Record{"Created_Time": "2024-01-02T00:00:00Z"}, "claim_date", "2024-01-02T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaultOf(ClaimFields, tt.field)(tt.raw)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPolicyDefaults(t *testing.T) {
	raw := zoho.Record{
		"Name":          "POL-7",
		"Policy_Number": "SB-7",
		"Plan_Name":     "Gold",
		"Options":       "not-a-list",
		"Customer":      map[string]any{"name": "Pat Lee"},
		"Email":         "pat@example.com",
		"Address_1":     "9 Elm",
		"Address_2":     "",
		"City":          "Dallas",
		"State":         "TX",
		"Zip":           "75001",
	}

	values := (*Rules)(nil).Apply(raw, PolicyFields)

	if values["customer_name"] != "Pat Lee" {
		t.Errorf("Expected customer_name 'Pat Lee', got %v", values["customer_name"])
	}
	if values["property_address"] != "9 Elm, Dallas, TX, 75001" {
		t.Errorf("Unexpected property_address %v", values["property_address"])
	}
	if addOns, ok := values["add_ons"].([]any); !ok || len(addOns) != 0 {
		t.Errorf("Expected empty add_ons list, got %v", values["add_ons"])
	}
	if values["policy_status"] != "Active" {
		t.Errorf("Expected policy_status 'Active', got %v", values["policy_status"])
	}
}

func TestRelatedClaimDefaults(t *testing.T) {
	raw := zoho.Record{
		"Name":              "CL-1",
		"System":            "Electrical",
		"Stage":             "Dispatched",
		"Status":            "Open",
		"Contractor":        map[string]any{"name": "Volt Co"},
		"Issue_Description": "Breaker trips",
	}

	values := (*Rules)(nil).Apply(raw, RelatedClaimFields)

	expected := map[string]any{
		"claim_name":                  "CL-1",
		"claim_type":                  "Electrical",
		"claim_status":                "Dispatched",
		"contractor":                  "Volt Co",
		"customer_facing_description": "Breaker trips",
		"customer_email":              nil,
		"property_address":            nil,
	}
	for field, want := range expected {
		if values[field] != want {
			t.Errorf("%s: expected %v, got %v", field, want, values[field])
		}
	}
}

func TestStringPtrAndJSONList(t *testing.T) {
	if StringPtr(nil) != nil || StringPtr("") != nil {
		t.Error("Expected nil for empty values")
	}
	if p := StringPtr(float64(1200)); p == nil || *p != "1200" {
		t.Errorf("Expected '1200', got %v", p)
	}
	if p := StringPtr(map[string]any{"name": "Gold", "id": "1"}); p == nil || *p != "Gold" {
		t.Errorf("Expected lookup name 'Gold', got %v", p)
	}
	if got := string(JSONList([]any{"Pool", "Spa"})); got != `["Pool","Spa"]` {
		t.Errorf("Unexpected JSON list %s", got)
	}
	if got := string(JSONList("Pool")); got != `[]` {
		t.Errorf("Expected empty JSON list, got %s", got)
	}
}

func TestLookupEmail(t *testing.T) {
	raw := zoho.Record{"Buyer_Agent": map[string]any{"name": "Sam", "email": "sam@example.com"}}
	if got := LookupEmail(raw, "Buyer_Agent"); got == nil || *got != "sam@example.com" {
		t.Errorf("Expected buyer agent email, got %v", got)
	}
	if got := LookupEmail(raw, "Listing_Agent"); got != nil {
		t.Errorf("Expected nil, got %v", *got)
	}
}
