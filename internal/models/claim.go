package models

import "time"

// Claim is the local copy of a CRM claim record.
// PolicyID holds the parent's policy number, not a Policy.ID; compare it with PolicyRef.
type Claim struct {
	ID                        string    `gorm:"column:id;primaryKey" json:"id"`
	ClaimName                 *string   `gorm:"column:claim_name" json:"claim_name"`
	PolicyID                  *string   `gorm:"column:policy_id;index" json:"policy_id"`
	CustomerEmail             *string   `gorm:"column:customer_email;index" json:"customer_email"`
	CustomerPhone             *string   `gorm:"column:customer_phone" json:"customer_phone"`
	ClaimType                 *string   `gorm:"column:claim_type" json:"claim_type"`
	ClaimStatus               *string   `gorm:"column:claim_status" json:"claim_status"`
	Contractor                *string   `gorm:"column:contractor" json:"contractor"`
	ContractorEmail           *string   `gorm:"column:contractor_email" json:"contractor_email"`
	PropertyAddress           *string   `gorm:"column:property_address" json:"property_address"`
	CustomerFacingDescription *string   `gorm:"column:customer_facing_description" json:"customer_facing_description"`
	ClaimDate                 *string   `gorm:"column:claim_date" json:"claim_date"`
	BuyerAgentEmail           *string   `gorm:"column:buyer_agent_email" json:"buyer_agent_email"`
	ZohoID                    string    `gorm:"column:zoho_id;uniqueIndex" json:"zoho_id"`
	CreatedAt                 time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Claim) TableName() string {
	return "claim"
}
