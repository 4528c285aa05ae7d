package models

import (
	"time"

	"gorm.io/datatypes"
)

// Policy is the local copy of a CRM policy record.
// ZohoID is the dedupe key; PolicyNumber may repeat across renewals.
type Policy struct {
	ID                string         `gorm:"column:id;primaryKey" json:"id"`
	PolicyID          *string        `gorm:"column:policy_id" json:"policy_id"`
	PolicyNumber      *string        `gorm:"column:policy_number;index" json:"policy_number"`
	PolicyName        *string        `gorm:"column:policy_name" json:"policy_name"`
	AddOns            datatypes.JSON `gorm:"column:add_ons;type:jsonb" json:"add_ons"`
	DetailsOfCoverage *string        `gorm:"column:details_of_coverage" json:"details_of_coverage"`
	PolicyStatus      *string        `gorm:"column:policy_status" json:"policy_status"`
	EffectiveDate     *string        `gorm:"column:effective_date" json:"effective_date"`
	ExpirationDate    *string        `gorm:"column:expiration_date" json:"expiration_date"`
	CustomerName      *string        `gorm:"column:customer_name" json:"customer_name"`
	CustomerEmail     *string        `gorm:"column:customer_email;index" json:"customer_email"`
	PropertyAddress   *string        `gorm:"column:property_address" json:"property_address"`
	BuyerAgentEmail   *string        `gorm:"column:buyer_agent_email" json:"buyer_agent_email"`
	ListingAgentEmail *string        `gorm:"column:listing_agent_email" json:"listing_agent_email"`
	TitleEscrowEmail  *string        `gorm:"column:title_escrow_email" json:"title_escrow_email"`
	REProIDs          datatypes.JSON `gorm:"column:re_pro_ids;type:jsonb" json:"re_pro_ids"`
	ZohoID            string         `gorm:"column:zoho_id;uniqueIndex" json:"zoho_id"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Policy) TableName() string {
	return "policy"
}
