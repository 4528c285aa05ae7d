package models

import "time"

// REPro is a real-estate professional attached to policies in the CRM
type REPro struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	RepName       *string   `gorm:"column:rep_name" json:"rep_name"`
	RepEmail      *string   `gorm:"column:rep_email;index" json:"rep_email"`
	RepPhone      *string   `gorm:"column:rep_phone" json:"rep_phone"`
	Brokerage     *string   `gorm:"column:brokerage" json:"brokerage"`
	LicenseNumber *string   `gorm:"column:license_number" json:"license_number"`
	RepType       *string   `gorm:"column:rep_type" json:"rep_type"`
	ZohoID        string    `gorm:"column:zoho_id;uniqueIndex" json:"zoho_id"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (REPro) TableName() string {
	return "re_pro"
}
