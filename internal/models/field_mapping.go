package models

import "time"

type RecordType string

const (
	RecordTypePolicy RecordType = "Policy"
	RecordTypeClaim  RecordType = "Claim"
)

// Valid reports whether t is a mappable record type
func (t RecordType) Valid() bool {
	return t == RecordTypePolicy || t == RecordTypeClaim
}

// FieldMapping overrides the default extraction of one app field with a
// dotted path into the raw CRM record.
type FieldMapping struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	ModuleType RecordType `gorm:"column:module_type;index" json:"module_type"`
	AppField   string     `gorm:"column:app_field" json:"app_field"`
	ZohoField  string     `gorm:"column:zoho_field" json:"zoho_field"`
	IsActive   bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (FieldMapping) TableName() string {
	return "zoho_field_mapping"
}
