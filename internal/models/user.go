package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Customer type tags maintained by RE Pro sync
const (
	CustomerTypeREPro = "RE Pro"
	CustomerTypeCombo = "Combo"
)

// User is a portal account. The platform owns it; sync only touches
// CustomerType and ZohoRefreshToken.
type User struct {
	ID               string    `gorm:"column:id;primaryKey" json:"id"`
	Email            string    `gorm:"column:email;uniqueIndex" json:"email"`
	FullName         *string   `gorm:"column:full_name" json:"full_name"`
	Phone            *string   `gorm:"column:phone" json:"phone"`
	Role             string    `gorm:"column:role" json:"role"`
	CustomerType     *string   `gorm:"column:customer_type" json:"customer_type"`
	ZohoRefreshToken *string   `gorm:"column:zoho_refresh_token" json:"-"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "portal_user"
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
