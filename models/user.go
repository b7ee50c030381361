package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the directory projection of an account that can send and receive messages
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	TenantID  *string        `gorm:"uniqueIndex:idx_users_tenant_user_name" json:"tenant_id,omitempty"`
	UserName  string         `gorm:"uniqueIndex:idx_users_tenant_user_name;not null" json:"user_name"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
