package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// AuthProvider records where a user's identity is managed.
type AuthProvider string

const (
	AuthProviderLocal   AuthProvider = "LOCAL"
	AuthProviderAzureAD AuthProvider = "AZURE_AD"
)

// AuthProviders returns every supported provider.
func AuthProviders() []AuthProvider {
	return []AuthProvider{AuthProviderLocal, AuthProviderAzureAD}
}

// GormDBDataType maps the column onto auth_provider_enum on postgres.
func (AuthProvider) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return enumColumnType(db, PGTypeAuthProvider)
}

// User is an account that can authenticate against the API.
type User struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"size:255;not null;uniqueIndex:uq_users_email" json:"email"`
	Username     string       `gorm:"size:100;not null;uniqueIndex:uq_users_username" json:"username"`
	PasswordHash string       `gorm:"size:255" json:"-"`
	FullName     string       `gorm:"size:255" json:"fullName,omitempty"`
	AuthProvider AuthProvider `gorm:"not null" json:"authProvider"`
	ExternalID   string       `gorm:"size:255;index" json:"externalId,omitempty"`
	IsActive     bool         `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	LastLoginAt  *time.Time   `json:"lastLoginAt,omitempty"`
}
