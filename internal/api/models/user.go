package models

import (
	"time"

	"gorm.io/gorm"
)

type AppRole string

const (
	RoleAdmin AppRole = "admin"
	RoleUser  AppRole = "user"
)

type User struct {
	ID             uint    `gorm:"primaryKey"`
	OrganizationID *uint   `gorm:"index"`
	Email          string  `gorm:"uniqueIndex;not null"`
	Password       string  `gorm:"not null;column:password"`
	FirstName      string  `gorm:"column:first_name"`
	LastName       string  `gorm:"column:last_name"`
	Role           AppRole `gorm:"type:varchar(20);default:user"`
	Active         bool    `gorm:"default:true;column:active"`
	RefreshToken   string  `gorm:"type:text;column:refresh_token"`

	// Reversible copy used only for the login_password template variable.
	// Empty when the account was created without credential delivery.
	EncryptedPlainPassword string `gorm:"type:text;column:encrypted_plain_password"`

	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (User) TableName() string {
	return "users"
}
