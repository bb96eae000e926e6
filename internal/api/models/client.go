package models

import (
	"time"

	"gorm.io/gorm"
)

type Client struct {
	ID             uint         `gorm:"primaryKey"`
	OrganizationID uint         `gorm:"not null;index"`
	Organization   Organization `gorm:"foreignKey:OrganizationID"`
	UserID         *uint        `gorm:"index"`
	Name           string       `gorm:"not null"`
	CompanyName    string
	Email          string `gorm:"not null"`
	Phone          string

	// Compliance services this client is enrolled in
	Services []Service `gorm:"many2many:client_services"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Client) TableName() string {
	return "clients"
}
