package models

import (
	"time"

	"gorm.io/gorm"
)

type Organization struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"not null"`
	Email   string `gorm:"not null"`
	Phone   string
	City    string
	State   string
	Country string
	Pincode string

	// SMTP settings override the application defaults when present
	SmtpHost     string
	SmtpPort     int
	SmtpUsername string
	SmtpPassword string
	SmtpFrom     string
	SmtpFromName string
	SmtpUseSSL   bool `gorm:"default:true"`

	FrontendURL string

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Organization) TableName() string {
	return "organizations"
}
