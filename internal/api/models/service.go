package models

import (
	"time"

	"gorm.io/gorm"
)

// Service is a compliance service offered by the firm, e.g. GST filing
// or annual returns. Schedules and templates reference it by ID.
type Service struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null;uniqueIndex"`
	Description string

	// Default statutory deadline, day of month
	DeadlineDay *int

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Service) TableName() string {
	return "services"
}
