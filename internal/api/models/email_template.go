package models

import (
	"time"

	"gorm.io/gorm"
)

// BodyFormat controls how a template body is rendered into the HTML
// envelope: plain text is escaped and paragraphed, html passes through.
type BodyFormat string

const (
	BodyFormatPlain BodyFormat = "plain"
	BodyFormatHTML  BodyFormat = "html"
)

// EmailTemplate is either a master template (OrganizationID nil) shared
// across all organizations, or an organization's customized copy of one
// (MasterTemplateID points back at the master).
type EmailTemplate struct {
	ID               uint  `gorm:"primaryKey"`
	OrganizationID   *uint `gorm:"index"`
	MasterTemplateID *uint `gorm:"index"`
	Name             string `gorm:"not null"`
	Subject          string `gorm:"not null"`
	Body             string `gorm:"type:text;not null"`
	BodyFormat       BodyFormat `gorm:"type:varchar(10);default:plain"`
	Description      string

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (EmailTemplate) TableName() string {
	return "email_templates"
}

// IsMaster reports whether this is a shared master template.
func (slf EmailTemplate) IsMaster() bool {
	return slf.OrganizationID == nil
}
