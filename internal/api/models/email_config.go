package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ScheduleMode selects how a service schedule expands into scheduled
// email rows.
type ScheduleMode string

const (
	ScheduleModeSingle ScheduleMode = "single"
	ScheduleModeRange  ScheduleMode = "range"
	ScheduleModeAll    ScheduleMode = "all"
)

// SingleSchedule sends once on a specific date.
type SingleSchedule struct {
	Date string `json:"date"` // YYYY-MM-DD
}

// RangeSchedule sends every day from From to To inclusive.
type RangeSchedule struct {
	From string `json:"from"` // YYYY-MM-DD
	To   string `json:"to"`   // YYYY-MM-DD
}

// ServiceSchedule holds the per-service sending plan. Exactly one of
// the mode-specific configs is set, matching Mode. Mode "all" carries
// no dates of its own: it materializes one recurring row per time for
// tomorrow which the scheduler advances day by day.
type ServiceSchedule struct {
	// A disabled schedule is skipped by validation and expansion
	Enabled *bool `json:"enabled,omitempty"`

	Mode   ScheduleMode    `json:"mode"`
	Single *SingleSchedule `json:"single,omitempty"`
	Range  *RangeSchedule  `json:"range,omitempty"`

	// Template used for this service's emails
	TemplateID *uint `json:"templateId,omitempty"`

	// Times of day to send, "HH:MM" 24h format. Every scheduled day
	// gets one row per entry; at least one entry is required.
	Times []string `json:"times"`

	// Last day a mode "all" schedule keeps recurring, YYYY-MM-DD.
	// Empty means it recurs until the row is cancelled.
	RecurrenceEndDate string `json:"recurrenceEndDate,omitempty"`
}

// IsDisabled reports whether the schedule is explicitly switched off.
func (slf ServiceSchedule) IsDisabled() bool {
	return slf.Enabled != nil && !*slf.Enabled
}

// RecipientConfig overrides recipients for a single template. When
// Enabled is false the template sends nothing for this client.
type RecipientConfig struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Emails  []string `json:"emails,omitempty"`
}

// EmailConfigData is the per-client email configuration document.
type EmailConfigData struct {
	// Default recipient list for all templates
	Emails []string `json:"emails"`

	// Per-template subscription overrides, keyed by template ID
	EmailTemplates map[string]RecipientConfig `json:"emailTemplates,omitempty"`

	// Sending plan per service, keyed by service ID
	Services map[string]ServiceSchedule `json:"services"`
}

// Value implements driver.Valuer for GORM
func (ec EmailConfigData) Value() (driver.Value, error) {
	return json.Marshal(ec)
}

// Scan implements sql.Scanner for GORM
func (ec *EmailConfigData) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan EmailConfigData: expected []byte")
	}
	return json.Unmarshal(bytes, ec)
}

// ClientEmailConfig stores one configuration document per client.
// Saving a new document replaces the old one and cancels every pending
// scheduled row the old document produced.
type ClientEmailConfig struct {
	ID       uint            `gorm:"primaryKey"`
	ClientID uint            `gorm:"uniqueIndex;not null"`
	Client   Client          `gorm:"foreignKey:ClientID"`
	Config   EmailConfigData `gorm:"type:jsonb"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ClientEmailConfig) TableName() string {
	return "client_email_configs"
}
