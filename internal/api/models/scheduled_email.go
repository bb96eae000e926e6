package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ScheduledEmailStatus is the lifecycle state of a scheduled row.
// Transitions are monotonic: pending may become sent, failed or
// cancelled; the only way back is failed to pending through a manual
// retry.
type ScheduledEmailStatus string

const (
	ScheduledEmailStatusPending   ScheduledEmailStatus = "pending"
	ScheduledEmailStatusSent      ScheduledEmailStatus = "sent"
	ScheduledEmailStatusFailed    ScheduledEmailStatus = "failed"
	ScheduledEmailStatusCancelled ScheduledEmailStatus = "cancelled"
)

// StringList is a jsonb-backed string slice column.
type StringList []string

// Value implements driver.Valuer for GORM
func (sl StringList) Value() (driver.Value, error) {
	return json.Marshal(sl)
}

// Scan implements sql.Scanner for GORM
func (sl *StringList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan StringList: expected []byte")
	}
	return json.Unmarshal(bytes, sl)
}

// ScheduledEmail is one planned send to a client's recipients.
type ScheduledEmail struct {
	ID             uint           `gorm:"primaryKey"`
	ClientID       uint           `gorm:"not null;index"`
	Client         Client         `gorm:"foreignKey:ClientID"`
	OrganizationID uint           `gorm:"not null;index"`
	TemplateID     *uint          `gorm:"index"`
	Template       *EmailTemplate `gorm:"foreignKey:TemplateID"`
	ServiceID      *uint          `gorm:"index"`

	Recipients StringList `gorm:"type:jsonb"`

	ScheduledDate     time.Time `gorm:"type:date;not null"`
	ScheduledTime     string    `gorm:"type:varchar(5);not null"` // "HH:MM"
	ScheduledDateTime time.Time `gorm:"not null;index"`

	IsRecurring       bool       `gorm:"default:false"`
	RecurrenceEndDate *time.Time `gorm:"type:date"`

	Status       ScheduledEmailStatus `gorm:"type:varchar(20);default:pending;index"`
	SentAt       *time.Time
	ErrorMessage string `gorm:"type:text"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ScheduledEmail) TableName() string {
	return "scheduled_emails"
}

// IsDue reports whether the scheduler should pick this row up now.
// A recurring row whose end date has already passed is never due.
func (slf ScheduledEmail) IsDue(now time.Time) bool {
	if slf.Status != ScheduledEmailStatusPending {
		return false
	}
	if slf.ScheduledDateTime.After(now) {
		return false
	}
	if slf.IsRecurring && slf.RecurrenceEndDate != nil {
		today := DateOnly(now)
		if slf.RecurrenceEndDate.Before(today) {
			return false
		}
	}
	return true
}

// NextOccurrence returns the scheduled date of the following send for
// a recurring row, one day after the current one. The second return is
// false when the chain is over: the row is not recurring, or the next
// date falls past the recurrence end date.
func (slf ScheduledEmail) NextOccurrence() (time.Time, bool) {
	if !slf.IsRecurring {
		return time.Time{}, false
	}
	next := DateOnly(slf.ScheduledDate).AddDate(0, 0, 1)
	if slf.RecurrenceEndDate != nil && next.After(DateOnly(*slf.RecurrenceEndDate)) {
		return time.Time{}, false
	}
	return next, true
}

// CanTransitionTo enforces the status lifecycle.
func (slf ScheduledEmailStatus) CanTransitionTo(next ScheduledEmailStatus) bool {
	switch slf {
	case ScheduledEmailStatusPending:
		return next == ScheduledEmailStatusSent ||
			next == ScheduledEmailStatusFailed ||
			next == ScheduledEmailStatusCancelled
	case ScheduledEmailStatusFailed:
		// Manual retry only
		return next == ScheduledEmailStatusPending
	default:
		return false
	}
}

// DateOnly strips the time-of-day portion, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CombineDateTime builds the concrete send instant from a date and an
// "HH:MM" time of day. A malformed time falls back to midnight.
func CombineDateTime(date time.Time, hhmm string) time.Time {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return DateOnly(date)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location())
}
