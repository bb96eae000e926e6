package response

import "time"

type ScheduledEmailDTO struct {
	ID                uint       `json:"id"`
	ClientID          uint       `json:"clientId"`
	TemplateID        *uint      `json:"templateId,omitempty"`
	ServiceID         *uint      `json:"serviceId,omitempty"`
	Recipients        []string   `json:"recipients"`
	ScheduledDate     string     `json:"scheduledDate"`
	ScheduledTime     string     `json:"scheduledTime"`
	ScheduledDateTime time.Time  `json:"scheduledDateTime"`
	IsRecurring       bool       `json:"isRecurring"`
	RecurrenceEndDate *string    `json:"recurrenceEndDate,omitempty"`
	Status            string     `json:"status"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
	ErrorMessage      string     `json:"errorMessage,omitempty"`
}

type EmailTemplateDTO struct {
	ID               uint   `json:"id"`
	OrganizationID   *uint  `json:"organizationId,omitempty"`
	MasterTemplateID *uint  `json:"masterTemplateId,omitempty"`
	Name             string `json:"name"`
	Subject          string `json:"subject"`
	Body             string `json:"body"`
	BodyFormat       string `json:"bodyFormat"`
	Description      string `json:"description,omitempty"`
	IsMaster         bool   `json:"isMaster"`
}

type EmailDiagnostics struct {
	Configured      bool     `json:"configured"`
	MissingSettings []string `json:"missingSettings,omitempty"`
}

type ValidationFailure struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}
