package request

// ServiceScheduleDTO mirrors models.ServiceSchedule on the wire.
type ServiceScheduleDTO struct {
	Enabled           *bool    `json:"enabled,omitempty"`
	Mode              string   `json:"mode" validate:"required,oneof=single range all"`
	Date              *string  `json:"date,omitempty"`
	From              *string  `json:"from,omitempty"`
	To                *string  `json:"to,omitempty"`
	TemplateID        *uint    `json:"templateId,omitempty"`
	Times             []string `json:"times"`
	RecurrenceEndDate string   `json:"recurrenceEndDate,omitempty"`
}

type RecipientConfigDTO struct {
	Enabled *bool    `json:"enabled,omitempty"`
	Emails  []string `json:"emails,omitempty"`
}

type SaveEmailConfig struct {
	Emails         []string                      `json:"emails" validate:"required,min=1,dive,email"`
	EmailTemplates map[string]RecipientConfigDTO `json:"emailTemplates,omitempty"`
	Services       map[string]ServiceScheduleDTO `json:"services" validate:"required"`
}
