package request

type AdhocEmail struct {
	ClientID      uint     `json:"clientId" validate:"required"`
	TemplateID    uint     `json:"templateId" validate:"required"`
	Recipients    []string `json:"recipients" validate:"omitempty,dive,email"`
	SendInSeconds int      `json:"sendInSeconds" validate:"gte=0"`
}

type TestEmail struct {
	To string `json:"to" validate:"required,email"`
}
