package request

type CreateEmailTemplate struct {
	Name        string `json:"name" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Body        string `json:"body" validate:"required"`
	BodyFormat  string `json:"bodyFormat" validate:"omitempty,oneof=plain html"`
	Description string `json:"description"`
}

type UpdateEmailTemplate struct {
	Name        string `json:"name" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Body        string `json:"body" validate:"required"`
	BodyFormat  string `json:"bodyFormat" validate:"omitempty,oneof=plain html"`
	Description string `json:"description"`
}
