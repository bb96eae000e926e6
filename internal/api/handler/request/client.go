package request

type CreateClient struct {
	Name        string `json:"name" validate:"required"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
	ServiceIDs  []uint `json:"serviceIds"`
}

type UpdateClient struct {
	Name        string `json:"name" validate:"required"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
}
