package request

type SaveOrganization struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Pincode string `json:"pincode"`

	SmtpHost     string `json:"smtpHost"`
	SmtpPort     int    `json:"smtpPort"`
	SmtpUsername string `json:"smtpUsername"`
	SmtpPassword string `json:"smtpPassword"`
	SmtpFrom     string `json:"smtpFrom"`
	SmtpFromName string `json:"smtpFromName"`
	SmtpUseSSL   bool   `json:"smtpUseSsl"`

	FrontendURL string `json:"frontendUrl"`
}
