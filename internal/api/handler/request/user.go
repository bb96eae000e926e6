package request

type RegisterDTO struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type CreateClientUser struct {
	ClientID        uint   `json:"clientId" validate:"required"`
	Password        string `json:"password" validate:"omitempty,min=6"`
	SendCredentials bool   `json:"sendCredentials"`
}
