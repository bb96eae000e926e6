package service

import (
	"errors"
	"firmdesk"
	"firmdesk/internal/api/handler/mapper"
	"firmdesk/internal/api/handler/request"
	"firmdesk/internal/api/handler/response"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/repo"
	"firmdesk/pkg"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo       *repo.UserRepository
	clientRepo     *repo.ClientRepository
	credentialMail *CredentialMailService
	config         firmdesk.AppConfig
	logger         zerolog.Logger
	userMapper     mapper.UserMapper
}

func NewUserService() *UserService {
	return &UserService{
		userRepo:       repo.NewUserRepository(),
		clientRepo:     repo.NewClientRepository(),
		credentialMail: NewCredentialMailService(),
		config:         firmdesk.GetConfig(),
		logger:         firmdesk.Logger,
	}
}

func (slf *UserService) Register(registerDTO request.RegisterDTO) (*response.AuthResponseDTO, error) {
	exists, err := slf.userRepo.ExistsByEmail(registerDTO.Email)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error checking if user exists")
		return nil, err
	}
	if exists {
		return nil, errors.New("user with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registerDTO.Password), bcrypt.DefaultCost)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	user := models.User{
		Email:     registerDTO.Email,
		Password:  string(hashedPassword),
		FirstName: registerDTO.FirstName,
		LastName:  registerDTO.LastName,
		Role:      models.RoleUser,
		Active:    true,
	}

	if err = slf.userRepo.Create(&user); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	return slf.issueTokens(user)
}

// CreateClientUser provisions a portal account for a client. The plain
// password is kept reversibly encrypted so scheduled emails can render
// the login_password variable, and credential delivery goes through the
// outbound queue.
func (slf *UserService) CreateClientUser(req request.CreateClientUser) (*response.UserResponseDTO, error) {
	client, err := slf.clientRepo.FindByIDSimple(req.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("client not found")
		}
		return nil, err
	}

	exists, err := slf.userRepo.ExistsByEmail(client.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("user with this email already exists")
	}

	password := req.Password
	if password == "" {
		password = uuid.NewString()[:12]
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	encrypted, err := pkg.EncryptString(password, slf.config.CryptoConfig.Secret)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error encrypting credential copy")
		return nil, err
	}

	user := models.User{
		OrganizationID:         &client.OrganizationID,
		Email:                  client.Email,
		Password:               string(hashedPassword),
		FirstName:              client.Name,
		Role:                   models.RoleUser,
		Active:                 true,
		EncryptedPlainPassword: encrypted,
	}
	if err = slf.userRepo.Create(&user); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating client user")
		return nil, err
	}

	client.UserID = &user.ID
	if err = slf.clientRepo.Update(&client); err != nil {
		slf.logger.Error().Err(err).Uint("clientId", client.ID).Msg("Error linking user to client")
	}

	if req.SendCredentials {
		if err := slf.credentialMail.Enqueue(CredentialMailJob{
			UserID:         user.ID,
			OrganizationID: client.OrganizationID,
			Email:          user.Email,
			Name:           client.Name,
			Password:       password,
		}); err != nil {
			slf.logger.Error().Err(err).Uint("userId", user.ID).Msg("Error queueing credential email")
		}
	}

	slf.logger.Info().Uint("userId", user.ID).Uint("clientId", client.ID).Msg("Client user created")
	resp := slf.userMapper.EntityToUserResponse(user)
	return &resp, nil
}

func (slf *UserService) Login(loginDTO request.LoginDTO) (*response.AuthResponseDTO, error) {
	user, err := slf.userRepo.FindByEmail(loginDTO.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid email or password")
		}
		slf.logger.Error().Err(err).Msg("Error finding user by email")
		return nil, err
	}

	if !user.Active {
		return nil, errors.New("account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginDTO.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	return slf.issueTokens(user)
}

func (slf *UserService) GetByID(id uint) (response.UserResponseDTO, error) {
	user, err := slf.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.UserResponseDTO{}, errors.New("user not found")
		}
		slf.logger.Error().Err(err).Uint("userId", id).Msg("Error finding user by ID")
		return response.UserResponseDTO{}, err
	}

	return slf.userMapper.EntityToUserResponse(user), nil
}

func (slf *UserService) RefreshToken(refreshToken string) (*response.AuthResponseDTO, error) {
	claims, err := pkg.ValidateRefreshToken(refreshToken, slf.config.JWTConfig.Secret)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Invalid refresh token")
		return nil, errors.New("invalid refresh token")
	}

	user, err := slf.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	if user.RefreshToken != refreshToken {
		return nil, errors.New("refresh token revoked")
	}

	return slf.issueTokens(user)
}

func (slf *UserService) issueTokens(user models.User) (*response.AuthResponseDTO, error) {
	token, err := pkg.GenerateToken(user.ID, user.Email, string(user.Role), slf.config.JWTConfig.Secret, slf.config.JWTConfig.Expiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating token")
		return nil, err
	}

	refreshToken, err := pkg.GenerateRefreshToken(user.ID, slf.config.JWTConfig.Secret, slf.config.JWTConfig.RefreshExpiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating refresh token")
		return nil, err
	}

	user.RefreshToken = refreshToken
	if err = slf.userRepo.Update(&user); err != nil {
		slf.logger.Error().Err(err).Msg("Error updating user with refresh token")
		return nil, err
	}

	return &response.AuthResponseDTO{
		Token:        token,
		RefreshToken: refreshToken,
		User:         slf.userMapper.EntityToUserResponse(user),
	}, nil
}
