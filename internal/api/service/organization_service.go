package service

import (
	"errors"
	"firmdesk"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/repo"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type OrganizationService struct {
	orgRepo *repo.OrganizationRepository
	logger  zerolog.Logger
}

func NewOrganizationService() *OrganizationService {
	return &OrganizationService{
		orgRepo: repo.NewOrganizationRepository(),
		logger:  firmdesk.Logger,
	}
}

func (slf *OrganizationService) FindByID(id uint) (*models.Organization, error) {
	org, err := slf.orgRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("organization not found")
		}
		return nil, err
	}
	return &org, nil
}

func (slf *OrganizationService) GetAll() ([]models.Organization, error) {
	return slf.orgRepo.GetAll()
}

func (slf *OrganizationService) Create(org models.Organization) (*models.Organization, error) {
	if org.Name == "" || org.Email == "" {
		return nil, errors.New("name and email are required")
	}
	if err := slf.orgRepo.Create(&org); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating organization")
		return nil, err
	}
	slf.logger.Info().Uint("organizationId", org.ID).Msg("Organization created")
	return &org, nil
}

func (slf *OrganizationService) Update(org models.Organization) (*models.Organization, error) {
	existing, err := slf.orgRepo.FindByID(org.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("organization not found")
		}
		return nil, err
	}

	existing.Name = org.Name
	existing.Email = org.Email
	existing.Phone = org.Phone
	existing.City = org.City
	existing.State = org.State
	existing.Country = org.Country
	existing.Pincode = org.Pincode
	existing.SmtpHost = org.SmtpHost
	existing.SmtpPort = org.SmtpPort
	existing.SmtpUsername = org.SmtpUsername
	existing.SmtpPassword = org.SmtpPassword
	existing.SmtpFrom = org.SmtpFrom
	existing.SmtpFromName = org.SmtpFromName
	existing.SmtpUseSSL = org.SmtpUseSSL
	existing.FrontendURL = org.FrontendURL

	if err := slf.orgRepo.Update(&existing); err != nil {
		return nil, err
	}
	return &existing, nil
}

func (slf *OrganizationService) Delete(id uint) error {
	return slf.orgRepo.Delete(id)
}
