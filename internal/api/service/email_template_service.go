package service

import (
	"errors"
	"firmdesk"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/repo"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type EmailTemplateService struct {
	templateRepo *repo.EmailTemplateRepository
	logger       zerolog.Logger
}

func NewEmailTemplateService() *EmailTemplateService {
	return &EmailTemplateService{
		templateRepo: repo.NewEmailTemplateRepository(),
		logger:       firmdesk.Logger,
	}
}

func (slf *EmailTemplateService) FindByID(id uint) (*models.EmailTemplate, error) {
	tmpl, err := slf.templateRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("template not found")
		}
		return nil, err
	}
	return &tmpl, nil
}

func (slf *EmailTemplateService) ListMasters() ([]models.EmailTemplate, error) {
	return slf.templateRepo.FindMasters()
}

// ListForOrganization returns the organization's customized templates
// plus the masters it has not customized yet.
func (slf *EmailTemplateService) ListForOrganization(organizationID uint) ([]models.EmailTemplate, error) {
	own, err := slf.templateRepo.FindByOrganization(organizationID)
	if err != nil {
		return nil, err
	}

	customized := make(map[uint]bool, len(own))
	for _, tmpl := range own {
		if tmpl.MasterTemplateID != nil {
			customized[*tmpl.MasterTemplateID] = true
		}
	}

	masters, err := slf.templateRepo.FindMasters()
	if err != nil {
		return nil, err
	}
	for _, master := range masters {
		if !customized[master.ID] {
			own = append(own, master)
		}
	}
	return own, nil
}

// Customize copies a master template into the organization so it can
// be edited without touching the shared original.
func (slf *EmailTemplateService) Customize(masterID uint, organizationID uint) (*models.EmailTemplate, error) {
	master, err := slf.templateRepo.FindByID(masterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("template not found")
		}
		return nil, err
	}
	if !master.IsMaster() {
		return nil, errors.New("only master templates can be customized")
	}

	if existing, err := slf.templateRepo.FindCustomizationOf(masterID, organizationID); err == nil {
		return &existing, nil
	}

	copy := models.EmailTemplate{
		OrganizationID:   &organizationID,
		MasterTemplateID: &masterID,
		Name:             master.Name,
		Subject:          master.Subject,
		Body:             master.Body,
		BodyFormat:       master.BodyFormat,
		Description:      master.Description,
	}
	if err := slf.templateRepo.Create(&copy); err != nil {
		return nil, err
	}

	slf.logger.Info().
		Uint("masterId", masterID).
		Uint("organizationId", organizationID).
		Uint("templateId", copy.ID).
		Msg("Master template customized")
	return &copy, nil
}

func (slf *EmailTemplateService) Create(tmpl models.EmailTemplate) (*models.EmailTemplate, error) {
	if tmpl.Name == "" || tmpl.Subject == "" || tmpl.Body == "" {
		return nil, errors.New("name, subject and body are required")
	}
	if tmpl.BodyFormat == "" {
		tmpl.BodyFormat = models.BodyFormatPlain
	}
	if err := slf.templateRepo.Create(&tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (slf *EmailTemplateService) Update(tmpl models.EmailTemplate) (*models.EmailTemplate, error) {
	existing, err := slf.templateRepo.FindByID(tmpl.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("template not found")
		}
		return nil, err
	}

	existing.Name = tmpl.Name
	existing.Subject = tmpl.Subject
	existing.Body = tmpl.Body
	if tmpl.BodyFormat != "" {
		existing.BodyFormat = tmpl.BodyFormat
	}
	existing.Description = tmpl.Description

	if err := slf.templateRepo.Update(&existing); err != nil {
		return nil, err
	}
	return &existing, nil
}

// Delete removes a template. A master with customized copies stays:
// deleting it would orphan every organization's edits.
func (slf *EmailTemplateService) Delete(id uint) error {
	tmpl, err := slf.templateRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("template not found")
		}
		return err
	}

	if tmpl.IsMaster() {
		count, err := slf.templateRepo.CountCustomizations(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.New("master template has customized copies and cannot be deleted")
		}
	}

	return slf.templateRepo.Delete(id)
}
