package repo

import (
	"firmdesk"
	"firmdesk/internal/api/models"

	"gorm.io/gorm"
)

type EmailTemplateRepository struct {
	Db *gorm.DB
}

func NewEmailTemplateRepository() *EmailTemplateRepository {
	return &EmailTemplateRepository{Db: firmdesk.DB}
}

func (slf *EmailTemplateRepository) FindByID(id uint) (models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	err := slf.Db.First(&tmpl, id).Error
	return tmpl, err
}

// FindMasters returns the shared templates available to every organization.
func (slf *EmailTemplateRepository) FindMasters() ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	err := slf.Db.
		Where("organization_id IS NULL").
		Order("name ASC").
		Find(&templates).Error
	return templates, err
}

func (slf *EmailTemplateRepository) FindByOrganization(organizationID uint) ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	err := slf.Db.
		Where("organization_id = ?", organizationID).
		Order("name ASC").
		Find(&templates).Error
	return templates, err
}

// FindCustomizationOf returns an organization's copy of a master, if any.
func (slf *EmailTemplateRepository) FindCustomizationOf(masterID uint, organizationID uint) (models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	err := slf.Db.
		Where("master_template_id = ? AND organization_id = ?", masterID, organizationID).
		First(&tmpl).Error
	return tmpl, err
}

// CountCustomizations counts organization copies of a master template.
func (slf *EmailTemplateRepository) CountCustomizations(masterID uint) (int64, error) {
	var count int64
	err := slf.Db.Model(&models.EmailTemplate{}).
		Where("master_template_id = ?", masterID).
		Count(&count).Error
	return count, err
}

func (slf *EmailTemplateRepository) Create(tmpl *models.EmailTemplate) error {
	return slf.Db.Create(tmpl).Error
}

func (slf *EmailTemplateRepository) Update(tmpl *models.EmailTemplate) error {
	return slf.Db.Save(tmpl).Error
}

func (slf *EmailTemplateRepository) Delete(id uint) error {
	return slf.Db.Delete(&models.EmailTemplate{}, id).Error
}
