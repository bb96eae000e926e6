package repo

import (
	"firmdesk"
	"firmdesk/internal/api/models"

	"gorm.io/gorm"
)

type OrganizationRepository struct {
	Db *gorm.DB
}

func NewOrganizationRepository() *OrganizationRepository {
	return &OrganizationRepository{Db: firmdesk.DB}
}

func (slf *OrganizationRepository) FindByID(id uint) (models.Organization, error) {
	var org models.Organization
	err := slf.Db.First(&org, id).Error
	return org, err
}

func (slf *OrganizationRepository) Create(org *models.Organization) error {
	return slf.Db.Create(org).Error
}

func (slf *OrganizationRepository) Update(org *models.Organization) error {
	return slf.Db.Save(org).Error
}

func (slf *OrganizationRepository) Delete(id uint) error {
	return slf.Db.Delete(&models.Organization{}, id).Error
}

func (slf *OrganizationRepository) GetAll() ([]models.Organization, error) {
	var orgs []models.Organization
	err := slf.Db.Order("name ASC").Find(&orgs).Error
	return orgs, err
}
