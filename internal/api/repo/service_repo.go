package repo

import (
	"firmdesk"
	"firmdesk/internal/api/models"

	"gorm.io/gorm"
)

type ServiceRepository struct {
	Db *gorm.DB
}

func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{Db: firmdesk.DB}
}

func (slf *ServiceRepository) FindByID(id uint) (models.Service, error) {
	var svc models.Service
	err := slf.Db.First(&svc, id).Error
	return svc, err
}

func (slf *ServiceRepository) GetAll() ([]models.Service, error) {
	var services []models.Service
	err := slf.Db.Order("name ASC").Find(&services).Error
	return services, err
}

func (slf *ServiceRepository) Create(svc *models.Service) error {
	return slf.Db.Create(svc).Error
}

func (slf *ServiceRepository) Update(svc *models.Service) error {
	return slf.Db.Save(svc).Error
}

func (slf *ServiceRepository) Delete(id uint) error {
	return slf.Db.Delete(&models.Service{}, id).Error
}
