package repo

import (
	"firmdesk"
	"firmdesk/internal/api/models"

	"gorm.io/gorm"
)

type ClientRepository struct {
	Db *gorm.DB
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{Db: firmdesk.DB}
}

func (slf *ClientRepository) FindByID(id uint) (models.Client, error) {
	var client models.Client
	err := slf.Db.
		Preload("Organization").
		Preload("Services").
		First(&client, id).Error
	return client, err
}

func (slf *ClientRepository) FindByIDSimple(id uint) (models.Client, error) {
	var client models.Client
	err := slf.Db.First(&client, id).Error
	return client, err
}

func (slf *ClientRepository) FindAllByOrganization(organizationID uint) ([]models.Client, error) {
	var clients []models.Client
	err := slf.Db.
		Where("organization_id = ?", organizationID).
		Order("name ASC").
		Find(&clients).Error
	return clients, err
}

func (slf *ClientRepository) Create(client *models.Client) error {
	return slf.Db.Create(client).Error
}

func (slf *ClientRepository) Update(client *models.Client) error {
	return slf.Db.Save(client).Error
}

func (slf *ClientRepository) Delete(id uint) error {
	return slf.Db.Delete(&models.Client{}, id).Error
}
