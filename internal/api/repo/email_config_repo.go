package repo

import (
	"firmdesk"
	"firmdesk/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmailConfigRepository struct {
	Db *gorm.DB
}

func NewEmailConfigRepository() *EmailConfigRepository {
	return &EmailConfigRepository{Db: firmdesk.DB}
}

func (slf *EmailConfigRepository) FindByClient(clientID uint) (models.ClientEmailConfig, error) {
	var cfg models.ClientEmailConfig
	err := slf.Db.Where("client_id = ?", clientID).First(&cfg).Error
	return cfg, err
}

// Upsert replaces the client's configuration document in place.
func (slf *EmailConfigRepository) Upsert(cfg *models.ClientEmailConfig) error {
	return slf.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"config", "updated_at"}),
	}).Create(cfg).Error
}

func (slf *EmailConfigRepository) DeleteByClient(clientID uint) error {
	return slf.Db.
		Where("client_id = ?", clientID).
		Delete(&models.ClientEmailConfig{}).Error
}
