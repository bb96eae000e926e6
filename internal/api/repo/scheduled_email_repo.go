package repo

import (
	"firmdesk"
	"firmdesk/internal/api/models"
	"time"

	"gorm.io/gorm"
)

type ScheduledEmailRepository struct {
	Db *gorm.DB
}

func NewScheduledEmailRepository() *ScheduledEmailRepository {
	return &ScheduledEmailRepository{Db: firmdesk.DB}
}

func (slf *ScheduledEmailRepository) FindByID(id uint) (models.ScheduledEmail, error) {
	var row models.ScheduledEmail
	err := slf.Db.First(&row, id).Error
	return row, err
}

// FindDue returns the pending rows the scheduler should process now.
// Recurring rows whose end date already passed are excluded.
func (slf *ScheduledEmailRepository) FindDue(now time.Time) ([]models.ScheduledEmail, error) {
	today := models.DateOnly(now)
	var rows []models.ScheduledEmail
	err := slf.Db.
		Where("status = ?", models.ScheduledEmailStatusPending).
		Where("scheduled_date_time <= ?", now).
		Where("is_recurring = ? OR recurrence_end_date IS NULL OR recurrence_end_date >= ?", false, today).
		Order("scheduled_date_time ASC").
		Find(&rows).Error
	return rows, err
}

func (slf *ScheduledEmailRepository) FindAll(clientID *uint, status *models.ScheduledEmailStatus) ([]models.ScheduledEmail, error) {
	q := slf.Db.Model(&models.ScheduledEmail{})
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []models.ScheduledEmail
	err := q.Order("scheduled_date_time ASC").Find(&rows).Error
	return rows, err
}

func (slf *ScheduledEmailRepository) FindAllByOrganization(organizationID uint, status *models.ScheduledEmailStatus) ([]models.ScheduledEmail, error) {
	q := slf.Db.Where("organization_id = ?", organizationID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var rows []models.ScheduledEmail
	err := q.Order("scheduled_date_time ASC").Find(&rows).Error
	return rows, err
}

func (slf *ScheduledEmailRepository) Create(row *models.ScheduledEmail) error {
	return slf.Db.Create(row).Error
}

func (slf *ScheduledEmailRepository) CreateBatch(rows []models.ScheduledEmail) error {
	if len(rows) == 0 {
		return nil
	}
	return slf.Db.Create(&rows).Error
}

func (slf *ScheduledEmailRepository) Update(row *models.ScheduledEmail) error {
	return slf.Db.Save(row).Error
}

// UpdateStatus sets the status together with the error message and,
// for sent rows, the sent timestamp.
func (slf *ScheduledEmailRepository) UpdateStatus(id uint, status models.ScheduledEmailStatus, errorMessage string, sentAt *time.Time) error {
	return slf.Db.Model(&models.ScheduledEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"sent_at":       sentAt,
		}).Error
}

// CancelPendingByClient cancels every still-pending row for a client.
// Called before a configuration document is replaced or removed.
func (slf *ScheduledEmailRepository) CancelPendingByClient(clientID uint) (int64, error) {
	res := slf.Db.Model(&models.ScheduledEmail{}).
		Where("client_id = ? AND status = ?", clientID, models.ScheduledEmailStatusPending).
		Updates(map[string]interface{}{
			"status":        models.ScheduledEmailStatusCancelled,
			"error_message": "Cancelled by configuration update",
		})
	return res.RowsAffected, res.Error
}
