package service

import (
	"errors"
	"firmdesk"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/repo"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type ScheduledEmailService struct {
	scheduledRepo *repo.ScheduledEmailRepository
	clientRepo    *repo.ClientRepository
	logger        zerolog.Logger
}

func NewScheduledEmailService() *ScheduledEmailService {
	return &ScheduledEmailService{
		scheduledRepo: repo.NewScheduledEmailRepository(),
		clientRepo:    repo.NewClientRepository(),
		logger:        firmdesk.Logger,
	}
}

func (slf *ScheduledEmailService) List(clientID *uint, status *models.ScheduledEmailStatus) ([]models.ScheduledEmail, error) {
	return slf.scheduledRepo.FindAll(clientID, status)
}

func (slf *ScheduledEmailService) ListForOrganization(organizationID uint, status *models.ScheduledEmailStatus) ([]models.ScheduledEmail, error) {
	return slf.scheduledRepo.FindAllByOrganization(organizationID, status)
}

// Cancel moves a pending row to cancelled. Any other state is final.
func (slf *ScheduledEmailService) Cancel(id uint) (*models.ScheduledEmail, error) {
	row, err := slf.scheduledRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("scheduled email not found")
		}
		return nil, err
	}

	if !row.Status.CanTransitionTo(models.ScheduledEmailStatusCancelled) {
		return nil, fmt.Errorf("cannot cancel a %s email", row.Status)
	}

	row.Status = models.ScheduledEmailStatusCancelled
	if err := slf.scheduledRepo.Update(&row); err != nil {
		return nil, err
	}
	slf.logger.Info().Uint("scheduledEmailId", id).Msg("Scheduled email cancelled")
	return &row, nil
}

// Retry puts a failed row back in the queue. This is the only path
// from failed back to pending.
func (slf *ScheduledEmailService) Retry(id uint) (*models.ScheduledEmail, error) {
	row, err := slf.scheduledRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("scheduled email not found")
		}
		return nil, err
	}

	if !row.Status.CanTransitionTo(models.ScheduledEmailStatusPending) {
		return nil, fmt.Errorf("cannot retry a %s email", row.Status)
	}

	row.Status = models.ScheduledEmailStatusPending
	row.ErrorMessage = ""
	if err := slf.scheduledRepo.Update(&row); err != nil {
		return nil, err
	}
	slf.logger.Info().Uint("scheduledEmailId", id).Msg("Scheduled email queued for retry")
	return &row, nil
}

// ScheduleAdhoc queues a one-off send sendInSeconds from now. Zero
// means the next scheduler pass picks it up.
func (slf *ScheduledEmailService) ScheduleAdhoc(clientID uint, templateID uint, recipients []string, sendInSeconds int) (*models.ScheduledEmail, error) {
	client, err := slf.clientRepo.FindByIDSimple(clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("client not found")
		}
		return nil, err
	}

	if len(recipients) == 0 {
		recipients = []string{client.Email}
	}

	at := time.Now().Add(time.Duration(sendInSeconds) * time.Second)
	row := models.ScheduledEmail{
		ClientID:          client.ID,
		OrganizationID:    client.OrganizationID,
		TemplateID:        &templateID,
		Recipients:        append(models.StringList{}, recipients...),
		ScheduledDate:     models.DateOnly(at),
		ScheduledTime:     at.Format("15:04"),
		ScheduledDateTime: at,
		Status:            models.ScheduledEmailStatusPending,
	}
	if err := slf.scheduledRepo.Create(&row); err != nil {
		return nil, err
	}

	slf.logger.Info().
		Uint("clientId", clientID).
		Uint("scheduledEmailId", row.ID).
		Int("sendInSeconds", sendInSeconds).
		Msg("Ad-hoc email scheduled")
	return &row, nil
}
