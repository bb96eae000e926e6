package service

import (
	"context"
	"errors"
	"firmdesk"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/repo"
	"firmdesk/internal/observability"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SchedulerService wakes once per minute, picks up due scheduled
// emails and pushes them through render and delivery. One bad row
// never stops the pass.
type SchedulerService struct {
	scheduledRepo *repo.ScheduledEmailRepository
	clientRepo    *repo.ClientRepository
	templateRepo  *repo.EmailTemplateRepository
	orgRepo       *repo.OrganizationRepository
	userRepo      *repo.UserRepository
	renderer      *TemplateRenderService
	logger        zerolog.Logger

	// Overridable in tests; nil means build a per-organization
	// retrying SMTP sender.
	sender Transport

	limiter     *rate.Limiter
	maxAttempts int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSchedulerService() *SchedulerService {
	cfg := firmdesk.GetConfig().SchedulerConfig
	ctx, cancel := context.WithCancel(context.Background())
	return &SchedulerService{
		scheduledRepo: repo.NewScheduledEmailRepository(),
		clientRepo:    repo.NewClientRepository(),
		templateRepo:  repo.NewEmailTemplateRepository(),
		orgRepo:       repo.NewOrganizationRepository(),
		userRepo:      repo.NewUserRepository(),
		renderer:      NewTemplateRenderService(),
		logger:        firmdesk.Logger,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RecipientsPerSecond), 1),
		maxAttempts:   cfg.MaxSendAttempts,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start begins the per-minute dispatch loop.
func (slf *SchedulerService) Start() {
	slf.logger.Info().Msg("Starting email scheduler")
	slf.wg.Add(1)
	go slf.run()
}

// Stop shuts the loop down and waits for the running pass to finish.
func (slf *SchedulerService) Stop() {
	slf.logger.Info().Msg("Stopping email scheduler")
	slf.cancel()
	slf.wg.Wait()
	slf.logger.Info().Msg("Email scheduler stopped")
}

func (slf *SchedulerService) run() {
	defer slf.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slf.logger.Error().Interface("panic", r).Msg("Scheduler loop panicked, restarting")
			slf.wg.Add(1)
			go slf.run()
		}
	}()

	// Align the first tick to the start of the next minute so sends
	// land close to their scheduled HH:MM.
	select {
	case <-slf.ctx.Done():
		return
	case <-time.After(untilNextMinute(time.Now())):
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	slf.processDue(time.Now())
	for {
		select {
		case <-slf.ctx.Done():
			return
		case tick := <-ticker.C:
			slf.processDue(tick)
		}
	}
}

func untilNextMinute(now time.Time) time.Duration {
	next := now.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(now)
}

func (slf *SchedulerService) processDue(now time.Time) {
	observability.SchedulerTicks.Inc()

	rows, err := slf.scheduledRepo.FindDue(now)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error fetching due scheduled emails")
		return
	}
	if len(rows) == 0 {
		return
	}

	slf.logger.Info().Int("count", len(rows)).Msg("Processing due scheduled emails")
	for _, row := range rows {
		slf.processRowIsolated(row, now)
	}
}

// processRowIsolated shields the pass from a single row's panic.
func (slf *SchedulerService) processRowIsolated(row models.ScheduledEmail, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slf.logger.Error().Interface("panic", r).Uint("scheduledEmailId", row.ID).Msg("Panic while processing scheduled email")
			_ = slf.scheduledRepo.UpdateStatus(row.ID, models.ScheduledEmailStatusFailed,
				fmt.Sprintf("internal error: %v", r), nil)
		}
	}()

	if err := slf.processRow(row, now); err != nil {
		slf.logger.Error().Err(err).Uint("scheduledEmailId", row.ID).Msg("Error processing scheduled email")
	}
}

func (slf *SchedulerService) processRow(row models.ScheduledEmail, now time.Time) error {
	// Cheap re-check against status flips between fetch and process
	if !row.IsDue(now) {
		return nil
	}

	client, err := slf.clientRepo.FindByIDSimple(row.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slf.markFailed(row, "Client not found")
		}
		return err
	}

	if row.TemplateID == nil {
		return slf.markFailed(row, "Template not specified")
	}
	tmpl, err := slf.templateRepo.FindByID(*row.TemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slf.markFailed(row, "Template not found")
		}
		return err
	}

	org, err := slf.orgRepo.FindByID(row.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slf.markFailed(row, "Organization not found")
		}
		return err
	}

	var user *models.User
	if u, err := slf.userRepo.FindByClient(client); err == nil {
		user = &u
	}

	vars := slf.renderer.BuildVariables(client, org, user, tmpl, RenderVars{
		ScheduledDate: row.ScheduledDate,
	})
	subject, body := slf.renderer.RenderEmail(tmpl, org, vars)

	sent, failures := slf.fanOut(row.Recipients, subject, body, org)

	if sent == 0 {
		observability.EmailsFailed.Inc()
		return slf.markFailed(row, strings.Join(failures, "; "))
	}

	observability.EmailsSent.Inc()
	sentAt := time.Now()
	if err := slf.scheduledRepo.UpdateStatus(row.ID, models.ScheduledEmailStatusSent,
		strings.Join(failures, "; "), &sentAt); err != nil {
		return err
	}

	slf.logger.Info().
		Uint("scheduledEmailId", row.ID).
		Int("sent", sent).
		Int("failed", len(failures)).
		Msg("Scheduled email processed")

	return slf.scheduleNextOccurrence(row)
}

// fanOut delivers to each recipient independently so one bad address
// cannot sink the others. Returns the success count and the failure
// descriptions.
func (slf *SchedulerService) fanOut(recipients []string, subject string, body string, org models.Organization) (int, []string) {
	sender := slf.sender
	if sender == nil {
		sender = NewRetrySender(ForOrganization(org), slf.maxAttempts)
	}

	sent := 0
	var failures []string
	for _, recipient := range recipients {
		if err := slf.limiter.Wait(slf.ctx); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", recipient, err))
			continue
		}

		start := time.Now()
		err := sender.Send(slf.ctx, OutgoingMail{
			To:      []string{recipient},
			Subject: subject,
			Body:    body,
			IsHTML:  true,
		})
		observability.RecipientSendDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", recipient, err))
			continue
		}
		sent++
	}
	return sent, failures
}

// scheduleNextOccurrence keeps a recurring chain alive by inserting a
// fresh pending row one day after the one just sent. The chain ends
// when the next date falls past the recurrence end date.
func (slf *SchedulerService) scheduleNextOccurrence(row models.ScheduledEmail) error {
	next, ok := row.NextOccurrence()
	if !ok {
		if row.IsRecurring {
			slf.logger.Info().Uint("scheduledEmailId", row.ID).Msg("Recurring schedule reached its end date")
		}
		return nil
	}

	nextRow := models.ScheduledEmail{
		ClientID:          row.ClientID,
		OrganizationID:    row.OrganizationID,
		TemplateID:        row.TemplateID,
		ServiceID:         row.ServiceID,
		Recipients:        append(models.StringList{}, row.Recipients...),
		ScheduledDate:     next,
		ScheduledTime:     row.ScheduledTime,
		ScheduledDateTime: models.CombineDateTime(next, row.ScheduledTime),
		IsRecurring:       true,
		RecurrenceEndDate: row.RecurrenceEndDate,
		Status:            models.ScheduledEmailStatusPending,
	}
	if err := slf.scheduledRepo.Create(&nextRow); err != nil {
		slf.logger.Error().Err(err).Uint("scheduledEmailId", row.ID).Msg("Failed to schedule next occurrence")
		return err
	}
	return nil
}

func (slf *SchedulerService) markFailed(row models.ScheduledEmail, message string) error {
	return slf.scheduledRepo.UpdateStatus(row.ID, models.ScheduledEmailStatusFailed, message, nil)
}
