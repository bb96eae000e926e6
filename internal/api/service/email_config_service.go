package service

import (
	"errors"
	"firmdesk"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/repo"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationErrors maps a field path, e.g. "services.12", to what is
// wrong with it.
type ValidationErrors map[string]string

func (ve ValidationErrors) Error() string {
	keys := make([]string, 0, len(ve))
	for k := range ve {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, ve[k]))
	}
	return strings.Join(parts, "; ")
}

// ValidateEmailConfig checks a configuration document against today.
// Dates on or after today are accepted, yesterday is not. Every
// template the document references must appear in validTemplates,
// the set of IDs visible to the client's organization. Disabled
// service schedules are not checked.
func ValidateEmailConfig(cfg models.EmailConfigData, now time.Time, validTemplates map[uint]bool) ValidationErrors {
	errs := ValidationErrors{}
	today := models.DateOnly(now)

	if len(cfg.Emails) == 0 {
		errs["emails"] = "at least one recipient email is required"
	}
	for i, email := range cfg.Emails {
		if !emailPattern.MatchString(email) {
			errs[fmt.Sprintf("emails.%d", i)] = fmt.Sprintf("invalid email address: %s", email)
		}
	}

	var badTemplates []uint
	seenBad := map[uint]bool{}
	flagTemplate := func(id uint) {
		if !validTemplates[id] && !seenBad[id] {
			seenBad[id] = true
			badTemplates = append(badTemplates, id)
		}
	}

	for tid, rc := range cfg.EmailTemplates {
		parsed, err := strconv.ParseUint(tid, 10, 32)
		if err != nil {
			errs["emailTemplates."+tid] = "template key must be a numeric ID"
		} else {
			flagTemplate(uint(parsed))
		}
		for i, email := range rc.Emails {
			if !emailPattern.MatchString(email) {
				errs[fmt.Sprintf("emailTemplates.%s.emails.%d", tid, i)] = fmt.Sprintf("invalid email address: %s", email)
			}
		}
	}

	for serviceID, schedule := range cfg.Services {
		key := "services." + serviceID

		if _, err := strconv.ParseUint(serviceID, 10, 32); err != nil {
			errs[key] = "service key must be a numeric ID"
			continue
		}

		if schedule.IsDisabled() {
			continue
		}

		if schedule.TemplateID != nil {
			flagTemplate(*schedule.TemplateID)
		}

		if len(schedule.Times) == 0 {
			errs[key] = "at least one scheduled time must be specified"
			continue
		}
		badTime := false
		for _, t := range schedule.Times {
			if _, err := time.Parse("15:04", t); err != nil {
				errs[key] = fmt.Sprintf("invalid send time %q, expected HH:MM", t)
				badTime = true
				break
			}
		}
		if badTime {
			continue
		}

		if recipients := ResolveRecipients(cfg, schedule.TemplateID); len(recipients) == 0 {
			errs[key] = "no recipients left after template subscription filtering"
			continue
		}

		switch schedule.Mode {
		case models.ScheduleModeSingle:
			if schedule.Single == nil {
				errs[key] = "single mode requires a date"
				continue
			}
			date, err := time.ParseInLocation(dateLayout, schedule.Single.Date, now.Location())
			if err != nil {
				errs[key] = fmt.Sprintf("invalid date %q", schedule.Single.Date)
				continue
			}
			if date.Before(today) {
				errs[key] = "date must not be in the past"
			}
		case models.ScheduleModeRange:
			if schedule.Range == nil {
				errs[key] = "range mode requires from and to dates"
				continue
			}
			from, err := time.ParseInLocation(dateLayout, schedule.Range.From, now.Location())
			if err != nil {
				errs[key] = fmt.Sprintf("invalid from date %q", schedule.Range.From)
				continue
			}
			to, err := time.ParseInLocation(dateLayout, schedule.Range.To, now.Location())
			if err != nil {
				errs[key] = fmt.Sprintf("invalid to date %q", schedule.Range.To)
				continue
			}
			if !from.Before(to) {
				errs[key] = "from date must be strictly before to date"
				continue
			}
			if from.Before(today) {
				errs[key] = "date range must not start in the past"
			}
		case models.ScheduleModeAll:
			if schedule.RecurrenceEndDate != "" {
				end, err := time.ParseInLocation(dateLayout, schedule.RecurrenceEndDate, now.Location())
				if err != nil {
					errs[key] = fmt.Sprintf("invalid recurrence end date %q", schedule.RecurrenceEndDate)
					continue
				}
				if end.Before(today) {
					errs[key] = "recurrence end date must not be in the past"
				}
			}
		default:
			errs[key] = fmt.Sprintf("unknown schedule mode %q", schedule.Mode)
		}
	}

	if len(badTemplates) > 0 {
		sort.Slice(badTemplates, func(i, j int) bool { return badTemplates[i] < badTemplates[j] })
		ids := make([]string, len(badTemplates))
		for i, id := range badTemplates {
			ids[i] = strconv.FormatUint(uint64(id), 10)
		}
		errs["templateIds"] = "unknown or inaccessible template IDs: " + strings.Join(ids, ", ")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ResolveRecipients applies the per-template subscription override to
// the document's default recipient list. A disabled template resolves
// to no recipients at all.
func ResolveRecipients(cfg models.EmailConfigData, templateID *uint) []string {
	recipients := cfg.Emails
	if templateID == nil {
		return recipients
	}

	override, ok := cfg.EmailTemplates[strconv.FormatUint(uint64(*templateID), 10)]
	if !ok {
		return recipients
	}
	if override.Enabled != nil && !*override.Enabled {
		return nil
	}
	if len(override.Emails) > 0 {
		return override.Emails
	}
	return recipients
}

// ExpandSchedules turns a validated configuration document into the
// scheduled rows it implies, one row per scheduled day and time.
// Mode "all" materializes recurring rows for tomorrow only; the
// scheduler advances them day by day after each successful send.
// Disabled schedules produce no rows.
func ExpandSchedules(client models.Client, cfg models.EmailConfigData, now time.Time) []models.ScheduledEmail {
	today := models.DateOnly(now)

	serviceIDs := make([]string, 0, len(cfg.Services))
	for id := range cfg.Services {
		serviceIDs = append(serviceIDs, id)
	}
	sort.Strings(serviceIDs)

	var rows []models.ScheduledEmail
	for _, rawID := range serviceIDs {
		schedule := cfg.Services[rawID]
		if schedule.IsDisabled() {
			continue
		}
		parsedID, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil {
			continue
		}
		serviceID := uint(parsedID)

		recipients := ResolveRecipients(cfg, schedule.TemplateID)
		if len(recipients) == 0 || len(schedule.Times) == 0 {
			continue
		}

		emit := func(date time.Time, recurring bool, endDate *time.Time) {
			for _, sendTime := range schedule.Times {
				rows = append(rows, models.ScheduledEmail{
					ClientID:          client.ID,
					OrganizationID:    client.OrganizationID,
					TemplateID:        schedule.TemplateID,
					ServiceID:         &serviceID,
					Recipients:        append(models.StringList{}, recipients...),
					ScheduledDate:     date,
					ScheduledTime:     sendTime,
					ScheduledDateTime: models.CombineDateTime(date, sendTime),
					IsRecurring:       recurring,
					RecurrenceEndDate: endDate,
					Status:            models.ScheduledEmailStatusPending,
				})
			}
		}

		switch schedule.Mode {
		case models.ScheduleModeSingle:
			if schedule.Single == nil {
				continue
			}
			date, err := time.ParseInLocation(dateLayout, schedule.Single.Date, now.Location())
			if err != nil {
				continue
			}
			emit(date, false, nil)

		case models.ScheduleModeRange:
			if schedule.Range == nil {
				continue
			}
			from, errFrom := time.ParseInLocation(dateLayout, schedule.Range.From, now.Location())
			to, errTo := time.ParseInLocation(dateLayout, schedule.Range.To, now.Location())
			if errFrom != nil || errTo != nil || !from.Before(to) {
				continue
			}
			for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
				emit(date, false, nil)
			}

		case models.ScheduleModeAll:
			tomorrow := today.AddDate(0, 0, 1)
			var end *time.Time
			if schedule.RecurrenceEndDate != "" {
				if parsed, err := time.ParseInLocation(dateLayout, schedule.RecurrenceEndDate, now.Location()); err == nil {
					end = &parsed
				}
			}
			emit(tomorrow, true, end)
		}
	}
	return rows
}

// Stores the configuration workflow depends on. The repo types satisfy
// these; tests substitute in-memory fakes.
type emailConfigStore interface {
	Upsert(doc *models.ClientEmailConfig) error
	FindByClient(clientID uint) (models.ClientEmailConfig, error)
	DeleteByClient(clientID uint) error
}

type clientStore interface {
	FindByIDSimple(id uint) (models.Client, error)
}

type scheduledEmailStore interface {
	CancelPendingByClient(clientID uint) (int64, error)
	CreateBatch(rows []models.ScheduledEmail) error
}

type templateStore interface {
	FindMasters() ([]models.EmailTemplate, error)
	FindByOrganization(organizationID uint) ([]models.EmailTemplate, error)
}

type EmailConfigService struct {
	configRepo    emailConfigStore
	clientRepo    clientStore
	scheduledRepo scheduledEmailStore
	templateRepo  templateStore
	logger        zerolog.Logger
}

func NewEmailConfigService() *EmailConfigService {
	return &EmailConfigService{
		configRepo:    repo.NewEmailConfigRepository(),
		clientRepo:    repo.NewClientRepository(),
		scheduledRepo: repo.NewScheduledEmailRepository(),
		templateRepo:  repo.NewEmailTemplateRepository(),
		logger:        firmdesk.Logger,
	}
}

// accessibleTemplates collects the IDs a client's organization may
// reference: the shared masters plus the organization's own templates.
func (slf *EmailConfigService) accessibleTemplates(organizationID uint) (map[uint]bool, error) {
	masters, err := slf.templateRepo.FindMasters()
	if err != nil {
		return nil, err
	}
	owned, err := slf.templateRepo.FindByOrganization(organizationID)
	if err != nil {
		return nil, err
	}

	valid := make(map[uint]bool, len(masters)+len(owned))
	for _, tmpl := range masters {
		valid[tmpl.ID] = true
	}
	for _, tmpl := range owned {
		valid[tmpl.ID] = true
	}
	return valid, nil
}

// Save validates and stores a client's configuration document, then
// rebuilds the schedule. Pending rows from the previous document are
// cancelled first so the new document fully replaces the old plan.
func (slf *EmailConfigService) Save(clientID uint, cfg models.EmailConfigData) (*models.ClientEmailConfig, error) {
	client, err := slf.clientRepo.FindByIDSimple(clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("client not found")
		}
		return nil, err
	}

	validTemplates, err := slf.accessibleTemplates(client.OrganizationID)
	if err != nil {
		return nil, err
	}
	if verrs := ValidateEmailConfig(cfg, time.Now(), validTemplates); verrs != nil {
		return nil, verrs
	}

	cancelled, err := slf.scheduledRepo.CancelPendingByClient(clientID)
	if err != nil {
		slf.logger.Error().Err(err).Uint("clientId", clientID).Msg("Failed to cancel pending scheduled emails")
		return nil, err
	}
	if cancelled > 0 {
		slf.logger.Info().Uint("clientId", clientID).Int64("cancelled", cancelled).Msg("Cancelled stale scheduled emails")
	}

	doc := models.ClientEmailConfig{ClientID: clientID, Config: cfg}
	if err := slf.configRepo.Upsert(&doc); err != nil {
		slf.logger.Error().Err(err).Uint("clientId", clientID).Msg("Failed to save email configuration")
		return nil, err
	}

	rows := ExpandSchedules(client, cfg, time.Now())
	if err := slf.scheduledRepo.CreateBatch(rows); err != nil {
		slf.logger.Error().Err(err).Uint("clientId", clientID).Msg("Failed to create scheduled emails")
		return nil, err
	}

	slf.logger.Info().
		Uint("clientId", clientID).
		Int("scheduled", len(rows)).
		Msg("Email configuration saved")
	return &doc, nil
}

func (slf *EmailConfigService) Get(clientID uint) (*models.ClientEmailConfig, error) {
	cfg, err := slf.configRepo.FindByClient(clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("email configuration not found")
		}
		return nil, err
	}
	return &cfg, nil
}

// Delete removes the configuration document and cancels whatever rows
// it still had pending.
func (slf *EmailConfigService) Delete(clientID uint) error {
	if _, err := slf.scheduledRepo.CancelPendingByClient(clientID); err != nil {
		return err
	}
	return slf.configRepo.DeleteByClient(clientID)
}
