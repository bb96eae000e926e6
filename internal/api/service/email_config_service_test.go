package service

import (
	"firmdesk/internal/api/models"
	"firmdesk/pkg"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var cfgNow = time.Date(2026, 5, 15, 11, 0, 0, 0, time.UTC) // a Friday

func singleConfig(date string) models.EmailConfigData {
	return models.EmailConfigData{
		Emails: []string{"client@example.com"},
		Services: map[string]models.ServiceSchedule{
			"12": {
				Mode:   models.ScheduleModeSingle,
				Single: &models.SingleSchedule{Date: date},
				Times:  []string{"09:00"},
			},
		},
	}
}

func TestValidateEmailConfig_DateBoundary(t *testing.T) {
	assert.Nil(t, ValidateEmailConfig(singleConfig("2026-05-15"), cfgNow, nil), "today is a valid target")
	assert.Nil(t, ValidateEmailConfig(singleConfig("2026-05-16"), cfgNow, nil))

	errs := ValidateEmailConfig(singleConfig("2026-05-14"), cfgNow, nil)
	require.NotNil(t, errs, "yesterday must be rejected")
	assert.Contains(t, errs, "services.12")
	assert.Contains(t, errs["services.12"], "past")
}

func TestValidateEmailConfig_FieldPaths(t *testing.T) {
	cfg := models.EmailConfigData{
		Emails: []string{"not-an-email"},
		Services: map[string]models.ServiceSchedule{
			"3":   {Mode: "weekly", Times: []string{"09:00"}},
			"4":   {Mode: models.ScheduleModeSingle, Times: []string{"09:00"}},
			"abc": {Mode: models.ScheduleModeSingle, Single: &models.SingleSchedule{Date: "2026-06-01"}, Times: []string{"09:00"}},
		},
	}

	errs := ValidateEmailConfig(cfg, cfgNow, nil)
	require.NotNil(t, errs)
	assert.Contains(t, errs["emails.0"], "invalid email")
	assert.Contains(t, errs["services.3"], "unknown schedule mode")
	assert.Contains(t, errs["services.4"], "requires a date")
	assert.Contains(t, errs["services.abc"], "numeric ID")
}

func TestValidateEmailConfig_TimesRequired(t *testing.T) {
	cfg := singleConfig("2026-05-18")

	schedule := cfg.Services["12"]
	schedule.Times = nil
	cfg.Services["12"] = schedule

	errs := ValidateEmailConfig(cfg, cfgNow, nil)
	require.NotNil(t, errs, "a schedule without times must be rejected")
	assert.Contains(t, errs["services.12"], "at least one scheduled time")

	schedule.Times = []string{"09:00", "25:99"}
	cfg.Services["12"] = schedule
	errs = ValidateEmailConfig(cfg, cfgNow, nil)
	require.NotNil(t, errs)
	assert.Contains(t, errs["services.12"], "invalid send time")
}

func TestValidateEmailConfig_Range(t *testing.T) {
	cfg := models.EmailConfigData{
		Emails: []string{"client@example.com"},
		Services: map[string]models.ServiceSchedule{
			"7": {
				Mode:  models.ScheduleModeRange,
				Range: &models.RangeSchedule{From: "2026-05-20", To: "2026-05-18"},
				Times: []string{"09:00"},
			},
		},
	}
	errs := ValidateEmailConfig(cfg, cfgNow, nil)
	require.NotNil(t, errs)
	assert.Contains(t, errs["services.7"], "strictly before")

	cfg.Services["7"] = models.ServiceSchedule{
		Mode:  models.ScheduleModeRange,
		Range: &models.RangeSchedule{From: "2026-05-18", To: "2026-05-18"},
		Times: []string{"09:00"},
	}
	errs = ValidateEmailConfig(cfg, cfgNow, nil)
	require.NotNil(t, errs, "an empty range is rejected, not silently accepted")
	assert.Contains(t, errs["services.7"], "strictly before")

	cfg.Services["7"] = models.ServiceSchedule{
		Mode:  models.ScheduleModeRange,
		Range: &models.RangeSchedule{From: "2026-05-15", To: "2026-05-18"},
		Times: []string{"09:00"},
	}
	assert.Nil(t, ValidateEmailConfig(cfg, cfgNow, nil))
}

func TestValidateEmailConfig_NoRecipientsAfterFiltering(t *testing.T) {
	cfg := models.EmailConfigData{
		Emails: []string{"client@example.com"},
		EmailTemplates: map[string]models.RecipientConfig{
			"5": {Enabled: pkg.ToPtr(false)},
		},
		Services: map[string]models.ServiceSchedule{
			"9": {Mode: models.ScheduleModeAll, TemplateID: pkg.ToPtr(uint(5)), Times: []string{"09:00"}},
		},
	}

	errs := ValidateEmailConfig(cfg, cfgNow, map[uint]bool{5: true})
	require.NotNil(t, errs)
	assert.Contains(t, errs["services.9"], "no recipients")
}

func TestValidateEmailConfig_UnknownTemplates(t *testing.T) {
	cfg := models.EmailConfigData{
		Emails: []string{"client@example.com"},
		EmailTemplates: map[string]models.RecipientConfig{
			"9": {Emails: []string{"override@example.com"}},
		},
		Services: map[string]models.ServiceSchedule{
			"12": {
				Mode:       models.ScheduleModeSingle,
				Single:     &models.SingleSchedule{Date: "2026-05-18"},
				TemplateID: pkg.ToPtr(uint(41)),
				Times:      []string{"09:00"},
			},
		},
	}

	errs := ValidateEmailConfig(cfg, cfgNow, map[uint]bool{3: true})
	require.NotNil(t, errs, "templates outside the organization must be rejected")
	assert.Equal(t, "unknown or inaccessible template IDs: 9, 41", errs["templateIds"])

	assert.Nil(t, ValidateEmailConfig(cfg, cfgNow, map[uint]bool{9: true, 41: true}))
}

func TestValidateEmailConfig_SkipsDisabledSchedules(t *testing.T) {
	cfg := singleConfig("2026-05-14") // yesterday, invalid when enabled

	schedule := cfg.Services["12"]
	schedule.Enabled = pkg.ToPtr(false)
	cfg.Services["12"] = schedule

	assert.Nil(t, ValidateEmailConfig(cfg, cfgNow, nil), "disabled schedules are not validated")
}

func TestResolveRecipients(t *testing.T) {
	cfg := models.EmailConfigData{
		Emails: []string{"default@example.com"},
		EmailTemplates: map[string]models.RecipientConfig{
			"1": {Emails: []string{"override@example.com"}},
			"2": {Enabled: pkg.ToPtr(false)},
			"3": {Enabled: pkg.ToPtr(true)},
		},
	}

	assert.Equal(t, []string{"default@example.com"}, ResolveRecipients(cfg, nil))
	assert.Equal(t, []string{"override@example.com"}, ResolveRecipients(cfg, pkg.ToPtr(uint(1))))
	assert.Empty(t, ResolveRecipients(cfg, pkg.ToPtr(uint(2))), "disabled template sends to nobody")
	assert.Equal(t, []string{"default@example.com"}, ResolveRecipients(cfg, pkg.ToPtr(uint(3))))
	assert.Equal(t, []string{"default@example.com"}, ResolveRecipients(cfg, pkg.ToPtr(uint(99))), "no override falls through")
}

func TestExpandSchedules_Single(t *testing.T) {
	client := models.Client{ID: 20, OrganizationID: 4}
	rows := ExpandSchedules(client, singleConfig("2026-05-18"), cfgNow)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, uint(20), row.ClientID)
	assert.Equal(t, uint(4), row.OrganizationID)
	require.NotNil(t, row.ServiceID)
	assert.Equal(t, uint(12), *row.ServiceID)
	assert.Equal(t, models.ScheduledEmailStatusPending, row.Status)
	assert.False(t, row.IsRecurring)
	assert.Equal(t, "09:00", row.ScheduledTime)
	assert.Equal(t, time.Date(2026, 5, 18, 9, 0, 0, 0, time.UTC), row.ScheduledDateTime)
}

func TestExpandSchedules_OneRowPerTime(t *testing.T) {
	client := models.Client{ID: 20, OrganizationID: 4}
	cfg := singleConfig("2026-05-18")

	schedule := cfg.Services["12"]
	schedule.Times = []string{"08:00", "16:30"}
	cfg.Services["12"] = schedule

	rows := ExpandSchedules(client, cfg, cfgNow)

	require.Len(t, rows, 2, "each configured time gets its own row")
	assert.Equal(t, time.Date(2026, 5, 18, 8, 0, 0, 0, time.UTC), rows[0].ScheduledDateTime)
	assert.Equal(t, time.Date(2026, 5, 18, 16, 30, 0, 0, time.UTC), rows[1].ScheduledDateTime)
}

func TestExpandSchedules_RangeInclusive(t *testing.T) {
	client := models.Client{ID: 20, OrganizationID: 4}
	cfg := models.EmailConfigData{
		Emails: []string{"client@example.com"},
		Services: map[string]models.ServiceSchedule{
			"8": {
				Mode:  models.ScheduleModeRange,
				Range: &models.RangeSchedule{From: "2026-05-20", To: "2026-05-22"},
				Times: []string{"18:30"},
			},
		},
	}

	rows := ExpandSchedules(client, cfg, cfgNow)

	require.Len(t, rows, 3, "range bounds are inclusive")
	assert.Equal(t, time.Date(2026, 5, 20, 18, 30, 0, 0, time.UTC), rows[0].ScheduledDateTime)
	assert.Equal(t, time.Date(2026, 5, 21, 18, 30, 0, 0, time.UTC), rows[1].ScheduledDateTime)
	assert.Equal(t, time.Date(2026, 5, 22, 18, 30, 0, 0, time.UTC), rows[2].ScheduledDateTime)
}

func TestExpandSchedules_AllMaterializesTomorrowOnly(t *testing.T) {
	client := models.Client{ID: 20, OrganizationID: 4}
	cfg := models.EmailConfigData{
		Emails: []string{"client@example.com"},
		Services: map[string]models.ServiceSchedule{
			"5": {Mode: models.ScheduleModeAll, Times: []string{"09:00"}, RecurrenceEndDate: "2026-06-30"},
		},
	}

	rows := ExpandSchedules(client, cfg, cfgNow)

	require.Len(t, rows, 1, "mode all produces exactly one row per time")
	row := rows[0]
	assert.True(t, row.IsRecurring)
	assert.Equal(t, time.Date(2026, 5, 16, 0, 0, 0, 0, time.UTC), row.ScheduledDate, "row lands on tomorrow")
	require.NotNil(t, row.RecurrenceEndDate)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), *row.RecurrenceEndDate)
}

func TestExpandSchedules_SkipsFilteredServices(t *testing.T) {
	client := models.Client{ID: 20, OrganizationID: 4}
	cfg := models.EmailConfigData{
		Emails: []string{"client@example.com"},
		EmailTemplates: map[string]models.RecipientConfig{
			"5": {Enabled: pkg.ToPtr(false)},
		},
		Services: map[string]models.ServiceSchedule{
			"1": {Mode: models.ScheduleModeSingle, Single: &models.SingleSchedule{Date: "2026-05-18"}, Times: []string{"09:00"}},
			"2": {Mode: models.ScheduleModeSingle, Single: &models.SingleSchedule{Date: "2026-05-18"}, TemplateID: pkg.ToPtr(uint(5)), Times: []string{"09:00"}},
		},
	}

	rows := ExpandSchedules(client, cfg, cfgNow)

	require.Len(t, rows, 1, "service with an unsubscribed template expands to nothing")
	require.NotNil(t, rows[0].ServiceID)
	assert.Equal(t, uint(1), *rows[0].ServiceID)
}

func TestExpandSchedules_SkipsDisabledSchedules(t *testing.T) {
	client := models.Client{ID: 20, OrganizationID: 4}
	cfg := singleConfig("2026-05-18")

	schedule := cfg.Services["12"]
	schedule.Enabled = pkg.ToPtr(false)
	cfg.Services["12"] = schedule

	assert.Empty(t, ExpandSchedules(client, cfg, cfgNow), "disabled schedules expand to nothing")
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		"services.2": "unknown schedule mode \"x\"",
		"emails":     "at least one recipient email is required",
	}

	assert.Equal(t, "emails: at least one recipient email is required; services.2: unknown schedule mode \"x\"", errs.Error())
}

// In-memory stores for exercising the Save workflow.

type fakeClientStore struct {
	client models.Client
}

func (slf *fakeClientStore) FindByIDSimple(id uint) (models.Client, error) {
	if id != slf.client.ID {
		return models.Client{}, gorm.ErrRecordNotFound
	}
	return slf.client, nil
}

type fakeConfigStore struct {
	calls *[]string
	saved *models.ClientEmailConfig
}

func (slf *fakeConfigStore) Upsert(doc *models.ClientEmailConfig) error {
	*slf.calls = append(*slf.calls, "upsert")
	slf.saved = doc
	return nil
}

func (slf *fakeConfigStore) FindByClient(clientID uint) (models.ClientEmailConfig, error) {
	if slf.saved == nil {
		return models.ClientEmailConfig{}, gorm.ErrRecordNotFound
	}
	return *slf.saved, nil
}

func (slf *fakeConfigStore) DeleteByClient(clientID uint) error {
	slf.saved = nil
	return nil
}

type fakeScheduledStore struct {
	calls     *[]string
	pending   int64
	created   []models.ScheduledEmail
	cancelled int64
}

func (slf *fakeScheduledStore) CancelPendingByClient(clientID uint) (int64, error) {
	*slf.calls = append(*slf.calls, "cancel")
	slf.cancelled += slf.pending
	cancelled := slf.pending
	slf.pending = 0
	return cancelled, nil
}

func (slf *fakeScheduledStore) CreateBatch(rows []models.ScheduledEmail) error {
	*slf.calls = append(*slf.calls, "create")
	slf.created = append(slf.created, rows...)
	slf.pending += int64(len(rows))
	return nil
}

type fakeTemplateStore struct {
	masters []models.EmailTemplate
	owned   map[uint][]models.EmailTemplate
}

func (slf *fakeTemplateStore) FindMasters() ([]models.EmailTemplate, error) {
	return slf.masters, nil
}

func (slf *fakeTemplateStore) FindByOrganization(organizationID uint) ([]models.EmailTemplate, error) {
	return slf.owned[organizationID], nil
}

func newTestConfigService(calls *[]string) (*EmailConfigService, *fakeConfigStore, *fakeScheduledStore) {
	configs := &fakeConfigStore{calls: calls}
	scheduled := &fakeScheduledStore{calls: calls, pending: 2}
	svc := &EmailConfigService{
		configRepo:    configs,
		clientRepo:    &fakeClientStore{client: models.Client{ID: 20, OrganizationID: 4}},
		scheduledRepo: scheduled,
		templateRepo: &fakeTemplateStore{
			masters: []models.EmailTemplate{{ID: 3, Name: "Deadline reminder"}},
			owned: map[uint][]models.EmailTemplate{
				4: {{ID: 9, Name: "Custom reminder"}},
			},
		},
		logger: zerolog.Nop(),
	}
	return svc, configs, scheduled
}

func TestEmailConfigService_SaveReplacesPendingSchedule(t *testing.T) {
	var calls []string
	svc, configs, scheduled := newTestConfigService(&calls)

	cfg := models.EmailConfigData{
		Emails: []string{"client@example.com"},
		Services: map[string]models.ServiceSchedule{
			"12": {Mode: models.ScheduleModeAll, TemplateID: pkg.ToPtr(uint(3)), Times: []string{"08:00"}},
		},
	}

	doc, err := svc.Save(20, cfg)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, uint(20), doc.ClientID)

	require.Equal(t, []string{"cancel", "upsert", "create"},
		calls, "stale pending rows are cancelled before the new plan is written")
	assert.Equal(t, int64(2), scheduled.cancelled)
	require.Len(t, scheduled.created, 1)
	assert.True(t, scheduled.created[0].IsRecurring)

	require.NotNil(t, configs.saved)
	assert.Equal(t, cfg.Emails, configs.saved.Config.Emails)
}

func TestEmailConfigService_SaveRejectsForeignTemplate(t *testing.T) {
	var calls []string
	svc, _, scheduled := newTestConfigService(&calls)

	cfg := models.EmailConfigData{
		Emails: []string{"client@example.com"},
		Services: map[string]models.ServiceSchedule{
			"12": {Mode: models.ScheduleModeAll, TemplateID: pkg.ToPtr(uint(77)), Times: []string{"08:00"}},
		},
	}

	_, err := svc.Save(20, cfg)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs["templateIds"], "77")

	assert.Empty(t, calls, "a rejected document must not touch the existing schedule")
	assert.Zero(t, scheduled.cancelled)
}
