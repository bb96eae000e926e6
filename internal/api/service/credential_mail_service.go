package service

import (
	"context"
	"firmdesk"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/repo"
	"firmdesk/internal/observability"
	"firmdesk/pkg"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const credentialMailQueue = "credential_mails"

// CredentialMailJob is one queued credential delivery. The password
// travels in the job so the worker does not need decrypt access.
type CredentialMailJob struct {
	UserID         uint   `json:"userId"`
	OrganizationID uint   `json:"organizationId"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Password       string `json:"password"`
}

// CredentialMailService queues account credential emails through Redis
// and drains the queue with a background worker, so user creation never
// blocks on SMTP.
type CredentialMailService struct {
	orgRepo     *repo.OrganizationRepository
	renderer    *TemplateRenderService
	logger      zerolog.Logger
	maxAttempts int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCredentialMailService() *CredentialMailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CredentialMailService{
		orgRepo:     repo.NewOrganizationRepository(),
		renderer:    NewTemplateRenderService(),
		logger:      firmdesk.Logger,
		maxAttempts: firmdesk.GetConfig().SchedulerConfig.MaxSendAttempts,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Enqueue pushes a credential delivery job onto the outbound queue.
func (slf *CredentialMailService) Enqueue(job CredentialMailJob) error {
	if err := pkg.RedisPush(credentialMailQueue, job); err != nil {
		return err
	}
	observability.CredentialMailsQueued.Inc()
	slf.logger.Info().Uint("userId", job.UserID).Msg("Credential email queued")
	return nil
}

// Start launches the queue worker.
func (slf *CredentialMailService) Start() {
	slf.logger.Info().Msg("Starting credential mail worker")
	slf.wg.Add(1)
	go slf.work()
}

// Stop shuts the worker down and waits for the in-flight send.
func (slf *CredentialMailService) Stop() {
	slf.logger.Info().Msg("Stopping credential mail worker")
	slf.cancel()
	slf.wg.Wait()
	slf.logger.Info().Msg("Credential mail worker stopped")
}

func (slf *CredentialMailService) work() {
	defer slf.wg.Done()
	for {
		select {
		case <-slf.ctx.Done():
			return
		default:
		}

		var job CredentialMailJob
		err := pkg.RedisPop(slf.ctx, credentialMailQueue, 5*time.Second, &job)
		if err != nil {
			if pkg.IsRedisNil(err) || slf.ctx.Err() != nil {
				continue
			}
			slf.logger.Error().Err(err).Msg("Error reading credential mail queue")
			time.Sleep(time.Second)
			continue
		}

		slf.deliver(job)
	}
}

func (slf *CredentialMailService) deliver(job CredentialMailJob) {
	org, err := slf.orgRepo.FindByID(job.OrganizationID)
	if err != nil {
		slf.logger.Error().Err(err).Uint("userId", job.UserID).Msg("Credential mail dropped, organization not found")
		return
	}

	tmpl := credentialTemplate()
	vars := slf.renderer.BuildVariables(
		models.Client{Name: job.Name, Email: job.Email},
		org, nil, tmpl, RenderVars{},
	)
	vars["login_email"] = job.Email
	vars["login_password"] = job.Password

	subject, body := slf.renderer.RenderEmail(tmpl, org, vars)

	sender := NewRetrySender(ForOrganization(org), slf.maxAttempts)
	if err := sender.Send(slf.ctx, OutgoingMail{
		To:      []string{job.Email},
		Subject: subject,
		Body:    body,
		IsHTML:  true,
	}); err != nil {
		slf.logger.Error().Err(err).Uint("userId", job.UserID).Msg("Credential email delivery failed")
		return
	}

	slf.logger.Info().Uint("userId", job.UserID).Msg("Credential email delivered")
}

func credentialTemplate() models.EmailTemplate {
	return models.EmailTemplate{
		Name:    "Account Credentials",
		Subject: "Your {{org_name}} portal account",
		Body: "Dear {{client_name}},\n\n" +
			"Your portal account has been created.\n\n" +
			"Login email: {{login_email}}\n" +
			"Password: {{login_password}}\n" +
			"Portal: {{login_url}}\n\n" +
			"Please change your password after your first login.\n\n" +
			"Regards,\n{{org_name}}",
		BodyFormat: models.BodyFormatPlain,
	}
}
