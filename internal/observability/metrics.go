package observability

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SchedulerTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "firmdesk_scheduler_ticks_total",
		Help: "Scheduler passes executed.",
	})

	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "firmdesk_emails_sent_total",
		Help: "Scheduled emails that reached at least one recipient.",
	})

	EmailsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "firmdesk_emails_failed_total",
		Help: "Scheduled emails that reached no recipient.",
	})

	RecipientSendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "firmdesk_recipient_send_duration_seconds",
		Help:    "SMTP delivery duration per recipient, retries included.",
		Buckets: prometheus.DefBuckets,
	})

	CredentialMailsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "firmdesk_credential_mails_queued_total",
		Help: "Credential delivery jobs pushed to the outbound queue.",
	})
)

// MetricsHandler exposes the prometheus registry as a gin handler.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
