package service

import (
	"context"
	"firmdesk"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

var retryableFragments = []string{"timeout", "connection", "network", "temporary"}

// IsRetryableSendError classifies delivery errors. Transient transport
// failures are worth retrying; anything else, bad addresses or auth
// rejections, fails on the first attempt.
func IsRetryableSendError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// linearBackOff waits attempt*step between tries: 2s after the first
// failure, 4s after the second.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (slf *linearBackOff) NextBackOff() time.Duration {
	slf.attempt++
	return time.Duration(slf.attempt) * slf.step
}

func (slf *linearBackOff) Reset() {
	slf.attempt = 0
}

// RetrySender wraps a Transport with bounded retries.
type RetrySender struct {
	transport   Transport
	maxAttempts int
	step        time.Duration
	logger      zerolog.Logger
}

func NewRetrySender(transport Transport, maxAttempts int) *RetrySender {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetrySender{
		transport:   transport,
		maxAttempts: maxAttempts,
		step:        2 * time.Second,
		logger:      firmdesk.Logger,
	}
}

func (slf *RetrySender) Send(ctx context.Context, msg OutgoingMail) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := slf.transport.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if !IsRetryableSendError(err) {
			return backoff.Permanent(err)
		}
		slf.logger.Warn().Err(err).
			Int("attempt", attempt).
			Strs("to", msg.To).
			Msg("Transient send failure, will retry")
		return err
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: slf.step}, uint64(slf.maxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, bo); err != nil {
		return fmt.Errorf("send failed after %d attempt(s): %w", attempt, err)
	}
	return nil
}
