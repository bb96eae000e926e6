package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport fails the first failUntil calls, then succeeds.
type fakeTransport struct {
	attempts  int
	failUntil int
	err       error
}

func (slf *fakeTransport) Send(ctx context.Context, msg OutgoingMail) error {
	slf.attempts++
	if slf.attempts <= slf.failUntil {
		return slf.err
	}
	return nil
}

func newTestRetrySender(transport Transport, maxAttempts int) *RetrySender {
	return &RetrySender{
		transport:   transport,
		maxAttempts: maxAttempts,
		step:        time.Millisecond,
		logger:      zerolog.Nop(),
	}
}

func TestIsRetryableSendError(t *testing.T) {
	assert.False(t, IsRetryableSendError(nil))
	assert.True(t, IsRetryableSendError(errors.New("dial tcp: i/o timeout")))
	assert.True(t, IsRetryableSendError(errors.New("Connection refused")))
	assert.True(t, IsRetryableSendError(errors.New("network is unreachable")))
	assert.True(t, IsRetryableSendError(errors.New("451 Temporary local problem")))
	assert.False(t, IsRetryableSendError(errors.New("550 mailbox not found")))
	assert.False(t, IsRetryableSendError(errors.New("535 authentication failed")))
}

func TestRetrySender_NonRetryableFailsOnce(t *testing.T) {
	transport := &fakeTransport{failUntil: 10, err: errors.New("550 mailbox not found")}
	sender := newTestRetrySender(transport, 3)

	err := sender.Send(context.Background(), OutgoingMail{To: []string{"a@example.com"}})

	require.Error(t, err)
	assert.Equal(t, 1, transport.attempts, "permanent errors must not be retried")
	assert.Contains(t, err.Error(), "send failed after 1 attempt(s)")
	assert.Contains(t, err.Error(), "550 mailbox not found")
}

func TestRetrySender_RetryableExhaustsAttempts(t *testing.T) {
	transport := &fakeTransport{failUntil: 10, err: errors.New("dial tcp: connection refused")}
	sender := newTestRetrySender(transport, 3)

	err := sender.Send(context.Background(), OutgoingMail{To: []string{"a@example.com"}})

	require.Error(t, err)
	assert.Equal(t, 3, transport.attempts)
	assert.Contains(t, err.Error(), "send failed after 3 attempt(s)")
}

func TestRetrySender_SucceedsAfterTransientFailures(t *testing.T) {
	transport := &fakeTransport{failUntil: 2, err: errors.New("i/o timeout")}
	sender := newTestRetrySender(transport, 3)

	err := sender.Send(context.Background(), OutgoingMail{To: []string{"a@example.com"}})

	require.NoError(t, err)
	assert.Equal(t, 3, transport.attempts)
}

func TestRetrySender_SingleAttemptFloor(t *testing.T) {
	transport := &fakeTransport{}
	sender := NewRetrySender(transport, 0)

	assert.Equal(t, 1, sender.maxAttempts)
}

func TestLinearBackOff(t *testing.T) {
	bo := &linearBackOff{step: 2 * time.Second}

	assert.Equal(t, 2*time.Second, bo.NextBackOff())
	assert.Equal(t, 4*time.Second, bo.NextBackOff())
	assert.Equal(t, 6*time.Second, bo.NextBackOff())

	bo.Reset()
	assert.Equal(t, 2*time.Second, bo.NextBackOff())
}

func TestRetrySender_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := &fakeTransport{failUntil: 10, err: errors.New("connection reset")}
	sender := newTestRetrySender(transport, 3)

	err := sender.Send(ctx, OutgoingMail{To: []string{"a@example.com"}})

	require.Error(t, err)
	assert.Equal(t, 1, transport.attempts, "cancelled context stops the retry loop")
}
