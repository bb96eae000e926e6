package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dateAt(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestScheduledEmail_IsDue(t *testing.T) {
	now := dateAt(2026, 3, 10, 9, 30)

	pendingDue := ScheduledEmail{
		Status:            ScheduledEmailStatusPending,
		ScheduledDateTime: dateAt(2026, 3, 10, 9, 0),
	}
	assert.True(t, pendingDue.IsDue(now))

	future := pendingDue
	future.ScheduledDateTime = dateAt(2026, 3, 10, 10, 0)
	assert.False(t, future.IsDue(now))

	exactlyNow := pendingDue
	exactlyNow.ScheduledDateTime = now
	assert.True(t, exactlyNow.IsDue(now), "a row scheduled for this very instant is due")

	sent := pendingDue
	sent.Status = ScheduledEmailStatusSent
	assert.False(t, sent.IsDue(now))

	cancelled := pendingDue
	cancelled.Status = ScheduledEmailStatusCancelled
	assert.False(t, cancelled.IsDue(now))
}

func TestScheduledEmail_IsDue_RecurringEndDate(t *testing.T) {
	now := dateAt(2026, 3, 10, 9, 30)

	endToday := dateAt(2026, 3, 10, 0, 0)
	row := ScheduledEmail{
		Status:            ScheduledEmailStatusPending,
		ScheduledDateTime: dateAt(2026, 3, 10, 9, 0),
		IsRecurring:       true,
		RecurrenceEndDate: &endToday,
	}
	assert.True(t, row.IsDue(now), "end date today still sends today")

	endYesterday := dateAt(2026, 3, 9, 0, 0)
	row.RecurrenceEndDate = &endYesterday
	assert.False(t, row.IsDue(now), "past end date stops the chain")

	row.RecurrenceEndDate = nil
	assert.True(t, row.IsDue(now), "open-ended recurrence keeps going")
}

func TestScheduledEmail_NextOccurrence(t *testing.T) {
	row := ScheduledEmail{
		IsRecurring:   true,
		ScheduledDate: dateAt(2026, 3, 10, 0, 0),
	}

	next, ok := row.NextOccurrence()
	require.True(t, ok)
	assert.Equal(t, dateAt(2026, 3, 11, 0, 0), next)

	end := dateAt(2026, 3, 11, 0, 0)
	row.RecurrenceEndDate = &end
	next, ok = row.NextOccurrence()
	require.True(t, ok, "next date equal to the end date is still allowed")
	assert.Equal(t, dateAt(2026, 3, 11, 0, 0), next)

	endToday := dateAt(2026, 3, 10, 0, 0)
	row.RecurrenceEndDate = &endToday
	_, ok = row.NextOccurrence()
	assert.False(t, ok, "chain ends when the next date passes the end date")

	oneOff := ScheduledEmail{ScheduledDate: dateAt(2026, 3, 10, 0, 0)}
	_, ok = oneOff.NextOccurrence()
	assert.False(t, ok)
}

func TestScheduledEmailStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ScheduledEmailStatusPending.CanTransitionTo(ScheduledEmailStatusSent))
	assert.True(t, ScheduledEmailStatusPending.CanTransitionTo(ScheduledEmailStatusFailed))
	assert.True(t, ScheduledEmailStatusPending.CanTransitionTo(ScheduledEmailStatusCancelled))
	assert.True(t, ScheduledEmailStatusFailed.CanTransitionTo(ScheduledEmailStatusPending))

	assert.False(t, ScheduledEmailStatusSent.CanTransitionTo(ScheduledEmailStatusPending))
	assert.False(t, ScheduledEmailStatusSent.CanTransitionTo(ScheduledEmailStatusFailed))
	assert.False(t, ScheduledEmailStatusCancelled.CanTransitionTo(ScheduledEmailStatusPending))
	assert.False(t, ScheduledEmailStatusFailed.CanTransitionTo(ScheduledEmailStatusSent))
}

func TestCombineDateTime(t *testing.T) {
	date := dateAt(2026, 3, 10, 0, 0)

	assert.Equal(t, dateAt(2026, 3, 10, 14, 45), CombineDateTime(date, "14:45"))
	assert.Equal(t, dateAt(2026, 3, 10, 0, 0), CombineDateTime(date, "not-a-time"), "malformed time falls back to midnight")
}
