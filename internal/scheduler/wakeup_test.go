package scheduler_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/planit/planit/internal/scheduler"
	"github.com/planit/planit/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerWakeUpDelivers(t *testing.T) {
	tw := scheduler.NewTimerWakeUp(true)
	defer tw.Close()
	fired := make(chan scheduler.FirePayload, 1)
	tw.Bind(func(p scheduler.FirePayload) {
		fired <- p
	})
	payload := scheduler.FirePayload{
		ReminderID: uuid.New(),
		Title:      "water the plants",
		Repetition: entity.RepetitionDaily,
		At:         time.Now().Add(10 * time.Millisecond),
	}
	_, err := tw.ScheduleExactAt(payload.At, payload)
	require.NoError(t, err)
	select {
	case p := <-fired:
		assert.Equal(t, payload.ReminderID, p.ReminderID)
		assert.Equal(t, payload.Title, p.Title)
	case <-time.After(time.Second):
		t.Fatal("wake-up never fired")
	}
}

func TestTimerWakeUpExactDeniedWhenDisabled(t *testing.T) {
	tw := scheduler.NewTimerWakeUp(false)
	defer tw.Close()
	tw.Bind(func(scheduler.FirePayload) {})
	assert.False(t, tw.CanScheduleExact())
	_, err := tw.ScheduleExactAt(time.Now().Add(time.Hour), scheduler.FirePayload{ReminderID: uuid.New()})
	assert.ErrorIs(t, err, scheduler.ErrExactDenied)
	_, err = tw.ScheduleBestEffortAt(time.Now().Add(time.Hour), scheduler.FirePayload{ReminderID: uuid.New()})
	assert.NoError(t, err)
}

func TestTimerWakeUpRequiresBoundSink(t *testing.T) {
	tw := scheduler.NewTimerWakeUp(true)
	defer tw.Close()
	_, err := tw.ScheduleExactAt(time.Now().Add(time.Hour), scheduler.FirePayload{ReminderID: uuid.New()})
	assert.Error(t, err)
}

func TestTimerWakeUpCancelPreventsDelivery(t *testing.T) {
	tw := scheduler.NewTimerWakeUp(true)
	defer tw.Close()
	fired := make(chan scheduler.FirePayload, 1)
	tw.Bind(func(p scheduler.FirePayload) {
		fired <- p
	})
	h, err := tw.ScheduleExactAt(time.Now().Add(50*time.Millisecond), scheduler.FirePayload{ReminderID: uuid.New()})
	require.NoError(t, err)
	tw.Cancel(h)
	select {
	case <-fired:
		t.Fatal("cancelled wake-up still fired")
	case <-time.After(150 * time.Millisecond):
	}
	// cancelling again is a no-op
	tw.Cancel(h)
}
