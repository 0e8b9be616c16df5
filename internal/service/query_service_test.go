package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/planit/planit/internal/error_values"
	"github.com/planit/planit/internal/service"
	"github.com/planit/planit/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type occurrencesRepoMock struct {
	state     mockState
	completed map[string]bool
	setCalls  int
}

func newOccurrencesRepoMock() *occurrencesRepoMock {
	return &occurrencesRepoMock{
		completed: make(map[string]bool),
	}
}

func occurrenceKey(rid uuid.UUID, day time.Time) string {
	return rid.String() + "/" + entity.DayKey(entity.DayOf(day))
}

func (ormock *occurrencesRepoMock) Get(ctx context.Context, rid uuid.UUID, day time.Time) (bool, error) {
	switch ormock.state {
	case stateDBError:
		return false, errors.New("db error")
	default:
		return ormock.completed[occurrenceKey(rid, day)], nil
	}
}

func (ormock *occurrencesRepoMock) SetCompleted(ctx context.Context, rid uuid.UUID, day time.Time, completed bool) error {
	switch ormock.state {
	case stateReminderNotFoundError:
		return errorvalues.ErrReminderNotFound
	case stateDBError:
		return errors.New("db error")
	default:
		ormock.setCalls++
		ormock.completed[occurrenceKey(rid, day)] = completed
		return nil
	}
}

func (ormock *occurrencesRepoMock) BulkGet(ctx context.Context, rid uuid.UUID, days []time.Time) (map[string]bool, error) {
	switch ormock.state {
	case stateDBError:
		return nil, errors.New("db error")
	default:
		result := make(map[string]bool, len(days))
		for _, d := range days {
			if completed, ok := ormock.completed[occurrenceKey(rid, d)]; ok {
				result[entity.DayKey(entity.DayOf(d))] = completed
			}
		}
		return result, nil
	}
}

func (ormock *occurrencesRepoMock) DeleteByReminderID(ctx context.Context, rid uuid.UUID) error {
	switch ormock.state {
	case stateDBError:
		return errors.New("db error")
	default:
		for key := range ormock.completed {
			if len(key) > 36 && key[:36] == rid.String() {
				delete(ormock.completed, key)
			}
		}
		return nil
	}
}

func dailyReminder(anchor time.Time) *entity.Reminder {
	return &entity.Reminder{
		ID:         uuid.New(),
		Title:      "morning run",
		DateTime:   anchor,
		Category:   entity.CategoryPersonal,
		Repetition: entity.RepetitionDaily,
		Status:     entity.StatusPending,
	}
}

func TestOccurrencesRange(t *testing.T) {
	anchor := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.Local)
	daily := dailyReminder(anchor)
	rrmock := &remindersRepoMock{reminders: []*entity.Reminder{daily}}
	ormock := newOccurrencesRepoMock()
	qs := service.NewQueryService(rrmock, ormock, service.NewChangeBus())
	ctx := context.Background()

	completedDay := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.Local)
	ormock.completed[occurrenceKey(daily.ID, completedDay)] = true

	views, err := qs.Occurrences(ctx, service.Filter{
		Kind: service.FilterRange,
		From: time.Date(2026, time.March, 3, 0, 0, 0, 0, time.Local),
		To:   time.Date(2026, time.March, 6, 0, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)
	require.Equal(t, 3, len(views))
	for i, v := range views {
		expected := time.Date(2026, time.March, 3+i, 9, 0, 0, 0, time.Local)
		assert.True(t, expected.Equal(v.At))
		assert.Equal(t, daily.ID, v.Reminder.ID)
	}
	assert.False(t, views[0].IsCompleted)
	assert.True(t, views[1].IsCompleted)
	assert.False(t, views[2].IsCompleted)
}

func TestOccurrencesWeeklyCompletionDoesNotLeak(t *testing.T) {
	anchor := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.Local) // a Monday
	weekly := dailyReminder(anchor)
	weekly.Repetition = entity.RepetitionWeekly
	rrmock := &remindersRepoMock{reminders: []*entity.Reminder{weekly}}
	ormock := newOccurrencesRepoMock()
	qs := service.NewQueryService(rrmock, ormock, service.NewChangeBus())
	ctx := context.Background()

	require.NoError(t, qs.SetOccurrenceCompleted(ctx, weekly.ID, anchor, true))

	views, err := qs.Occurrences(ctx, service.Filter{
		Kind: service.FilterRange,
		From: anchor.AddDate(0, 0, -1),
		To:   anchor.AddDate(0, 0, 13),
	})
	require.NoError(t, err)
	require.Equal(t, 2, len(views))
	assert.True(t, views[0].IsCompleted)
	assert.False(t, views[1].IsCompleted)
}

func TestOccurrencesOnceUsesTemplateStatus(t *testing.T) {
	anchor := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.Local)
	once := dailyReminder(anchor)
	once.Repetition = entity.RepetitionOnce
	once.Status = entity.StatusCompleted
	rrmock := &remindersRepoMock{reminders: []*entity.Reminder{once}}
	ormock := newOccurrencesRepoMock()
	qs := service.NewQueryService(rrmock, ormock, service.NewChangeBus())

	views, err := qs.Occurrences(context.Background(), service.Filter{
		Kind: service.FilterRange,
		From: anchor.AddDate(0, 0, -1),
		To:   anchor.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.Equal(t, 1, len(views))
	assert.True(t, views[0].IsCompleted)
	assert.True(t, anchor.Equal(views[0].At))
}

func TestOccurrencesFilterAllListsTemplatesOnce(t *testing.T) {
	farPast := dailyReminder(time.Date(2020, time.January, 1, 7, 0, 0, 0, time.Local))
	farFuture := dailyReminder(time.Date(2030, time.January, 1, 7, 0, 0, 0, time.Local))
	farFuture.Repetition = entity.RepetitionOnce
	rrmock := &remindersRepoMock{reminders: []*entity.Reminder{farPast, farFuture}}
	qs := service.NewQueryService(rrmock, newOccurrencesRepoMock(), service.NewChangeBus())

	views, err := qs.Occurrences(context.Background(), service.Filter{Kind: service.FilterAll})
	require.NoError(t, err)
	require.Equal(t, 2, len(views))
	assert.True(t, farPast.DateTime.Equal(views[0].At))
	assert.True(t, farFuture.DateTime.Equal(views[1].At))
}

func TestOccurrencesFilterToday(t *testing.T) {
	// anchored well in the past, so a projection lands on every day
	daily := dailyReminder(time.Now().AddDate(0, 0, -10))
	tomorrowOnce := dailyReminder(time.Now().AddDate(0, 0, 1))
	tomorrowOnce.Repetition = entity.RepetitionOnce
	rrmock := &remindersRepoMock{reminders: []*entity.Reminder{daily, tomorrowOnce}}
	qs := service.NewQueryService(rrmock, newOccurrencesRepoMock(), service.NewChangeBus())

	views, err := qs.Occurrences(context.Background(), service.Filter{Kind: service.FilterToday})
	require.NoError(t, err)
	require.Equal(t, 1, len(views))
	assert.Equal(t, daily.ID, views[0].Reminder.ID)
	assert.True(t, entity.DayOf(time.Now()).Equal(views[0].Day))
}

func TestOccurrencesFilterWeekIncludesTomorrow(t *testing.T) {
	tomorrowOnce := dailyReminder(time.Now().AddDate(0, 0, 1))
	tomorrowOnce.Repetition = entity.RepetitionOnce
	rrmock := &remindersRepoMock{reminders: []*entity.Reminder{tomorrowOnce}}
	qs := service.NewQueryService(rrmock, newOccurrencesRepoMock(), service.NewChangeBus())

	views, err := qs.Occurrences(context.Background(), service.Filter{Kind: service.FilterWeek})
	require.NoError(t, err)
	require.Equal(t, 1, len(views))
	assert.Equal(t, tomorrowOnce.ID, views[0].Reminder.ID)
}

func TestSetOccurrenceCompleted(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.Local)
	t.Run("recurring writes the ledger", func(t *testing.T) {
		daily := dailyReminder(time.Date(2026, time.March, 1, 9, 0, 0, 0, time.Local))
		rrmock := &remindersRepoMock{reminders: []*entity.Reminder{daily}}
		ormock := newOccurrencesRepoMock()
		qs := service.NewQueryService(rrmock, ormock, service.NewChangeBus())

		err := qs.SetOccurrenceCompleted(ctx, daily.ID, day, true)
		assert.NoError(t, err)
		assert.True(t, ormock.completed[occurrenceKey(daily.ID, day)])
		assert.Equal(t, entity.Status(""), rrmock.lastStatus)
	})
	t.Run("repeating the same write is harmless", func(t *testing.T) {
		daily := dailyReminder(time.Date(2026, time.March, 1, 9, 0, 0, 0, time.Local))
		rrmock := &remindersRepoMock{reminders: []*entity.Reminder{daily}}
		ormock := newOccurrencesRepoMock()
		qs := service.NewQueryService(rrmock, ormock, service.NewChangeBus())

		require.NoError(t, qs.SetOccurrenceCompleted(ctx, daily.ID, day, true))
		require.NoError(t, qs.SetOccurrenceCompleted(ctx, daily.ID, day, true))
		completed, err := qs.IsOccurrenceCompleted(ctx, daily.ID, day)
		assert.NoError(t, err)
		assert.True(t, completed)
	})
	t.Run("one-shot transitions template status", func(t *testing.T) {
		rrmock := &remindersRepoMock{}
		ormock := newOccurrencesRepoMock()
		qs := service.NewQueryService(rrmock, ormock, service.NewChangeBus())

		err := qs.SetOccurrenceCompleted(ctx, reminderID, day, true)
		assert.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, rrmock.lastStatus)
		assert.Equal(t, 0, ormock.setCalls)
	})
	t.Run("one-shot un-completion restores pending", func(t *testing.T) {
		rrmock := &remindersRepoMock{}
		qs := service.NewQueryService(rrmock, newOccurrencesRepoMock(), service.NewChangeBus())

		err := qs.SetOccurrenceCompleted(ctx, reminderID, day, false)
		assert.NoError(t, err)
		assert.Equal(t, entity.StatusPending, rrmock.lastStatus)
	})
	t.Run("day off the weekly schedule", func(t *testing.T) {
		weekly := dailyReminder(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.Local))
		weekly.Repetition = entity.RepetitionWeekly
		rrmock := &remindersRepoMock{reminders: []*entity.Reminder{weekly}}
		ormock := newOccurrencesRepoMock()
		qs := service.NewQueryService(rrmock, ormock, service.NewChangeBus())

		err := qs.SetOccurrenceCompleted(ctx, weekly.ID, weekly.DateTime.AddDate(0, 0, 3), true)
		assert.ErrorIs(t, err, errorvalues.ErrOccurrenceInvalid)
		assert.Equal(t, 0, ormock.setCalls)
	})
	t.Run("day before the anchor", func(t *testing.T) {
		daily := dailyReminder(time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local))
		rrmock := &remindersRepoMock{reminders: []*entity.Reminder{daily}}
		qs := service.NewQueryService(rrmock, newOccurrencesRepoMock(), service.NewChangeBus())

		err := qs.SetOccurrenceCompleted(ctx, daily.ID, daily.DateTime.AddDate(0, 0, -2), true)
		assert.ErrorIs(t, err, errorvalues.ErrOccurrenceInvalid)
	})
	t.Run("unknown reminder", func(t *testing.T) {
		rrmock := &remindersRepoMock{state: stateReminderNotFoundError}
		qs := service.NewQueryService(rrmock, newOccurrencesRepoMock(), service.NewChangeBus())

		err := qs.SetOccurrenceCompleted(ctx, uuid.New(), day, true)
		assert.ErrorIs(t, err, errorvalues.ErrReminderNotFound)
	})
}

func TestIsOccurrenceCompleted(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.Local)
	t.Run("one-shot reads template status", func(t *testing.T) {
		once := dailyReminder(day)
		once.Repetition = entity.RepetitionOnce
		once.Status = entity.StatusCompleted
		rrmock := &remindersRepoMock{reminders: []*entity.Reminder{once}}
		qs := service.NewQueryService(rrmock, newOccurrencesRepoMock(), service.NewChangeBus())

		completed, err := qs.IsOccurrenceCompleted(ctx, once.ID, day)
		assert.NoError(t, err)
		assert.True(t, completed)
	})
	t.Run("recurring day without ledger row is incomplete", func(t *testing.T) {
		daily := dailyReminder(day.AddDate(0, 0, -5))
		rrmock := &remindersRepoMock{reminders: []*entity.Reminder{daily}}
		qs := service.NewQueryService(rrmock, newOccurrencesRepoMock(), service.NewChangeBus())

		completed, err := qs.IsOccurrenceCompleted(ctx, daily.ID, day)
		assert.NoError(t, err)
		assert.False(t, completed)
	})
	t.Run("unknown reminder", func(t *testing.T) {
		rrmock := &remindersRepoMock{state: stateReminderNotFoundError}
		qs := service.NewQueryService(rrmock, newOccurrencesRepoMock(), service.NewChangeBus())

		_, err := qs.IsOccurrenceCompleted(ctx, uuid.New(), day)
		assert.ErrorIs(t, err, errorvalues.ErrReminderNotFound)
	})
}

func TestWatchOccurrences(t *testing.T) {
	anchor := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.Local)
	daily := dailyReminder(anchor)
	rrmock := &remindersRepoMock{reminders: []*entity.Reminder{daily}}
	ormock := newOccurrencesRepoMock()
	qs := service.NewQueryService(rrmock, ormock, service.NewChangeBus())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	filter := service.Filter{
		Kind: service.FilterRange,
		From: time.Date(2026, time.March, 3, 0, 0, 0, 0, time.Local),
		To:   time.Date(2026, time.March, 4, 0, 0, 0, 0, time.Local),
	}
	ch, err := qs.Watch(ctx, filter)
	require.NoError(t, err)

	initial := <-ch
	require.Equal(t, 1, len(initial))
	assert.False(t, initial[0].IsCompleted)

	err = qs.SetOccurrenceCompleted(ctx, daily.ID, filter.From, true)
	require.NoError(t, err)

	select {
	case snapshot := <-ch:
		require.Equal(t, 1, len(snapshot))
		assert.True(t, snapshot[0].IsCompleted)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after completion change")
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after context cancellation")
		}
	}
}
