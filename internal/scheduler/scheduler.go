// Package scheduler owns the per-reminder wake-up state machine:
// UNARMED -> ARMED(exact) | ARMED(best-effort) -> FIRED -> UNARMED | ARMED.
// Operations on one reminder identity are serialized; different identities
// proceed in parallel.
package scheduler

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/planit/planit/internal/error_values"
	"github.com/planit/planit/internal/notification"
	"github.com/planit/planit/internal/recurrence"
	"github.com/planit/planit/internal/repository"
	"github.com/planit/planit/pkg/entity"
)

type Mode int

const (
	ModeUnarmed Mode = iota
	ModeArmedExact
	ModeArmedBestEffort
	ModeFired
)

type reminderState struct {
	mu     sync.Mutex
	mode   Mode
	handle Handle
	nextAt time.Time
}

type Scheduler struct {
	wake      WakeUp
	presenter notification.Presenter
	reminders repository.RemindersRepositoryI
	now       func() time.Time

	mu     sync.Mutex
	states map[uuid.UUID]*reminderState
}

func New(wake WakeUp, presenter notification.Presenter, reminders repository.RemindersRepositoryI) *Scheduler {
	if wake == nil || presenter == nil || reminders == nil {
		log.Fatal("on scheduler provided nil collaborators")
	}
	return &Scheduler{
		wake:      wake,
		presenter: presenter,
		reminders: reminders,
		now:       time.Now,
		states:    make(map[uuid.UUID]*reminderState),
	}
}

func (s *Scheduler) state(id uuid.UUID) *reminderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	if !ok {
		st = &reminderState{}
		s.states[id] = st
	}
	return st
}

// Arm schedules the next wake-up for the reminder: the anchor for ONCE, the
// first projected instant not before now for recurring kinds. A ONCE
// reminder whose anchor already passed stays unarmed.
func (s *Scheduler) Arm(reminder *entity.Reminder) error {
	st := s.state(reminder.ID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return s.armLocked(st, reminder, s.now())
}

// Reschedule is cancel-then-arm under one identity lock, so no window
// exists where old and new wake-ups are both pending.
func (s *Scheduler) Reschedule(reminder *entity.Reminder) error {
	st := s.state(reminder.ID)
	st.mu.Lock()
	defer st.mu.Unlock()
	s.disarmLocked(st)
	return s.armLocked(st, reminder, s.now())
}

// Cancel removes any pending wake-up. Cancelling an unarmed reminder is a
// no-op, not an error.
func (s *Scheduler) Cancel(id uuid.UUID) {
	st := s.state(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	s.disarmLocked(st)
	s.presenter.Dismiss(id)
}

// Fire is the inbound fired-wake-up boundary. It presents the reminder and,
// for recurring kinds, re-arms the occurrence strictly after the fired
// instant. A fire for a deleted reminder is logged and dropped.
func (s *Scheduler) Fire(ctx context.Context, p FirePayload) error {
	st := s.state(p.ReminderID)
	st.mu.Lock()
	defer st.mu.Unlock()

	// Whatever handle is recorded is superseded by this delivery: the spent
	// wake-up itself, or one armed by a reschedule that raced the fire. It
	// must be cancelled at the platform, not just forgotten, or the re-arm
	// below would leave two wake-ups pending for one reminder.
	if st.handle != "" {
		s.wake.Cancel(st.handle)
		st.handle = ""
	}
	st.mode = ModeFired

	reminder, err := s.reminders.GetByID(ctx, p.ReminderID)
	if err != nil {
		st.mode = ModeUnarmed
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			slog.Warn("wake-up fired for deleted reminder", slog.String("reminder_id", p.ReminderID.String()))
			return nil
		}
		return errors.New("repository error on fire: " + err.Error())
	}

	s.presenter.Present(reminder.ID, reminder.Title, reminder.Description)

	if reminder.Repetition == entity.RepetitionOnce {
		st.mode = ModeUnarmed
		return nil
	}
	// Re-arm from the immutable anchor, never fired instant + one period:
	// the reference is the later of the payload instant and the clock, so a
	// delayed delivery still arms the first genuinely future occurrence.
	ref := p.At
	if now := s.now(); now.After(ref) {
		ref = now
	}
	next, ok := recurrence.NextAfter(reminder.DateTime, reminder.Repetition, ref)
	if !ok {
		st.mode = ModeUnarmed
		return nil
	}
	return s.armAtLocked(st, reminder, next)
}

// RearmAll restores wake-ups for every reminder with a future occurrence.
// Called once at startup so alarms survive process restart.
func (s *Scheduler) RearmAll(ctx context.Context) error {
	reminders, err := s.reminders.GetAll(ctx)
	if err != nil {
		return errors.New("repository error on rearm: " + err.Error())
	}
	for _, r := range reminders {
		if r.Repetition == entity.RepetitionOnce && r.Status == entity.StatusCompleted {
			continue
		}
		if err := s.Arm(r); err != nil {
			slog.Error("re-arming reminder failed",
				slog.String("reminder_id", r.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// Mode reports the current state machine mode for a reminder.
func (s *Scheduler) Mode(id uuid.UUID) Mode {
	st := s.state(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.mode
}

// NextAt reports the armed trigger instant, zero when unarmed.
func (s *Scheduler) NextAt(id uuid.UUID) time.Time {
	st := s.state(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.nextAt
}

func (s *Scheduler) armLocked(st *reminderState, reminder *entity.Reminder, ref time.Time) error {
	next, ok := recurrence.NextOnOrAfter(reminder.DateTime, reminder.Repetition, ref)
	if !ok {
		s.disarmLocked(st)
		return nil
	}
	return s.armAtLocked(st, reminder, next)
}

func (s *Scheduler) armAtLocked(st *reminderState, reminder *entity.Reminder, at time.Time) error {
	if st.handle != "" {
		s.wake.Cancel(st.handle)
		st.handle = ""
	}
	payload := FirePayload{
		ReminderID:   reminder.ID,
		Title:        reminder.Title,
		Body:         reminder.Description,
		HasVibration: reminder.HasVibration,
		Repetition:   reminder.Repetition,
		At:           at,
	}
	if s.wake.CanScheduleExact() {
		h, err := s.wake.ScheduleExactAt(at, payload)
		if err == nil {
			st.mode = ModeArmedExact
			st.handle = h
			st.nextAt = at
			return nil
		}
		if !errors.Is(err, ErrExactDenied) {
			slog.Warn("exact wake-up scheduling failed, retrying best-effort",
				slog.String("reminder_id", reminder.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	h, err := s.wake.ScheduleBestEffortAt(at, payload)
	if err != nil {
		st.mode = ModeUnarmed
		st.nextAt = time.Time{}
		return errors.New("arming wake-up error: " + err.Error())
	}
	st.mode = ModeArmedBestEffort
	st.handle = h
	st.nextAt = at
	return nil
}

func (s *Scheduler) disarmLocked(st *reminderState) {
	if st.handle != "" {
		s.wake.Cancel(st.handle)
		st.handle = ""
	}
	st.mode = ModeUnarmed
	st.nextAt = time.Time{}
}
