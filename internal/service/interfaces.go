package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/planit/planit/pkg/entity"
)

type CreateReminderRequest struct {
	Title        string            `validate:"required,max=200"`
	Description  string            `validate:"max=2000"`
	DateTime     time.Time         `validate:"required"`
	Category     entity.Category   `validate:"required,oneof=WORK SCHOOL PERSONAL"`
	Repetition   entity.Repetition `validate:"required,oneof=ONCE DAILY WEEKLY"`
	Location     string            `validate:"max=500"`
	HasVibration bool
	SoundURI     string
}

type UpdateReminderRequest struct {
	ID           uuid.UUID         `validate:"required"`
	Title        string            `validate:"required,max=200"`
	Description  string            `validate:"max=2000"`
	DateTime     time.Time         `validate:"required"`
	Category     entity.Category   `validate:"required,oneof=WORK SCHOOL PERSONAL"`
	Repetition   entity.Repetition `validate:"required,oneof=ONCE DAILY WEEKLY"`
	Location     string            `validate:"max=500"`
	HasVibration bool
	SoundURI     string
}

type CreateActivityRequest struct {
	ReminderID uuid.UUID `validate:"required"`
	Name       string    `validate:"required,max=200"`
	OrderIndex int       `validate:"gte=0"`
}

// WakeSchedulerI is the scheduling collaborator notified after every write
// so the next wake-up always matches stored data.
type WakeSchedulerI interface {
	Arm(reminder *entity.Reminder) error
	Reschedule(reminder *entity.Reminder) error
	Cancel(id uuid.UUID)
}

type FilterKind int

const (
	FilterToday FilterKind = iota
	FilterWeek
	FilterRange
	FilterAll
)

// Filter selects the occurrence window. From/To are used by FilterRange
// only, as a half-open [From, To) window.
type Filter struct {
	Kind FilterKind
	From time.Time
	To   time.Time
}

// OccurrenceView is one projected or materialized occurrence annotated with
// its completion state.
type OccurrenceView struct {
	Reminder    *entity.Reminder `json:"reminder"`
	At          time.Time        `json:"at"`
	Day         time.Time        `json:"day"`
	IsCompleted bool             `json:"is_completed"`
}
