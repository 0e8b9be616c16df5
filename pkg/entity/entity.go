package entity

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryWork     Category = "WORK"
	CategorySchool   Category = "SCHOOL"
	CategoryPersonal Category = "PERSONAL"
)

type Repetition string

const (
	RepetitionOnce   Repetition = "ONCE"
	RepetitionDaily  Repetition = "DAILY"
	RepetitionWeekly Repetition = "WEEKLY"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Reminder is the stored template. DateTime is the anchor: the first (or
// only) occurrence instant, never advanced in place. Recurring projections
// are always recomputed from it.
type Reminder struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	DateTime     time.Time  `json:"date_time"`
	Category     Category   `json:"category"`
	Repetition   Repetition `json:"repetition"`
	Status       Status     `json:"status"`
	Location     string     `json:"location,omitempty"`
	HasVibration bool       `json:"has_vibration"`
	SoundURI     string     `json:"sound_uri,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Activity is a sub-task owned by exactly one reminder. OrderIndex is the
// manual display order, not insertion order.
type Activity struct {
	ID          int       `json:"id"`
	ReminderID  uuid.UUID `json:"reminder_id"`
	Name        string    `json:"name"`
	IsCompleted bool      `json:"is_completed"`
	OrderIndex  int       `json:"order_index"`
}

// Occurrence is one ledger row: completion state of a recurring reminder
// for a single calendar day. Absence of a row means not completed.
type Occurrence struct {
	ID          int       `json:"id"`
	ReminderID  uuid.UUID `json:"reminder_id"`
	Day         time.Time `json:"day"`
	IsCompleted bool      `json:"is_completed"`
}

// DayOf truncates t to midnight in t's location. Every component that keys
// the ledger by day must go through this, never normalize independently.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayKey is the canonical map key for a calendar day. Ledger lookups are
// keyed by it instead of time.Time to avoid location-sensitive equality.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
