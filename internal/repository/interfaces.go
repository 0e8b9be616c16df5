package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/planit/planit/pkg/entity"
)

type RemindersRepositoryI interface {
	// Creates new reminder, returns generated id
	Create(ctx context.Context, reminder *entity.Reminder) (uuid.UUID, error)
	// Searches reminder with given id
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Reminder, error)
	// Lists all reminders ordered by anchor instant
	GetAll(ctx context.Context) ([]*entity.Reminder, error)
	// Lists reminders whose anchor falls in [from, to)
	GetByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Reminder, error)
	// Updates reminder by ID (ID in reminder is necessary)
	Update(ctx context.Context, reminder *entity.Reminder) error
	// Transitions template lifecycle status (meaningful for ONCE reminders)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status) error
	// Deletes reminder with its activities and occurrence records in one transaction
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type ActivitiesRepositoryI interface {
	// Lists activities of a reminder in manual order
	GetByReminderID(ctx context.Context, reminderID uuid.UUID) ([]entity.Activity, error)
	// Creates new activity, returns generated id
	Create(ctx context.Context, activity *entity.Activity) (int, error)
	// Inserts a batch of activities
	CreateBatch(ctx context.Context, activities []entity.Activity) error
	// Updates name, completion flag and order index
	Update(ctx context.Context, activity *entity.Activity) error
	// Deletes single activity
	Delete(ctx context.Context, id int) error
	// Deletes all activities owned by reminder
	DeleteByReminderID(ctx context.Context, reminderID uuid.UUID) error
}

// OccurrencesRepositoryI is the durable per-day completion ledger for
// recurring reminders. Days are normalized to midnight inside the repo.
type OccurrencesRepositoryI interface {
	// Reports completion state for the day, false when no row exists
	Get(ctx context.Context, reminderID uuid.UUID, day time.Time) (bool, error)
	// Upserts the (reminder, day) row; last write wins
	SetCompleted(ctx context.Context, reminderID uuid.UUID, day time.Time, completed bool) error
	// Batch lookup keyed by entity.DayKey; absent days are absent from the map
	BulkGet(ctx context.Context, reminderID uuid.UUID, days []time.Time) (map[string]bool, error)
	// Removes the whole ledger of a reminder
	DeleteByReminderID(ctx context.Context, reminderID uuid.UUID) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
