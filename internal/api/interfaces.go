package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/planit/planit/internal/service"
	"github.com/planit/planit/pkg/entity"
)

type RemindersServiceI interface {
	CreateReminder(ctx context.Context, req *service.CreateReminderRequest) (*entity.Reminder, error)
	UpdateReminder(ctx context.Context, req *service.UpdateReminderRequest) (*entity.Reminder, error)
	GetReminder(ctx context.Context, id uuid.UUID) (*entity.Reminder, error)
	GetAllReminders(ctx context.Context) ([]*entity.Reminder, error)
	DeleteReminder(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status) error
	GetActivities(ctx context.Context, reminderID uuid.UUID) ([]entity.Activity, error)
	AddActivity(ctx context.Context, req *service.CreateActivityRequest) (*entity.Activity, error)
	UpdateActivity(ctx context.Context, activity *entity.Activity) error
	DeleteActivity(ctx context.Context, reminderID uuid.UUID, activityID int) error
}

type QueryServiceI interface {
	Occurrences(ctx context.Context, f service.Filter) ([]service.OccurrenceView, error)
	SetOccurrenceCompleted(ctx context.Context, reminderID uuid.UUID, day time.Time, completed bool) error
	IsOccurrenceCompleted(ctx context.Context, reminderID uuid.UUID, day time.Time) (bool, error)
}
