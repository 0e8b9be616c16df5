package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	errorvalues "github.com/planit/planit/internal/error_values"
	"github.com/planit/planit/internal/repository"
	"github.com/planit/planit/pkg/entity"
)

type RemindersService struct {
	remindersRepo  repository.RemindersRepositoryI
	activitiesRepo repository.ActivitiesRepositoryI
	scheduler      WakeSchedulerI
	bus            *ChangeBus
}

func NewRemindersService(
	remindersRepo repository.RemindersRepositoryI,
	activitiesRepo repository.ActivitiesRepositoryI,
	scheduler WakeSchedulerI,
	bus *ChangeBus,
) *RemindersService {
	if remindersRepo == nil || activitiesRepo == nil || scheduler == nil || bus == nil {
		log.Fatal("on reminders service provided nil dependencies")
	}
	return &RemindersService{
		remindersRepo:  remindersRepo,
		activitiesRepo: activitiesRepo,
		scheduler:      scheduler,
		bus:            bus,
	}
}

func (rs *RemindersService) CreateReminder(ctx context.Context, req *CreateReminderRequest) (*entity.Reminder, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errorvalues.ErrEmptyTitle
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	id, err := rs.remindersRepo.Create(ctx, &entity.Reminder{
		Title:        req.Title,
		Description:  req.Description,
		DateTime:     req.DateTime,
		Category:     req.Category,
		Repetition:   req.Repetition,
		Status:       entity.StatusPending,
		Location:     req.Location,
		HasVibration: req.HasVibration,
		SoundURI:     req.SoundURI,
	})
	if err != nil {
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	reminder, err := rs.remindersRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	if err := rs.scheduler.Arm(reminder); err != nil {
		slog.Error("arming created reminder failed",
			slog.String("reminder_id", reminder.ID.String()),
			slog.String("error", err.Error()))
	}
	rs.bus.publish(changeEvent{Kind: reminderChanged, ReminderID: reminder.ID})
	return reminder, nil
}

func (rs *RemindersService) UpdateReminder(ctx context.Context, req *UpdateReminderRequest) (*entity.Reminder, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errorvalues.ErrEmptyTitle
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	err := rs.remindersRepo.Update(ctx, &entity.Reminder{
		ID:           req.ID,
		Title:        req.Title,
		Description:  req.Description,
		DateTime:     req.DateTime,
		Category:     req.Category,
		Repetition:   req.Repetition,
		Location:     req.Location,
		HasVibration: req.HasVibration,
		SoundURI:     req.SoundURI,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return nil, err
		}
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	reminder, err := rs.remindersRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	if err := rs.scheduler.Reschedule(reminder); err != nil {
		slog.Error("rescheduling updated reminder failed",
			slog.String("reminder_id", reminder.ID.String()),
			slog.String("error", err.Error()))
	}
	rs.bus.publish(changeEvent{Kind: reminderChanged, ReminderID: reminder.ID})
	return reminder, nil
}

func (rs *RemindersService) GetReminder(ctx context.Context, id uuid.UUID) (*entity.Reminder, error) {
	reminder, err := rs.remindersRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return nil, err
		}
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	return reminder, nil
}

func (rs *RemindersService) GetAllReminders(ctx context.Context) ([]*entity.Reminder, error) {
	reminders, err := rs.remindersRepo.GetAll(ctx)
	if err != nil {
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	return reminders, nil
}

// DeleteReminder removes the template with its activities and ledger rows
// as one unit, then disarms any pending wake-up.
func (rs *RemindersService) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	err := rs.remindersRepo.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return err
		}
		return errors.New("reminders repository error: " + err.Error())
	}
	rs.scheduler.Cancel(id)
	rs.bus.publish(changeEvent{Kind: reminderChanged, ReminderID: id})
	return nil
}

// UpdateStatus transitions the template lifecycle status. Completing a ONCE
// reminder also disarms its pending wake-up.
func (rs *RemindersService) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status) error {
	reminder, err := rs.remindersRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return err
		}
		return errors.New("reminders repository error: " + err.Error())
	}
	if err := rs.remindersRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return err
		}
		return errors.New("reminders repository error: " + err.Error())
	}
	if reminder.Repetition == entity.RepetitionOnce && status == entity.StatusCompleted {
		rs.scheduler.Cancel(id)
	}
	rs.bus.publish(changeEvent{Kind: reminderChanged, ReminderID: id})
	return nil
}

func (rs *RemindersService) GetActivities(ctx context.Context, reminderID uuid.UUID) ([]entity.Activity, error) {
	activities, err := rs.activitiesRepo.GetByReminderID(ctx, reminderID)
	if err != nil {
		return nil, errors.New("activities repository error: " + err.Error())
	}
	return activities, nil
}

// WatchActivities streams the activity list of a reminder, re-read on every
// activity change. The channel closes when ctx is done.
func (rs *RemindersService) WatchActivities(ctx context.Context, reminderID uuid.UUID) (<-chan []entity.Activity, error) {
	initial, err := rs.GetActivities(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	out := make(chan []entity.Activity, 1)
	out <- initial
	subID, events := rs.bus.subscribe()
	go func() {
		defer close(out)
		defer rs.bus.unsubscribe(subID)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Kind != activityChanged || ev.ReminderID != reminderID {
					continue
				}
				activities, err := rs.GetActivities(ctx, reminderID)
				if err != nil {
					slog.Error("re-reading watched activities failed",
						slog.String("reminder_id", reminderID.String()),
						slog.String("error", err.Error()))
					continue
				}
				select {
				case out <- activities:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (rs *RemindersService) AddActivity(ctx context.Context, req *CreateActivityRequest) (*entity.Activity, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	activity := entity.Activity{
		ReminderID: req.ReminderID,
		Name:       req.Name,
		OrderIndex: req.OrderIndex,
	}
	id, err := rs.activitiesRepo.Create(ctx, &activity)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return nil, err
		}
		return nil, errors.New("activities repository error: " + err.Error())
	}
	activity.ID = id
	rs.bus.publish(changeEvent{Kind: activityChanged, ReminderID: req.ReminderID})
	return &activity, nil
}

func (rs *RemindersService) AddActivities(ctx context.Context, reminderID uuid.UUID, activities []entity.Activity) error {
	for i := range activities {
		activities[i].ReminderID = reminderID
		if strings.TrimSpace(activities[i].Name) == "" {
			return errorvalues.ErrEmptyTitle
		}
	}
	if err := rs.activitiesRepo.CreateBatch(ctx, activities); err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return err
		}
		return errors.New("activities repository error: " + err.Error())
	}
	rs.bus.publish(changeEvent{Kind: activityChanged, ReminderID: reminderID})
	return nil
}

func (rs *RemindersService) UpdateActivity(ctx context.Context, activity *entity.Activity) error {
	if strings.TrimSpace(activity.Name) == "" {
		return errorvalues.ErrEmptyTitle
	}
	if err := rs.activitiesRepo.Update(ctx, activity); err != nil {
		if errors.Is(err, errorvalues.ErrActivityNotFound) {
			return err
		}
		return errors.New("activities repository error: " + err.Error())
	}
	rs.bus.publish(changeEvent{Kind: activityChanged, ReminderID: activity.ReminderID})
	return nil
}

func (rs *RemindersService) DeleteActivity(ctx context.Context, reminderID uuid.UUID, activityID int) error {
	if err := rs.activitiesRepo.Delete(ctx, activityID); err != nil {
		if errors.Is(err, errorvalues.ErrActivityNotFound) {
			return err
		}
		return errors.New("activities repository error: " + err.Error())
	}
	rs.bus.publish(changeEvent{Kind: activityChanged, ReminderID: reminderID})
	return nil
}
