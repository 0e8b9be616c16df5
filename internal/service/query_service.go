package service

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/planit/planit/internal/error_values"
	"github.com/planit/planit/internal/recurrence"
	"github.com/planit/planit/internal/repository"
	"github.com/planit/planit/pkg/entity"
)

// QueryService composes the reminder store, the recurrence expander and the
// occurrence ledger into annotated occurrence lists and live views of them.
type QueryService struct {
	remindersRepo   repository.RemindersRepositoryI
	occurrencesRepo repository.OccurrencesRepositoryI
	bus             *ChangeBus
	now             func() time.Time
}

func NewQueryService(
	remindersRepo repository.RemindersRepositoryI,
	occurrencesRepo repository.OccurrencesRepositoryI,
	bus *ChangeBus,
) *QueryService {
	if remindersRepo == nil || occurrencesRepo == nil || bus == nil {
		log.Fatal("on query service provided nil dependencies")
	}
	return &QueryService{
		remindersRepo:   remindersRepo,
		occurrencesRepo: occurrencesRepo,
		bus:             bus,
		now:             time.Now,
	}
}

// window resolves a filter to its half-open [from, to) instant window.
// TODAY is [local midnight, +1d), WEEK is [local midnight, +7d).
func (qs *QueryService) window(f Filter) (time.Time, time.Time, bool) {
	switch f.Kind {
	case FilterToday:
		start := entity.DayOf(qs.now())
		return start, start.AddDate(0, 0, 1), true
	case FilterWeek:
		start := entity.DayOf(qs.now())
		return start, start.AddDate(0, 0, 7), true
	case FilterRange:
		return f.From, f.To, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Occurrences returns the ordered occurrence list for the filter:
// materialized ONCE reminders plus expanded recurring projections, each
// annotated with completion state. FilterAll lists every template once at
// its anchor instant without expansion.
func (qs *QueryService) Occurrences(ctx context.Context, f Filter) ([]OccurrenceView, error) {
	reminders, err := qs.remindersRepo.GetAll(ctx)
	if err != nil {
		return nil, errors.New("reminders repository error: " + err.Error())
	}
	from, to, bounded := qs.window(f)

	views := make([]OccurrenceView, 0)
	for _, r := range reminders {
		var instants []time.Time
		if !bounded {
			instants = []time.Time{r.DateTime}
		} else {
			instants = recurrence.Expand(r.DateTime, r.Repetition, from, to)
		}
		if len(instants) == 0 {
			continue
		}
		if r.Repetition == entity.RepetitionOnce {
			views = append(views, OccurrenceView{
				Reminder:    r,
				At:          instants[0],
				Day:         entity.DayOf(instants[0]),
				IsCompleted: r.Status == entity.StatusCompleted,
			})
			continue
		}
		completed, err := qs.occurrencesRepo.BulkGet(ctx, r.ID, instants)
		if err != nil {
			return nil, errors.New("occurrences repository error: " + err.Error())
		}
		for _, at := range instants {
			day := entity.DayOf(at)
			views = append(views, OccurrenceView{
				Reminder:    r,
				At:          at,
				Day:         day,
				IsCompleted: completed[entity.DayKey(day)],
			})
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].At.Before(views[j].At)
	})
	return views, nil
}

// Watch returns a live view of Occurrences(f): the current snapshot first,
// then a fresh evaluation after every reminder change. The channel closes
// when ctx is done.
func (qs *QueryService) Watch(ctx context.Context, f Filter) (<-chan []OccurrenceView, error) {
	initial, err := qs.Occurrences(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make(chan []OccurrenceView, 1)
	out <- initial
	subID, events := qs.bus.subscribe()
	go func() {
		defer close(out)
		defer qs.bus.unsubscribe(subID)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Kind != reminderChanged {
					continue
				}
				views, err := qs.Occurrences(ctx, f)
				if err != nil {
					slog.Error("re-evaluating watched occurrences failed",
						slog.String("error", err.Error()))
					continue
				}
				select {
				case out <- views:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// SetOccurrenceCompleted records completion for one occurrence. Recurring
// reminders write to the per-day ledger; ONCE reminders transition their
// own template status instead. The day must carry a scheduled occurrence.
func (qs *QueryService) SetOccurrenceCompleted(ctx context.Context, reminderID uuid.UUID, day time.Time, completed bool) error {
	reminder, err := qs.remindersRepo.GetByID(ctx, reminderID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return err
		}
		return errors.New("reminders repository error: " + err.Error())
	}
	if reminder.Repetition == entity.RepetitionOnce {
		status := entity.StatusPending
		if completed {
			status = entity.StatusCompleted
		}
		if err := qs.remindersRepo.UpdateStatus(ctx, reminderID, status); err != nil {
			if errors.Is(err, errorvalues.ErrReminderNotFound) {
				return err
			}
			return errors.New("reminders repository error: " + err.Error())
		}
	} else {
		dayStart := entity.DayOf(day)
		onSchedule := recurrence.Expand(reminder.DateTime, reminder.Repetition, dayStart, dayStart.AddDate(0, 0, 1))
		if len(onSchedule) == 0 {
			return errorvalues.ErrOccurrenceInvalid
		}
		if err := qs.occurrencesRepo.SetCompleted(ctx, reminderID, day, completed); err != nil {
			if errors.Is(err, errorvalues.ErrReminderNotFound) {
				return err
			}
			return errors.New("occurrences repository error: " + err.Error())
		}
	}
	qs.bus.publish(changeEvent{Kind: reminderChanged, ReminderID: reminderID})
	return nil
}

// IsOccurrenceCompleted reports completion state for one day of a reminder.
func (qs *QueryService) IsOccurrenceCompleted(ctx context.Context, reminderID uuid.UUID, day time.Time) (bool, error) {
	reminder, err := qs.remindersRepo.GetByID(ctx, reminderID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			return false, err
		}
		return false, errors.New("reminders repository error: " + err.Error())
	}
	if reminder.Repetition == entity.RepetitionOnce {
		return reminder.Status == entity.StatusCompleted, nil
	}
	completed, err := qs.occurrencesRepo.Get(ctx, reminderID, day)
	if err != nil {
		return false, errors.New("occurrences repository error: " + err.Error())
	}
	return completed, nil
}
