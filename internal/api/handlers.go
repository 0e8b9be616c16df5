package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/planit/planit/internal/error_values"
	"github.com/planit/planit/internal/service"
	"github.com/planit/planit/pkg/entity"
	"github.com/planit/planit/pkg/httputil"
)

type ReminderRequest struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	DateTime     time.Time         `json:"date_time"`
	Category     entity.Category   `json:"category"`
	Repetition   entity.Repetition `json:"repetition"`
	Location     string            `json:"location"`
	HasVibration bool              `json:"has_vibration"`
	SoundURI     string            `json:"sound_uri"`
}

type StatusRequest struct {
	Status entity.Status `json:"status"`
}

type ActivityRequest struct {
	Name        string `json:"name"`
	IsCompleted bool   `json:"is_completed"`
	OrderIndex  int    `json:"order_index"`
}

type CompletionRequest struct {
	Completed bool `json:"completed"`
}

type GetOccurrencesResponse struct {
	Filter      string                   `json:"filter"`
	Occurrences []service.OccurrenceView `json:"occurrences"`
}

func (s *Server) CreateReminder(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req ReminderRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create reminder error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	reminder, err := s.remindersService.CreateReminder(ctx, &service.CreateReminderRequest{
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
		if errors.Is(err, errorvalues.ErrEmptyTitle) {
			logger.Error("create reminder error: empty title")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "reminder title must not be empty", nil)
			return
		}
		logger.Error("create reminder error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating reminder", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, reminder)
	logger.Info("reminder created", slog.String("reminder_id", reminder.ID.String()))
}

func (s *Server) GetReminders(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	reminders, err := s.remindersService.GetAllReminders(ctx)
	if err != nil {
		logger.Error("getting reminders list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting reminders list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, reminders)
	logger.Info("reminders provided")
}

func (s *Server) GetReminder(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("get reminder error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	reminder, err := s.remindersService.GetReminder(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			logger.Error("get reminder error: unexist reminder")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reminder doesn't exist", nil)
			return
		}
		logger.Error("get reminder error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting reminder", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, reminder)
}

func (s *Server) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update reminder error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return
	}
	var req ReminderRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update reminder error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	reminder, err := s.remindersService.UpdateReminder(ctx, &service.UpdateReminderRequest{
		ID:           id,
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
		switch {
		case errors.Is(err, errorvalues.ErrEmptyTitle):
			logger.Error("update reminder error: empty title")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "reminder title must not be empty", nil)
		case errors.Is(err, errorvalues.ErrReminderNotFound):
			logger.Error("update reminder error: unexist reminder")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reminder doesn't exist", nil)
		default:
			logger.Error("update reminder error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating reminder", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, reminder)
	logger.Info("reminder updated", slog.String("reminder_id", reminder.ID.String()))
}

func (s *Server) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("reminder deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.remindersService.DeleteReminder(ctx, id)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			logger.Error("reminder deletion error: unexist reminder")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reminder doesn't exist", nil)
			return
		}
		logger.Error("reminder deletion error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting reminder", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("reminder deleted", slog.String("reminder_id", id.String()))
}

func (s *Server) UpdateReminderStatus(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("status update error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return
	}
	var req StatusRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("status update error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	switch req.Status {
	case entity.StatusPending, entity.StatusInProgress, entity.StatusCompleted:
	default:
		logger.Error("status update error: unknown status")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "unknown status value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.remindersService.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			logger.Error("status update error: unexist reminder")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reminder doesn't exist", nil)
			return
		}
		logger.Error("status update error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating status", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("reminder status updated", slog.String("reminder_id", id.String()))
}

func (s *Server) GetActivities(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("get activities error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	activities, err := s.remindersService.GetActivities(ctx, id)
	if err != nil {
		logger.Error("getting activities error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting activities", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, activities)
}

func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("add activity error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return
	}
	var req ActivityRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("add activity error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	activity, err := s.remindersService.AddActivity(ctx, &service.CreateActivityRequest{
		ReminderID: id,
		Name:       req.Name,
		OrderIndex: req.OrderIndex,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrReminderNotFound):
			logger.Error("add activity error: unexist reminder")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reminder doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrEmptyTitle):
			logger.Error("add activity error: empty name")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "activity name must not be empty", nil)
		default:
			logger.Error("add activity error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while adding activity", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, activity)
	logger.Info("activity added", slog.String("reminder_id", id.String()))
}

func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update activity error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return
	}
	activityID, err := strconv.Atoi(r.PathValue("activityID"))
	if err != nil {
		logger.Error("update activity error: invalid activity id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid activity id in path value", nil)
		return
	}
	var req ActivityRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update activity error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.remindersService.UpdateActivity(ctx, &entity.Activity{
		ID:          activityID,
		ReminderID:  id,
		Name:        req.Name,
		IsCompleted: req.IsCompleted,
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrActivityNotFound):
			logger.Error("update activity error: unexist activity")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "activity doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrEmptyTitle):
			logger.Error("update activity error: empty name")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "activity name must not be empty", nil)
		default:
			logger.Error("update activity error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating activity", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("delete activity error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return
	}
	activityID, err := strconv.Atoi(r.PathValue("activityID"))
	if err != nil {
		logger.Error("delete activity error: invalid activity id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid activity id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.remindersService.DeleteActivity(ctx, id, activityID)
	if err != nil {
		if errors.Is(err, errorvalues.ErrActivityNotFound) {
			logger.Error("delete activity error: unexist activity")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "activity doesn't exist", nil)
			return
		}
		logger.Error("delete activity error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting activity", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	filter, err := parseFilter(r)
	if err != nil {
		logger.Error("get occurrences error: invalid filter")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid occurrence filter", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	occurrences, err := s.queryService.Occurrences(ctx, filter)
	if err != nil {
		logger.Error("getting occurrences error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting occurrences", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetOccurrencesResponse{
		Filter:      r.URL.Query().Get("filter"),
		Occurrences: occurrences,
	})
	logger.Info("occurrences provided")
}

func (s *Server) GetOccurrenceState(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, day, ok := parseOccurrencePath(w, r, logger)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	completed, err := s.queryService.IsOccurrenceCompleted(ctx, id, day)
	if err != nil {
		if errors.Is(err, errorvalues.ErrReminderNotFound) {
			logger.Error("occurrence state error: unexist reminder")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reminder doesn't exist", nil)
			return
		}
		logger.Error("occurrence state error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while getting occurrence state", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"reminder_id": id.String(),
		"day":         entity.DayKey(day),
		"completed":   completed,
	})
}

func (s *Server) SetOccurrenceState(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, day, ok := parseOccurrencePath(w, r, logger)
	if !ok {
		return
	}
	var req CompletionRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("occurrence completion error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.queryService.SetOccurrenceCompleted(ctx, id, day, req.Completed)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrReminderNotFound):
			logger.Error("occurrence completion error: unexist reminder")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reminder doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrOccurrenceInvalid):
			logger.Error("occurrence completion error: day off schedule")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "day doesn't belong to reminder's schedule", nil)
		default:
			logger.Error("occurrence completion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while completing occurrence", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("occurrence completion updated", slog.String("reminder_id", id.String()))
}

func parseOccurrencePath(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, time.Time, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("occurrence path error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return uuid.UUID{}, time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", r.PathValue("day"), time.Local)
	if err != nil {
		logger.Error("occurrence path error: invalid day in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid day in path value, expected YYYY-MM-DD", nil)
		return uuid.UUID{}, time.Time{}, false
	}
	return id, day, true
}

func parseFilter(r *http.Request) (service.Filter, error) {
	switch r.URL.Query().Get("filter") {
	case "", "today":
		return service.Filter{Kind: service.FilterToday}, nil
	case "week":
		return service.Filter{Kind: service.FilterWeek}, nil
	case "all":
		return service.Filter{Kind: service.FilterAll}, nil
	case "range":
		from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
		if err != nil {
			return service.Filter{}, errors.New("invalid 'from' query param")
		}
		to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
		if err != nil {
			return service.Filter{}, errors.New("invalid 'to' query param")
		}
		return service.Filter{Kind: service.FilterRange, From: from, To: to}, nil
	default:
		return service.Filter{}, errors.New("unknown filter value")
	}
}
