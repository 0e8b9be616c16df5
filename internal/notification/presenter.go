package notification

import (
	"log/slog"

	"github.com/google/uuid"
)

// Presenter is the notification collaborator. Implementations must check
// the enabled flag and skip silently when notifications are off.
type Presenter interface {
	Present(reminderID uuid.UUID, title, body string)
	Dismiss(reminderID uuid.UUID)
}

// LogPresenter writes presentations to the structured log. Stands in for a
// real delivery channel and is the default production presenter.
type LogPresenter struct {
	enabled bool
}

func NewLogPresenter(enabled bool) *LogPresenter {
	return &LogPresenter{enabled: enabled}
}

func (lp *LogPresenter) Present(reminderID uuid.UUID, title, body string) {
	if !lp.enabled {
		slog.Warn("notifications disabled, skipping presentation",
			slog.String("reminder_id", reminderID.String()))
		return
	}
	slog.Info("presenting reminder",
		slog.String("reminder_id", reminderID.String()),
		slog.String("title", title),
		slog.String("body", body))
}

func (lp *LogPresenter) Dismiss(reminderID uuid.UUID) {
	if !lp.enabled {
		return
	}
	slog.Info("dismissing reminder notification",
		slog.String("reminder_id", reminderID.String()))
}
