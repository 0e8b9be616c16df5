package errorvalues

import "errors"

var (
	ErrEmptyTitle        = errors.New("reminder title must not be empty")
	ErrReminderNotFound  = errors.New("reminder doesn't exist")
	ErrActivityNotFound  = errors.New("activity doesn't exist")
	ErrOccurrenceInvalid = errors.New("occurrence day doesn't belong to reminder's schedule")
)
