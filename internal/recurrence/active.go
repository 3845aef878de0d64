package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/model"
)

// CivilDate strips the time of day, keeping the calendar date as seen in t's
// own location. Results are comparable across locations.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return CivilDate(a).Equal(CivilDate(b))
}

// TaskActiveOn reports whether the task has an occurrence on date.
func TaskActiveOn(t model.Task, date time.Time) bool {
	day := CivilDate(date)
	start := CivilDate(t.StartDate)

	if t.Type != model.TaskRecurring {
		return day.Equal(start)
	}

	if day.Before(start) {
		return false
	}
	if t.EndDate != nil && day.After(CivilDate(*t.EndDate)) {
		return false
	}

	rep, err := ParseRepeat(t.RepeatOption)
	if err != nil {
		return false
	}
	switch rep {
	case Daily:
		return true
	case Weekly:
		return day.Weekday() == start.Weekday()
	case Monthly:
		return day.Day() == start.Day()
	case Yearly:
		return day.Month() == start.Month() && day.Day() == start.Day()
	}
	return false
}

// ChoreActiveOn reports whether date's weekday is one of the chore's days.
// Chores have no start or end date.
func ChoreActiveOn(c model.Chore, date time.Time) bool {
	return HasDay(c.Days, date.Weekday())
}

// IsActiveOn dispatches on the item kind.
func IsActiveOn(item model.Item, date time.Time) bool {
	switch item.Kind {
	case model.KindTask:
		return TaskActiveOn(*item.Task, date)
	case model.KindChore:
		return ChoreActiveOn(*item.Chore, date)
	}
	return false
}

var ErrEndBeforeStart = errors.New("end date precedes start date")

// ValidateTask checks the fields that decide a task's occurrences.
func ValidateTask(t model.Task) error {
	if t.StartDate.IsZero() {
		return errors.New("start date is required")
	}
	switch t.Type {
	case model.TaskOneTime:
		if t.EndDate != nil {
			return errors.New("one-time tasks cannot have an end date")
		}
	case model.TaskRecurring:
		rep, err := ParseRepeat(t.RepeatOption)
		if err != nil {
			return err
		}
		if rep == Never {
			return errors.New("recurring tasks need a repeat option")
		}
		if t.EndDate != nil && CivilDate(*t.EndDate).Before(CivilDate(t.StartDate)) {
			return ErrEndBeforeStart
		}
	default:
		return fmt.Errorf("unknown task type: %q", t.Type)
	}
	return nil
}
