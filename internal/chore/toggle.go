package chore

import (
	"errors"
	"fmt"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/model"
)

const DateKeyLayout = "2006-01-02"

var ErrInvalidDateKey = errors.New("invalid date key")

// DateKey formats the calendar date of t as a completion-map key.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey validates a completion-map key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return t, nil
}

// Transition is the outcome of toggling a chore for one day. The deltas are
// what must be applied to the stored chore and child; Chore and Child hold
// the resulting documents.
type Transition struct {
	DateKey         string      `json:"date_key"`
	Done            bool        `json:"done"`
	CompletedDelta  int         `json:"completed_delta"`
	BalanceDelta    int         `json:"balance_delta"`
	ScreenTimeDelta int         `json:"screen_time_delta"`
	Chore           model.Chore `json:"chore"`
	Child           model.Child `json:"child"`
}

// Toggle flips the chore's completion for dateKey. Turning it on adds one to
// the counter and the chore's value to the child's balance (or screen-time
// accrual); turning it off reverses that, never going below zero.
func Toggle(c model.Chore, child model.Child, dateKey string) (Transition, error) {
	if _, err := ParseDateKey(dateKey); err != nil {
		return Transition{}, err
	}

	done := !c.DoneOn(dateKey)

	dates := make(map[string]bool, len(c.CompletedDates)+1)
	for k, v := range c.CompletedDates {
		if v {
			dates[k] = true
		}
	}

	tr := Transition{DateKey: dateKey, Done: done}
	value := c.Value
	if value < 0 {
		value = 0
	}

	if done {
		dates[dateKey] = true
		tr.CompletedDelta = 1
		if c.RewardType == model.RewardScreenTime {
			tr.ScreenTimeDelta = value
		} else {
			tr.BalanceDelta = value
		}
	} else {
		delete(dates, dateKey)
		tr.CompletedDelta = -min(1, c.Completed)
		if c.RewardType == model.RewardScreenTime {
			tr.ScreenTimeDelta = -min(value, child.ScreenTimeBalance)
		} else {
			tr.BalanceDelta = -min(value, child.Balance)
		}
	}

	c.CompletedDates = dates
	c.Completed += tr.CompletedDelta
	child.Balance += tr.BalanceDelta
	child.ScreenTimeBalance += tr.ScreenTimeDelta
	tr.Chore = c
	tr.Child = child
	return tr, nil
}
