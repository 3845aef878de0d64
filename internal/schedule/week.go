// Package schedule groups chores and tasks into Monday-first weeks.
package schedule

import (
	"slices"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/recurrence"
)

// WeekWindow returns the half-open window [start, end) of the Monday-first
// week containing ref, in ref's location.
func WeekWindow(ref time.Time) (time.Time, time.Time) {
	offset := recurrence.DayIndex(ref.Weekday())
	start := time.Date(ref.Year(), ref.Month(), ref.Day()-offset, 0, 0, 0, 0, ref.Location())
	return start, start.AddDate(0, 0, 7)
}

// Bucket holds the items active on one day of the week.
type Bucket struct {
	Label string       `json:"label"`
	Date  time.Time    `json:"date"`
	Items []model.Item `json:"items"`
}

// Week always carries seven buckets, Monday through Sunday.
type Week struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  [7]Bucket `json:"days"`
}

// Bucket returns the bucket for label, or nil if label is not a weekday.
func (w *Week) Bucket(label string) *Bucket {
	wd, err := recurrence.ParseLabel(label)
	if err != nil {
		return nil
	}
	return &w.Days[recurrence.DayIndex(wd)]
}

// AggregateWeek places every item into the buckets of the days it is active
// on during the week containing ref. Within a bucket tasks precede chores and
// items of the same kind keep their input order.
func AggregateWeek(items []model.Item, ref time.Time) Week {
	start, end := WeekWindow(ref)
	w := Week{Start: start, End: end}

	for i := range w.Days {
		date := start.AddDate(0, 0, i)
		w.Days[i] = Bucket{
			Label: recurrence.Labels[i],
			Date:  date,
			Items: Day(items, date),
		}
	}
	return w
}

// Day returns the items active on date, tasks first.
func Day(items []model.Item, date time.Time) []model.Item {
	out := []model.Item{}
	for _, item := range items {
		if recurrence.IsActiveOn(item, date) {
			out = append(out, item)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Item) int {
		return a.Rank() - b.Rank()
	})
	return out
}
