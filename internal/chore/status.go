package chore

import "github.com/tasktreasure/tasktreasure/internal/model"

type Status string

const (
	StatusDone    Status = "done"
	StatusPartial Status = "partial"
	StatusNotDone Status = "not_done"
)

type ChoreWithStatus struct {
	model.Chore
	Status    Status `json:"status"`
	DoneToday bool   `json:"done_today"`
}

// ComputeStatus compares the completion counter against the chore's
// frequency. A frequency below one is treated as one.
func ComputeStatus(c model.Chore) Status {
	freq := c.Frequency
	if freq < 1 {
		freq = model.DefaultChoreFrequency
	}
	switch {
	case c.Completed >= freq:
		return StatusDone
	case c.Completed > 0:
		return StatusPartial
	}
	return StatusNotDone
}

// WithStatus annotates chores for display on the day identified by dateKey.
func WithStatus(chores []model.Chore, dateKey string) []ChoreWithStatus {
	out := make([]ChoreWithStatus, 0, len(chores))
	for _, c := range chores {
		out = append(out, ChoreWithStatus{
			Chore:     c,
			Status:    ComputeStatus(c),
			DoneToday: c.DoneOn(dateKey),
		})
	}
	return out
}
