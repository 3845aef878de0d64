package model

import "time"

type TaskType string

const (
	TaskOneTime   TaskType = "one_time"
	TaskRecurring TaskType = "recurring"
)

type Task struct {
	ID           string     `json:"id"`
	ChildID      string     `json:"child_id"`
	Name         string     `json:"name"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	AllDay       bool       `json:"all_day"`
	Type         TaskType   `json:"type"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	RepeatOption string     `json:"repeat_option"`
	Completed    int        `json:"completed"`
	AssignedBy   string     `json:"assigned_by"`
	Icon         string     `json:"icon"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
