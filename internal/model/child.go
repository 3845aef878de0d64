package model

import "time"

const DefaultWeeklyGoal = 50

type Child struct {
	ID                   string    `json:"id"`
	ParentID             string    `json:"parent_id"`
	Name                 string    `json:"name"`
	Avatar               string    `json:"avatar"`
	Balance              int       `json:"balance"`
	Savings              int       `json:"savings"`
	ScreenTimeBalance    int       `json:"screen_time_balance"`
	WeeklyGoal           int       `json:"weekly_goal"`
	WeeklyScreenTimeGoal *int      `json:"weekly_screen_time_goal"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
