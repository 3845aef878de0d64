package chore

import "github.com/tasktreasure/tasktreasure/internal/model"

// Progress is the reward earned across a set of chores.
type Progress struct {
	Currency   int `json:"currency"`
	ScreenTime int `json:"screen_time"`
}

// Summarize accrues value times completion count for every completed chore,
// split by reward type. Unknown reward types count as currency.
func Summarize(chores []model.Chore) Progress {
	var p Progress
	for _, c := range chores {
		if c.Completed <= 0 {
			continue
		}
		earned := c.Value * c.Completed
		if c.RewardType == model.RewardScreenTime {
			p.ScreenTime += earned
		} else {
			p.Currency += earned
		}
	}
	return p
}

// GoalProgress compares earnings with a child's weekly goals.
type GoalProgress struct {
	Progress
	WeeklyGoal           int     `json:"weekly_goal"`
	WeeklyScreenTimeGoal int     `json:"weekly_screen_time_goal"`
	CurrencyRatio        float64 `json:"currency_ratio"`
	ScreenTimeRatio      float64 `json:"screen_time_ratio"`
	CurrencyGoalMet      bool    `json:"currency_goal_met"`
	ScreenTimeGoalMet    bool    `json:"screen_time_goal_met"`
}

// DefaultScreenTimeGoal is used when a child has no screen-time goal set.
const DefaultScreenTimeGoal = 120

func ComputeGoalProgress(child model.Child, chores []model.Chore) GoalProgress {
	p := Summarize(chores)
	stGoal := DefaultScreenTimeGoal
	if child.WeeklyScreenTimeGoal != nil {
		stGoal = *child.WeeklyScreenTimeGoal
	}
	return GoalProgress{
		Progress:             p,
		WeeklyGoal:           child.WeeklyGoal,
		WeeklyScreenTimeGoal: stGoal,
		CurrencyRatio:        ratio(p.Currency, child.WeeklyGoal),
		ScreenTimeRatio:      ratio(p.ScreenTime, stGoal),
		CurrencyGoalMet:      child.WeeklyGoal > 0 && p.Currency >= child.WeeklyGoal,
		ScreenTimeGoalMet:    stGoal > 0 && p.ScreenTime >= stGoal,
	}
}

// ratio is capped at 1 for display; a zero goal yields 0.
func ratio(earned, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	r := float64(earned) / float64(goal)
	if r > 1 {
		return 1
	}
	return r
}
