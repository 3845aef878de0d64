package model

import (
	"fmt"
	"strings"
	"time"
)

type RewardType string

const (
	RewardCurrency   RewardType = "currency"
	RewardScreenTime RewardType = "screen_time"
)

// ParseRewardType accepts the canonical names plus the legacy "money" and
// "screenTime" spellings found on older documents.
func ParseRewardType(s string) (RewardType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "currency", "money":
		return RewardCurrency, nil
	case "screen_time", "screentime", "screen-time":
		return RewardScreenTime, nil
	}
	return "", fmt.Errorf("unknown reward type: %q", s)
}

const DefaultChoreFrequency = 1

type Chore struct {
	ID             string          `json:"id"`
	ChildID        string          `json:"child_id"`
	Name           string          `json:"name"`
	Value          int             `json:"value"`
	RewardType     RewardType      `json:"reward_type"`
	Days           []string        `json:"days"`
	Frequency      int             `json:"frequency"`
	Completed      int             `json:"completed"`
	CompletedDates map[string]bool `json:"completed_dates"`
	Icon           string          `json:"icon"`
	AssignedBy     string          `json:"assigned_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DoneOn reports whether the chore carries a completion flag for dateKey.
func (c Chore) DoneOn(dateKey string) bool {
	return c.CompletedDates[dateKey]
}
