package model

import "time"

// Parent is the account owner. Balance is the legacy aggregate field kept for
// older documents; per-child balances supersede it.
type Parent struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Balance      int        `json:"balance"`
	RewardType   RewardType `json:"reward_type"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
