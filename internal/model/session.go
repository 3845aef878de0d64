package model

import "time"

type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ParentID  string    `json:"parent_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
