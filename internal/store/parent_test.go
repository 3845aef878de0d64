package store

import (
	"context"
	"testing"

	"github.com/tasktreasure/tasktreasure/internal/model"
)

func TestParentCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ps := NewParentStore(db)
	ctx := context.Background()

	p, err := ps.Create(ctx, "Anna", "anna@example.com", "hash")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}
	if p.RewardType != model.RewardCurrency {
		t.Errorf("reward_type = %q, want currency", p.RewardType)
	}

	got, err := ps.GetByEmail(ctx, "anna@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != p.ID {
		t.Fatalf("got %v, want parent %s", got, p.ID)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("password hash = %q, want %q", got.PasswordHash, "hash")
	}
}

func TestParentDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ps := NewParentStore(db)
	ctx := context.Background()

	if _, err := ps.Create(ctx, "Anna", "anna@example.com", "hash"); err != nil {
		t.Fatalf("create parent: %v", err)
	}
	if _, err := ps.Create(ctx, "Other", "anna@example.com", "hash"); err == nil {
		t.Error("expected unique violation for duplicate email")
	}
}

func TestParentGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	got, err := NewParentStore(db).GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get parent: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent parent")
	}
}

func TestParentSetRewardType(t *testing.T) {
	db := setupTestDB(t)
	ps := NewParentStore(db)
	ctx := context.Background()
	p, _ := ps.Create(ctx, "Anna", "anna@example.com", "hash")

	updated, err := ps.SetRewardType(ctx, p.ID, model.RewardScreenTime)
	if err != nil {
		t.Fatalf("set reward type: %v", err)
	}
	if updated.RewardType != model.RewardScreenTime {
		t.Errorf("reward_type = %q, want screen_time", updated.RewardType)
	}

	if _, err := ps.SetRewardType(ctx, "missing", model.RewardCurrency); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
