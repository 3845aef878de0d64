package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/model"
)

func TestChoreCRUD(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	cs := NewChoreStore(db, nil)
	ctx := context.Background()

	created, err := cs.Create(ctx, p.ID, c.ID, ChoreInput{
		Name:       "Dishes",
		Value:      10,
		RewardType: model.RewardCurrency,
		Days:       []string{"Mon", "Wed"},
		AssignedBy: p.ID,
	})
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	if created.Frequency != 1 {
		t.Errorf("frequency = %d, want 1", created.Frequency)
	}
	if len(created.Days) != 2 || created.Days[0] != "Mon" {
		t.Errorf("days = %v, want [Mon Wed]", created.Days)
	}
	if created.CompletedDates == nil {
		t.Error("completed_dates should be an empty map, not nil")
	}

	name := "Dishes & pans"
	days := []string{"Fri"}
	updated, err := cs.Update(ctx, p.ID, c.ID, created.ID, ChoreUpdate{Name: &name, Days: &days})
	if err != nil {
		t.Fatalf("update chore: %v", err)
	}
	if updated.Name != name || len(updated.Days) != 1 || updated.Days[0] != "Fri" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Value != 10 {
		t.Errorf("value = %d, want untouched 10", updated.Value)
	}

	list, err := cs.List(ctx, p.ID, c.ID)
	if err != nil {
		t.Fatalf("list chores: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d chores, want 1", len(list))
	}

	if err := cs.Delete(ctx, p.ID, c.ID, created.ID); err != nil {
		t.Fatalf("delete chore: %v", err)
	}
	got, err := cs.Get(ctx, p.ID, c.ID, created.ID)
	if err != nil {
		t.Fatalf("get deleted chore: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted chore")
	}
	if err := cs.Delete(ctx, p.ID, c.ID, created.ID); err != ErrNotFound {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestChoreCreateForeignChild(t *testing.T) {
	db := setupTestDB(t)
	_, c := seedFamily(t, db, "anna@example.com")
	other, _ := seedFamily(t, db, "bo@example.com")

	_, err := NewChoreStore(db, nil).Create(context.Background(), other.ID, c.ID, ChoreInput{Name: "Sneaky"})
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestChoreListSkipsUndecodable(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	cs := NewChoreStore(db, nil)
	ctx := context.Background()

	if _, err := cs.Create(ctx, p.ID, c.ID, ChoreInput{Name: "Good"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := db.Exec(`INSERT INTO chores (id, child_id, name, days) VALUES ('bad', ?, 'Broken', 'not json')`, c.ID)
	if err != nil {
		t.Fatalf("insert broken chore: %v", err)
	}

	list, err := cs.List(ctx, p.ID, c.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Good" {
		t.Errorf("list = %+v, want only Good", list)
	}

	if _, err := cs.Get(ctx, p.ID, c.ID, "bad"); !errors.Is(err, ErrDecode) {
		t.Errorf("get broken err = %v, want ErrDecode", err)
	}
}

func TestChoreLegacyRewardType(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	_, err := db.Exec(`INSERT INTO chores (id, child_id, name, reward_type) VALUES ('legacy', ?, 'Old', 'money')`, c.ID)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := NewChoreStore(db, nil).Get(context.Background(), p.ID, c.ID, "legacy")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RewardType != model.RewardCurrency {
		t.Errorf("reward_type = %q, want currency", got.RewardType)
	}
	if got.Frequency != 1 {
		t.Errorf("frequency = %d, want default 1", got.Frequency)
	}
}

func TestToggleCompletionDishes(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	cs := NewChoreStore(db, nil)
	ctx := context.Background()

	dishes, _ := cs.Create(ctx, p.ID, c.ID, ChoreInput{Name: "Dishes", Value: 10, RewardType: model.RewardCurrency, Days: []string{"Mon", "Wed"}})

	tr, err := cs.ToggleCompletion(ctx, p.ID, c.ID, dishes.ID, "2025-01-06")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !tr.Done {
		t.Error("expected toggle-on")
	}

	stored, _ := cs.Get(ctx, p.ID, c.ID, dishes.ID)
	if stored.Completed != 1 {
		t.Errorf("completed = %d, want 1", stored.Completed)
	}
	if !stored.DoneOn("2025-01-06") {
		t.Error("expected completion flag persisted")
	}
	child, _ := NewChildStore(db).Get(ctx, p.ID, c.ID)
	if child.Balance != 10 {
		t.Errorf("balance = %d, want 10", child.Balance)
	}
}

func TestToggleCompletionRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	cs := NewChoreStore(db, nil)
	kids := NewChildStore(db)
	ctx := context.Background()

	if _, err := kids.IncrementBalance(ctx, p.ID, c.ID, 7); err != nil {
		t.Fatalf("seed balance: %v", err)
	}
	reading, _ := cs.Create(ctx, p.ID, c.ID, ChoreInput{Name: "Reading", Value: 30, RewardType: model.RewardScreenTime})

	if _, err := cs.ToggleCompletion(ctx, p.ID, c.ID, reading.ID, "2025-01-07"); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	mid, _ := kids.Get(ctx, p.ID, c.ID)
	if mid.ScreenTimeBalance != 30 || mid.Balance != 7 {
		t.Errorf("after on: screen=%d balance=%d, want 30/7", mid.ScreenTimeBalance, mid.Balance)
	}

	tr, err := cs.ToggleCompletion(ctx, p.ID, c.ID, reading.ID, "2025-01-07")
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if tr.Done {
		t.Error("expected toggle-off")
	}
	after, _ := kids.Get(ctx, p.ID, c.ID)
	if after.ScreenTimeBalance != 0 || after.Balance != 7 {
		t.Errorf("after off: screen=%d balance=%d, want 0/7", after.ScreenTimeBalance, after.Balance)
	}
	stored, _ := cs.Get(ctx, p.ID, c.ID, reading.ID)
	if stored.Completed != 0 {
		t.Errorf("completed = %d, want 0", stored.Completed)
	}
}

func TestToggleCompletionFloorsAtZero(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	ctx := context.Background()

	// Flag set but counter and balance already zero, as left by older clients.
	_, err := db.Exec(
		`INSERT INTO chores (id, child_id, name, value, completed, completed_dates) VALUES ('c1', ?, 'Bed', 10, 0, '{"2025-01-06":true}')`,
		c.ID,
	)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := NewChoreStore(db, nil).ToggleCompletion(ctx, p.ID, c.ID, "c1", "2025-01-06"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	child, _ := NewChildStore(db).Get(ctx, p.ID, c.ID)
	if child.Balance != 0 {
		t.Errorf("balance = %d, want 0", child.Balance)
	}
	stored, _ := NewChoreStore(db, nil).Get(ctx, p.ID, c.ID, "c1")
	if stored.Completed != 0 {
		t.Errorf("completed = %d, want 0", stored.Completed)
	}
}

func TestToggleCompletionErrors(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	other, _ := seedFamily(t, db, "bo@example.com")
	cs := NewChoreStore(db, nil)
	ctx := context.Background()

	dishes, _ := cs.Create(ctx, p.ID, c.ID, ChoreInput{Name: "Dishes", Value: 10})

	if _, err := cs.ToggleCompletion(ctx, other.ID, c.ID, dishes.ID, "2025-01-06"); err != ErrNotFound {
		t.Errorf("foreign parent err = %v, want ErrNotFound", err)
	}
	if _, err := cs.ToggleCompletion(ctx, p.ID, c.ID, dishes.ID, "yesterday"); !errors.Is(err, chore.ErrInvalidDateKey) {
		t.Errorf("bad key err = %v, want ErrInvalidDateKey", err)
	}

	// Failed toggles leave both documents untouched.
	stored, _ := cs.Get(ctx, p.ID, c.ID, dishes.ID)
	child, _ := NewChildStore(db).Get(ctx, p.ID, c.ID)
	if stored.Completed != 0 || child.Balance != 0 {
		t.Errorf("state changed after failed toggle: completed=%d balance=%d", stored.Completed, child.Balance)
	}
}

func TestResetCompletions(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	cs := NewChoreStore(db, nil)
	ctx := context.Background()

	dishes, _ := cs.Create(ctx, p.ID, c.ID, ChoreInput{Name: "Dishes", Value: 10})
	cs.ToggleCompletion(ctx, p.ID, c.ID, dishes.ID, "2025-01-06")

	n, err := cs.ResetCompletions(ctx, p.ID, c.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n != 1 {
		t.Errorf("reset %d chores, want 1", n)
	}
	stored, _ := cs.Get(ctx, p.ID, c.ID, dishes.ID)
	if stored.Completed != 0 {
		t.Errorf("completed = %d, want 0", stored.Completed)
	}
	if !stored.DoneOn("2025-01-06") {
		t.Error("per-day history should be kept")
	}
}

func TestChoreUnknownRewardTypeDefaultsToCurrency(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	_, err := db.Exec(`INSERT INTO chores (id, child_id, name, reward_type) VALUES ('odd', ?, 'Odd', 'stickers')`, c.ID)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := NewChoreStore(db, nil).Get(context.Background(), p.ID, c.ID, "odd")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RewardType != model.RewardCurrency {
		t.Errorf("reward_type = %q, want currency", got.RewardType)
	}
}

func TestToggleCompletionConcurrentFileDB(t *testing.T) {
	db := setupFileDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	cs := NewChoreStore(db, nil)
	ctx := context.Background()

	ch, err := cs.Create(ctx, p.ID, c.ID, ChoreInput{Name: "Dishes", Value: 10, Days: []string{"Mon"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			key := fmt.Sprintf("2025-01-%02d", day)
			if _, err := cs.ToggleCompletion(ctx, p.ID, c.ID, ch.ID, key); err != nil {
				errs <- fmt.Errorf("toggle %s: %w", key, err)
			}
		}(i + 1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	got, err := cs.Get(ctx, p.ID, c.ID, ch.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Completed != n || len(got.CompletedDates) != n {
		t.Errorf("completed = %d, flags = %d, want %d", got.Completed, len(got.CompletedDates), n)
	}
	child, err := NewChildStore(db).Get(ctx, p.ID, c.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if child.Balance != n*10 {
		t.Errorf("balance = %d, want %d", child.Balance, n*10)
	}
}
