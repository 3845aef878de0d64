package store

import (
	"context"
	"testing"
)

func TestBackfill(t *testing.T) {
	db := setupTestDB(t)
	p, c := seedFamily(t, db, "anna@example.com")
	ctx := context.Background()

	// Simulate documents written before the defaulted fields existed.
	mustExec(t, db, `UPDATE children SET weekly_goal = NULL, savings = NULL WHERE id = ?`, c.ID)
	mustExec(t, db, `INSERT INTO chores (id, child_id, name) VALUES ('c1', ?, 'Bed')`, c.ID)
	mustExec(t, db, `INSERT INTO chores (id, child_id, name, frequency) VALUES ('c2', ?, 'Dishes', 3)`, c.ID)

	report, err := Backfill(ctx, db)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	want := BackfillReport{ChoreFrequency: 1, ChildWeeklyGoal: 1, ChildSavings: 1}
	if report != want {
		t.Errorf("report = %+v, want %+v", report, want)
	}

	var freq, goal, savings int
	db.QueryRow(`SELECT frequency FROM chores WHERE id = 'c1'`).Scan(&freq)
	db.QueryRow(`SELECT weekly_goal, savings FROM children WHERE id = ?`, c.ID).Scan(&goal, &savings)
	if freq != 1 || goal != 50 || savings != 0 {
		t.Errorf("patched values = %d/%d/%d, want 1/50/0", freq, goal, savings)
	}

	got, _ := NewChoreStore(db, nil).Get(ctx, p.ID, c.ID, "c2")
	if got.Frequency != 3 {
		t.Errorf("existing frequency overwritten: %d", got.Frequency)
	}

	again, err := Backfill(ctx, db)
	if err != nil {
		t.Fatalf("second backfill: %v", err)
	}
	if again.Total() != 0 {
		t.Errorf("second run patched %d documents, want 0", again.Total())
	}
}
