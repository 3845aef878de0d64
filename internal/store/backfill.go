package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tasktreasure/tasktreasure/internal/model"
)

// BackfillReport counts the documents patched per missing field.
type BackfillReport struct {
	ChoreFrequency  int64 `json:"chore_frequency"`
	ChildWeeklyGoal int64 `json:"child_weekly_goal"`
	ChildSavings    int64 `json:"child_savings"`
}

func (r BackfillReport) Total() int64 {
	return r.ChoreFrequency + r.ChildWeeklyGoal + r.ChildSavings
}

// Backfill writes the default value into every document missing one of the
// defaulted fields. Running it again is a no-op.
func Backfill(ctx context.Context, db *sql.DB) (BackfillReport, error) {
	var report BackfillReport

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		query string
		arg   int
		count *int64
	}{
		{`UPDATE chores SET frequency = ? WHERE frequency IS NULL`, model.DefaultChoreFrequency, &report.ChoreFrequency},
		{`UPDATE children SET weekly_goal = ? WHERE weekly_goal IS NULL`, model.DefaultWeeklyGoal, &report.ChildWeeklyGoal},
		{`UPDATE children SET savings = ? WHERE savings IS NULL`, 0, &report.ChildSavings},
	}
	for _, step := range steps {
		res, err := tx.ExecContext(ctx, step.query, step.arg)
		if err != nil {
			return BackfillReport{}, fmt.Errorf("backfill: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return BackfillReport{}, fmt.Errorf("rows affected: %w", err)
		}
		*step.count = n
	}

	if err := tx.Commit(); err != nil {
		return BackfillReport{}, fmt.Errorf("commit backfill: %w", err)
	}
	return report, nil
}
