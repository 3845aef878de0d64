package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tasktreasure/tasktreasure/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

// scanChild applies the client-side defaults for fields older documents lack.
func scanChild(row scanner) (*model.Child, error) {
	var c model.Child
	var savings, weeklyGoal, stGoal sql.NullInt64
	err := row.Scan(
		&c.ID, &c.ParentID, &c.Name, &c.Avatar, &c.Balance, &savings,
		&c.ScreenTimeBalance, &weeklyGoal, &stGoal, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Savings = int(savings.Int64)
	c.WeeklyGoal = model.DefaultWeeklyGoal
	if weeklyGoal.Valid {
		c.WeeklyGoal = int(weeklyGoal.Int64)
	}
	c.WeeklyScreenTimeGoal = intPtr(stGoal)
	return &c, nil
}

const childCols = `id, parent_id, name, avatar, balance, savings, screen_time_balance, weekly_goal, weekly_screen_time_goal, created_at, updated_at`

type ChildInput struct {
	Name                 string
	Avatar               string
	WeeklyGoal           *int
	WeeklyScreenTimeGoal *int
}

func (s *ChildStore) Create(ctx context.Context, parentID string, in ChildInput) (*model.Child, error) {
	goal := model.DefaultWeeklyGoal
	if in.WeeklyGoal != nil {
		goal = *in.WeeklyGoal
	}

	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO children (id, parent_id, name, avatar, savings, weekly_goal, weekly_screen_time_goal) VALUES (?, ?, ?, ?, 0, ?, ?)`,
		id, parentID, in.Name, in.Avatar, goal, nullInt(in.WeeklyScreenTimeGoal),
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	return s.Get(ctx, parentID, id)
}

func (s *ChildStore) Get(ctx context.Context, parentID, id string) (*model.Child, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+childCols+` FROM children WHERE id = ? AND parent_id = ?`,
		id, parentID,
	)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) List(ctx context.Context, parentID string) ([]model.Child, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+childCols+` FROM children WHERE parent_id = ? ORDER BY created_at ASC, name ASC`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

// ChildUpdate is a merge-update: nil fields are left untouched.
type ChildUpdate struct {
	Name                 *string
	Avatar               *string
	WeeklyGoal           *int
	WeeklyScreenTimeGoal *int
}

func (s *ChildStore) Update(ctx context.Context, parentID, id string, u ChildUpdate) (*model.Child, error) {
	var set setClause
	if u.Name != nil {
		set.add("name", *u.Name)
	}
	if u.Avatar != nil {
		set.add("avatar", *u.Avatar)
	}
	if u.WeeklyGoal != nil {
		set.add("weekly_goal", *u.WeeklyGoal)
	}
	if u.WeeklyScreenTimeGoal != nil {
		set.add("weekly_screen_time_goal", *u.WeeklyScreenTimeGoal)
	}
	if set.empty() {
		c, err := s.Get(ctx, parentID, id)
		if err == nil && c == nil {
			err = ErrNotFound
		}
		return c, err
	}

	args := append(set.args, id, parentID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE children SET `+set.sql()+` WHERE id = ? AND parent_id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, parentID, id)
}

// IncrementBalance atomically adds delta to the child's balance, flooring
// the result at zero.
func (s *ChildStore) IncrementBalance(ctx context.Context, parentID, id string, delta int) (*model.Child, error) {
	return s.increment(ctx, parentID, id, "balance", delta)
}

// IncrementSavings atomically adds delta to the child's savings, flooring
// the result at zero.
func (s *ChildStore) IncrementSavings(ctx context.Context, parentID, id string, delta int) (*model.Child, error) {
	return s.increment(ctx, parentID, id, "savings", delta)
}

// increment runs a single UPDATE so concurrent writers never lose an update.
// col is always one of the fixed column names above.
func (s *ChildStore) increment(ctx context.Context, parentID, id, col string, delta int) (*model.Child, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE children SET `+col+` = MAX(0, COALESCE(`+col+`, 0) + ?), updated_at = CURRENT_TIMESTAMP WHERE id = ? AND parent_id = ?`,
		delta, id, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("increment child %s: %w", col, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, parentID, id)
}

func (s *ChildStore) Delete(ctx context.Context, parentID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM children WHERE id = ? AND parent_id = ?`, id, parentID)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
