package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/model"
)

type ChoreStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewChoreStore(db *sql.DB, logger *slog.Logger) *ChoreStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChoreStore{db: db, logger: logger}
}

func scanChore(row scanner) (*model.Chore, error) {
	var c model.Chore
	var rewardType, days, dates string
	var frequency sql.NullInt64

	err := row.Scan(
		&c.ID, &c.ChildID, &c.Name, &c.Value, &rewardType, &days, &frequency,
		&c.Completed, &dates, &c.Icon, &c.AssignedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.RewardType, err = model.ParseRewardType(rewardType)
	if err != nil {
		c.RewardType = model.RewardCurrency
	}
	if err := json.Unmarshal([]byte(days), &c.Days); err != nil {
		return nil, fmt.Errorf("%w: chore %s days: %v", ErrDecode, c.ID, err)
	}
	if err := json.Unmarshal([]byte(dates), &c.CompletedDates); err != nil {
		return nil, fmt.Errorf("%w: chore %s completed_dates: %v", ErrDecode, c.ID, err)
	}
	if c.Days == nil {
		c.Days = []string{}
	}
	if c.CompletedDates == nil {
		c.CompletedDates = map[string]bool{}
	}
	c.Frequency = model.DefaultChoreFrequency
	if frequency.Valid {
		c.Frequency = int(frequency.Int64)
	}
	return &c, nil
}

const choreCols = `ch.id, ch.child_id, ch.name, ch.value, ch.reward_type, ch.days, ch.frequency, ch.completed, ch.completed_dates, ch.icon, ch.assigned_by, ch.created_at, ch.updated_at`

const choreFrom = ` FROM chores ch JOIN children k ON k.id = ch.child_id`

type ChoreInput struct {
	Name       string
	Value      int
	RewardType model.RewardType
	Days       []string
	Frequency  int
	Icon       string
	AssignedBy string
}

// Create inserts a chore under the child, provided the child belongs to parentID.
func (s *ChoreStore) Create(ctx context.Context, parentID, childID string, in ChoreInput) (*model.Chore, error) {
	days, err := json.Marshal(nonNil(in.Days))
	if err != nil {
		return nil, fmt.Errorf("encode days: %w", err)
	}
	freq := in.Frequency
	if freq < 1 {
		freq = model.DefaultChoreFrequency
	}
	rt := in.RewardType
	if rt == "" {
		rt = model.RewardCurrency
	}

	id := newID()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chores (id, child_id, name, value, reward_type, days, frequency, icon, assigned_by)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM children WHERE id = ? AND parent_id = ?)`,
		id, childID, in.Name, in.Value, string(rt), string(days), freq, in.Icon, in.AssignedBy,
		childID, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, parentID, childID, id)
}

func (s *ChoreStore) Get(ctx context.Context, parentID, childID, id string) (*model.Chore, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+choreCols+choreFrom+` WHERE ch.id = ? AND ch.child_id = ? AND k.parent_id = ?`,
		id, childID, parentID,
	)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// List returns the child's chores. Documents that fail to decode are logged
// and left out.
func (s *ChoreStore) List(ctx context.Context, parentID, childID string) ([]model.Chore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+choreCols+choreFrom+` WHERE ch.child_id = ? AND k.parent_id = ? ORDER BY ch.created_at ASC, ch.name ASC`,
		childID, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	chores := []model.Chore{}
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			if isDecode(err) {
				s.logger.Warn("skipping undecodable chore", "child_id", childID, "error", err)
				continue
			}
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

// ChoreUpdate is a merge-update: nil fields are left untouched.
type ChoreUpdate struct {
	Name       *string
	Value      *int
	RewardType *model.RewardType
	Days       *[]string
	Frequency  *int
	Icon       *string
}

func (s *ChoreStore) Update(ctx context.Context, parentID, childID, id string, u ChoreUpdate) (*model.Chore, error) {
	var set setClause
	if u.Name != nil {
		set.add("name", *u.Name)
	}
	if u.Value != nil {
		set.add("value", *u.Value)
	}
	if u.RewardType != nil {
		set.add("reward_type", string(*u.RewardType))
	}
	if u.Days != nil {
		days, err := json.Marshal(nonNil(*u.Days))
		if err != nil {
			return nil, fmt.Errorf("encode days: %w", err)
		}
		set.add("days", string(days))
	}
	if u.Frequency != nil {
		set.add("frequency", *u.Frequency)
	}
	if u.Icon != nil {
		set.add("icon", *u.Icon)
	}
	if set.empty() {
		c, err := s.Get(ctx, parentID, childID, id)
		if err == nil && c == nil {
			err = ErrNotFound
		}
		return c, err
	}

	args := append(set.args, id, childID, parentID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE chores SET `+set.sql()+` WHERE id = ? AND child_id = ?
		 AND child_id IN (SELECT id FROM children WHERE parent_id = ?)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, parentID, childID, id)
}

func (s *ChoreStore) Delete(ctx context.Context, parentID, childID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM chores WHERE id = ? AND child_id = ?
		 AND child_id IN (SELECT id FROM children WHERE parent_id = ?)`,
		id, childID, parentID,
	)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetCompletions zeroes the counters of all of a child's chores, starting
// a new period. Per-day flags are kept as history.
func (s *ChoreStore) ResetCompletions(ctx context.Context, parentID, childID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chores SET completed = 0, updated_at = CURRENT_TIMESTAMP
		 WHERE child_id = ? AND child_id IN (SELECT id FROM children WHERE parent_id = ?)`,
		childID, parentID,
	)
	if err != nil {
		return 0, fmt.Errorf("reset completions: %w", err)
	}
	return res.RowsAffected()
}

// ToggleCompletion flips the chore's completion for dateKey and moves the
// reward into or out of the child's balance (or screen-time accrual). Both
// documents change in one transaction; on any error neither does.
func (s *ChoreStore) ToggleCompletion(ctx context.Context, parentID, childID, choreID, dateKey string) (*chore.Transition, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	c, err := scanChore(tx.QueryRowContext(ctx,
		`SELECT `+choreCols+choreFrom+` WHERE ch.id = ? AND ch.child_id = ? AND k.parent_id = ?`,
		choreID, childID, parentID,
	))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}

	child, err := scanChild(tx.QueryRowContext(ctx,
		`SELECT `+childCols+` FROM children WHERE id = ? AND parent_id = ?`,
		childID, parentID,
	))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}

	tr, err := chore.Toggle(*c, *child, dateKey)
	if err != nil {
		return nil, err
	}

	dates, err := json.Marshal(tr.Chore.CompletedDates)
	if err != nil {
		return nil, fmt.Errorf("encode completed_dates: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE chores SET completed = MAX(0, completed + ?), completed_dates = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		tr.CompletedDelta, string(dates), choreID,
	); err != nil {
		return nil, fmt.Errorf("update chore completion: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE children SET balance = MAX(0, balance + ?), screen_time_balance = MAX(0, screen_time_balance + ?), updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		tr.BalanceDelta, tr.ScreenTimeDelta, childID,
	); err != nil {
		return nil, fmt.Errorf("update child balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit toggle: %w", err)
	}
	return &tr, nil
}

func nonNil(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}
