package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tasktreasure/tasktreasure/internal/model"
)

type ParentStore struct {
	db *sql.DB
}

func NewParentStore(db *sql.DB) *ParentStore {
	return &ParentStore{db: db}
}

func scanParent(row scanner) (*model.Parent, error) {
	var p model.Parent
	var rewardType string
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.Balance, &rewardType, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rt, err := model.ParseRewardType(rewardType)
	if err != nil {
		rt = model.RewardCurrency
	}
	p.RewardType = rt
	return &p, nil
}

const parentCols = `id, name, email, password_hash, balance, reward_type, created_at, updated_at`

func (s *ParentStore) Create(ctx context.Context, name, email, passwordHash string) (*model.Parent, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO parents (id, name, email, password_hash) VALUES (?, ?, ?, ?)`,
		id, name, email, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert parent: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ParentStore) GetByID(ctx context.Context, id string) (*model.Parent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+parentCols+` FROM parents WHERE id = ?`, id)
	p, err := scanParent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get parent: %w", err)
	}
	return p, nil
}

func (s *ParentStore) GetByEmail(ctx context.Context, email string) (*model.Parent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+parentCols+` FROM parents WHERE email = ?`, email)
	p, err := scanParent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get parent by email: %w", err)
	}
	return p, nil
}

func (s *ParentStore) SetRewardType(ctx context.Context, id string, rt model.RewardType) (*model.Parent, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE parents SET reward_type = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(rt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update parent reward type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *ParentStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM parents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete parent: %w", err)
	}
	return nil
}
