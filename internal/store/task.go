package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tasktreasure/tasktreasure/internal/model"
)

type TaskStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTaskStore(db *sql.DB, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{db: db, logger: logger}
}

func scanTask(row scanner) (*model.Task, error) {
	var t model.Task
	var taskType, startDate string
	var endDate sql.NullString
	var allDay int

	err := row.Scan(
		&t.ID, &t.ChildID, &t.Name, &t.StartTime, &t.EndTime, &allDay, &taskType,
		&startDate, &endDate, &t.RepeatOption, &t.Completed, &t.AssignedBy, &t.Icon,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.AllDay = allDay != 0
	t.Type = model.TaskType(taskType)
	if t.Type != model.TaskOneTime && t.Type != model.TaskRecurring {
		return nil, fmt.Errorf("%w: task %s type %q", ErrDecode, t.ID, taskType)
	}
	t.StartDate, err = parseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: task %s start_date: %v", ErrDecode, t.ID, err)
	}
	if endDate.Valid && endDate.String != "" {
		end, err := parseDate(endDate.String)
		if err != nil {
			return nil, fmt.Errorf("%w: task %s end_date: %v", ErrDecode, t.ID, err)
		}
		t.EndDate = &end
	}
	return &t, nil
}

const taskCols = `t.id, t.child_id, t.name, t.start_time, t.end_time, t.all_day, t.type, t.start_date, t.end_date, t.repeat_option, t.completed, t.assigned_by, t.icon, t.created_at, t.updated_at`

const taskFrom = ` FROM tasks t JOIN children k ON k.id = t.child_id`

// Create inserts the task under the child, provided the child belongs to
// parentID. ID, ChildID and timestamps on t are ignored.
func (s *TaskStore) Create(ctx context.Context, parentID, childID string, t model.Task) (*model.Task, error) {
	var endDate sql.NullString
	if t.EndDate != nil {
		endDate = sql.NullString{String: formatDate(*t.EndDate), Valid: true}
	}
	repeat := t.RepeatOption
	if repeat == "" || t.Type == model.TaskOneTime {
		repeat = "never"
	}

	id := newID()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, child_id, name, start_time, end_time, all_day, type, start_date, end_date, repeat_option, assigned_by, icon)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM children WHERE id = ? AND parent_id = ?)`,
		id, childID, t.Name, t.StartTime, t.EndTime, boolInt(t.AllDay), string(t.Type),
		formatDate(t.StartDate), endDate, repeat, t.AssignedBy, t.Icon,
		childID, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, parentID, childID, id)
}

func (s *TaskStore) Get(ctx context.Context, parentID, childID, id string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskCols+taskFrom+` WHERE t.id = ? AND t.child_id = ? AND k.parent_id = ?`,
		id, childID, parentID,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns the child's tasks ordered by start date. Documents that fail
// to decode are logged and left out.
func (s *TaskStore) List(ctx context.Context, parentID, childID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskCols+taskFrom+` WHERE t.child_id = ? AND k.parent_id = ? ORDER BY t.start_date ASC, t.start_time ASC, t.name ASC`,
		childID, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			if isDecode(err) {
				s.logger.Warn("skipping undecodable task", "child_id", childID, "error", err)
				continue
			}
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Delete(ctx context.Context, parentID, childID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND child_id = ?
		 AND child_id IN (SELECT id FROM children WHERE parent_id = ?)`,
		id, childID, parentID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
