// Package calendar loads the schedule of every child of a parent, one
// goroutine per child, and joins the results into weekly views.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/schedule"
)

// Policy decides what a failed per-child branch does to the whole load.
type Policy string

const (
	// PolicyBestEffort logs the failure, leaves the child out and reports it
	// in Result.Failed.
	PolicyBestEffort Policy = "best_effort"
	// PolicyStrict cancels the remaining branches and fails the load.
	PolicyStrict Policy = "strict"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyBestEffort:
		return PolicyBestEffort, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown fan-out policy: %q", s)
}

const DefaultTimeout = 5 * time.Second

type ChildLister interface {
	List(ctx context.Context, parentID string) ([]model.Child, error)
}

type ChoreLister interface {
	List(ctx context.Context, parentID, childID string) ([]model.Chore, error)
}

type TaskLister interface {
	List(ctx context.Context, parentID, childID string) ([]model.Task, error)
}

type Options struct {
	Timeout time.Duration
	Policy  Policy
}

type Loader struct {
	children ChildLister
	chores   ChoreLister
	tasks    TaskLister
	opts     Options
	logger   *slog.Logger
}

func NewLoader(children ChildLister, chores ChoreLister, tasks TaskLister, opts Options, logger *slog.Logger) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Policy == "" {
		opts.Policy = PolicyBestEffort
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		children: children,
		chores:   chores,
		tasks:    tasks,
		opts:     opts,
		logger:   logger.With("component", "calendar"),
	}
}

// ChildWeek is one child's aggregated week.
type ChildWeek struct {
	Child model.Child   `json:"child"`
	Week  schedule.Week `json:"week"`
}

// FailedChild names a child whose branch failed under the best-effort policy.
type FailedChild struct {
	ChildID string `json:"child_id"`
	Name    string `json:"name"`
	Error   string `json:"error"`
}

type Result struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Children []ChildWeek   `json:"children"`
	Combined schedule.Week `json:"combined"`
	Failed   []FailedChild `json:"failed"`
}

// Week loads every child of parentID concurrently and aggregates the week
// containing ref, per child and combined. Cancelling ctx abandons the load.
func (l *Loader) Week(ctx context.Context, parentID string, ref time.Time) (*Result, error) {
	fanCtx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	children, err := l.children.List(fanCtx, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	items := make([][]model.Item, len(children))
	errs := make([]error, len(children))

	g, gctx := errgroup.WithContext(fanCtx)
	for i, c := range children {
		g.Go(func() error {
			got, err := l.loadItems(gctx, parentID, c.ID)
			if err != nil {
				if l.opts.Policy == PolicyStrict {
					return fmt.Errorf("load child %s: %w", c.ID, err)
				}
				errs[i] = err
				return nil
			}
			items[i] = got
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start, end := schedule.WeekWindow(ref)
	res := &Result{
		Start:    start,
		End:      end,
		Children: make([]ChildWeek, 0, len(children)),
		Failed:   []FailedChild{},
	}
	var all []model.Item
	for i, c := range children {
		if errs[i] != nil {
			l.logger.Warn("child schedule unavailable", "parent_id", parentID, "child_id", c.ID, "error", errs[i])
			res.Failed = append(res.Failed, FailedChild{ChildID: c.ID, Name: c.Name, Error: errs[i].Error()})
			continue
		}
		res.Children = append(res.Children, ChildWeek{Child: c, Week: schedule.AggregateWeek(items[i], ref)})
		all = append(all, items[i]...)
	}
	res.Combined = schedule.AggregateWeek(all, ref)
	return res, nil
}

// ChildWeek aggregates a single child's week.
func (l *Loader) ChildWeek(ctx context.Context, parentID, childID string, ref time.Time) (schedule.Week, error) {
	items, err := l.ChildItems(ctx, parentID, childID)
	if err != nil {
		return schedule.Week{}, err
	}
	return schedule.AggregateWeek(items, ref), nil
}

// ChildItems loads a child's tasks and chores under the loader's timeout.
func (l *Loader) ChildItems(ctx context.Context, parentID, childID string) ([]model.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()
	return l.loadItems(ctx, parentID, childID)
}

// loadItems fetches tasks and chores concurrently. Tasks come first, as the
// aggregator expects.
func (l *Loader) loadItems(ctx context.Context, parentID, childID string) ([]model.Item, error) {
	var tasks []model.Task
	var chores []model.Chore

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = l.tasks.List(gctx, parentID, childID)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		chores, err = l.chores.List(gctx, parentID, childID)
		if err != nil {
			return fmt.Errorf("list chores: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A branch that finished after the deadline still counts as failed.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return model.Items(tasks, chores), nil
}

// IsTimeout reports whether err came from the fan-out deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
