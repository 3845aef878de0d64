// Package cli implements the ttctl admin commands.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/calendar"
	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/store"
)

// Context is passed to every command's Run.
type Context struct {
	Ctx    context.Context
	DB     *sql.DB
	Out    io.Writer
	Logger *slog.Logger
	Loc    *time.Location
	Loader *calendar.Loader
}

func NewContext(ctx context.Context, db *sql.DB, out io.Writer, logger *slog.Logger, loc *time.Location, opts calendar.Options) *Context {
	chores := store.NewChoreStore(db, logger)
	tasks := store.NewTaskStore(db, logger)
	return &Context{
		Ctx:    ctx,
		DB:     db,
		Out:    out,
		Logger: logger,
		Loc:    loc,
		Loader: calendar.NewLoader(store.NewChildStore(db), chores, tasks, opts, logger),
	}
}

// resolveParent accepts a parent's email or id.
func (c *Context) resolveParent(ref string) (*model.Parent, error) {
	ps := store.NewParentStore(c.DB)
	var (
		p   *model.Parent
		err error
	)
	if strings.Contains(ref, "@") {
		p, err = ps.GetByEmail(c.Ctx, strings.ToLower(strings.TrimSpace(ref)))
	} else {
		p, err = ps.GetByID(c.Ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("no parent %q", ref)
	}
	return p, nil
}

// resolveChild accepts a child's id or (case-insensitive) name.
func (c *Context) resolveChild(parentID, ref string) (*model.Child, error) {
	children, err := store.NewChildStore(c.DB).List(c.Ctx, parentID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		if children[i].ID == ref || strings.EqualFold(children[i].Name, ref) {
			return &children[i], nil
		}
	}
	return nil, fmt.Errorf("no child %q", ref)
}

// parseDay reads YYYY-MM-DD or "today" in the context's location.
func (c *Context) parseDay(s string) (time.Time, error) {
	if s == "" || s == "today" {
		now := time.Now().In(c.Loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Loc), nil
	}
	t, err := time.ParseInLocation(chore.DateKeyLayout, s, c.Loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}
	return t, nil
}
