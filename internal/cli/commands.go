package cli

import (
	"fmt"
	"strings"

	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/database"
	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/schedule"
	"github.com/tasktreasure/tasktreasure/internal/store"
)

type MigrateCmd struct{}

// Run brings the schema up to date. Opening the database already migrates,
// so this reports the resulting version.
func (m *MigrateCmd) Run(ctx *Context) error {
	if err := database.Migrate(ctx.DB); err != nil {
		return err
	}
	v, err := database.Version(ctx.DB)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "schema at version %d\n", v)
	return nil
}

type BackfillCmd struct{}

func (b *BackfillCmd) Run(ctx *Context) error {
	report, err := store.Backfill(ctx.Ctx, ctx.DB)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "chores missing frequency:   %d\n", report.ChoreFrequency)
	fmt.Fprintf(ctx.Out, "children missing goal:      %d\n", report.ChildWeeklyGoal)
	fmt.Fprintf(ctx.Out, "children missing savings:   %d\n", report.ChildSavings)
	fmt.Fprintf(ctx.Out, "patched %d documents\n", report.Total())
	return nil
}

type ChildrenCmd struct {
	Parent string `help:"Parent email or id." required:""`
}

func (c *ChildrenCmd) Run(ctx *Context) error {
	p, err := ctx.resolveParent(c.Parent)
	if err != nil {
		return err
	}
	children, err := store.NewChildStore(ctx.DB).List(ctx.Ctx, p.ID)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		fmt.Fprintln(ctx.Out, "no children")
		return nil
	}
	for _, k := range children {
		fmt.Fprintf(ctx.Out, "%s  %-12s balance %d  savings %d  goal %d\n", k.ID, k.Name, k.Balance, k.Savings, k.WeeklyGoal)
	}
	return nil
}

type WeekCmd struct {
	Parent string `help:"Parent email or id." required:""`
	Child  string `help:"Child id or name; all children when omitted."`
	Date   string `help:"Any day of the week to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (w *WeekCmd) Run(ctx *Context) error {
	p, err := ctx.resolveParent(w.Parent)
	if err != nil {
		return err
	}
	ref, err := ctx.parseDay(w.Date)
	if err != nil {
		return err
	}

	if w.Child == "" {
		res, err := ctx.Loader.Week(ctx.Ctx, p.ID, ref)
		if err != nil {
			return err
		}
		printWeek(ctx, res.Combined)
		for _, f := range res.Failed {
			fmt.Fprintf(ctx.Out, "! %s could not be loaded: %s\n", f.Name, f.Error)
		}
		return nil
	}

	k, err := ctx.resolveChild(p.ID, w.Child)
	if err != nil {
		return err
	}
	week, err := ctx.Loader.ChildWeek(ctx.Ctx, p.ID, k.ID, ref)
	if err != nil {
		return err
	}
	printWeek(ctx, week)
	return nil
}

func printWeek(ctx *Context, w schedule.Week) {
	fmt.Fprintf(ctx.Out, "Week of %s\n", chore.DateKey(w.Start))
	for _, b := range w.Days {
		fmt.Fprintf(ctx.Out, "\n%s %s\n", b.Label, chore.DateKey(b.Date))
		if len(b.Items) == 0 {
			fmt.Fprintln(ctx.Out, "  -")
			continue
		}
		for _, item := range b.Items {
			fmt.Fprintf(ctx.Out, "  [%s] %s\n", item.Kind, describeItem(item, chore.DateKey(b.Date)))
		}
	}
}

func describeItem(item model.Item, dateKey string) string {
	switch item.Kind {
	case model.KindTask:
		t := item.Task
		if t.AllDay || t.StartTime == "" {
			return t.Name
		}
		return fmt.Sprintf("%s %s-%s", t.Name, t.StartTime, t.EndTime)
	case model.KindChore:
		c := item.Chore
		mark := " "
		if c.DoneOn(dateKey) {
			mark = "x"
		}
		return fmt.Sprintf("(%s) %s +%d %s", mark, c.Name, c.Value, rewardUnit(c.RewardType))
	}
	return item.Name()
}

func rewardUnit(rt model.RewardType) string {
	if rt == model.RewardScreenTime {
		return "min"
	}
	return "kr"
}

type ProgressCmd struct {
	Parent string `help:"Parent email or id." required:""`
	Child  string `help:"Child id or name." required:""`
}

func (c *ProgressCmd) Run(ctx *Context) error {
	p, err := ctx.resolveParent(c.Parent)
	if err != nil {
		return err
	}
	k, err := ctx.resolveChild(p.ID, c.Child)
	if err != nil {
		return err
	}
	chores, err := store.NewChoreStore(ctx.DB, ctx.Logger).List(ctx.Ctx, p.ID, k.ID)
	if err != nil {
		return err
	}

	gp := chore.ComputeGoalProgress(*k, chores)
	fmt.Fprintf(ctx.Out, "%s\n", k.Name)
	fmt.Fprintf(ctx.Out, "  currency     %d / %d  %s\n", gp.Currency, gp.WeeklyGoal, bar(gp.CurrencyRatio))
	fmt.Fprintf(ctx.Out, "  screen time  %d / %d  %s\n", gp.ScreenTime, gp.WeeklyScreenTimeGoal, bar(gp.ScreenTimeRatio))
	fmt.Fprintf(ctx.Out, "  balance %d, savings %d\n", k.Balance, k.Savings)
	return nil
}

func bar(ratio float64) string {
	const width = 20
	filled := int(ratio * width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
