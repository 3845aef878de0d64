package model

type ItemKind string

const (
	KindTask  ItemKind = "task"
	KindChore ItemKind = "chore"
)

// Item is a schedulable entry: exactly one of Task or Chore is set, matching Kind.
type Item struct {
	Kind  ItemKind `json:"kind"`
	Task  *Task    `json:"task,omitempty"`
	Chore *Chore   `json:"chore,omitempty"`
}

func TaskItem(t Task) Item {
	return Item{Kind: KindTask, Task: &t}
}

func ChoreItem(c Chore) Item {
	return Item{Kind: KindChore, Chore: &c}
}

// ID returns the wrapped document's id, or "" for an item of unknown kind.
func (i Item) ID() string {
	switch {
	case i.Kind == KindTask && i.Task != nil:
		return i.Task.ID
	case i.Kind == KindChore && i.Chore != nil:
		return i.Chore.ID
	}
	return ""
}

func (i Item) Name() string {
	switch {
	case i.Kind == KindTask && i.Task != nil:
		return i.Task.Name
	case i.Kind == KindChore && i.Chore != nil:
		return i.Chore.Name
	}
	return ""
}

// Rank orders kinds within a day: tasks before chores.
func (i Item) Rank() int {
	if i.Kind == KindTask {
		return 0
	}
	return 1
}

// Items wraps chores and tasks, tasks first.
func Items(tasks []Task, chores []Chore) []Item {
	items := make([]Item, 0, len(tasks)+len(chores))
	for _, t := range tasks {
		items = append(items, TaskItem(t))
	}
	for _, c := range chores {
		items = append(items, ChoreItem(c))
	}
	return items
}
