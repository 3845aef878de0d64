package recurrence

import (
	"fmt"
	"strings"
	"time"
)

type Repeat int

const (
	Never Repeat = iota
	Daily
	Weekly
	Monthly
	Yearly
)

var repeatNames = map[Repeat]string{
	Never:   "never",
	Daily:   "daily",
	Weekly:  "weekly",
	Monthly: "monthly",
	Yearly:  "yearly",
}

var repeatFromName = map[string]Repeat{
	"":        Never,
	"never":   Never,
	"daily":   Daily,
	"weekly":  Weekly,
	"monthly": Monthly,
	"yearly":  Yearly,
}

// ParseRepeat parses a repeat option name. The empty string means Never.
func ParseRepeat(s string) (Repeat, error) {
	r, ok := repeatFromName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return Never, fmt.Errorf("unknown repeat option: %q", s)
	}
	return r, nil
}

func (r Repeat) String() string {
	if name, ok := repeatNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Repeat(%d)", int(r))
}

// Describe returns a human-readable description anchored at start.
func (r Repeat) Describe(start time.Time) string {
	switch r {
	case Daily:
		return "Repeats daily"
	case Weekly:
		return "Repeats weekly on " + start.Weekday().String()[:3]
	case Monthly:
		return fmt.Sprintf("Repeats monthly on day %d", start.Day())
	case Yearly:
		return "Repeats yearly on " + start.Format("Jan 2")
	}
	return "Does not repeat"
}
