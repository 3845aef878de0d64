package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Labels are the canonical weekday labels in week order (Monday first).
var Labels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var labelFromName = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday, "mån": time.Monday, "måndag": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday, "tis": time.Tuesday, "tisdag": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday, "ons": time.Wednesday, "onsdag": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday, "tor": time.Thursday, "tors": time.Thursday, "torsdag": time.Thursday,
	"fri": time.Friday, "friday": time.Friday, "fre": time.Friday, "fredag": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday, "lör": time.Saturday, "lördag": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday, "sön": time.Sunday, "söndag": time.Sunday,
}

// DayIndex maps a weekday to its position in a Monday-first week.
func DayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// Label returns the canonical label for wd.
func Label(wd time.Weekday) string {
	return Labels[DayIndex(wd)]
}

// ParseLabel resolves an English or Swedish weekday name or abbreviation.
func ParseLabel(s string) (time.Weekday, error) {
	wd, ok := labelFromName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday: %q", s)
	}
	return wd, nil
}

// NormalizeDays converts labels to canonical form, dropping duplicates and
// ordering them Monday through Sunday.
func NormalizeDays(days []string) ([]string, error) {
	var seen [7]bool
	for _, d := range days {
		wd, err := ParseLabel(d)
		if err != nil {
			return nil, err
		}
		seen[DayIndex(wd)] = true
	}
	out := make([]string, 0, len(days))
	for i, ok := range seen {
		if ok {
			out = append(out, Labels[i])
		}
	}
	return out, nil
}

// HasDay reports whether days contains the label for wd. Unparseable
// entries never match.
func HasDay(days []string, wd time.Weekday) bool {
	for _, d := range days {
		if got, err := ParseLabel(d); err == nil && got == wd {
			return true
		}
	}
	return false
}
