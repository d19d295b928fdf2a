package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday follows ISO numbering: 1 is Monday, 7 is Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var (
	// Week lists every day in ISO order.
	Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
	// WorkWeek is Monday through Friday.
	WorkWeek = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
	// Weekend is Saturday and Sunday.
	Weekend = []Weekday{Saturday, Sunday}
)

// Valid reports whether d is in 1..7.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return ISOToTime(d).String()
}

// ISOToTime maps an ISO weekday onto time.Weekday.
func ISOToTime(d Weekday) time.Weekday {
	return time.Weekday(int(d) % 7)
}

// ISOWeekday returns the ISO weekday of t; Sunday becomes 7.
func ISOWeekday(t time.Time) Weekday {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return Weekday(wd)
}

// MondayOf returns midnight of the Monday starting t's week, in t's location.
func MondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ShiftWeek moves a week anchor by n weeks (negative goes back).
func ShiftWeek(anchor time.Time, n int) time.Time {
	return anchor.AddDate(0, 0, 7*n)
}

// DateOf resolves a weekday inside the week starting at weekStart.
func DateOf(weekStart time.Time, d Weekday) time.Time {
	return MondayOf(weekStart).AddDate(0, 0, int(d)-1)
}

// SameDate compares calendar dates, ignoring clock time.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDays reads a day selection: "weekdays", "weekend", "all", or a comma
// separated list of ISO day numbers. Duplicates are dropped, order is kept.
func ParseDays(raw string) ([]Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all", "week":
		return append([]Weekday(nil), Week...), nil
	case "weekdays":
		return append([]Weekday(nil), WorkWeek...), nil
	case "weekend":
		return append([]Weekday(nil), Weekend...), nil
	}

	seen := make(map[Weekday]struct{}, 7)
	var days []Weekday
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || !Weekday(n).Valid() {
			return nil, fmt.Errorf("invalid day %q", part)
		}
		d := Weekday(n)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no days selected")
	}
	return days, nil
}
