package scheduling

import "time"

const (
	DefaultStartHour        = 7
	DefaultEndHour          = 22
	DefaultMinHeightPercent = 2.5
)

// Window is the visible hour range of a calendar grid, [StartHour, EndHour).
// With Clip unset, entries reaching outside the window keep their raw
// coordinates (negative top or top+height past 100). With Clip set, they are
// trimmed to the window and entries entirely outside it are dropped.
type Window struct {
	StartHour        int
	EndHour          int
	MinHeightPercent float64
	Clip             bool
}

// DefaultWindow is 07:00-22:00 with a 2.5% minimum height, unclipped.
func DefaultWindow() Window {
	return Window{StartHour: DefaultStartHour, EndHour: DefaultEndHour, MinHeightPercent: DefaultMinHeightPercent}
}

// Normalize replaces an unusable hour range or minimum height with defaults.
func (w Window) Normalize() Window {
	if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
		w.StartHour, w.EndHour = DefaultStartHour, DefaultEndHour
	}
	if w.MinHeightPercent < 0 || w.MinHeightPercent > 100 {
		w.MinHeightPercent = DefaultMinHeightPercent
	}
	return w
}

// Span is the window length in minutes.
func (w Window) Span() int {
	return (w.EndHour - w.StartHour) * 60
}

// Cell is an entry positioned on a grid column, in percent of the window.
type Cell struct {
	EntryID       string
	CourseID      string
	RoomID        string
	DayOfWeek     Weekday
	StartTime     int
	EndTime       int
	TopPercent    float64
	HeightPercent float64
}

// Place computes the vertical position of e. The second result is false only
// when clipping is on and e lies entirely outside the window.
func (w Window) Place(e Entry) (Cell, bool) {
	w = w.Normalize()
	windowStart := w.StartHour * 60
	windowEnd := w.EndHour * 60
	span := float64(w.Span())

	start, end := e.StartTime, e.EndTime()
	if w.Clip {
		if end <= windowStart || start >= windowEnd {
			return Cell{}, false
		}
		if start < windowStart {
			start = windowStart
		}
		if end > windowEnd {
			end = windowEnd
		}
	}

	top := float64(start-windowStart) / span * 100
	height := float64(end-start) / span * 100
	if height < w.MinHeightPercent {
		height = w.MinHeightPercent
		// keep short sessions at the bottom edge inside the grid
		if start >= windowStart && end <= windowEnd && top+height > 100 {
			top = 100 - height
		}
	}

	return Cell{
		EntryID:       e.ID,
		CourseID:      e.CourseID,
		RoomID:        e.RoomID,
		DayOfWeek:     e.DayOfWeek,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime(),
		TopPercent:    top,
		HeightPercent: height,
	}, true
}

// Column is one vertical lane of a grid: a room on a day.
type Column struct {
	RoomID    string
	DayOfWeek Weekday
	Date      time.Time
	IsToday   bool
	Cells     []Cell
}

// Layout is the result of a grid computation. Skipped lists ids of entries
// that were dropped for violating entry invariants.
type Layout struct {
	Columns []Column
	Skipped []string
}

// DayGrid lays out one concrete date with a column per room, in roomIDs order.
func (w Window) DayGrid(date time.Time, roomIDs []string, entries []Entry) Layout {
	if len(roomIDs) == 0 {
		return Layout{}
	}
	grouped, skipped := prepare(entries)
	day := ISOWeekday(date)

	columns := make([]Column, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		columns = append(columns, w.column(roomID, day, date, false, grouped))
	}
	return Layout{Columns: columns, Skipped: skipped}
}

// WeekGrid lays out a single room over the seven days of the week holding
// anchor. The column whose date equals today is flagged.
func (w Window) WeekGrid(anchor, today time.Time, roomID string, entries []Entry) Layout {
	if roomID == "" {
		return Layout{}
	}
	return w.MultiGrid(anchor, today, []string{roomID}, Week, entries)
}

// MultiGrid lays out the cartesian product of days and rooms for the week
// holding anchor. Columns are ordered by day, then by room.
func (w Window) MultiGrid(anchor, today time.Time, roomIDs []string, days []Weekday, entries []Entry) Layout {
	if len(roomIDs) == 0 || len(days) == 0 {
		return Layout{}
	}
	grouped, skipped := prepare(entries)
	weekStart := MondayOf(anchor)

	columns := make([]Column, 0, len(roomIDs)*len(days))
	for _, day := range days {
		if !day.Valid() {
			continue
		}
		date := DateOf(weekStart, day)
		isToday := !today.IsZero() && SameDate(date, today)
		for _, roomID := range roomIDs {
			columns = append(columns, w.column(roomID, day, date, isToday, grouped))
		}
	}
	return Layout{Columns: columns, Skipped: skipped}
}

func (w Window) column(roomID string, day Weekday, date time.Time, isToday bool, grouped map[string]map[Weekday][]Entry) Column {
	col := Column{RoomID: roomID, DayOfWeek: day, Date: date, IsToday: isToday, Cells: []Cell{}}
	for _, e := range grouped[roomID][day] {
		if cell, ok := w.Place(e); ok {
			col.Cells = append(col.Cells, cell)
		}
	}
	return col
}

// prepare drops inactive entries, records malformed ones and groups the rest.
func prepare(entries []Entry) (map[string]map[Weekday][]Entry, []string) {
	usable := make([]Entry, 0, len(entries))
	var skipped []string
	for _, e := range entries {
		if !e.Active {
			continue
		}
		if err := e.Validate(); err != nil {
			skipped = append(skipped, e.ID)
			continue
		}
		usable = append(usable, e)
	}
	return GroupByRoomAndDay(usable), skipped
}
