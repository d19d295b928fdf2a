package dto

// CalendarCell is a positioned session on a calendar column.
type CalendarCell struct {
	EntryID       string  `json:"entryId"`
	CourseID      string  `json:"courseId"`
	RoomID        string  `json:"roomId"`
	DayOfWeek     int     `json:"dayOfWeek"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	TopPercent    float64 `json:"topPercent"`
	HeightPercent float64 `json:"heightPercent"`
	Tier          string  `json:"tier"`
}

// CalendarColumn is one room on one day.
type CalendarColumn struct {
	RoomID    string         `json:"roomId"`
	RoomName  string         `json:"roomName,omitempty"`
	DayOfWeek int            `json:"dayOfWeek"`
	Date      string         `json:"date"`
	IsToday   bool           `json:"isToday"`
	Cells     []CalendarCell `json:"cells"`
}

// CalendarView is a complete grid ready for rendering.
type CalendarView struct {
	Kind      string           `json:"kind"`
	StartHour int              `json:"startHour"`
	EndHour   int              `json:"endHour"`
	Date      string           `json:"date,omitempty"`
	WeekStart string           `json:"weekStart,omitempty"`
	PrevWeek  string           `json:"prevWeek,omitempty"`
	NextWeek  string           `json:"nextWeek,omitempty"`
	Columns   []CalendarColumn `json:"columns"`
	Skipped   []string         `json:"skipped,omitempty"`
}

// Calendar view kinds.
const (
	CalendarKindDay  = "day"
	CalendarKindWeek = "week"
	CalendarKindGrid = "grid"
)
