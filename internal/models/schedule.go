package models

import (
	"time"

	"github.com/noah-isme/classroom-scheduler/internal/scheduling"
)

// ScheduleEntry is one weekly session of a course as stored in schedule_entries.
type ScheduleEntry struct {
	ID              string    `db:"id" json:"id"`
	CourseID        string    `db:"course_id" json:"course_id"`
	RoomID          *string   `db:"room_id" json:"room_id,omitempty"`
	Modality        string    `db:"modality" json:"modality"`
	DayOfWeek       int       `db:"day_of_week" json:"day_of_week"`
	StartMinute     int       `db:"start_minute" json:"start_minute"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ToEntry converts the record into the scheduling core representation.
func (s ScheduleEntry) ToEntry() scheduling.Entry {
	roomID := ""
	if s.RoomID != nil {
		roomID = *s.RoomID
	}
	return scheduling.Entry{
		ID:              s.ID,
		CourseID:        s.CourseID,
		RoomID:          roomID,
		Modality:        scheduling.Modality(s.Modality),
		DayOfWeek:       scheduling.Weekday(s.DayOfWeek),
		StartTime:       s.StartMinute,
		DurationMinutes: s.DurationMinutes,
		Active:          s.Active,
	}
}

// ToEntries converts a batch of records.
func ToEntries(records []ScheduleEntry) []scheduling.Entry {
	entries := make([]scheduling.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.ToEntry())
	}
	return entries
}

// ScheduleEntryFilter describes query params for listing schedule entries.
type ScheduleEntryFilter struct {
	RoomID    string
	CourseID  string
	DayOfWeek int
	Modality  string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ScheduleConflict describes an existing session that clashes with a candidate.
type ScheduleConflict struct {
	EntryID   string `json:"entry_id"`
	CourseID  string `json:"course_id"`
	RoomID    string `json:"room_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// NewScheduleConflicts converts core conflicts into their JSON shape. The
// result is never nil.
func NewScheduleConflicts(conflicts []scheduling.Conflict) []ScheduleConflict {
	out := make([]ScheduleConflict, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, ScheduleConflict{
			EntryID:   c.EntryID,
			CourseID:  c.CourseID,
			RoomID:    c.RoomID,
			DayOfWeek: int(c.DayOfWeek),
			StartTime: scheduling.FormatClock(c.StartTime),
			EndTime:   scheduling.FormatClock(c.EndTime),
		})
	}
	return out
}

// ScheduleConflictError is returned when a write would double-book a room.
type ScheduleConflictError struct {
	Message   string             `json:"message"`
	Conflicts []ScheduleConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
