// Package scheduling holds the classroom scheduling core: the interval model,
// room conflict detection, occupancy classification, calendar layout and the
// grouping helpers that feed it. Everything here is pure and works on
// in-memory values; persistence and transport live in the service layer.
package scheduling

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every entry: sessions never cross midnight.
const MinutesPerDay = 24 * 60

// Modality tells whether a session happens in a room or online.
type Modality string

const (
	ModalityInPerson Modality = "IN_PERSON"
	ModalityVirtual  Modality = "VIRTUAL"
)

// ParseModality accepts the canonical names case-insensitively.
func ParseModality(raw string) (Modality, error) {
	switch Modality(strings.ToUpper(strings.TrimSpace(raw))) {
	case ModalityInPerson:
		return ModalityInPerson, nil
	case ModalityVirtual:
		return ModalityVirtual, nil
	default:
		return "", fmt.Errorf("unknown modality %q", raw)
	}
}

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	return m == ModalityInPerson || m == ModalityVirtual
}

// ErrInvalidEntry matches every *InvalidEntryError via errors.Is.
var ErrInvalidEntry = errors.New("invalid schedule entry")

// InvalidEntryError names the field that broke an entry invariant.
type InvalidEntryError struct {
	Field  string
	Reason string
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid schedule entry: %s %s", e.Field, e.Reason)
}

// Is lets callers test against ErrInvalidEntry.
func (e *InvalidEntryError) Is(target error) bool {
	return target == ErrInvalidEntry
}

// Entry is one weekly session of a course. StartTime is minutes since
// midnight; RoomID is empty for virtual sessions.
type Entry struct {
	ID              string
	CourseID        string
	RoomID          string
	Modality        Modality
	DayOfWeek       Weekday
	StartTime       int
	DurationMinutes int
	Active          bool
}

// NewEntry builds an entry and rejects it when it violates an invariant.
func NewEntry(id, courseID, roomID string, modality Modality, day Weekday, start, duration int, active bool) (Entry, error) {
	e := Entry{
		ID:              id,
		CourseID:        courseID,
		RoomID:          roomID,
		Modality:        modality,
		DayOfWeek:       day,
		StartTime:       start,
		DurationMinutes: duration,
		Active:          active,
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Validate checks the entry invariants and returns the first violation.
func (e Entry) Validate() error {
	if !e.DayOfWeek.Valid() {
		return &InvalidEntryError{Field: "day_of_week", Reason: "must be between 1 and 7"}
	}
	if e.StartTime < 0 || e.StartTime >= MinutesPerDay {
		return &InvalidEntryError{Field: "start_time", Reason: "must be within the day"}
	}
	if e.DurationMinutes <= 0 {
		return &InvalidEntryError{Field: "duration_minutes", Reason: "must be positive"}
	}
	if e.StartTime+e.DurationMinutes > MinutesPerDay {
		return &InvalidEntryError{Field: "duration_minutes", Reason: "must not cross midnight"}
	}
	switch e.Modality {
	case ModalityInPerson:
		if e.RoomID == "" {
			return &InvalidEntryError{Field: "room_id", Reason: "is required for in-person sessions"}
		}
	case ModalityVirtual:
		if e.RoomID != "" {
			return &InvalidEntryError{Field: "room_id", Reason: "must be empty for virtual sessions"}
		}
	default:
		return &InvalidEntryError{Field: "modality", Reason: "is unknown"}
	}
	return nil
}

// EndTime is StartTime plus the duration.
func (e Entry) EndTime() int {
	return e.StartTime + e.DurationMinutes
}

// Overlaps reports whether both entries fall on the same day and their
// half-open intervals intersect.
func (e Entry) Overlaps(other Entry) bool {
	if e.DayOfWeek != other.DayOfWeek {
		return false
	}
	return IntervalsOverlap(e.StartTime, e.EndTime(), other.StartTime, other.EndTime())
}

// IntervalsOverlap reports whether [s1, e1) and [s2, e2) intersect. Touching
// endpoints do not overlap.
func IntervalsOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// ParseClock turns "HH:MM" (or "HH:MM:SS") into minutes since midnight.
// "24:00" is accepted so end times can be expressed.
func ParseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", raw, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", raw, err)
	}
	if len(parts) == 3 {
		if seconds, err := strconv.Atoi(parts[2]); err != nil || seconds != 0 {
			return 0, fmt.Errorf("invalid clock %q: minute precision only", raw)
		}
	}
	if minutes < 0 || minutes > 59 || hours < 0 || hours > 24 || (hours == 24 && minutes != 0) {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
