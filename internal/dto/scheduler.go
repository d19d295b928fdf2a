package dto

import (
	"time"

	"github.com/noah-isme/classroom-scheduler/internal/models"
	"github.com/noah-isme/classroom-scheduler/internal/scheduling"
)

// ScheduleEntryRequest is the create/update payload of a schedule entry.
// Structural checks live here; entry invariants (positive duration, no
// midnight crossing, room iff in person) are enforced by the scheduling core.
type ScheduleEntryRequest struct {
	CourseID        string  `json:"courseId" validate:"required"`
	RoomID          *string `json:"roomId" validate:"omitempty,min=1"`
	Modality        string  `json:"modality" validate:"required,modality"`
	DayOfWeek       int     `json:"dayOfWeek"`
	StartTime       string  `json:"startTime" validate:"required,clock"`
	DurationMinutes int     `json:"durationMinutes"`
	Active          *bool   `json:"active"`
}

// CheckConflictsRequest asks for the conflicts of a candidate without saving it.
type CheckConflictsRequest struct {
	ScheduleEntryRequest
	ExcludeID string `json:"excludeId"`
}

// ConflictCheckResponse lists every session clashing with the candidate.
type ConflictCheckResponse struct {
	HasConflicts bool                      `json:"hasConflicts"`
	Conflicts    []models.ScheduleConflict `json:"conflicts"`
}

// ScheduleEntryResponse renders a stored entry with wall-clock times.
type ScheduleEntryResponse struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"courseId"`
	RoomID          *string   `json:"roomId,omitempty"`
	Modality        string    `json:"modality"`
	DayOfWeek       int       `json:"dayOfWeek"`
	StartTime       string    `json:"startTime"`
	EndTime         string    `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewScheduleEntryResponse maps a record onto its response shape.
func NewScheduleEntryResponse(e models.ScheduleEntry) ScheduleEntryResponse {
	return ScheduleEntryResponse{
		ID:              e.ID,
		CourseID:        e.CourseID,
		RoomID:          e.RoomID,
		Modality:        e.Modality,
		DayOfWeek:       e.DayOfWeek,
		StartTime:       scheduling.FormatClock(e.StartMinute),
		EndTime:         scheduling.FormatClock(e.StartMinute + e.DurationMinutes),
		DurationMinutes: e.DurationMinutes,
		Active:          e.Active,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// NewScheduleEntryResponses maps a batch of records.
func NewScheduleEntryResponses(entries []models.ScheduleEntry) []ScheduleEntryResponse {
	out := make([]ScheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewScheduleEntryResponse(e))
	}
	return out
}
