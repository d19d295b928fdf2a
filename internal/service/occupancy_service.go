package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	"github.com/noah-isme/classroom-scheduler/internal/scheduling"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
)

// OccupancyService classifies how full a room is for a course.
type OccupancyService struct {
	rooms       roomReader
	enrollments enrollmentCounter
	logger      *zap.Logger
}

// NewOccupancyService constructs an OccupancyService.
func NewOccupancyService(rooms roomReader, enrollments enrollmentCounter, logger *zap.Logger) *OccupancyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccupancyService{rooms: rooms, enrollments: enrollments, logger: logger}
}

// RoomOccupancy compares the room capacity with the active enrollment of a course.
func (s *OccupancyService) RoomOccupancy(ctx context.Context, roomID, courseID string) (*dto.OccupancyResponse, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	enrolled, err := s.enrollments.CountActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}

	resp := s.classify(room.Capacity, enrolled)
	resp.RoomID = room.ID
	resp.CourseID = courseID
	return resp, nil
}

// Classify rates an ad-hoc capacity/enrollment reading.
func (s *OccupancyService) Classify(req dto.ClassifyOccupancyRequest) *dto.OccupancyResponse {
	return s.classify(req.Capacity, req.Enrolled)
}

func (s *OccupancyService) classify(capacity *int, enrolled int) *dto.OccupancyResponse {
	snapshot := scheduling.Snapshot{Capacity: capacity, Enrolled: enrolled}
	resp := &dto.OccupancyResponse{
		Capacity: capacity,
		Enrolled: enrolled,
		Tier:     string(snapshot.Tier()),
	}
	if ratio, ok := snapshot.Ratio(); ok {
		resp.Ratio = &ratio
	}
	return resp
}
