package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	"github.com/noah-isme/classroom-scheduler/internal/models"
	"github.com/noah-isme/classroom-scheduler/internal/scheduling"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
)

func newOccupancyFixture() *OccupancyService {
	rooms := &roomsStub{rooms: map[string]models.Room{
		"lab-a": {ID: "lab-a", Capacity: capacity(20)},
		"hall":  {ID: "hall"},
	}}
	enrollments := &enrollmentsStub{counts: map[string]int{"course-1": 18, "course-2": 25}}
	return NewOccupancyService(rooms, enrollments, nil)
}

func TestOccupancyServiceRoomOccupancy(t *testing.T) {
	svc := newOccupancyFixture()

	resp, err := svc.RoomOccupancy(context.Background(), "lab-a", "course-1")
	require.NoError(t, err)
	assert.Equal(t, "lab-a", resp.RoomID)
	assert.Equal(t, "course-1", resp.CourseID)
	assert.Equal(t, 18, resp.Enrolled)
	require.NotNil(t, resp.Ratio)
	assert.InDelta(t, 0.9, *resp.Ratio, 1e-9)
	assert.Equal(t, string(scheduling.TierNearlyFull), resp.Tier)

	resp, err = svc.RoomOccupancy(context.Background(), "lab-a", "course-2")
	require.NoError(t, err)
	assert.Equal(t, string(scheduling.TierFull), resp.Tier)

	resp, err = svc.RoomOccupancy(context.Background(), "hall", "course-2")
	require.NoError(t, err)
	assert.Nil(t, resp.Ratio)
	assert.Equal(t, string(scheduling.TierUnlimited), resp.Tier)
}

func TestOccupancyServiceRoomOccupancyErrors(t *testing.T) {
	svc := newOccupancyFixture()

	_, err := svc.RoomOccupancy(context.Background(), "lab-a", " ")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.RoomOccupancy(context.Background(), "missing", "course-1")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOccupancyServiceClassify(t *testing.T) {
	svc := newOccupancyFixture()

	resp := svc.Classify(dto.ClassifyOccupancyRequest{Capacity: capacity(10), Enrolled: 5})
	assert.Equal(t, string(scheduling.TierPartial), resp.Tier)

	resp = svc.Classify(dto.ClassifyOccupancyRequest{Capacity: capacity(0), Enrolled: 5})
	assert.Equal(t, string(scheduling.TierUnlimited), resp.Tier)
	assert.Nil(t, resp.Ratio)
}
