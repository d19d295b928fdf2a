package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
)

type occupancyServiceMock struct {
	roomID   string
	courseID string
	err      error
}

func (m *occupancyServiceMock) RoomOccupancy(ctx context.Context, roomID, courseID string) (*dto.OccupancyResponse, error) {
	m.roomID, m.courseID = roomID, courseID
	if m.err != nil {
		return nil, m.err
	}
	return &dto.OccupancyResponse{RoomID: roomID, CourseID: courseID, Enrolled: 18, Tier: "NEARLY_FULL"}, nil
}

func (m *occupancyServiceMock) Classify(req dto.ClassifyOccupancyRequest) *dto.OccupancyResponse {
	return &dto.OccupancyResponse{Capacity: req.Capacity, Enrolled: req.Enrolled, Tier: "PARTIAL"}
}

func newOccupancyRouter(svc occupancyService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOccupancyHandler(svc)
	r := gin.New()
	r.GET("/rooms/:id/occupancy", h.Room)
	r.POST("/occupancy/classify", h.Classify)
	return r
}

func TestOccupancyHandlerRoom(t *testing.T) {
	svc := &occupancyServiceMock{}
	w := doJSON(newOccupancyRouter(svc), http.MethodGet, "/rooms/lab-a/occupancy?courseId=course-1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lab-a", svc.roomID)
	assert.Equal(t, "course-1", svc.courseID)
	var resp dto.OccupancyResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.Equal(t, "NEARLY_FULL", resp.Tier)
}

func TestOccupancyHandlerRoomNotFound(t *testing.T) {
	svc := &occupancyServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "room not found")}
	w := doJSON(newOccupancyRouter(svc), http.MethodGet, "/rooms/ghost/occupancy?courseId=c", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOccupancyHandlerClassify(t *testing.T) {
	w := doJSON(newOccupancyRouter(&occupancyServiceMock{}), http.MethodPost, "/occupancy/classify", map[string]interface{}{"capacity": 10, "enrolled": 5})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.OccupancyResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	require.NotNil(t, resp.Capacity)
	assert.Equal(t, 10, *resp.Capacity)
	assert.Equal(t, 5, resp.Enrolled)
}
