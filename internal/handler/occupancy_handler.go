package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
	"github.com/noah-isme/classroom-scheduler/pkg/response"
)

type occupancyService interface {
	RoomOccupancy(ctx context.Context, roomID, courseID string) (*dto.OccupancyResponse, error)
	Classify(req dto.ClassifyOccupancyRequest) *dto.OccupancyResponse
}

// OccupancyHandler reports availability tiers.
type OccupancyHandler struct {
	service occupancyService
}

// NewOccupancyHandler constructs the handler.
func NewOccupancyHandler(svc occupancyService) *OccupancyHandler {
	return &OccupancyHandler{service: svc}
}

// Room godoc
// @Summary Occupancy of a room for a course
// @Tags Occupancy
// @Produce json
// @Param id path string true "Room ID"
// @Param courseId query string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id}/occupancy [get]
func (h *OccupancyHandler) Room(c *gin.Context) {
	result, err := h.service.RoomOccupancy(c.Request.Context(), c.Param("id"), c.Query("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Classify godoc
// @Summary Classify an ad-hoc capacity reading
// @Tags Occupancy
// @Accept json
// @Produce json
// @Param payload body dto.ClassifyOccupancyRequest true "Capacity and enrollment"
// @Success 200 {object} response.Envelope
// @Router /occupancy/classify [post]
func (h *OccupancyHandler) Classify(c *gin.Context) {
	var req dto.ClassifyOccupancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.Classify(req), nil)
}
