package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	"github.com/noah-isme/classroom-scheduler/internal/models"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
	"github.com/noah-isme/classroom-scheduler/pkg/response"
)

type scheduleEntryService interface {
	List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ScheduleEntry, error)
	Create(ctx context.Context, req dto.ScheduleEntryRequest) (*models.ScheduleEntry, error)
	Update(ctx context.Context, id string, req dto.ScheduleEntryRequest) (*models.ScheduleEntry, error)
	Delete(ctx context.Context, id string) error
	CheckConflicts(ctx context.Context, req dto.CheckConflictsRequest) ([]models.ScheduleConflict, error)
}

// ScheduleEntryHandler manages weekly session endpoints.
type ScheduleEntryHandler struct {
	service scheduleEntryService
}

// NewScheduleEntryHandler constructs the handler.
func NewScheduleEntryHandler(svc scheduleEntryService) *ScheduleEntryHandler {
	return &ScheduleEntryHandler{service: svc}
}

// List godoc
// @Summary List schedule entries
// @Tags ScheduleEntries
// @Produce json
// @Param roomId query string false "Filter by room"
// @Param courseId query string false "Filter by course"
// @Param dayOfWeek query int false "ISO day of week (1=Monday)"
// @Param modality query string false "IN_PERSON or VIRTUAL"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedule-entries [get]
func (h *ScheduleEntryHandler) List(c *gin.Context) {
	var filter models.ScheduleEntryFilter
	filter.RoomID = c.Query("roomId")
	filter.CourseID = c.Query("courseId")
	filter.Modality = strings.ToUpper(c.Query("modality"))
	if raw := c.Query("dayOfWeek"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 1 || day > 7 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dayOfWeek must be between 1 and 7"))
			return
		}
		filter.DayOfWeek = day
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	entries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewScheduleEntryResponses(entries), pagination)
}

// Get godoc
// @Summary Get schedule entry
// @Tags ScheduleEntries
// @Produce json
// @Param id path string true "Schedule entry ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule-entries/{id} [get]
func (h *ScheduleEntryHandler) Get(c *gin.Context) {
	entry, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewScheduleEntryResponse(*entry), nil)
}

// Create godoc
// @Summary Create schedule entry
// @Description Rejects the entry with 409 SCHEDULE_CONFLICT listing every clashing session.
// @Tags ScheduleEntries
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleEntryRequest true "Schedule entry payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule-entries [post]
func (h *ScheduleEntryHandler) Create(c *gin.Context) {
	var req dto.ScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewScheduleEntryResponse(*entry))
}

// Update godoc
// @Summary Update schedule entry
// @Tags ScheduleEntries
// @Accept json
// @Produce json
// @Param id path string true "Schedule entry ID"
// @Param payload body dto.ScheduleEntryRequest true "Schedule entry payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule-entries/{id} [put]
func (h *ScheduleEntryHandler) Update(c *gin.Context) {
	var req dto.ScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewScheduleEntryResponse(*entry), nil)
}

// Delete godoc
// @Summary Delete schedule entry
// @Tags ScheduleEntries
// @Param id path string true "Schedule entry ID"
// @Success 204 {string} string "No Content"
// @Router /schedule-entries/{id} [delete]
func (h *ScheduleEntryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CheckConflicts godoc
// @Summary Dry-run conflict check
// @Description Lists the sessions a candidate entry would clash with without saving it.
// @Tags ScheduleEntries
// @Accept json
// @Produce json
// @Param payload body dto.CheckConflictsRequest true "Candidate entry"
// @Success 200 {object} response.Envelope
// @Router /schedule-entries/conflicts [post]
func (h *ScheduleEntryHandler) CheckConflicts(c *gin.Context) {
	var req dto.CheckConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	conflicts, err := h.service.CheckConflicts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ConflictCheckResponse{HasConflicts: len(conflicts) > 0, Conflicts: conflicts}, nil)
}
