package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	"github.com/noah-isme/classroom-scheduler/internal/middleware"
	"github.com/noah-isme/classroom-scheduler/internal/scheduling"
	"github.com/noah-isme/classroom-scheduler/internal/service"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
	"github.com/noah-isme/classroom-scheduler/pkg/response"
)

const queryDateLayout = "2006-01-02"

type calendarService interface {
	Day(ctx context.Context, date time.Time, roomIDs []string) (*dto.CalendarView, bool, error)
	Week(ctx context.Context, roomID string, anchor, today time.Time) (*dto.CalendarView, bool, error)
	Grid(ctx context.Context, roomIDs []string, days []scheduling.Weekday, anchor, today time.Time) (*dto.CalendarView, bool, error)
}

type timetableExporter interface {
	WeekTimetable(ctx context.Context, roomID string, anchor time.Time, format service.ExportFormat) (*service.ExportResult, error)
}

// CalendarHandler serves positioned calendar grids.
type CalendarHandler struct {
	calendar calendarService
	exporter timetableExporter
	now      func() time.Time
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(calendar calendarService, exporter timetableExporter) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, exporter: exporter, now: time.Now}
}

// Day godoc
// @Summary Day view across rooms
// @Tags Calendar
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param roomIds query string true "Comma separated room IDs"
// @Success 200 {object} response.Envelope
// @Router /calendar/day [get]
func (h *CalendarHandler) Day(c *gin.Context) {
	date, err := h.dateParam(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, hit, err := h.calendar.Day(c.Request.Context(), date, splitIDs(c.Query("roomIds")))
	h.respond(c, view, hit, err)
}

// Week godoc
// @Summary Week view of one room
// @Tags Calendar
// @Produce json
// @Param roomId query string true "Room ID"
// @Param date query string false "Any date inside the week (YYYY-MM-DD), defaults to today"
// @Param today query string false "Date to highlight (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendar/week [get]
func (h *CalendarHandler) Week(c *gin.Context) {
	anchor, err := h.dateParam(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	today, err := h.dateParam(c, "today")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, hit, err := h.calendar.Week(c.Request.Context(), c.Query("roomId"), anchor, today)
	h.respond(c, view, hit, err)
}

// Grid godoc
// @Summary Rooms across selected days
// @Tags Calendar
// @Produce json
// @Param roomIds query string true "Comma separated room IDs"
// @Param days query string false "Comma separated ISO days, weekdays, weekend or all"
// @Param date query string false "Any date inside the week (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /calendar/grid [get]
func (h *CalendarHandler) Grid(c *gin.Context) {
	days, err := scheduling.ParseDays(c.Query("days"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid days"))
		return
	}
	anchor, err := h.dateParam(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	today, err := h.dateParam(c, "today")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, hit, err := h.calendar.Grid(c.Request.Context(), splitIDs(c.Query("roomIds")), days, anchor, today)
	h.respond(c, view, hit, err)
}

// Export godoc
// @Summary Export a room's weekly timetable
// @Tags Calendar
// @Produce text/csv
// @Produce application/pdf
// @Param roomId query string true "Room ID"
// @Param date query string false "Any date inside the week (YYYY-MM-DD)"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /calendar/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	anchor, err := h.dateParam(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exporter.WeekTimetable(c.Request.Context(), c.Query("roomId"), anchor, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

func (h *CalendarHandler) respond(c *gin.Context, view *dto.CalendarView, hit bool, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// dateParam reads a YYYY-MM-DD query value as midnight UTC, defaulting to today.
func (h *CalendarHandler) dateParam(c *gin.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		now := h.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, name+" must be formatted as YYYY-MM-DD")
	}
	return parsed, nil
}

func splitIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
