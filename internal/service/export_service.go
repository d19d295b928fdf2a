package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	"github.com/noah-isme/classroom-scheduler/internal/scheduling"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
	"github.com/noah-isme/classroom-scheduler/pkg/export"
)

// ExportFormat names a rendered timetable format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat accepts csv or pdf, defaulting to csv when blank.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// ExportResult is a rendered timetable ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

type weekViewer interface {
	Week(ctx context.Context, roomID string, anchor, today time.Time) (*dto.CalendarView, bool, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders the weekly timetable of a room as CSV or PDF.
type ExportService struct {
	calendar weekViewer
	csv      datasetRenderer
	pdf      datasetRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the package exporters.
func NewExportService(calendar weekViewer, csv, pdf datasetRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{calendar: calendar, csv: csv, pdf: pdf, logger: logger}
}

// WeekTimetable renders every session of roomID in the week containing anchor.
func (s *ExportService) WeekTimetable(ctx context.Context, roomID string, anchor time.Time, format ExportFormat) (*ExportResult, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roomId is required")
	}
	view, _, err := s.calendar.Week(ctx, roomID, anchor, time.Time{})
	if err != nil {
		return nil, err
	}

	dataset := timetableDataset(view)
	var payload []byte
	contentType := "text/csv"
	switch format {
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		format = ExportFormatCSV
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	s.logger.Info("timetable exported",
		zap.String("room_id", roomID),
		zap.String("week_start", view.WeekStart),
		zap.String("format", string(format)),
		zap.Int("rows", len(dataset.Rows)),
	)

	return &ExportResult{
		Filename:    fmt.Sprintf("timetable_%s_%s.%s", sanitizeFilename(roomID), view.WeekStart, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func timetableDataset(view *dto.CalendarView) export.Dataset {
	roomName := ""
	rows := make([][]string, 0)
	for _, col := range view.Columns {
		if roomName == "" {
			roomName = col.RoomName
			if roomName == "" {
				roomName = col.RoomID
			}
		}
		day := scheduling.Weekday(col.DayOfWeek).String()
		for _, cell := range col.Cells {
			rows = append(rows, []string{day, col.Date, cell.StartTime, cell.EndTime, cell.CourseID, cell.Tier})
		}
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Timetable %s, week of %s", roomName, view.WeekStart),
		Headers: []string{"Day", "Date", "Start", "End", "Course", "Occupancy"},
		Rows:    rows,
	}
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
