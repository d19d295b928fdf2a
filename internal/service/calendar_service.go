package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	"github.com/noah-isme/classroom-scheduler/internal/models"
	"github.com/noah-isme/classroom-scheduler/internal/scheduling"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
)

const dateLayout = "2006-01-02"

type calendarEntryReader interface {
	ListActiveByRooms(ctx context.Context, roomIDs []string, days []int) ([]models.ScheduleEntry, error)
}

type roomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Room, error)
}

type enrollmentCounter interface {
	CountActiveByCourse(ctx context.Context, courseID string) (int, error)
	CountActiveByCourses(ctx context.Context, courseIDs []string) (map[string]int, error)
}

// CalendarService renders day, week and multi-day room calendars.
type CalendarService struct {
	entries     calendarEntryReader
	rooms       roomReader
	enrollments enrollmentCounter
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	window      scheduling.Window
	cacheTTL    time.Duration
}

// CalendarConfig carries the grid window and cache TTL.
type CalendarConfig struct {
	Window   scheduling.Window
	CacheTTL time.Duration
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(entries calendarEntryReader, rooms roomReader, enrollments enrollmentCounter, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg CalendarConfig) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{
		entries:     entries,
		rooms:       rooms,
		enrollments: enrollments,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		window:      cfg.Window.Normalize(),
		cacheTTL:    cfg.CacheTTL,
	}
}

// Window returns the normalised grid window.
func (s *CalendarService) Window() scheduling.Window {
	return s.window
}

// Day lays out the given rooms side by side for one date. Unknown rooms are
// left out. The bool result reports a cache hit.
func (s *CalendarService) Day(ctx context.Context, date time.Time, roomIDs []string) (*dto.CalendarView, bool, error) {
	roomIDs = uniqueIDs(roomIDs)
	day := scheduling.ISOWeekday(date)
	key := Key("calendar", dto.CalendarKindDay, date.Format(dateLayout), strings.Join(roomIDs, ","))

	return s.render(ctx, key, dto.CalendarKindDay, func(ctx context.Context) (*dto.CalendarView, error) {
		view := s.newView(dto.CalendarKindDay)
		view.Date = date.Format(dateLayout)
		if len(roomIDs) == 0 {
			return view, nil
		}

		rooms, entries, err := s.load(ctx, roomIDs, []scheduling.Weekday{day})
		if err != nil {
			return nil, err
		}
		known := knownRoomIDs(roomIDs, rooms)
		layout := s.window.DayGrid(date, known, models.ToEntries(entries))
		return s.decorate(ctx, view, layout, rooms)
	})
}

// Week lays out one room across Monday..Sunday of the week containing
// anchor, highlighting today when it falls inside that week.
func (s *CalendarService) Week(ctx context.Context, roomID string, anchor, today time.Time) (*dto.CalendarView, bool, error) {
	roomID = strings.TrimSpace(roomID)
	weekStart := scheduling.MondayOf(anchor)
	todayKey := ""
	if !today.IsZero() {
		todayKey = today.Format(dateLayout)
	}
	key := Key("calendar", dto.CalendarKindWeek, roomID, weekStart.Format(dateLayout), todayKey)

	return s.render(ctx, key, dto.CalendarKindWeek, func(ctx context.Context) (*dto.CalendarView, error) {
		view := s.newView(dto.CalendarKindWeek)
		setWeekNavigation(view, weekStart)
		if roomID == "" {
			return view, nil
		}

		room, err := s.rooms.FindByID(ctx, roomID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
		}
		entries, err := s.entries.ListActiveByRooms(ctx, []string{roomID}, nil)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
		}
		layout := s.window.WeekGrid(anchor, today, roomID, models.ToEntries(entries))
		return s.decorate(ctx, view, layout, []models.Room{*room})
	})
}

// Grid lays out several rooms across a subset of the week containing anchor.
func (s *CalendarService) Grid(ctx context.Context, roomIDs []string, days []scheduling.Weekday, anchor, today time.Time) (*dto.CalendarView, bool, error) {
	roomIDs = uniqueIDs(roomIDs)
	weekStart := scheduling.MondayOf(anchor)
	dayKeys := make([]string, 0, len(days))
	for _, d := range days {
		dayKeys = append(dayKeys, strconv.Itoa(int(d)))
	}
	todayKey := ""
	if !today.IsZero() {
		todayKey = today.Format(dateLayout)
	}
	key := Key("calendar", dto.CalendarKindGrid, strings.Join(roomIDs, ","), strings.Join(dayKeys, ","), weekStart.Format(dateLayout), todayKey)

	return s.render(ctx, key, dto.CalendarKindGrid, func(ctx context.Context) (*dto.CalendarView, error) {
		view := s.newView(dto.CalendarKindGrid)
		setWeekNavigation(view, weekStart)
		if len(roomIDs) == 0 || len(days) == 0 {
			return view, nil
		}

		rooms, entries, err := s.load(ctx, roomIDs, days)
		if err != nil {
			return nil, err
		}
		known := knownRoomIDs(roomIDs, rooms)
		layout := s.window.MultiGrid(anchor, today, known, days, models.ToEntries(entries))
		return s.decorate(ctx, view, layout, rooms)
	})
}

func (s *CalendarService) render(ctx context.Context, key, kind string, build func(ctx context.Context) (*dto.CalendarView, error)) (*dto.CalendarView, bool, error) {
	var cached dto.CalendarView
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	view, err := build(ctx)
	if err != nil {
		return nil, false, err
	}
	s.metrics.ObserveLayout(kind, time.Since(start), len(view.Skipped))
	if len(view.Skipped) > 0 {
		s.logger.Warn("malformed schedule entries skipped", zap.String("kind", kind), zap.Strings("entry_ids", view.Skipped))
	}

	s.cache.Set(ctx, key, view, s.cacheTTL)
	return view, false, nil
}

// load fetches rooms and their entries concurrently.
func (s *CalendarService) load(ctx context.Context, roomIDs []string, days []scheduling.Weekday) ([]models.Room, []models.ScheduleEntry, error) {
	dayNumbers := make([]int, 0, len(days))
	for _, d := range days {
		dayNumbers = append(dayNumbers, int(d))
	}

	var rooms []models.Room
	var entries []models.ScheduleEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rooms, err = s.rooms.ListByIDs(gctx, roomIDs)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		entries, err = s.entries.ListActiveByRooms(gctx, roomIDs, dayNumbers)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rooms, entries, nil
}

// decorate converts a core layout into the response shape, attaching room
// names and the occupancy tier of each session.
func (s *CalendarService) decorate(ctx context.Context, view *dto.CalendarView, layout scheduling.Layout, rooms []models.Room) (*dto.CalendarView, error) {
	roomsByID := make(map[string]models.Room, len(rooms))
	for _, r := range rooms {
		roomsByID[r.ID] = r
	}

	courseSet := map[string]struct{}{}
	for _, col := range layout.Columns {
		for _, cell := range col.Cells {
			courseSet[cell.CourseID] = struct{}{}
		}
	}
	courseIDs := make([]string, 0, len(courseSet))
	for id := range courseSet {
		courseIDs = append(courseIDs, id)
	}
	sort.Strings(courseIDs)

	enrolled := map[string]int{}
	if len(courseIDs) > 0 {
		counts, err := s.enrollments.CountActiveByCourses(ctx, courseIDs)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		enrolled = counts
	}

	view.Columns = make([]dto.CalendarColumn, 0, len(layout.Columns))
	for _, col := range layout.Columns {
		room := roomsByID[col.RoomID]
		out := dto.CalendarColumn{
			RoomID:    col.RoomID,
			RoomName:  room.Name,
			DayOfWeek: int(col.DayOfWeek),
			Date:      col.Date.Format(dateLayout),
			IsToday:   col.IsToday,
			Cells:     make([]dto.CalendarCell, 0, len(col.Cells)),
		}
		for _, cell := range col.Cells {
			tier := scheduling.Classify(room.Capacity, enrolled[cell.CourseID])
			out.Cells = append(out.Cells, dto.CalendarCell{
				EntryID:       cell.EntryID,
				CourseID:      cell.CourseID,
				RoomID:        cell.RoomID,
				DayOfWeek:     int(cell.DayOfWeek),
				StartTime:     scheduling.FormatClock(cell.StartTime),
				EndTime:       scheduling.FormatClock(cell.EndTime),
				TopPercent:    cell.TopPercent,
				HeightPercent: cell.HeightPercent,
				Tier:          string(tier),
			})
		}
		view.Columns = append(view.Columns, out)
	}
	view.Skipped = layout.Skipped
	return view, nil
}

func (s *CalendarService) newView(kind string) *dto.CalendarView {
	return &dto.CalendarView{
		Kind:      kind,
		StartHour: s.window.StartHour,
		EndHour:   s.window.EndHour,
		Columns:   []dto.CalendarColumn{},
	}
}

func setWeekNavigation(view *dto.CalendarView, weekStart time.Time) {
	view.WeekStart = weekStart.Format(dateLayout)
	view.PrevWeek = scheduling.ShiftWeek(weekStart, -1).Format(dateLayout)
	view.NextWeek = scheduling.ShiftWeek(weekStart, 1).Format(dateLayout)
}

// uniqueIDs trims ids and drops blanks and repeats, keeping the first order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// knownRoomIDs keeps the requested order but only for rooms that exist.
func knownRoomIDs(requested []string, rooms []models.Room) []string {
	exists := make(map[string]struct{}, len(rooms))
	for _, r := range rooms {
		exists[r.ID] = struct{}{}
	}
	out := make([]string, 0, len(requested))
	for _, id := range requested {
		if _, ok := exists[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
