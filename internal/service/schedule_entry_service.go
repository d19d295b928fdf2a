package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	"github.com/noah-isme/classroom-scheduler/internal/models"
	"github.com/noah-isme/classroom-scheduler/internal/scheduling"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
)

// CalendarCachePattern matches every cached calendar view.
const CalendarCachePattern = "calendar:*"

type scheduleEntryRepository interface {
	List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, int, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error)
	ListByRoomDay(ctx context.Context, exec sqlx.ExtContext, roomID string, dayOfWeek int) ([]models.ScheduleEntry, error)
	LockRoomDay(ctx context.Context, exec sqlx.ExtContext, roomID string, dayOfWeek int) error
	Create(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error
	Update(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// ScheduleEntryConfig governs how writes are serialised.
type ScheduleEntryConfig struct {
	LockWrites bool
}

// ScheduleEntryService manages weekly sessions and refuses double bookings.
type ScheduleEntryService struct {
	repo      scheduleEntryRepository
	tx        txProvider
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleEntryConfig
}

// NewScheduleEntryService wires the service dependencies.
func NewScheduleEntryService(repo scheduleEntryRepository, tx txProvider, cache cacheInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ScheduleEntryConfig) *ScheduleEntryService {
	if validate == nil {
		validate = validator.New()
	}
	RegisterSchedulingValidators(validate)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleEntryService{repo: repo, tx: tx, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// RegisterSchedulingValidators adds the "modality" and "clock" tags.
func RegisterSchedulingValidators(v *validator.Validate) {
	_ = v.RegisterValidation("modality", func(fl validator.FieldLevel) bool {
		_, err := scheduling.ParseModality(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		minutes, err := scheduling.ParseClock(fl.Field().String())
		return err == nil && minutes < scheduling.MinutesPerDay
	})
}

// List returns schedule entries with pagination metadata.
func (s *ScheduleEntryService) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule entries")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single entry.
func (s *ScheduleEntryService) Get(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	return entry, nil
}

// CheckConflicts reports the sessions a candidate would clash with without
// saving anything. An empty list means the slot is free.
func (s *ScheduleEntryService) CheckConflicts(ctx context.Context, req dto.CheckConflictsRequest) ([]models.ScheduleConflict, error) {
	_, candidate, err := s.buildEntry(req.ExcludeID, req.ScheduleEntryRequest)
	if err != nil {
		return nil, err
	}
	conflicts, err := s.detect(ctx, nil, candidate, req.ExcludeID)
	if err != nil {
		return nil, err
	}
	return models.NewScheduleConflicts(conflicts), nil
}

// Create stores a new entry unless it double-books its room.
func (s *ScheduleEntryService) Create(ctx context.Context, req dto.ScheduleEntryRequest) (*models.ScheduleEntry, error) {
	record, candidate, err := s.buildEntry("", req)
	if err != nil {
		return nil, err
	}

	if err := s.write(ctx, candidate, "", func(exec sqlx.ExtContext) error {
		return s.repo.Create(ctx, exec, &record)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("schedule entry created", zap.String("entry_id", record.ID), zap.String("course_id", record.CourseID))
	s.invalidate(ctx)
	return &record, nil
}

// Update replaces an entry. The stored version of the entry never counts as
// a conflict against itself.
func (s *ScheduleEntryService) Update(ctx context.Context, id string, req dto.ScheduleEntryRequest) (*models.ScheduleEntry, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	record, candidate, err := s.buildEntry(existing.ID, req)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = existing.CreatedAt
	if req.Active == nil {
		record.Active = existing.Active
		candidate.Active = existing.Active
	}

	if err := s.write(ctx, candidate, existing.ID, func(exec sqlx.ExtContext) error {
		return s.repo.Update(ctx, exec, &record)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("schedule entry updated", zap.String("entry_id", record.ID))
	s.invalidate(ctx)
	return &record, nil
}

// Delete removes an entry.
func (s *ScheduleEntryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule entry")
	}
	s.logger.Info("schedule entry deleted", zap.String("entry_id", id))
	s.invalidate(ctx)
	return nil
}

func (s *ScheduleEntryService) buildEntry(id string, req dto.ScheduleEntryRequest) (models.ScheduleEntry, scheduling.Entry, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ScheduleEntry{}, scheduling.Entry{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule entry payload")
	}

	modality, err := scheduling.ParseModality(req.Modality)
	if err != nil {
		return models.ScheduleEntry{}, scheduling.Entry{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule entry payload")
	}
	start, err := scheduling.ParseClock(req.StartTime)
	if err != nil {
		return models.ScheduleEntry{}, scheduling.Entry{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule entry payload")
	}

	var roomID *string
	if req.RoomID != nil {
		if trimmed := strings.TrimSpace(*req.RoomID); trimmed != "" {
			roomID = &trimmed
		}
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	record := models.ScheduleEntry{
		ID:              id,
		CourseID:        strings.TrimSpace(req.CourseID),
		RoomID:          roomID,
		Modality:        string(modality),
		DayOfWeek:       req.DayOfWeek,
		StartMinute:     start,
		DurationMinutes: req.DurationMinutes,
		Active:          active,
	}

	candidate := record.ToEntry()
	if err := candidate.Validate(); err != nil {
		return models.ScheduleEntry{}, scheduling.Entry{}, appErrors.Wrap(err, appErrors.ErrInvalidScheduleEntry.Code, appErrors.ErrInvalidScheduleEntry.Status, err.Error())
	}
	return record, candidate, nil
}

// write runs the conflict check and persist inside one transaction. With
// LockWrites the room/day pair is locked first so two writers cannot both
// pass the check.
func (s *ScheduleEntryService) write(ctx context.Context, candidate scheduling.Entry, excludeID string, persist func(exec sqlx.ExtContext) error) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if s.cfg.LockWrites && occupiesRoom(candidate) {
		if err = s.repo.LockRoomDay(ctx, tx, candidate.RoomID, int(candidate.DayOfWeek)); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock room schedule")
		}
	}

	conflicts, err := s.detect(ctx, tx, candidate, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		conflictErr := &models.ScheduleConflictError{
			Message:   "room is already booked for this time",
			Conflicts: models.NewScheduleConflicts(conflicts),
		}
		err = appErrors.Wrap(conflictErr, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, conflictErr.Message)
		return err
	}

	if err = persist(tx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule entry")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule entry")
	}
	return nil
}

func (s *ScheduleEntryService) detect(ctx context.Context, exec sqlx.ExtContext, candidate scheduling.Entry, excludeID string) ([]scheduling.Conflict, error) {
	if !occupiesRoom(candidate) {
		return nil, nil
	}
	existing, err := s.repo.ListByRoomDay(ctx, exec, candidate.RoomID, int(candidate.DayOfWeek))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room schedule")
	}
	conflicts := scheduling.DetectConflicts(candidate, models.ToEntries(existing), excludeID)
	if len(conflicts) > 0 {
		s.metrics.RecordScheduleConflicts(len(conflicts))
		s.logger.Info("schedule conflict detected",
			zap.String("room_id", candidate.RoomID),
			zap.Int("day_of_week", int(candidate.DayOfWeek)),
			zap.Int("conflicts", len(conflicts)),
		)
	}
	return conflicts, nil
}

func (s *ScheduleEntryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, CalendarCachePattern); err != nil {
		s.logger.Warn("calendar cache invalidation failed", zap.Error(err))
	}
}

// occupiesRoom reports whether a candidate can clash with anything. Inactive
// and virtual sessions never hold a room.
func occupiesRoom(e scheduling.Entry) bool {
	return e.Active && e.Modality == scheduling.ModalityInPerson && e.RoomID != ""
}
