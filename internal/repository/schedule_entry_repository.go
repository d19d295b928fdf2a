package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classroom-scheduler/internal/models"
)

const scheduleEntryColumns = "id, course_id, room_id, modality, day_of_week, start_minute, duration_minutes, active, created_at, updated_at"

// ScheduleEntryRepository provides persistence for schedule entries.
type ScheduleEntryRepository struct {
	db *sqlx.DB
}

// NewScheduleEntryRepository creates a new schedule entry repository.
func NewScheduleEntryRepository(db *sqlx.DB) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{db: db}
}

func (r *ScheduleEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns schedule entries with optional filtering and pagination.
func (r *ScheduleEntryRepository) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, int, error) {
	base := "FROM schedule_entries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.DayOfWeek > 0 {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}
	if filter.Modality != "" {
		conditions = append(conditions, fmt.Sprintf("modality = $%d", len(args)+1))
		args = append(args, filter.Modality)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"day_of_week":      "day_of_week, start_minute",
		"start_minute":     "start_minute",
		"duration_minutes": "duration_minutes",
		"created_at":       "created_at",
	}
	sortBy, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortBy = allowedSorts["day_of_week"]
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", scheduleEntryColumns, base, sortBy, order, size, offset)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule entries: %w", err)
	}

	return entries, total, nil
}

// FindByID loads a schedule entry by id. sql.ErrNoRows is returned untouched.
func (r *ScheduleEntryRepository) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE id = $1", scheduleEntryColumns)
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByRoomDay returns the active in-person entries of a room on a day,
// ordered by start. It runs on exec so it can share the caller's transaction.
func (r *ScheduleEntryRepository) ListByRoomDay(ctx context.Context, exec sqlx.ExtContext, roomID string, dayOfWeek int) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE room_id = $1 AND day_of_week = $2 AND active = TRUE AND modality = 'IN_PERSON' ORDER BY start_minute ASC", scheduleEntryColumns)
	var entries []models.ScheduleEntry
	if err := sqlx.SelectContext(ctx, r.exec(exec), &entries, query, roomID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list schedule entries by room/day: %w", err)
	}
	return entries, nil
}

// ListActiveByRooms returns active entries of the given rooms, restricted to
// days when any are supplied.
func (r *ScheduleEntryRepository) ListActiveByRooms(ctx context.Context, roomIDs []string, days []int) ([]models.ScheduleEntry, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE room_id IN (?) AND active = TRUE", scheduleEntryColumns)
	args := []interface{}{roomIDs}
	if len(days) > 0 {
		query += " AND day_of_week IN (?)"
		args = append(args, days)
	}
	query += " ORDER BY day_of_week ASC, start_minute ASC"

	bound, boundArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("bind schedule entries by rooms: %w", err)
	}
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(bound), boundArgs...); err != nil {
		return nil, fmt.Errorf("list schedule entries by rooms: %w", err)
	}
	return entries, nil
}

// LockRoomDay takes a transaction-scoped advisory lock for a room/day pair so
// concurrent writers serialise their read-check-write sequence. exec must be
// a transaction; the lock is released on commit or rollback.
func (r *ScheduleEntryRepository) LockRoomDay(ctx context.Context, exec sqlx.ExtContext, roomID string, dayOfWeek int) error {
	key := fmt.Sprintf("schedule_entries:%s:%d", roomID, dayOfWeek)
	if _, err := r.exec(exec).ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("lock room %s day %d: %w", roomID, dayOfWeek, err)
	}
	return nil
}

// Create stores a new schedule entry.
func (r *ScheduleEntryRepository) Create(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO schedule_entries (id, course_id, room_id, modality, day_of_week, start_minute, duration_minutes, active, created_at, updated_at) VALUES (:id, :course_id, :room_id, :modality, :day_of_week, :start_minute, :duration_minutes, :active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}
	return nil
}

// Update modifies a schedule entry.
func (r *ScheduleEntryRepository) Update(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_entries SET course_id = :course_id, room_id = :room_id, modality = :modality, day_of_week = :day_of_week, start_minute = :start_minute, duration_minutes = :duration_minutes, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}
	return nil
}

// Delete removes a schedule entry by id.
func (r *ScheduleEntryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return nil
}
