package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-scheduler/internal/dto"
	"github.com/noah-isme/classroom-scheduler/internal/models"
	appErrors "github.com/noah-isme/classroom-scheduler/pkg/errors"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type scheduleEntryRepoStub struct {
	byID      map[string]models.ScheduleEntry
	roomDay   []models.ScheduleEntry
	locks     []string
	created   []models.ScheduleEntry
	updated   []models.ScheduleEntry
	deleted   []string
	listCalls int
	createErr error
}

func (s *scheduleEntryRepoStub) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, int, error) {
	out := make([]models.ScheduleEntry, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (s *scheduleEntryRepoStub) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	e, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (s *scheduleEntryRepoStub) ListByRoomDay(ctx context.Context, exec sqlx.ExtContext, roomID string, dayOfWeek int) ([]models.ScheduleEntry, error) {
	s.listCalls++
	var out []models.ScheduleEntry
	for _, e := range s.roomDay {
		if e.RoomID != nil && *e.RoomID == roomID && e.DayOfWeek == dayOfWeek {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *scheduleEntryRepoStub) LockRoomDay(ctx context.Context, exec sqlx.ExtContext, roomID string, dayOfWeek int) error {
	s.locks = append(s.locks, roomID)
	return nil
}

func (s *scheduleEntryRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	if s.createErr != nil {
		return s.createErr
	}
	entry.ID = "new-entry"
	s.created = append(s.created, *entry)
	return nil
}

func (s *scheduleEntryRepoStub) Update(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	s.updated = append(s.updated, *entry)
	return nil
}

func (s *scheduleEntryRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type invalidatorStub struct {
	patterns []string
}

func (s *invalidatorStub) Invalidate(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func strPtr(v string) *string { return &v }

func storedEntry(id, course, room string, day, start, duration int) models.ScheduleEntry {
	return models.ScheduleEntry{
		ID:              id,
		CourseID:        course,
		RoomID:          strPtr(room),
		Modality:        "IN_PERSON",
		DayOfWeek:       day,
		StartMinute:     start,
		DurationMinutes: duration,
		Active:          true,
		CreatedAt:       time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
	}
}

func entryRequest(room string, day int, start string, duration int) dto.ScheduleEntryRequest {
	req := dto.ScheduleEntryRequest{
		CourseID:        "course-new",
		Modality:        "IN_PERSON",
		DayOfWeek:       day,
		StartTime:       start,
		DurationMinutes: duration,
	}
	if room != "" {
		req.RoomID = strPtr(room)
	}
	return req
}

func newEntryServiceFixture(t *testing.T, repo *scheduleEntryRepoStub, lock bool) (*ScheduleEntryService, sqlmock.Sqlmock, *invalidatorStub, *MetricsService) {
	t.Helper()
	tx, mock := newTxProviderMock(t)
	cache := &invalidatorStub{}
	metrics := NewMetricsService()
	svc := NewScheduleEntryService(repo, tx, cache, metrics, nil, nil, ScheduleEntryConfig{LockWrites: lock})
	return svc, mock, cache, metrics
}

func errorCode(err error) string {
	return appErrors.FromError(err).Code
}

func TestScheduleEntryServiceCreate(t *testing.T) {
	repo := &scheduleEntryRepoStub{roomDay: []models.ScheduleEntry{storedEntry("e1", "course-1", "lab-a", 1, 480, 60)}}
	svc, mock, cache, _ := newEntryServiceFixture(t, repo, true)
	mock.ExpectBegin()
	mock.ExpectCommit()

	// 09:00 starts exactly when e1 ends
	entry, err := svc.Create(context.Background(), entryRequest("lab-a", 1, "09:00", 90))
	require.NoError(t, err)
	assert.Equal(t, "new-entry", entry.ID)
	assert.Equal(t, 540, entry.StartMinute)
	assert.True(t, entry.Active)
	assert.Equal(t, []string{"lab-a"}, repo.locks)
	assert.Equal(t, []string{CalendarCachePattern}, cache.patterns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryServiceCreateConflict(t *testing.T) {
	repo := &scheduleEntryRepoStub{roomDay: []models.ScheduleEntry{
		storedEntry("e1", "course-1", "lab-a", 1, 480, 60),
		storedEntry("e2", "course-2", "lab-a", 1, 570, 60),
		storedEntry("e3", "course-3", "lab-b", 1, 500, 60),
	}}
	svc, mock, cache, metrics := newEntryServiceFixture(t, repo, true)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), entryRequest("lab-a", 1, "08:30", 90))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, errorCode(err))

	var conflictErr *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Conflicts, 2)
	assert.Equal(t, "e1", conflictErr.Conflicts[0].EntryID)
	assert.Equal(t, "08:00", conflictErr.Conflicts[0].StartTime)
	assert.Equal(t, "09:00", conflictErr.Conflicts[0].EndTime)
	assert.Equal(t, "e2", conflictErr.Conflicts[1].EntryID)

	assert.Empty(t, repo.created)
	assert.Empty(t, cache.patterns)
	assert.Equal(t, uint64(2), metrics.Snapshot().ScheduleConflicts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryServiceCreateRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		name string
		req  dto.ScheduleEntryRequest
		code string
	}{
		{"zero duration", entryRequest("lab-a", 1, "08:00", 0), appErrors.ErrInvalidScheduleEntry.Code},
		{"crosses midnight", entryRequest("lab-a", 1, "23:00", 120), appErrors.ErrInvalidScheduleEntry.Code},
		{"day out of range", entryRequest("lab-a", 8, "08:00", 60), appErrors.ErrInvalidScheduleEntry.Code},
		{"in person without room", entryRequest("", 1, "08:00", 60), appErrors.ErrInvalidScheduleEntry.Code},
		{"virtual with room", func() dto.ScheduleEntryRequest {
			r := entryRequest("lab-a", 1, "08:00", 60)
			r.Modality = "VIRTUAL"
			return r
		}(), appErrors.ErrInvalidScheduleEntry.Code},
		{"unknown modality", func() dto.ScheduleEntryRequest {
			r := entryRequest("lab-a", 1, "08:00", 60)
			r.Modality = "HYBRID"
			return r
		}(), appErrors.ErrValidation.Code},
		{"bad clock", entryRequest("lab-a", 1, "8am", 60), appErrors.ErrValidation.Code},
		{"missing course", func() dto.ScheduleEntryRequest {
			r := entryRequest("lab-a", 1, "08:00", 60)
			r.CourseID = ""
			return r
		}(), appErrors.ErrValidation.Code},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &scheduleEntryRepoStub{}
			svc, mock, _, _ := newEntryServiceFixture(t, repo, true)

			_, err := svc.Create(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.code, errorCode(err))
			assert.Empty(t, repo.created)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestScheduleEntryServiceCreateVirtualSkipsRoomChecks(t *testing.T) {
	repo := &scheduleEntryRepoStub{}
	svc, mock, _, _ := newEntryServiceFixture(t, repo, true)
	mock.ExpectBegin()
	mock.ExpectCommit()

	req := entryRequest("", 3, "10:00", 45)
	req.Modality = "virtual"
	entry, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "VIRTUAL", entry.Modality)
	assert.Nil(t, entry.RoomID)
	assert.Empty(t, repo.locks)
	assert.Zero(t, repo.listCalls)
}

func TestScheduleEntryServiceCreateWithoutLock(t *testing.T) {
	repo := &scheduleEntryRepoStub{}
	svc, mock, _, _ := newEntryServiceFixture(t, repo, false)
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Create(context.Background(), entryRequest("lab-a", 2, "13:00", 60))
	require.NoError(t, err)
	assert.Empty(t, repo.locks)
	assert.Equal(t, 1, repo.listCalls)
}

func TestScheduleEntryServiceCreatePersistFailureRollsBack(t *testing.T) {
	repo := &scheduleEntryRepoStub{createErr: errors.New("insert failed")}
	svc, mock, cache, _ := newEntryServiceFixture(t, repo, true)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), entryRequest("lab-a", 2, "13:00", 60))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, errorCode(err))
	assert.Empty(t, cache.patterns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryServiceUpdateIgnoresItself(t *testing.T) {
	existing := storedEntry("e1", "course-1", "lab-a", 1, 480, 60)
	repo := &scheduleEntryRepoStub{
		byID:    map[string]models.ScheduleEntry{"e1": existing},
		roomDay: []models.ScheduleEntry{existing},
	}
	svc, mock, cache, _ := newEntryServiceFixture(t, repo, true)
	mock.ExpectBegin()
	mock.ExpectCommit()

	req := entryRequest("lab-a", 1, "08:30", 60)
	req.CourseID = "course-1"
	updated, err := svc.Update(context.Background(), "e1", req)
	require.NoError(t, err)
	assert.Equal(t, "e1", updated.ID)
	assert.Equal(t, 510, updated.StartMinute)
	assert.Equal(t, existing.CreatedAt, updated.CreatedAt)
	require.Len(t, repo.updated, 1)
	assert.Len(t, cache.patterns, 1)
}

func TestScheduleEntryServiceUpdateKeepsActiveFlag(t *testing.T) {
	existing := storedEntry("e1", "course-1", "lab-a", 1, 480, 60)
	existing.Active = false
	repo := &scheduleEntryRepoStub{
		byID:    map[string]models.ScheduleEntry{"e1": existing},
		roomDay: []models.ScheduleEntry{storedEntry("e2", "course-2", "lab-a", 1, 480, 60)},
	}
	svc, mock, _, _ := newEntryServiceFixture(t, repo, true)
	mock.ExpectBegin()
	mock.ExpectCommit()

	// inactive entries hold no room so the clash with e2 is irrelevant
	updated, err := svc.Update(context.Background(), "e1", entryRequest("lab-a", 1, "08:00", 60))
	require.NoError(t, err)
	assert.False(t, updated.Active)
}

func TestScheduleEntryServiceUpdateNotFound(t *testing.T) {
	svc, _, _, _ := newEntryServiceFixture(t, &scheduleEntryRepoStub{}, true)
	_, err := svc.Update(context.Background(), "missing", entryRequest("lab-a", 1, "08:00", 60))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}

func TestScheduleEntryServiceCheckConflicts(t *testing.T) {
	repo := &scheduleEntryRepoStub{roomDay: []models.ScheduleEntry{
		storedEntry("e1", "course-1", "lab-a", 4, 600, 60),
		storedEntry("e2", "course-2", "lab-a", 4, 630, 60),
	}}
	svc, mock, cache, _ := newEntryServiceFixture(t, repo, true)

	conflicts, err := svc.CheckConflicts(context.Background(), dto.CheckConflictsRequest{
		ScheduleEntryRequest: entryRequest("lab-a", 4, "10:15", 30),
		ExcludeID:            "e1",
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "e2", conflicts[0].EntryID)
	assert.Empty(t, repo.locks)
	assert.Empty(t, cache.patterns)
	assert.NoError(t, mock.ExpectationsWereMet())

	free, err := svc.CheckConflicts(context.Background(), dto.CheckConflictsRequest{
		ScheduleEntryRequest: entryRequest("lab-a", 4, "12:00", 30),
	})
	require.NoError(t, err)
	assert.NotNil(t, free)
	assert.Empty(t, free)
}

func TestScheduleEntryServiceDelete(t *testing.T) {
	repo := &scheduleEntryRepoStub{byID: map[string]models.ScheduleEntry{"e1": storedEntry("e1", "course-1", "lab-a", 1, 480, 60)}}
	svc, _, cache, _ := newEntryServiceFixture(t, repo, true)

	require.NoError(t, svc.Delete(context.Background(), "e1"))
	assert.Equal(t, []string{"e1"}, repo.deleted)
	assert.Equal(t, []string{CalendarCachePattern}, cache.patterns)

	err := svc.Delete(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}

func TestScheduleEntryServiceListPagination(t *testing.T) {
	repo := &scheduleEntryRepoStub{byID: map[string]models.ScheduleEntry{"e1": storedEntry("e1", "course-1", "lab-a", 1, 480, 60)}}
	svc, _, _, _ := newEntryServiceFixture(t, repo, true)

	entries, pagination, err := svc.List(context.Background(), models.ScheduleEntryFilter{Page: 0, PageSize: 1000})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, pagination)
}
