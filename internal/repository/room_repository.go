package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classroom-scheduler/internal/models"
)

const roomColumns = "id, branch_id, name, capacity, created_at, updated_at"

// RoomRepository reads classrooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// FindByID returns a room by id. sql.ErrNoRows is returned untouched.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE id = $1", roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByIDs returns the rooms matching ids. Unknown ids are ignored.
func (r *RoomRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM rooms WHERE id IN (?) ORDER BY name ASC", roomColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("bind rooms: %w", err)
	}
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
