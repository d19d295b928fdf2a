package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classroom-scheduler/internal/models"
)

// EnrollmentRepository reads course enrollment counts.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// CountActiveByCourse returns the number of active enrollments of a course.
func (r *EnrollmentRepository) CountActiveByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, courseID, models.EnrollmentStatusActive); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return total, nil
}

// CountActiveByCourses returns active enrollment counts keyed by course id.
// Courses without enrollments are absent from the map.
func (r *EnrollmentRepository) CountActiveByCourses(ctx context.Context, courseIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}
	query, args, err := sqlx.In(`SELECT course_id, COUNT(*) AS enrolled FROM enrollments WHERE course_id IN (?) AND status = ? GROUP BY course_id`, courseIDs, models.EnrollmentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("bind enrollment counts: %w", err)
	}
	var rows []models.CourseEnrollmentCount
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("count enrollments by course: %w", err)
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Enrolled
	}
	return counts, nil
}
