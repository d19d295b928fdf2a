package models

// EnrollmentStatus represents the lifecycle of a course enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
)

// CourseEnrollmentCount is the number of active enrollments of a course.
type CourseEnrollmentCount struct {
	CourseID string `db:"course_id" json:"course_id"`
	Enrolled int    `db:"enrolled" json:"enrolled"`
}
