package gradescale

import "context"

// Store is the durable home of grading scale records.
type Store interface {
	// PutScale inserts or updates rec, assigning an id to new records.
	// Stored course scales cannot be overwritten.
	PutScale(ctx context.Context, rec GradeScale) (GradeScale, error)
	GetScale(ctx context.Context, id string) (GradeScale, error)
	// ListScales returns the scales of a course, oldest first. An empty
	// courseID lists everything.
	ListScales(ctx context.Context, courseID string) ([]GradeScale, error)

	SetCourseUseWeights(ctx context.Context, courseID string, useWeights bool) error
	// CourseUsesWeights defaults to true for courses without a setting.
	CourseUsesWeights(ctx context.Context, courseID string) (bool, error)
}
