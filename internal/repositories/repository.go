package repositories

import "context"

// Repository groups every repository and the transaction boundary
type Repository interface {
	// Assessment domain
	Assessment() AssessmentRepository
	Question() QuestionRepository
	Session() SessionRepository
	Response() ResponseRepository

	// Course domain
	Course() CourseRepository
	Category() CategoryRepository
	Progress() ProgressRepository

	// WithTransaction runs fn against repositories bound to a single transaction
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
