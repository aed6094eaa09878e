package repositories

import "context"

// Repository aggregates all per-domain repositories behind one handle.
type Repository interface {
	Question() QuestionRepository
	Exam() ExamRepository
	Attempt() AttemptRepository
	Paper() PaperRepository
	Grade() GradeRepository

	// User domain is read-only; backed by the identity provider.
	User() UserRepository

	// WithTransaction runs fn with a Repository bound to one database
	// transaction. fn returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
