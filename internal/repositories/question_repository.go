package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/models"
)

// QuestionRepository covers the tenant-scoped question bank. The tx
// parameter is nil outside transactions; inside WithTransaction it
// carries the transaction handle.
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)

	// GetBank returns the actor's questions for one subject,
	// newest-first.
	GetBank(ctx context.Context, tx *gorm.DB, actor models.Actor, subject string) ([]*models.Question, error)

	// Statistics
	GetBankStats(ctx context.Context, tx *gorm.DB, actor models.Actor, subject string) (*QuestionBankStats, error)
}
