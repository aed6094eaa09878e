package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/cache"
	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// ===== BASIC CRUD OPERATIONS =====

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	cache.InvalidateQuestionBank(ctx, q.cacheManager, question.SchoolID, question.CreatedBy, question.Subject)

	return nil
}

// GetByID retrieves a question by ID with caching.
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var question models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &question, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestion models.Question
		if err := db.WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("question not found with ID %d", id)
			}
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		return &dbQuestion, nil
	})

	if err != nil {
		return nil, err
	}

	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by IDs: %w", err)
	}

	return questions, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	cache.SafeDelete(ctx, q.cacheManager.Question, fmt.Sprintf("id:%d", question.ID))
	cache.InvalidateQuestionBank(ctx, q.cacheManager, question.SchoolID, question.CreatedBy, question.Subject)

	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)

	question, err := q.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	cache.SafeDelete(ctx, q.cacheManager.Question, fmt.Sprintf("id:%d", id))
	cache.InvalidateQuestionBank(ctx, q.cacheManager, question.SchoolID, question.CreatedBy, question.Subject)

	return nil
}

// ===== BULK OPERATIONS =====

// CreateBatch inserts questions in one transaction-backed batch write.
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	db := q.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions batch: %w", err)
	}

	first := questions[0]
	cache.InvalidateQuestionBank(ctx, q.cacheManager, first.SchoolID, first.CreatedBy, first.Subject)

	return nil
}

// ===== QUERY OPERATIONS =====

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)

	query := db.WithContext(ctx).Model(&models.Question{})
	query = q.helpers.ApplyQuestionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var questions []*models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// GetBank returns the actor's question bank for one subject,
// newest-first, with caching.
func (q *QuestionPostgreSQL) GetBank(ctx context.Context, tx *gorm.DB, actor models.Actor, subject string) ([]*models.Question, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("bank:%s:%s:%s", actor.SchoolID, actor.UserID, subject)
	var questions []*models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.Question
		if err := db.WithContext(ctx).
			Where("school_id = ? AND created_by = ? AND subject = ?", actor.SchoolID, actor.UserID, subject).
			Order("created_at DESC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get question bank: %w", err)
		}
		return rows, nil
	})

	if err != nil {
		return nil, err
	}

	return questions, nil
}

// ===== STATISTICS =====

func (q *QuestionPostgreSQL) GetBankStats(ctx context.Context, tx *gorm.DB, actor models.Actor, subject string) (*repositories.QuestionBankStats, error) {
	db := q.getDB(tx)
	scoped := func() *gorm.DB {
		return db.WithContext(ctx).Model(&models.Question{}).
			Where("school_id = ? AND created_by = ? AND subject = ?", actor.SchoolID, actor.UserID, subject)
	}

	stats := &repositories.QuestionBankStats{
		ByType:       make(map[string]int64),
		ByDifficulty: make(map[string]int64),
	}

	if err := scoped().Count(&stats.TotalQuestions).Error; err != nil {
		return nil, fmt.Errorf("failed to count bank questions: %w", err)
	}

	type groupCount struct {
		Key   string
		Count int64
	}

	var byType []groupCount
	if err := scoped().Select("type as key, count(*) as count").Group("type").Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("failed to group bank by type: %w", err)
	}
	for _, g := range byType {
		stats.ByType[g.Key] = g.Count
	}

	var byDifficulty []groupCount
	if err := scoped().Select("difficulty as key, count(*) as count").Group("difficulty").Scan(&byDifficulty).Error; err != nil {
		return nil, fmt.Errorf("failed to group bank by difficulty: %w", err)
	}
	for _, g := range byDifficulty {
		stats.ByDifficulty[g.Key] = g.Count
	}

	return stats, nil
}
