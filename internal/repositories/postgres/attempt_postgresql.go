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

type AttemptPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAttemptPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	db := a.getDB(tx)
	var attempt models.ExamAttempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt not found with ID %d", id)
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	db := a.getDB(tx)
	var attempt models.ExamAttempt
	if err := db.WithContext(ctx).
		Preload("Exam").
		Preload("Answers").
		First(&attempt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt not found with ID %d", id)
		}
		return nil, fmt.Errorf("failed to get attempt with answers: %w", err)
	}

	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByExam(ctx context.Context, tx *gorm.DB, examID uint, filters repositories.AttemptFilters) ([]*models.ExamAttempt, error) {
	db := a.getDB(tx)

	query := db.WithContext(ctx).Where("exam_id = ?", examID)
	query = a.helpers.ApplyAttemptFilters(query, filters)

	var attempts []*models.ExamAttempt
	if err := query.Order("created_at DESC").Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	return attempts, nil
}

func (a *AttemptPostgreSQL) ListSubmittedByStudent(ctx context.Context, tx *gorm.DB, studentID string, examIDs []uint) ([]*models.ExamAttempt, error) {
	if len(examIDs) == 0 {
		return nil, nil
	}

	db := a.getDB(tx)
	var attempts []*models.ExamAttempt
	if err := db.WithContext(ctx).
		Preload("Exam").
		Where("student_id = ? AND exam_id IN ? AND status = ?", studentID, examIDs, models.AttemptSubmitted).
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list submitted attempts: %w", err)
	}

	return attempts, nil
}

// ListAnswersByExam feeds summary aggregation, so results go through
// the short-lived summary cache rather than the per-row caches.
func (a *AttemptPostgreSQL) ListAnswersByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.StudentAnswer, error) {
	db := a.getDB(tx)

	cacheKey := fmt.Sprintf("answers:exam:%d", examID)
	var answers []*models.StudentAnswer
	err := a.cacheManager.Summary.CacheOrExecute(ctx, cacheKey, &answers, cache.SummaryCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.StudentAnswer
		if err := db.WithContext(ctx).
			Joins("JOIN exam_attempts ON exam_attempts.id = student_answers.attempt_id").
			Where("exam_attempts.exam_id = ?", examID).
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to list answers for exam: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	return answers, nil
}

func (a *AttemptPostgreSQL) ListViolationsByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ProctoringLog, error) {
	db := a.getDB(tx)

	cacheKey := fmt.Sprintf("violations:exam:%d", examID)
	var logs []*models.ProctoringLog
	err := a.cacheManager.Summary.CacheOrExecute(ctx, cacheKey, &logs, cache.SummaryCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.ProctoringLog
		if err := db.WithContext(ctx).
			Joins("JOIN exam_attempts ON exam_attempts.id = proctoring_logs.attempt_id").
			Where("exam_attempts.exam_id = ?", examID).
			Order("proctoring_logs.occurred_at ASC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to list proctoring logs: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	return logs, nil
}
