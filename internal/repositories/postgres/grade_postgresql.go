package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/examforge/exam-service/internal/cache"
	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
)

type PaperPostgreSQL struct {
	db *gorm.DB
}

func NewPaperPostgreSQL(db *gorm.DB) repositories.PaperRepository {
	return &PaperPostgreSQL{db: db}
}

func (p *PaperPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *PaperPostgreSQL) GetStudentResults(ctx context.Context, tx *gorm.DB, studentID, schoolID, subject, term string) ([]*models.PaperExamScore, error) {
	db := p.getDB(tx)

	query := db.WithContext(ctx).
		Joins("JOIN paper_exams ON paper_exams.id = paper_exam_scores.paper_exam_id").
		Where("paper_exam_scores.student_id = ?", studentID).
		Where("paper_exams.school_id = ? AND paper_exams.subject = ?", schoolID, subject)
	if term != "" {
		query = query.Where("paper_exams.term = ?", term)
	}

	var scores []*models.PaperExamScore
	if err := query.Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to get paper exam results: %w", err)
	}

	return scores, nil
}

type GradePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewGradePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.GradeRepository {
	return &GradePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (g *GradePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return g.db
}

// GetScale returns the school's custom scale, highest band first.
func (g *GradePostgreSQL) GetScale(ctx context.Context, tx *gorm.DB, schoolID string) ([]*models.GradeScaleEntry, error) {
	db := g.getDB(tx)
	cacheKey := fmt.Sprintf("scale:%s", schoolID)
	var entries []*models.GradeScaleEntry

	err := g.cacheManager.Grade.CacheOrExecute(ctx, cacheKey, &entries, cache.GradeCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.GradeScaleEntry
		if err := db.WithContext(ctx).
			Where("school_id = ?", schoolID).
			Order("min_score DESC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get grade scale: %w", err)
		}
		return rows, nil
	})

	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (g *GradePostgreSQL) GetManualScore(ctx context.Context, tx *gorm.DB, studentID, schoolID, subject, term string) (*models.ManualScore, error) {
	db := g.getDB(tx)
	var score models.ManualScore
	err := db.WithContext(ctx).
		Where("student_id = ? AND school_id = ? AND subject = ? AND term = ?", studentID, schoolID, subject, term).
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get manual score: %w", err)
	}

	return &score, nil
}

func (g *GradePostgreSQL) SaveManualScore(ctx context.Context, tx *gorm.DB, score *models.ManualScore) error {
	db := g.getDB(tx)
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "school_id"}, {Name: "subject"}, {Name: "term"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "entered_by", "updated_at"}),
		}).
		Create(score).Error
	if err != nil {
		return fmt.Errorf("failed to save manual score: %w", err)
	}

	cache.InvalidateGrade(ctx, g.cacheManager, score.SchoolID, score.StudentID, score.Subject, score.Term)

	return nil
}

func (g *GradePostgreSQL) SaveGrade(ctx context.Context, tx *gorm.DB, grade *models.StudentGrade) error {
	db := g.getDB(tx)
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "school_id"}, {Name: "subject"}, {Name: "term"}},
			DoUpdates: clause.AssignmentColumns([]string{"final_score", "letter_grade", "computed_by", "updated_at"}),
		}).
		Create(grade).Error
	if err != nil {
		return fmt.Errorf("failed to save grade: %w", err)
	}

	cache.InvalidateGrade(ctx, g.cacheManager, grade.SchoolID, grade.StudentID, grade.Subject, grade.Term)

	return nil
}

func (g *GradePostgreSQL) GetGrade(ctx context.Context, tx *gorm.DB, studentID, schoolID, subject, term string) (*models.StudentGrade, error) {
	db := g.getDB(tx)
	var grade models.StudentGrade
	err := db.WithContext(ctx).
		Where("student_id = ? AND school_id = ? AND subject = ? AND term = ?", studentID, schoolID, subject, term).
		First(&grade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get grade: %w", err)
	}

	return &grade, nil
}
