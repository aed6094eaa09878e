package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/models"
)

type ExamRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)

	// GetWithQuestions preloads exam questions in stored order along
	// with their bank records.
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)

	// ListBySubject returns online exams scoped to a school, subject
	// and term. Term may be empty to match all terms.
	ListBySubject(ctx context.Context, tx *gorm.DB, schoolID, subject, term string) ([]*models.Exam, error)
}

type AttemptRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error)

	// GetWithAnswers preloads the attempt's answers and its exam.
	GetWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error)

	// ListByExam returns all attempts of one exam.
	ListByExam(ctx context.Context, tx *gorm.DB, examID uint, filters AttemptFilters) ([]*models.ExamAttempt, error)

	// ListSubmittedByStudent returns a student's submitted attempts
	// across the given exams, exam preloaded for totals.
	ListSubmittedByStudent(ctx context.Context, tx *gorm.DB, studentID string, examIDs []uint) ([]*models.ExamAttempt, error)

	// ListAnswersByExam returns every stored answer across all
	// attempts of one exam.
	ListAnswersByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.StudentAnswer, error)

	// ListViolationsByExam returns proctoring logs across all attempts
	// of one exam.
	ListViolationsByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ProctoringLog, error)
}

type PaperRepository interface {
	// GetStudentResults returns one student's paper-exam results for a
	// school, subject and term.
	GetStudentResults(ctx context.Context, tx *gorm.DB, studentID, schoolID, subject, term string) ([]*models.PaperExamScore, error)
}

type GradeRepository interface {
	// GetScale returns the school's custom letter-grade scale ordered
	// by min_score descending. Empty means the fixed fallback applies.
	GetScale(ctx context.Context, tx *gorm.DB, schoolID string) ([]*models.GradeScaleEntry, error)

	GetManualScore(ctx context.Context, tx *gorm.DB, studentID, schoolID, subject, term string) (*models.ManualScore, error)
	SaveManualScore(ctx context.Context, tx *gorm.DB, score *models.ManualScore) error

	// SaveGrade upserts the computed grade for one
	// (student, school, subject, term).
	SaveGrade(ctx context.Context, tx *gorm.DB, grade *models.StudentGrade) error
	GetGrade(ctx context.Context, tx *gorm.DB, studentID, schoolID, subject, term string) (*models.StudentGrade, error)
}
