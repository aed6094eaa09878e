package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
)

// Minimal hand-written repository mocks. Only the methods the services
// under test touch have real behavior; everything else returns zero
// values.

type mockQuestionRepo struct {
	bank    []*models.Question
	stats   *repositories.QuestionBankStats
	created []*models.Question
	deleted []uint

	bankErr  error
	batchErr error

	lastFilters repositories.QuestionFilters
}

func (m *mockQuestionRepo) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	m.created = append(m.created, q)
	return nil
}

func (m *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	for _, q := range m.bank {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	return nil, nil
}

func (m *mockQuestionRepo) Update(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	return nil
}

func (m *mockQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	m.created = append(m.created, questions...)
	return nil
}

func (m *mockQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	m.lastFilters = filters
	return m.bank, int64(len(m.bank)), nil
}

func (m *mockQuestionRepo) GetBank(ctx context.Context, tx *gorm.DB, actor models.Actor, subject string) ([]*models.Question, error) {
	if m.bankErr != nil {
		return nil, m.bankErr
	}
	var out []*models.Question
	for _, q := range m.bank {
		if q.SchoolID == actor.SchoolID && q.CreatedBy == actor.UserID && q.Subject == subject {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestionRepo) GetBankStats(ctx context.Context, tx *gorm.DB, actor models.Actor, subject string) (*repositories.QuestionBankStats, error) {
	return m.stats, nil
}

type mockExamRepo struct {
	exams map[uint]*models.Exam
	list  []*models.Exam
}

func (m *mockExamRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	return m.GetWithQuestions(ctx, tx, id)
}

func (m *mockExamRepo) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	exam, ok := m.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (m *mockExamRepo) ListBySubject(ctx context.Context, tx *gorm.DB, schoolID, subject, term string) ([]*models.Exam, error) {
	return m.list, nil
}

type mockAttemptRepo struct {
	attempts   map[uint]*models.ExamAttempt
	byExam     []*models.ExamAttempt
	submitted  []*models.ExamAttempt
	answers    []*models.StudentAnswer
	violations []*models.ProctoringLog
}

func (m *mockAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	return m.GetWithAnswers(ctx, tx, id)
}

func (m *mockAttemptRepo) GetWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	attempt, ok := m.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return attempt, nil
}

func (m *mockAttemptRepo) ListByExam(ctx context.Context, tx *gorm.DB, examID uint, filters repositories.AttemptFilters) ([]*models.ExamAttempt, error) {
	return m.byExam, nil
}

func (m *mockAttemptRepo) ListSubmittedByStudent(ctx context.Context, tx *gorm.DB, studentID string, examIDs []uint) ([]*models.ExamAttempt, error) {
	return m.submitted, nil
}

func (m *mockAttemptRepo) ListAnswersByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.StudentAnswer, error) {
	return m.answers, nil
}

func (m *mockAttemptRepo) ListViolationsByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ProctoringLog, error) {
	return m.violations, nil
}

type mockPaperRepo struct {
	results []*models.PaperExamScore
}

func (m *mockPaperRepo) GetStudentResults(ctx context.Context, tx *gorm.DB, studentID, schoolID, subject, term string) ([]*models.PaperExamScore, error) {
	return m.results, nil
}

type mockGradeRepo struct {
	scale       []*models.GradeScaleEntry
	manualScore *models.ManualScore
	savedGrades []*models.StudentGrade
	savedManual []*models.ManualScore
}

func (m *mockGradeRepo) GetScale(ctx context.Context, tx *gorm.DB, schoolID string) ([]*models.GradeScaleEntry, error) {
	return m.scale, nil
}

func (m *mockGradeRepo) GetManualScore(ctx context.Context, tx *gorm.DB, studentID, schoolID, subject, term string) (*models.ManualScore, error) {
	return m.manualScore, nil
}

func (m *mockGradeRepo) SaveManualScore(ctx context.Context, tx *gorm.DB, score *models.ManualScore) error {
	m.savedManual = append(m.savedManual, score)
	return nil
}

func (m *mockGradeRepo) SaveGrade(ctx context.Context, tx *gorm.DB, grade *models.StudentGrade) error {
	m.savedGrades = append(m.savedGrades, grade)
	return nil
}

func (m *mockGradeRepo) GetGrade(ctx context.Context, tx *gorm.DB, studentID, schoolID, subject, term string) (*models.StudentGrade, error) {
	return nil, gorm.ErrRecordNotFound
}

type mockRepository struct {
	question *mockQuestionRepo
	exam     *mockExamRepo
	attempt  *mockAttemptRepo
	paper    *mockPaperRepo
	grade    *mockGradeRepo

	txErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		question: &mockQuestionRepo{},
		exam:     &mockExamRepo{exams: make(map[uint]*models.Exam)},
		attempt:  &mockAttemptRepo{attempts: make(map[uint]*models.ExamAttempt)},
		paper:    &mockPaperRepo{},
		grade:    &mockGradeRepo{},
	}
}

func (m *mockRepository) Question() repositories.QuestionRepository { return m.question }
func (m *mockRepository) Exam() repositories.ExamRepository         { return m.exam }
func (m *mockRepository) Attempt() repositories.AttemptRepository   { return m.attempt }
func (m *mockRepository) Paper() repositories.PaperRepository       { return m.paper }
func (m *mockRepository) Grade() repositories.GradeRepository       { return m.grade }
func (m *mockRepository) User() repositories.UserRepository         { return nil }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }
