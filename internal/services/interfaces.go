package services

import (
	"context"

	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
)

// ===== BULK QUESTION PIPELINE =====

// BulkSubmitResult reports a successful batch insert.
type BulkSubmitResult struct {
	Inserted int                `json:"inserted"`
	Session  models.BulkSession `json:"session"`
}

// ExportResult carries rendered CSV content and its download filename.
type ExportResult struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
	Count    int    `json:"count"`
}

// BulkQuestionService drives the manual/import/export question
// authoring workflow. Every operation takes the acting user explicitly.
type BulkQuestionService interface {
	CreateSession(ctx context.Context, actor models.Actor) (models.BulkSession, error)
	GetSession(ctx context.Context, actor models.Actor, sessionID string) (models.BulkSession, error)

	StartManual(ctx context.Context, actor models.Actor, sessionID, subject string, count int) (models.BulkSession, error)
	StartImport(ctx context.Context, actor models.Actor, sessionID, subject, fileData string) (models.BulkSession, error)
	StartExport(ctx context.Context, actor models.Actor, sessionID, subject string) (models.BulkSession, error)

	UpdateQuestion(ctx context.Context, actor models.Actor, sessionID string, index int, q models.BulkQuestion) (models.BulkSession, error)
	ToggleSelection(ctx context.Context, actor models.Actor, sessionID string, index int) (models.BulkSession, error)
	SetAllSelections(ctx context.Context, actor models.Actor, sessionID string, selected bool) (models.BulkSession, error)
	Cancel(ctx context.Context, actor models.Actor, sessionID string) (models.BulkSession, error)

	Submit(ctx context.Context, actor models.Actor, sessionID string) (*BulkSubmitResult, error)
	Export(ctx context.Context, actor models.Actor, sessionID string) (*ExportResult, error)
}

// ===== EXAM REVIEW =====

// ReviewItem pairs one exam question with the student's stored answer.
// Answer fields stay nil when the question was skipped.
type ReviewItem struct {
	Question      models.Question `json:"question"`
	Marks         int             `json:"marks"`
	StudentAnswer *string         `json:"student_answer"`
	IsCorrect     *bool           `json:"is_correct"`
	MarksObtained float64         `json:"marks_obtained"`
}

// ExamReview is the assembled per-attempt view: already-graded data
// organized for navigation, never regraded.
type ExamReview struct {
	AttemptID uint   `json:"attempt_id"`
	ExamID    uint   `json:"exam_id"`
	ExamTitle string `json:"exam_title"`
	StudentID string `json:"student_id"`

	Items []ReviewItem `json:"items"`

	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Skipped int `json:"skipped"`

	TotalMarks         float64 `json:"total_marks"`
	TotalMarksObtained float64 `json:"total_marks_obtained"`
	Percentage         float64 `json:"percentage"`
	Passed             bool    `json:"passed"`
}

type ExamReviewService interface {
	BuildReview(ctx context.Context, actor models.Actor, attemptID uint) (*ExamReview, error)
}

// ===== EXAM SUMMARY =====

// ScoreBucket is one non-empty band of the grade distribution.
type ScoreBucket struct {
	Label string  `json:"label"` // e.g. "90-100"
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// QuestionStat aggregates answer outcomes for one exam question.
type QuestionStat struct {
	QuestionID uint   `json:"question_id"`
	Text       string `json:"text"`
	Marks      int    `json:"marks"`
	Correct    int    `json:"correct"`
	Wrong      int    `json:"wrong"`
	Skipped    int    `json:"skipped"`
}

// ViolationStat is one proctoring violation type with its occurrence
// count.
type ViolationStat struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ExamSummary is the class-wide statistics view over one exam.
type ExamSummary struct {
	ExamID         uint   `json:"exam_id"`
	ExamTitle      string `json:"exam_title"`
	Subject        string `json:"subject"`
	TotalAttempts  int    `json:"total_attempts"`
	SubmittedCount int    `json:"submitted_count"`
	PassedCount    int    `json:"passed_count"`

	PassRate     float64 `json:"pass_rate"`
	AvgScore     float64 `json:"avg_score"`
	HighestScore float64 `json:"highest_score"`
	LowestScore  float64 `json:"lowest_score"`

	Distribution []ScoreBucket   `json:"distribution"`
	Questions    []QuestionStat  `json:"questions"`
	Violations   []ViolationStat `json:"violations"`
}

type ExamSummaryService interface {
	BuildSummary(ctx context.Context, actor models.Actor, examID uint) (*ExamSummary, error)

	// ExportSummaryXLSX renders the summary as an Excel workbook and
	// returns its bytes plus a download filename.
	ExportSummaryXLSX(ctx context.Context, actor models.Actor, examID uint) ([]byte, string, error)
}

// ===== GRADE AGGREGATION =====

// GradeSource is one weighted input of the final grade. Value is nil
// when the source is absent for this student.
type GradeSource struct {
	Value  *float64 `json:"value"`
	Weight float64  `json:"weight"`
}

// FinalGrade is the computed result for one student, subject and term.
type FinalGrade struct {
	StudentID string `json:"student_id"`
	Subject   string `json:"subject"`
	Term      string `json:"term"`

	Manual    GradeSource `json:"manual"`
	PaperAvg  GradeSource `json:"paper_avg"`
	OnlineAvg GradeSource `json:"online_avg"`

	Final  int    `json:"final"`
	Letter string `json:"letter"`
}

type GradeService interface {
	ComputeFinalGrade(ctx context.Context, actor models.Actor, studentID, subject, term string) (*FinalGrade, error)
	SaveManualScore(ctx context.Context, actor models.Actor, studentID, subject, term string, score float64) error
}

// ===== QUESTION BANK =====

// QuestionBankOverview summarizes a teacher's bank for one subject.
type QuestionBankOverview struct {
	Subject   string                          `json:"subject"`
	Stats     *repositories.QuestionBankStats `json:"stats"`
	Questions []*models.Question              `json:"questions"`
}

type QuestionService interface {
	GetByID(ctx context.Context, actor models.Actor, id uint) (*models.Question, error)
	List(ctx context.Context, actor models.Actor, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
	GetBankOverview(ctx context.Context, actor models.Actor, subject string) (*QuestionBankOverview, error)
	Delete(ctx context.Context, actor models.Actor, id uint) error
}

// ===== SERVICE MANAGER =====

// ServiceManager provides access to all services.
type ServiceManager interface {
	Initialize(ctx context.Context) error

	BulkQuestion() BulkQuestionService
	ExamReview() ExamReviewService
	ExamSummary() ExamSummaryService
	Grade() GradeService
	Question() QuestionService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
