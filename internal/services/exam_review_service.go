package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
	"github.com/examforge/exam-service/internal/validator"
)

type examReviewService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExamReviewService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ExamReviewService {
	return &examReviewService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// BuildReview organizes one attempt's already-graded answers into the
// per-question review view. It never regrades; is_correct is trusted
// exactly as the grading pass persisted it.
func (s *examReviewService) BuildReview(ctx context.Context, actor models.Actor, attemptID uint) (*ExamReview, error) {
	attempt, err := s.repo.Attempt().GetWithAnswers(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrAttemptNotFound, attemptID)
	}

	// Tenant isolation: attempts outside the actor's school read as
	// missing.
	if attempt.SchoolID != actor.SchoolID {
		return nil, fmt.Errorf("%w: %d", ErrAttemptNotFound, attemptID)
	}

	exam, err := s.repo.Exam().GetWithQuestions(ctx, nil, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrExamNotFound, attempt.ExamID)
	}

	review := AssembleReview(attempt, exam)

	s.logger.Info("Built exam review",
		"attempt_id", attemptID,
		"exam_id", exam.ID,
		"correct", review.Correct,
		"wrong", review.Wrong,
		"skipped", review.Skipped)

	return review, nil
}

// AssembleReview joins an attempt's answers to the exam's ordered
// questions. Answers for questions no longer on the exam are dropped;
// questions without a stored answer count as skipped.
func AssembleReview(attempt *models.ExamAttempt, exam *models.Exam) *ExamReview {
	answersByQuestion := make(map[uint]*models.StudentAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		ans := &attempt.Answers[i]
		answersByQuestion[ans.QuestionID] = ans
	}

	review := &ExamReview{
		AttemptID:          attempt.ID,
		ExamID:             exam.ID,
		ExamTitle:          exam.Title,
		StudentID:          attempt.StudentID,
		TotalMarks:         exam.TotalMarks,
		TotalMarksObtained: attempt.TotalMarksObtained,
	}

	for _, eq := range exam.Questions {
		item := ReviewItem{
			Question: eq.Question,
			Marks:    eq.Question.Marks,
		}

		if ans, ok := answersByQuestion[eq.QuestionID]; ok {
			item.StudentAnswer = ans.Answer
			item.IsCorrect = ans.IsCorrect
			item.MarksObtained = ans.MarksObtained
		}

		switch {
		case item.IsCorrect != nil && *item.IsCorrect:
			review.Correct++
		case item.IsCorrect != nil && !*item.IsCorrect:
			review.Wrong++
		}
		if item.StudentAnswer == nil {
			review.Skipped++
		}

		review.Items = append(review.Items, item)
	}

	if exam.TotalMarks > 0 {
		review.Percentage = attempt.TotalMarksObtained / exam.TotalMarks * 100
	}

	passingMarks := exam.TotalMarks * 0.5
	if exam.PassingMarks != nil {
		passingMarks = *exam.PassingMarks
	}
	review.Passed = attempt.TotalMarksObtained >= passingMarks

	return review
}

// ClampIndex bounds review navigation to [0, n-1] with no wraparound.
func ClampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
