package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/events"
	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
	"github.com/examforge/exam-service/internal/validator"
)

// Component weights of the final grade. Absent components drop out of
// both the numerator and the weight sum.
const (
	ManualWeight    = 0.4
	PaperAvgWeight  = 0.3
	OnlineAvgWeight = 0.3
)

type gradeService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewGradeService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) GradeService {
	return &gradeService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *gradeService) ComputeFinalGrade(ctx context.Context, actor models.Actor, studentID, subject, term string) (*FinalGrade, error) {
	req := validator.ComputeGradeRequest{StudentID: studentID, Subject: subject, Term: term}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, NewValidationError(errs[0].Field, errs[0].Message, errs[0].Value)
	}

	manual, err := s.manualComponent(ctx, studentID, actor.SchoolID, subject, term)
	if err != nil {
		return nil, err
	}

	paperAvg, err := s.paperComponent(ctx, studentID, actor.SchoolID, subject, term)
	if err != nil {
		return nil, err
	}

	onlineAvg, err := s.onlineComponent(ctx, studentID, actor.SchoolID, subject, term)
	if err != nil {
		return nil, err
	}

	final := ComputeWeighted(manual, paperAvg, onlineAvg)

	scale, err := s.repo.Grade().GetScale(ctx, nil, actor.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grade scale: %w", err)
	}
	letter := LetterFor(final, scale)

	grade := &models.StudentGrade{
		StudentID:   studentID,
		SchoolID:    actor.SchoolID,
		Subject:     subject,
		Term:        term,
		FinalScore:  final,
		LetterGrade: letter,
		ComputedBy:  actor.UserID,
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Grade().SaveGrade(ctx, nil, grade); err != nil {
		return nil, fmt.Errorf("failed to save grade: %w", err)
	}

	event := events.NewEvent(events.TypeGradeComputed, events.GradeComputedEvent{
		SchoolID:   actor.SchoolID,
		StudentID:  studentID,
		Subject:    subject,
		Term:       term,
		FinalScore: final,
		Letter:     letter,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish grade event", "student_id", studentID, "error", err)
	}

	s.logger.Info("Computed final grade",
		"student_id", studentID,
		"subject", subject,
		"term", term,
		"final", final,
		"letter", letter)

	return &FinalGrade{
		StudentID: studentID,
		Subject:   subject,
		Term:      term,
		Manual:    GradeSource{Value: manual, Weight: ManualWeight},
		PaperAvg:  GradeSource{Value: paperAvg, Weight: PaperAvgWeight},
		OnlineAvg: GradeSource{Value: onlineAvg, Weight: OnlineAvgWeight},
		Final:     final,
		Letter:    letter,
	}, nil
}

func (s *gradeService) SaveManualScore(ctx context.Context, actor models.Actor, studentID, subject, term string, score float64) error {
	req := validator.ManualScoreRequest{StudentID: studentID, Subject: subject, Term: term, Score: score}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return NewValidationError(errs[0].Field, errs[0].Message, errs[0].Value)
	}

	entry := &models.ManualScore{
		StudentID: studentID,
		SchoolID:  actor.SchoolID,
		Subject:   subject,
		Term:      term,
		Score:     score,
		EnteredBy: actor.UserID,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Grade().SaveManualScore(ctx, nil, entry); err != nil {
		return fmt.Errorf("failed to save manual score: %w", err)
	}

	s.logger.Info("Saved manual score", "student_id", studentID, "subject", subject, "score", score)
	return nil
}

func (s *gradeService) manualComponent(ctx context.Context, studentID, schoolID, subject, term string) (*float64, error) {
	score, err := s.repo.Grade().GetManualScore(ctx, nil, studentID, schoolID, subject, term)
	if err != nil {
		return nil, fmt.Errorf("failed to load manual score: %w", err)
	}
	if score == nil {
		return nil, nil
	}
	return &score.Score, nil
}

func (s *gradeService) paperComponent(ctx context.Context, studentID, schoolID, subject, term string) (*float64, error) {
	results, err := s.repo.Paper().GetStudentResults(ctx, nil, studentID, schoolID, subject, term)
	if err != nil {
		return nil, fmt.Errorf("failed to load paper results: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	var sum float64
	for _, r := range results {
		if r.TotalMarks > 0 {
			sum += r.MarksObtained / r.TotalMarks * 100
		}
	}
	avg := sum / float64(len(results))
	return &avg, nil
}

func (s *gradeService) onlineComponent(ctx context.Context, studentID, schoolID, subject, term string) (*float64, error) {
	exams, err := s.repo.Exam().ListBySubject(ctx, nil, schoolID, subject, term)
	if err != nil {
		return nil, fmt.Errorf("failed to load exams: %w", err)
	}
	if len(exams) == 0 {
		return nil, nil
	}

	examIDs := make([]uint, 0, len(exams))
	for _, exam := range exams {
		examIDs = append(examIDs, exam.ID)
	}

	attempts, err := s.repo.Attempt().ListSubmittedByStudent(ctx, nil, studentID, examIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	if len(attempts) == 0 {
		return nil, nil
	}

	var sum float64
	for _, attempt := range attempts {
		if attempt.Exam.TotalMarks > 0 {
			sum += attempt.TotalMarksObtained / attempt.Exam.TotalMarks * 100
		}
	}
	avg := sum / float64(len(attempts))
	return &avg, nil
}

// ComputeWeighted combines the three score components. Nil components
// are absent and drop out of both the weighted sum and the divisor, so
// a student graded only on manual work still lands on a 0..100 scale.
// Returns 0 when every component is absent.
func ComputeWeighted(manual, paperAvg, onlineAvg *float64) int {
	var weightedSum, weightSum float64

	add := func(value *float64, weight float64) {
		if value == nil {
			return
		}
		weightedSum += *value * weight
		weightSum += weight
	}

	add(manual, ManualWeight)
	add(paperAvg, PaperAvgWeight)
	add(onlineAvg, OnlineAvgWeight)

	if weightSum == 0 {
		return 0
	}
	return int(math.Round(weightedSum / weightSum))
}

// LetterFor maps a final score to a letter. A custom scale wins when
// any entry contains the score; the repository returns entries ordered
// by min_score descending so the tightest band matches first. With no
// matching scale entry the fixed A/B/C/D/F thresholds apply.
func LetterFor(final int, scale []*models.GradeScaleEntry) string {
	score := float64(final)
	for _, entry := range scale {
		if score >= entry.MinScore && score <= entry.MaxScore {
			return entry.Letter
		}
	}

	switch {
	case final >= 90:
		return "A"
	case final >= 80:
		return "B"
	case final >= 70:
		return "C"
	case final >= 60:
		return "D"
	default:
		return "F"
	}
}
