package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/events"
	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
)

type examSummaryService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	publisher events.EventPublisher
}

func NewExamSummaryService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, publisher events.EventPublisher) ExamSummaryService {
	return &examSummaryService{
		repo:      repo,
		db:        db,
		logger:    logger,
		publisher: publisher,
	}
}

func (s *examSummaryService) BuildSummary(ctx context.Context, actor models.Actor, examID uint) (*ExamSummary, error) {
	exam, err := s.repo.Exam().GetWithQuestions(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrExamNotFound, examID)
	}
	if exam.SchoolID != actor.SchoolID {
		return nil, fmt.Errorf("%w: %d", ErrExamNotFound, examID)
	}

	attempts, err := s.repo.Attempt().ListByExam(ctx, nil, examID, repositories.AttemptFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}

	answers, err := s.repo.Attempt().ListAnswersByExam(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	violations, err := s.repo.Attempt().ListViolationsByExam(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load proctoring logs: %w", err)
	}

	summary := AggregateSummary(exam, attempts, answers, violations)

	s.logger.Info("Built exam summary",
		"exam_id", examID,
		"attempts", summary.TotalAttempts,
		"submitted", summary.SubmittedCount,
		"pass_rate", summary.PassRate)

	return summary, nil
}

// AggregateSummary computes the class-wide statistics for one exam.
// It tolerates inconsistent rows: missing question records render as
// "Unknown" and per-question skipped counts never go negative.
func AggregateSummary(exam *models.Exam, attempts []*models.ExamAttempt, answers []*models.StudentAnswer, violations []*models.ProctoringLog) *ExamSummary {
	summary := &ExamSummary{
		ExamID:        exam.ID,
		ExamTitle:     exam.Title,
		Subject:       exam.Subject,
		TotalAttempts: len(attempts),
	}

	passingMarks := exam.TotalMarks * 0.5
	if exam.PassingMarks != nil {
		passingMarks = *exam.PassingMarks
	}

	var sumAllMarks float64
	var lowestSubmitted float64
	haveSubmitted := false

	for _, attempt := range attempts {
		sumAllMarks += attempt.TotalMarksObtained

		if attempt.TotalMarksObtained > summary.HighestScore {
			summary.HighestScore = attempt.TotalMarksObtained
		}

		if attempt.Status == models.AttemptSubmitted {
			summary.SubmittedCount++
			if attempt.TotalMarksObtained >= passingMarks {
				summary.PassedCount++
			}
			if !haveSubmitted || attempt.TotalMarksObtained < lowestSubmitted {
				lowestSubmitted = attempt.TotalMarksObtained
				haveSubmitted = true
			}
		}
	}

	if haveSubmitted {
		summary.LowestScore = lowestSubmitted
	}

	if summary.SubmittedCount > 0 {
		summary.PassRate = float64(summary.PassedCount) / float64(summary.SubmittedCount) * 100
		// Deliberately sums over every attempt while dividing by the
		// submitted count; non-submitted attempts carry zero marks.
		summary.AvgScore = sumAllMarks / float64(summary.SubmittedCount)
	}

	summary.Distribution = bucketScores(exam.TotalMarks, attempts)
	summary.Questions = aggregateQuestionStats(exam, answers, len(attempts))
	summary.Violations = tallyViolations(violations)

	return summary
}

// scoreBands are the five fixed percentage bands, highest first. The
// top band includes 100; every other band is half-open.
var scoreBands = []struct {
	label string
	min   float64
	max   float64
}{
	{"90-100", 90, 100},
	{"80-89", 80, 90},
	{"70-79", 70, 80},
	{"60-69", 60, 70},
	{"0-59", 0, 60},
}

func bucketScores(totalMarks float64, attempts []*models.ExamAttempt) []ScoreBucket {
	counts := make([]int, len(scoreBands))

	for _, attempt := range attempts {
		var pct float64
		if totalMarks > 0 {
			pct = attempt.TotalMarksObtained / totalMarks * 100
		}
		for i, band := range scoreBands {
			if pct >= band.min {
				counts[i]++
				break
			}
		}
	}

	// Empty bands are omitted, not zero-filled.
	var buckets []ScoreBucket
	for i, band := range scoreBands {
		if counts[i] == 0 {
			continue
		}
		buckets = append(buckets, ScoreBucket{
			Label: band.label,
			Min:   band.min,
			Max:   band.max,
			Count: counts[i],
		})
	}

	return buckets
}

func aggregateQuestionStats(exam *models.Exam, answers []*models.StudentAnswer, totalAttempts int) []QuestionStat {
	type outcome struct {
		correct int
		wrong   int
	}
	outcomes := make(map[uint]outcome, len(exam.Questions))
	for _, ans := range answers {
		o := outcomes[ans.QuestionID]
		if ans.IsCorrect != nil {
			if *ans.IsCorrect {
				o.correct++
			} else {
				o.wrong++
			}
		}
		outcomes[ans.QuestionID] = o
	}

	var stats []QuestionStat
	for _, eq := range exam.Questions {
		stat := QuestionStat{
			QuestionID: eq.QuestionID,
			Text:       eq.Question.Text,
			Marks:      eq.Question.Marks,
		}
		if eq.Question.ID == 0 {
			// Bank row deleted since the exam was assembled.
			stat.Text = "Unknown"
			stat.Marks = 0
		}

		o := outcomes[eq.QuestionID]
		stat.Correct = o.correct
		stat.Wrong = o.wrong

		skipped := totalAttempts - o.correct - o.wrong
		if skipped < 0 {
			skipped = 0
		}
		stat.Skipped = skipped

		stats = append(stats, stat)
	}

	return stats
}

func tallyViolations(violations []*models.ProctoringLog) []ViolationStat {
	counts := make(map[string]int)
	for _, v := range violations {
		vType := v.Type
		if vType == "" {
			vType = "Unknown"
		}
		counts[vType]++
	}

	stats := make([]ViolationStat, 0, len(counts))
	for vType, count := range counts {
		stats = append(stats, ViolationStat{Type: vType, Count: count})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Type < stats[j].Type
	})

	return stats
}
