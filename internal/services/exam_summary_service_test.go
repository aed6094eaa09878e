package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/examforge/exam-service/internal/events"
	"github.com/examforge/exam-service/internal/models"
)

func summaryExam() *models.Exam {
	return &models.Exam{
		ID:         20,
		Title:      "Final",
		Subject:    "Physics",
		SchoolID:   "s1",
		TotalMarks: 100,
		Questions: []models.ExamQuestion{
			{ExamID: 20, QuestionID: 1, Order: 1, Question: models.Question{ID: 1, Text: "Q1", Marks: 50}},
			{ExamID: 20, QuestionID: 2, Order: 2, Question: models.Question{ID: 2, Text: "Q2", Marks: 50}},
		},
	}
}

func submittedAttempt(id uint, marks float64) *models.ExamAttempt {
	return &models.ExamAttempt{ID: id, ExamID: 20, SchoolID: "s1", Status: models.AttemptSubmitted, TotalMarksObtained: marks}
}

func TestAggregateSummary_NoSubmissions(t *testing.T) {
	attempts := []*models.ExamAttempt{
		{ID: 1, ExamID: 20, Status: models.AttemptInProgress, TotalMarksObtained: 0},
	}

	summary := AggregateSummary(summaryExam(), attempts, nil, nil)

	if summary.PassRate != 0 {
		t.Errorf("pass rate = %v, want 0", summary.PassRate)
	}
	if summary.AvgScore != 0 {
		t.Errorf("avg score = %v, want 0", summary.AvgScore)
	}
	if summary.LowestScore != 0 {
		t.Errorf("lowest = %v, want 0", summary.LowestScore)
	}
}

func TestAggregateSummary_Scores(t *testing.T) {
	// Two submitted attempts plus one in progress. The average divides
	// the sum over every attempt by the submitted count only.
	attempts := []*models.ExamAttempt{
		submittedAttempt(1, 90),
		submittedAttempt(2, 40),
		{ID: 3, ExamID: 20, SchoolID: "s1", Status: models.AttemptInProgress, TotalMarksObtained: 10},
	}

	summary := AggregateSummary(summaryExam(), attempts, nil, nil)

	if summary.TotalAttempts != 3 || summary.SubmittedCount != 2 {
		t.Fatalf("attempts/submitted = %d/%d, want 3/2", summary.TotalAttempts, summary.SubmittedCount)
	}
	if summary.PassedCount != 1 {
		t.Errorf("passed = %d, want 1 (default threshold 50)", summary.PassedCount)
	}
	if summary.PassRate != 50 {
		t.Errorf("pass rate = %v, want 50", summary.PassRate)
	}
	if summary.AvgScore != 70 {
		t.Errorf("avg = %v, want (90+40+10)/2 = 70", summary.AvgScore)
	}
	if summary.HighestScore != 90 {
		t.Errorf("highest = %v, want 90", summary.HighestScore)
	}
	// Lowest considers submitted attempts only, not the in-progress 10.
	if summary.LowestScore != 40 {
		t.Errorf("lowest = %v, want 40", summary.LowestScore)
	}
}

func TestAggregateSummary_Distribution(t *testing.T) {
	// 80 marks of 100 is exactly 80%: it lands in 80-89, not 70-79.
	// 100% lands in the closed top band.
	attempts := []*models.ExamAttempt{
		submittedAttempt(1, 100),
		submittedAttempt(2, 90),
		submittedAttempt(3, 80),
		submittedAttempt(4, 30),
	}

	summary := AggregateSummary(summaryExam(), attempts, nil, nil)

	want := map[string]int{"90-100": 2, "80-89": 1, "0-59": 1}
	if len(summary.Distribution) != len(want) {
		t.Fatalf("buckets = %d, want %d (empty bands omitted): %+v", len(summary.Distribution), len(want), summary.Distribution)
	}
	for _, bucket := range summary.Distribution {
		if bucket.Count != want[bucket.Label] {
			t.Errorf("bucket %s = %d, want %d", bucket.Label, bucket.Count, want[bucket.Label])
		}
	}
}

func TestAggregateSummary_QuestionStats(t *testing.T) {
	attempts := []*models.ExamAttempt{
		submittedAttempt(1, 50),
		submittedAttempt(2, 100),
	}
	answers := []*models.StudentAnswer{
		{AttemptID: 1, QuestionID: 1, IsCorrect: boolPtr(true)},
		{AttemptID: 2, QuestionID: 1, IsCorrect: boolPtr(true)},
		{AttemptID: 2, QuestionID: 2, IsCorrect: boolPtr(false)},
		// More graded answers than attempts must not push skipped
		// below zero.
		{AttemptID: 3, QuestionID: 1, IsCorrect: boolPtr(true)},
	}

	summary := AggregateSummary(summaryExam(), attempts, answers, nil)

	if len(summary.Questions) != 2 {
		t.Fatalf("question stats = %d, want 2", len(summary.Questions))
	}

	q1 := summary.Questions[0]
	if q1.Correct != 3 || q1.Wrong != 0 {
		t.Errorf("q1 correct/wrong = %d/%d, want 3/0", q1.Correct, q1.Wrong)
	}
	if q1.Skipped != 0 {
		t.Errorf("q1 skipped = %d, want 0 (never negative)", q1.Skipped)
	}

	q2 := summary.Questions[1]
	if q2.Correct != 0 || q2.Wrong != 1 || q2.Skipped != 1 {
		t.Errorf("q2 correct/wrong/skipped = %d/%d/%d, want 0/1/1", q2.Correct, q2.Wrong, q2.Skipped)
	}
}

func TestAggregateSummary_MissingQuestionRow(t *testing.T) {
	exam := summaryExam()
	exam.Questions = append(exam.Questions, models.ExamQuestion{ExamID: 20, QuestionID: 7, Order: 3})

	summary := AggregateSummary(exam, nil, nil, nil)

	last := summary.Questions[len(summary.Questions)-1]
	if last.Text != "Unknown" || last.Marks != 0 {
		t.Errorf("missing question row should render as Unknown/0, got %q/%d", last.Text, last.Marks)
	}
}

func TestAggregateSummary_Violations(t *testing.T) {
	violations := []*models.ProctoringLog{
		{AttemptID: 1, Type: "tab_switch"},
		{AttemptID: 1, Type: "tab_switch"},
		{AttemptID: 2, Type: "focus_loss"},
		{AttemptID: 2, Type: ""},
	}

	summary := AggregateSummary(summaryExam(), nil, nil, violations)

	if len(summary.Violations) != 3 {
		t.Fatalf("violation groups = %d, want 3", len(summary.Violations))
	}
	if summary.Violations[0].Type != "tab_switch" || summary.Violations[0].Count != 2 {
		t.Errorf("top violation = %s/%d, want tab_switch/2", summary.Violations[0].Type, summary.Violations[0].Count)
	}
}

func TestExportSummaryXLSX(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping workbook render in short mode")
	}

	logger := testLogger(t)
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewExamSummaryService(repo, nil, logger, publisher)
	ctx := context.Background()

	exam := summaryExam()
	repo.exam.exams[exam.ID] = exam
	repo.attempt.byExam = []*models.ExamAttempt{submittedAttempt(1, 85)}

	data, _, err := svc.ExportSummaryXLSX(ctx, models.Actor{UserID: "t1", SchoolID: "s1"}, exam.ID)
	if err != nil {
		t.Fatalf("ExportSummaryXLSX: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Overview", "Questions", "Violations"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("missing sheet %s", sheet)
		}
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeSummaryExported {
		t.Fatalf("expected one %s event, got %+v", events.TypeSummaryExported, published)
	}
}

func TestSummaryFilename(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	if got := SummaryFilename("Final Exam", now); got != "Final_Exam_summary_2026-03-14.xlsx" {
		t.Errorf("SummaryFilename = %q", got)
	}
	if got := SummaryFilename("  ", now); got != "exam_summary_2026-03-14.xlsx" {
		t.Errorf("blank title fallback = %q", got)
	}
}
