package services

import (
	"context"
	"errors"
	"testing"

	"github.com/examforge/exam-service/internal/events"
	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/validator"
)

func newGradeFixture(t *testing.T) (GradeService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := testLogger(t)
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewGradeService(repo, nil, logger, validator.New(), publisher)
	return svc, repo, publisher
}

func TestComputeWeighted(t *testing.T) {
	tests := []struct {
		name                        string
		manual, paperAvg, onlineAvg *float64
		want                        int
	}{
		{name: "all present", manual: floatPtr(80), paperAvg: floatPtr(70), onlineAvg: floatPtr(90), want: 80},
		{name: "absent source renormalizes", manual: floatPtr(80), onlineAvg: floatPtr(60), want: 71},
		{name: "manual only", manual: floatPtr(75), want: 75},
		{name: "paper only", paperAvg: floatPtr(62.5), want: 63},
		{name: "nothing present", want: 0},
		{name: "rounds half up", manual: floatPtr(84.5), want: 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeWeighted(tt.manual, tt.paperAvg, tt.onlineAvg); got != tt.want {
				t.Errorf("ComputeWeighted = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLetterFor_FixedScale(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{score: 100, want: "A"},
		{score: 90, want: "A"},
		{score: 89, want: "B"},
		{score: 80, want: "B"},
		{score: 79, want: "C"},
		{score: 70, want: "C"},
		{score: 69, want: "D"},
		{score: 60, want: "D"},
		{score: 59, want: "F"},
		{score: 0, want: "F"},
	}
	for _, tt := range tests {
		if got := LetterFor(tt.score, nil); got != tt.want {
			t.Errorf("LetterFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestLetterFor_CustomScale(t *testing.T) {
	scale := []*models.GradeScaleEntry{
		{Letter: "Distinction", MinScore: 85, MaxScore: 100},
		{Letter: "Merit", MinScore: 65, MaxScore: 84},
		{Letter: "Pass", MinScore: 40, MaxScore: 64},
	}

	tests := []struct {
		score int
		want  string
	}{
		{score: 92, want: "Distinction"},
		{score: 85, want: "Distinction"},
		{score: 84, want: "Merit"},
		{score: 40, want: "Pass"},
		// Below every band: the fixed scale takes over.
		{score: 30, want: "F"},
	}
	for _, tt := range tests {
		if got := LetterFor(tt.score, scale); got != tt.want {
			t.Errorf("LetterFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestComputeFinalGrade(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "t1", SchoolID: "s1"}

	t.Run("blends available sources", func(t *testing.T) {
		svc, repo, publisher := newGradeFixture(t)
		repo.grade.manualScore = &models.ManualScore{Score: 80}
		repo.paper.results = []*models.PaperExamScore{
			{MarksObtained: 30, TotalMarks: 50},
		}
		// No online exams for the subject: the online source is absent.

		grade, err := svc.ComputeFinalGrade(ctx, actor, "stu1", "Math", "2026-1")
		if err != nil {
			t.Fatalf("ComputeFinalGrade: %v", err)
		}

		if grade.Manual.Value == nil || *grade.Manual.Value != 80 {
			t.Errorf("manual = %v, want 80", grade.Manual.Value)
		}
		if grade.PaperAvg.Value == nil || *grade.PaperAvg.Value != 60 {
			t.Errorf("paper avg = %v, want 60", grade.PaperAvg.Value)
		}
		if grade.OnlineAvg.Value != nil {
			t.Errorf("online avg should be absent, got %v", *grade.OnlineAvg.Value)
		}
		if grade.Final != 71 {
			t.Errorf("final = %d, want round((80*0.4+60*0.3)/0.7) = 71", grade.Final)
		}
		if grade.Letter != "C" {
			t.Errorf("letter = %s, want C", grade.Letter)
		}

		if len(repo.grade.savedGrades) != 1 {
			t.Fatalf("saved grades = %d, want 1", len(repo.grade.savedGrades))
		}
		saved := repo.grade.savedGrades[0]
		if saved.FinalScore != 71 || saved.SchoolID != "s1" || saved.ComputedBy != "t1" {
			t.Errorf("persisted grade = %+v", saved)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeGradeComputed {
			t.Fatalf("expected one %s event, got %d", events.TypeGradeComputed, len(published))
		}
	})

	t.Run("online average uses submitted attempts", func(t *testing.T) {
		svc, repo, _ := newGradeFixture(t)
		repo.exam.list = []*models.Exam{{ID: 1, TotalMarks: 50}}
		repo.attempt.submitted = []*models.ExamAttempt{
			{ExamID: 1, Status: models.AttemptSubmitted, TotalMarksObtained: 40, Exam: models.Exam{ID: 1, TotalMarks: 50}},
			{ExamID: 1, Status: models.AttemptSubmitted, TotalMarksObtained: 30, Exam: models.Exam{ID: 1, TotalMarks: 50}},
		}

		grade, err := svc.ComputeFinalGrade(ctx, actor, "stu1", "Math", "2026-1")
		if err != nil {
			t.Fatalf("ComputeFinalGrade: %v", err)
		}

		// (80 + 60) / 2 = 70, the only present source.
		if grade.OnlineAvg.Value == nil || *grade.OnlineAvg.Value != 70 {
			t.Errorf("online avg = %v, want 70", grade.OnlineAvg.Value)
		}
		if grade.Final != 70 {
			t.Errorf("final = %d, want 70", grade.Final)
		}
	})

	t.Run("no sources at all", func(t *testing.T) {
		svc, _, _ := newGradeFixture(t)

		grade, err := svc.ComputeFinalGrade(ctx, actor, "stu1", "Math", "2026-1")
		if err != nil {
			t.Fatalf("ComputeFinalGrade: %v", err)
		}
		if grade.Final != 0 || grade.Letter != "F" {
			t.Errorf("final/letter = %d/%s, want 0/F", grade.Final, grade.Letter)
		}
	})

	t.Run("rejects blank student", func(t *testing.T) {
		svc, _, _ := newGradeFixture(t)

		_, err := svc.ComputeFinalGrade(ctx, actor, "", "Math", "2026-1")
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected validation failure, got %v", err)
		}
	})
}

func TestSaveManualScore(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "t1", SchoolID: "s1"}

	t.Run("persists scoped entry", func(t *testing.T) {
		svc, repo, _ := newGradeFixture(t)

		if err := svc.SaveManualScore(ctx, actor, "stu1", "Math", "2026-1", 87.5); err != nil {
			t.Fatalf("SaveManualScore: %v", err)
		}
		if len(repo.grade.savedManual) != 1 {
			t.Fatalf("saved = %d, want 1", len(repo.grade.savedManual))
		}
		entry := repo.grade.savedManual[0]
		if entry.Score != 87.5 || entry.SchoolID != "s1" || entry.EnteredBy != "t1" {
			t.Errorf("entry = %+v", entry)
		}
	})

	t.Run("rejects out-of-range score", func(t *testing.T) {
		svc, _, _ := newGradeFixture(t)

		err := svc.SaveManualScore(ctx, actor, "stu1", "Math", "2026-1", 101)
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected validation failure, got %v", err)
		}
	})
}
