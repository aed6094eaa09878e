package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/examforge/exam-service/internal/events"
	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/questioncsv"
	"github.com/examforge/exam-service/internal/validator"
)

func newBulkFixture(t *testing.T) (*bulkQuestionService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := testLogger(t)
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewBulkQuestionService(repo, nil, logger, validator.New(), publisher).(*bulkQuestionService)
	return svc, repo, publisher
}

func validBulkQuestion(subject string) models.BulkQuestion {
	return models.BulkQuestion{
		Type: models.MultipleChoice,
		Text: "What is 2+2?",
		Options: []models.AnswerOption{
			{ID: "1", Text: "3"}, {ID: "2", Text: "4"},
			{ID: "3", Text: "5"}, {ID: "4", Text: "6"},
		},
		CorrectAnswer: "2",
		Marks:         1,
		Difficulty:    models.DifficultyMedium,
		Subject:       subject,
	}
}

func TestBulkSession_Ownership(t *testing.T) {
	svc, _, _ := newBulkFixture(t)
	ctx := context.Background()

	owner := models.Actor{UserID: "t1", SchoolID: "s1"}
	other := models.Actor{UserID: "t2", SchoolID: "s1"}

	session, err := svc.CreateSession(ctx, owner)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := svc.GetSession(ctx, owner, session.ID); err != nil {
		t.Fatalf("owner should see own session: %v", err)
	}

	if _, err := svc.GetSession(ctx, other, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for other user, got %v", err)
	}
}

func TestStartManual(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "t1", SchoolID: "s1"}

	tests := []struct {
		name    string
		subject string
		count   int
		wantErr error
	}{
		{name: "valid", subject: "Math", count: 5},
		{name: "blank subject", subject: "  ", count: 5, wantErr: ErrSubjectRequired},
		{name: "count zero", subject: "Math", count: 0, wantErr: ErrCountOutOfRange},
		{name: "count over limit", subject: "Math", count: 51, wantErr: ErrCountOutOfRange},
		{name: "count at limit", subject: "Math", count: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newBulkFixture(t)
			session, _ := svc.CreateSession(ctx, actor)

			got, err := svc.StartManual(ctx, actor, session.ID, tt.subject, tt.count)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("StartManual: %v", err)
			}

			if got.Mode != models.BulkModeManualEntry {
				t.Errorf("mode = %s, want %s", got.Mode, models.BulkModeManualEntry)
			}
			if len(got.Questions) != tt.count {
				t.Fatalf("questions = %d, want %d", len(got.Questions), tt.count)
			}
			// Blank defaults fail validation until the teacher fills them in.
			first := got.Questions[0]
			if first.IsValid {
				t.Error("blank default question should not be valid")
			}
			if first.Type != models.MultipleChoice || len(first.Options) != 4 {
				t.Errorf("default should be multiple choice with 4 options, got %s/%d", first.Type, len(first.Options))
			}
		})
	}
}

func TestStartImport(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "t1", SchoolID: "s1"}
	header := "Question Type, Question Text, Option 1, Option 2, Option 3, Option 4, Correct Answer, Marks, Difficulty"

	t.Run("too few lines stays in setup", func(t *testing.T) {
		svc, _, _ := newBulkFixture(t)
		session, _ := svc.CreateSession(ctx, actor)

		_, err := svc.StartImport(ctx, actor, session.ID, "Math", header+"\n\n\n")
		if !errors.Is(err, ErrImportFileTooShort) {
			t.Fatalf("expected ErrImportFileTooShort, got %v", err)
		}

		got, _ := svc.GetSession(ctx, actor, session.ID)
		if got.Mode != models.BulkModeSetup {
			t.Errorf("failed import should leave session in setup, got %s", got.Mode)
		}
	})

	t.Run("no parseable rows stays in setup", func(t *testing.T) {
		svc, _, _ := newBulkFixture(t)
		session, _ := svc.CreateSession(ctx, actor)

		_, err := svc.StartImport(ctx, actor, session.ID, "Math", header+"\nshort,row")
		if !errors.Is(err, questioncsv.ErrNoValidQuestions) {
			t.Fatalf("expected ErrNoValidQuestions, got %v", err)
		}

		got, _ := svc.GetSession(ctx, actor, session.ID)
		if got.Mode != models.BulkModeSetup {
			t.Errorf("failed import should leave session in setup, got %s", got.Mode)
		}
	})

	t.Run("short rows are skipped", func(t *testing.T) {
		svc, _, _ := newBulkFixture(t)
		session, _ := svc.CreateSession(ctx, actor)

		file := strings.Join([]string{
			header,
			`"multiple_choice","Q1","a","b","","","a","1","easy"`,
			`"broken","row"`,
			`"multiple_choice","Q2","a","b","","","b","1","easy"`,
		}, "\n")

		got, err := svc.StartImport(ctx, actor, session.ID, "Math", file)
		if err != nil {
			t.Fatalf("StartImport: %v", err)
		}
		if got.Mode != models.BulkModeImportPreview {
			t.Errorf("mode = %s, want %s", got.Mode, models.BulkModeImportPreview)
		}
		if len(got.Questions) != 2 {
			t.Fatalf("questions = %d, want 2", len(got.Questions))
		}
		for i, q := range got.Questions {
			if q.Subject != "Math" {
				t.Errorf("question %d subject = %q, want Math", i, q.Subject)
			}
		}
	})
}

func TestStartExport(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "t1", SchoolID: "s1"}

	t.Run("empty bank", func(t *testing.T) {
		svc, _, _ := newBulkFixture(t)
		session, _ := svc.CreateSession(ctx, actor)

		_, err := svc.StartExport(ctx, actor, session.ID, "Math")
		if !errors.Is(err, ErrEmptyQuestionBank) {
			t.Fatalf("expected ErrEmptyQuestionBank, got %v", err)
		}
	})

	t.Run("all rows pre-selected", func(t *testing.T) {
		svc, repo, _ := newBulkFixture(t)
		repo.question.bank = []*models.Question{
			{ID: 1, Type: models.FillBlank, Text: "Q1", Subject: "Math", SchoolID: "s1", CreatedBy: "t1", CorrectAnswer: "42", Marks: 2, Difficulty: models.DifficultyEasy},
			{ID: 2, Type: models.FillBlank, Text: "Q2", Subject: "Math", SchoolID: "s1", CreatedBy: "t1", CorrectAnswer: "7", Marks: 1, Difficulty: models.DifficultyHard},
		}
		session, _ := svc.CreateSession(ctx, actor)

		got, err := svc.StartExport(ctx, actor, session.ID, "Math")
		if err != nil {
			t.Fatalf("StartExport: %v", err)
		}
		if got.Mode != models.BulkModeExportPreview {
			t.Errorf("mode = %s, want %s", got.Mode, models.BulkModeExportPreview)
		}
		if got.SelectedCount() != 2 {
			t.Errorf("selected = %d, want 2", got.SelectedCount())
		}
	})
}

func TestUpdateQuestion(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "t1", SchoolID: "s1"}

	svc, _, _ := newBulkFixture(t)
	session, _ := svc.CreateSession(ctx, actor)
	session, _ = svc.StartManual(ctx, actor, session.ID, "Math", 3)

	t.Run("out of range is a no-op", func(t *testing.T) {
		before, _ := svc.GetSession(ctx, actor, session.ID)

		for _, idx := range []int{-1, 3, 100} {
			got, err := svc.UpdateQuestion(ctx, actor, session.ID, idx, validBulkQuestion("Math"))
			if err != nil {
				t.Fatalf("UpdateQuestion(%d): %v", idx, err)
			}
			if len(got.Questions) != len(before.Questions) {
				t.Errorf("index %d changed question count", idx)
			}
			if got.Questions[0].Text != before.Questions[0].Text {
				t.Errorf("index %d mutated a question", idx)
			}
		}
	})

	t.Run("replace revalidates", func(t *testing.T) {
		got, err := svc.UpdateQuestion(ctx, actor, session.ID, 1, validBulkQuestion("Math"))
		if err != nil {
			t.Fatalf("UpdateQuestion: %v", err)
		}
		if !got.Questions[1].IsValid {
			t.Errorf("replaced question should be valid, errors: %v", got.Questions[1].ValidationErrors)
		}
		if got.Questions[0].IsValid {
			t.Error("untouched blank question should stay invalid")
		}
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "t1", SchoolID: "s1"}

	t.Run("invalid questions block submission", func(t *testing.T) {
		svc, repo, _ := newBulkFixture(t)
		session, _ := svc.CreateSession(ctx, actor)
		svc.StartManual(ctx, actor, session.ID, "Math", 2)
		svc.UpdateQuestion(ctx, actor, session.ID, 0, validBulkQuestion("Math"))

		_, err := svc.Submit(ctx, actor, session.ID)

		var invalid *InvalidSubmissionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidSubmissionError, got %v", err)
		}
		if invalid.InvalidCount != 1 {
			t.Errorf("invalid count = %d, want 1", invalid.InvalidCount)
		}
		if !errors.Is(err, ErrValidationFailed) {
			t.Error("InvalidSubmissionError should match ErrValidationFailed")
		}
		if len(repo.question.created) != 0 {
			t.Errorf("nothing should be inserted, got %d rows", len(repo.question.created))
		}
	})

	t.Run("valid submission inserts and resets", func(t *testing.T) {
		svc, repo, publisher := newBulkFixture(t)
		session, _ := svc.CreateSession(ctx, actor)
		svc.StartManual(ctx, actor, session.ID, "Math", 2)
		svc.UpdateQuestion(ctx, actor, session.ID, 0, validBulkQuestion("Math"))
		svc.UpdateQuestion(ctx, actor, session.ID, 1, validBulkQuestion("Math"))

		result, err := svc.Submit(ctx, actor, session.ID)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if result.Inserted != 2 {
			t.Errorf("inserted = %d, want 2", result.Inserted)
		}
		if result.Session.Mode != models.BulkModeSetup {
			t.Errorf("session should reset to setup, got %s", result.Session.Mode)
		}

		if len(repo.question.created) != 2 {
			t.Fatalf("created rows = %d, want 2", len(repo.question.created))
		}
		for i, row := range repo.question.created {
			if row.SchoolID != "s1" || row.CreatedBy != "t1" || row.Subject != "Math" {
				t.Errorf("row %d scoping = %s/%s/%s", i, row.SchoolID, row.CreatedBy, row.Subject)
			}
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("events = %d, want 1", len(published))
		}
		if published[0].Type != events.TypeQuestionsBulkImported {
			t.Errorf("event type = %s, want %s", published[0].Type, events.TypeQuestionsBulkImported)
		}
	})
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "t1", SchoolID: "s1"}

	setup := func(t *testing.T) (*bulkQuestionService, models.BulkSession) {
		svc, repo, _ := newBulkFixture(t)
		repo.question.bank = []*models.Question{
			{ID: 1, Type: models.FillBlank, Text: "Q1", Subject: "World History", SchoolID: "s1", CreatedBy: "t1", CorrectAnswer: "1066", Marks: 1, Difficulty: models.DifficultyMedium},
			{ID: 2, Type: models.FillBlank, Text: "Q2", Subject: "World History", SchoolID: "s1", CreatedBy: "t1", CorrectAnswer: "1492", Marks: 1, Difficulty: models.DifficultyMedium},
		}
		session, _ := svc.CreateSession(ctx, actor)
		session, err := svc.StartExport(ctx, actor, session.ID, "World History")
		if err != nil {
			t.Fatalf("StartExport: %v", err)
		}
		return svc, session
	}

	t.Run("nothing selected", func(t *testing.T) {
		svc, session := setup(t)
		svc.SetAllSelections(ctx, actor, session.ID, false)

		_, err := svc.Export(ctx, actor, session.ID)
		if !errors.Is(err, ErrNoSelection) {
			t.Fatalf("expected ErrNoSelection, got %v", err)
		}
	})

	t.Run("renders selected rows", func(t *testing.T) {
		svc, session := setup(t)
		svc.ToggleSelection(ctx, actor, session.ID, 1)

		result, err := svc.Export(ctx, actor, session.ID)
		if err != nil {
			t.Fatalf("Export: %v", err)
		}
		if result.Count != 1 {
			t.Errorf("count = %d, want 1", result.Count)
		}
		if !strings.Contains(result.Data, `"Q1"`) || strings.Contains(result.Data, `"Q2"`) {
			t.Errorf("export should contain only Q1:\n%s", result.Data)
		}
		if !strings.HasPrefix(result.Filename, "World_History_questions_") || !strings.HasSuffix(result.Filename, ".csv") {
			t.Errorf("unexpected filename %q", result.Filename)
		}
	})
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	got := ExportFilename("World History", now)
	want := "World_History_questions_2026-03-14.csv"
	if got != want {
		t.Errorf("ExportFilename = %q, want %q", got, want)
	}
}

func TestCancelResetsSession(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "t1", SchoolID: "s1"}

	svc, _, _ := newBulkFixture(t)
	session, _ := svc.CreateSession(ctx, actor)
	svc.StartManual(ctx, actor, session.ID, "Math", 3)

	got, err := svc.Cancel(ctx, actor, session.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Mode != models.BulkModeSetup || got.Subject != "" || got.Questions != nil {
		t.Errorf("cancel should clear the session, got mode=%s subject=%q questions=%d", got.Mode, got.Subject, len(got.Questions))
	}
}
