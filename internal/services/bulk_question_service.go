package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/events"
	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/questioncsv"
	"github.com/examforge/exam-service/internal/repositories"
	"github.com/examforge/exam-service/internal/validator"
)

const (
	minBulkCount = 1
	maxBulkCount = 50
)

type ownedSession struct {
	owner   models.Actor
	session models.BulkSession
}

type bulkQuestionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	// Sessions are short-lived editing state, held in memory. A lost
	// session only costs the user an unsaved draft.
	mu       sync.RWMutex
	sessions map[string]ownedSession
}

func NewBulkQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) BulkQuestionService {
	return &bulkQuestionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		sessions:  make(map[string]ownedSession),
	}
}

// ===== SESSION LIFECYCLE =====

func (s *bulkQuestionService) CreateSession(ctx context.Context, actor models.Actor) (models.BulkSession, error) {
	session := models.NewBulkSession(uuid.New().String())

	s.mu.Lock()
	s.sessions[session.ID] = ownedSession{owner: actor, session: session}
	s.mu.Unlock()

	s.logger.Info("Created bulk session", "session_id", session.ID, "user_id", actor.UserID)

	return session, nil
}

func (s *bulkQuestionService) GetSession(ctx context.Context, actor models.Actor, sessionID string) (models.BulkSession, error) {
	return s.load(actor, sessionID)
}

// load returns the actor's session. Sessions belonging to other users
// read as missing rather than forbidden.
func (s *bulkQuestionService) load(actor models.Actor, sessionID string) (models.BulkSession, error) {
	s.mu.RLock()
	owned, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || owned.owner != actor {
		return models.BulkSession{}, ErrSessionNotFound
	}

	return owned.session, nil
}

func (s *bulkQuestionService) store(actor models.Actor, session models.BulkSession) models.BulkSession {
	session.UpdatedAt = time.Now()

	s.mu.Lock()
	s.sessions[session.ID] = ownedSession{owner: actor, session: session}
	s.mu.Unlock()

	return session
}

// ===== TRANSITIONS OUT OF SETUP =====

func (s *bulkQuestionService) StartManual(ctx context.Context, actor models.Actor, sessionID, subject string, count int) (models.BulkSession, error) {
	session, err := s.load(actor, sessionID)
	if err != nil {
		return models.BulkSession{}, err
	}
	if session.Mode != models.BulkModeSetup {
		return models.BulkSession{}, ErrWrongSessionMode
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return models.BulkSession{}, ErrSubjectRequired
	}
	if count < minBulkCount || count > maxBulkCount {
		return models.BulkSession{}, ErrCountOutOfRange
	}

	questions := make([]models.BulkQuestion, count)
	for i := range questions {
		questions[i] = validator.Annotate(models.NewBlankMultipleChoice(subject))
	}

	session.Mode = models.BulkModeManualEntry
	session.Subject = subject
	session.Questions = questions
	session.Selected = nil
	session.QuestionIDs = nil

	return s.store(actor, session), nil
}

func (s *bulkQuestionService) StartImport(ctx context.Context, actor models.Actor, sessionID, subject, fileData string) (models.BulkSession, error) {
	session, err := s.load(actor, sessionID)
	if err != nil {
		return models.BulkSession{}, err
	}
	if session.Mode != models.BulkModeSetup {
		return models.BulkSession{}, ErrWrongSessionMode
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return models.BulkSession{}, ErrSubjectRequired
	}

	if countNonBlankLines(fileData) < 2 {
		return models.BulkSession{}, ErrImportFileTooShort
	}

	questions, err := questioncsv.Parse(fileData)
	if err != nil {
		// The session stays in setup; the failed import leaves no
		// partial state behind.
		return models.BulkSession{}, err
	}

	for i := range questions {
		questions[i].Subject = subject
	}

	s.logger.Info("Parsed import file",
		"session_id", sessionID,
		"total", len(questions),
		"invalid", countInvalid(questions))

	session.Mode = models.BulkModeImportPreview
	session.Subject = subject
	session.Questions = questions
	session.Selected = nil
	session.QuestionIDs = nil

	return s.store(actor, session), nil
}

func (s *bulkQuestionService) StartExport(ctx context.Context, actor models.Actor, sessionID, subject string) (models.BulkSession, error) {
	session, err := s.load(actor, sessionID)
	if err != nil {
		return models.BulkSession{}, err
	}
	if session.Mode != models.BulkModeSetup {
		return models.BulkSession{}, ErrWrongSessionMode
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return models.BulkSession{}, ErrSubjectRequired
	}

	bank, err := s.repo.Question().GetBank(ctx, nil, actor, subject)
	if err != nil {
		return models.BulkSession{}, fmt.Errorf("failed to fetch question bank: %w", err)
	}
	if len(bank) == 0 {
		return models.BulkSession{}, ErrEmptyQuestionBank
	}

	questions := make([]models.BulkQuestion, len(bank))
	ids := make([]uint, len(bank))
	selected := make([]bool, len(bank))
	for i, q := range bank {
		questions[i] = toBulkQuestion(q)
		ids[i] = q.ID
		selected[i] = true
	}

	session.Mode = models.BulkModeExportPreview
	session.Subject = subject
	session.Questions = questions
	session.Selected = selected
	session.QuestionIDs = ids

	return s.store(actor, session), nil
}

// ===== EDITING =====

// UpdateQuestion replaces one question immutably. An out-of-range index
// is a no-op returning the session unchanged.
func (s *bulkQuestionService) UpdateQuestion(ctx context.Context, actor models.Actor, sessionID string, index int, q models.BulkQuestion) (models.BulkSession, error) {
	session, err := s.load(actor, sessionID)
	if err != nil {
		return models.BulkSession{}, err
	}
	if session.Mode != models.BulkModeManualEntry && session.Mode != models.BulkModeImportPreview {
		return models.BulkSession{}, ErrWrongSessionMode
	}

	if index < 0 || index >= len(session.Questions) {
		return session, nil
	}

	q.Subject = session.Subject

	updated := make([]models.BulkQuestion, len(session.Questions))
	copy(updated, session.Questions)
	updated[index] = validator.Annotate(q)
	session.Questions = updated

	return s.store(actor, session), nil
}

func (s *bulkQuestionService) ToggleSelection(ctx context.Context, actor models.Actor, sessionID string, index int) (models.BulkSession, error) {
	session, err := s.load(actor, sessionID)
	if err != nil {
		return models.BulkSession{}, err
	}
	if session.Mode != models.BulkModeExportPreview {
		return models.BulkSession{}, ErrWrongSessionMode
	}

	if index < 0 || index >= len(session.Selected) {
		return session, nil
	}

	updated := make([]bool, len(session.Selected))
	copy(updated, session.Selected)
	updated[index] = !updated[index]
	session.Selected = updated

	return s.store(actor, session), nil
}

func (s *bulkQuestionService) SetAllSelections(ctx context.Context, actor models.Actor, sessionID string, selected bool) (models.BulkSession, error) {
	session, err := s.load(actor, sessionID)
	if err != nil {
		return models.BulkSession{}, err
	}
	if session.Mode != models.BulkModeExportPreview {
		return models.BulkSession{}, ErrWrongSessionMode
	}

	updated := make([]bool, len(session.Selected))
	for i := range updated {
		updated[i] = selected
	}
	session.Selected = updated

	return s.store(actor, session), nil
}

func (s *bulkQuestionService) Cancel(ctx context.Context, actor models.Actor, sessionID string) (models.BulkSession, error) {
	session, err := s.load(actor, sessionID)
	if err != nil {
		return models.BulkSession{}, err
	}

	return s.store(actor, resetToSetup(session)), nil
}

// ===== COMPLETION =====

// Submit validates every question and performs one batch insert scoped
// to the actor's school and the session subject. Any invalid question
// blocks the whole submission.
func (s *bulkQuestionService) Submit(ctx context.Context, actor models.Actor, sessionID string) (*BulkSubmitResult, error) {
	session, err := s.load(actor, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Mode != models.BulkModeManualEntry && session.Mode != models.BulkModeImportPreview {
		return nil, ErrWrongSessionMode
	}

	questions := make([]models.BulkQuestion, len(session.Questions))
	for i, q := range session.Questions {
		questions[i] = validator.Annotate(q)
	}

	if invalid := countInvalid(questions); invalid > 0 {
		session.Questions = questions
		s.store(actor, session)
		return nil, &InvalidSubmissionError{InvalidCount: invalid}
	}

	rows := make([]*models.Question, len(questions))
	for i, q := range questions {
		row, err := toModelQuestion(q, actor, session.Subject)
		if err != nil {
			return nil, fmt.Errorf("failed to encode question %d: %w", i, err)
		}
		rows[i] = row
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Question().CreateBatch(ctx, nil, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert questions: %w", err)
	}

	s.logger.Info("Bulk questions submitted",
		"session_id", sessionID,
		"user_id", actor.UserID,
		"subject", session.Subject,
		"count", len(rows))

	event := events.NewEvent(events.TypeQuestionsBulkImported, events.QuestionsBulkImportedEvent{
		SchoolID:  actor.SchoolID,
		TeacherID: actor.UserID,
		Subject:   session.Subject,
		Count:     len(rows),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish bulk import event", "error", err)
	}

	session = s.store(actor, resetToSetup(session))

	return &BulkSubmitResult{Inserted: len(rows), Session: session}, nil
}

// Export renders the selected rows to CSV. At least one row must be
// selected.
func (s *bulkQuestionService) Export(ctx context.Context, actor models.Actor, sessionID string) (*ExportResult, error) {
	session, err := s.load(actor, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Mode != models.BulkModeExportPreview {
		return nil, ErrWrongSessionMode
	}
	if session.SelectedCount() == 0 {
		return nil, ErrNoSelection
	}

	var selected []models.BulkQuestion
	for i, q := range session.Questions {
		if session.Selected[i] {
			selected = append(selected, q)
		}
	}

	data := questioncsv.Render(selected)
	filename := ExportFilename(session.Subject, time.Now())

	s.store(actor, resetToSetup(session))

	return &ExportResult{
		Filename: filename,
		Data:     data,
		Count:    len(selected),
	}, nil
}

// ExportFilename builds the download name for a subject's export.
func ExportFilename(subject string, now time.Time) string {
	safe := strings.ReplaceAll(strings.TrimSpace(subject), " ", "_")
	return fmt.Sprintf("%s_questions_%s.csv", safe, now.Format("2006-01-02"))
}

// ===== HELPERS =====

func resetToSetup(session models.BulkSession) models.BulkSession {
	session.Mode = models.BulkModeSetup
	session.Subject = ""
	session.Questions = nil
	session.Selected = nil
	session.QuestionIDs = nil
	return session
}

func countNonBlankLines(data string) int {
	n := 0
	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(strings.TrimSuffix(line, "\r")) != "" {
			n++
		}
	}
	return n
}

func countInvalid(questions []models.BulkQuestion) int {
	n := 0
	for _, q := range questions {
		if !q.IsValid {
			n++
		}
	}
	return n
}
