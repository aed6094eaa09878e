package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
)

type questionService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) QuestionService {
	return &questionService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *questionService) GetByID(ctx context.Context, actor models.Actor, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
	}
	// Cross-school rows read as missing rather than forbidden.
	if question.SchoolID != actor.SchoolID {
		return nil, fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
	}
	return question, nil
}

func (s *questionService) List(ctx context.Context, actor models.Actor, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	filters.SchoolID = &actor.SchoolID

	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}

func (s *questionService) GetBankOverview(ctx context.Context, actor models.Actor, subject string) (*QuestionBankOverview, error) {
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	questions, err := s.repo.Question().GetBank(ctx, nil, actor, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}

	stats, err := s.repo.Question().GetBankStats(ctx, nil, actor, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank stats: %w", err)
	}

	s.logger.Info("Loaded question bank overview", "subject", subject, "questions", len(questions))

	return &QuestionBankOverview{
		Subject:   subject,
		Stats:     stats,
		Questions: questions,
	}, nil
}

func (s *questionService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	question, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}

	if question.CreatedBy != actor.UserID {
		return NewPermissionError(actor.UserID, "question", "delete", "only the question's author can delete it")
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Deleted question", "question_id", id, "user_id", actor.UserID)
	return nil
}
