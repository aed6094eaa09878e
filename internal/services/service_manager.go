package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/examforge/exam-service/internal/events"
	"github.com/examforge/exam-service/internal/repositories"
	"github.com/examforge/exam-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level

	DefaultTimeout time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	config    ServiceManagerConfig

	// Service instances
	bulkQuestionService BulkQuestionService
	examReviewService   ExamReviewService
	examSummaryService  ExamSummaryService
	gradeService        GradeService
	questionService     QuestionService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		DefaultTimeout:     30 * time.Second,
	}

	return NewServiceManager(db, repo, logger, validator, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.bulkQuestionService = NewBulkQuestionService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.logger.Info("Bulk question service initialized")

	sm.examReviewService = NewExamReviewService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Exam review service initialized")

	sm.examSummaryService = NewExamSummaryService(sm.repo, sm.db, sm.logger, sm.publisher)
	sm.logger.Info("Exam summary service initialized")

	sm.gradeService = NewGradeService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.logger.Info("Grade service initialized")

	sm.questionService = NewQuestionService(sm.repo, sm.db, sm.logger)
	sm.logger.Info("Question service initialized")

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) BulkQuestion() BulkQuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.bulkQuestionService == nil {
		panic("bulk question service not initialized")
	}
	return sm.bulkQuestionService
}

func (sm *serviceManager) ExamReview() ExamReviewService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.examReviewService == nil {
		panic("exam review service not initialized")
	}
	return sm.examReviewService
}

func (sm *serviceManager) ExamSummary() ExamSummaryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.examSummaryService == nil {
		panic("exam summary service not initialized")
	}
	return sm.examSummaryService
}

func (sm *serviceManager) Grade() GradeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.gradeService == nil {
		panic("grade service not initialized")
	}
	return sm.gradeService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.questionService == nil {
		panic("question service not initialized")
	}
	return sm.questionService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if repoManager, ok := sm.repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
