package repositories

import (
	"time"

	"github.com/examforge/exam-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Subject    *string                 `json:"subject"`
	SchoolID   *string                 `json:"school_id"`
	CreatedBy  *string                 `json:"created_by"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`    // "created_at", "subject", "difficulty"
	SortOrder  string                  `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	Status    *models.AttemptStatus `json:"status"`
	StudentID *string               `json:"student_id"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
}

type UserFilters struct {
	Query  string
	Limit  int
	Offset int
}

// ===== SHARED STATISTICS STRUCTS =====

// QuestionBankStats summarizes one teacher's bank for a subject.
type QuestionBankStats struct {
	TotalQuestions int64            `json:"total_questions"`
	ByType         map[string]int64 `json:"by_type"`
	ByDifficulty   map[string]int64 `json:"by_difficulty"`
}
