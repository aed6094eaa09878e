package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillBlank      QuestionType = "fill_blank"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// AnswerOption is one selectable option of a multiple-choice question.
// Option IDs are stable strings ("1".."4") so the correct answer can be
// stored independently of option ordering.
type AnswerOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	Type     QuestionType `json:"type" gorm:"not null;index"`
	Text     string       `json:"text" gorm:"type:text;not null" validate:"required"`
	Subject  string       `json:"subject" gorm:"not null;index;size:100"`
	SchoolID string       `json:"school_id" gorm:"not null;index;size:255"`

	// Options stored as JSONB ([]AnswerOption). Fixed to true/false for
	// true_false questions, empty for fill_blank.
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`

	// An option ID for multiple_choice and true_false, free text for
	// fill_blank.
	CorrectAnswer string          `json:"correct_answer" gorm:"not null;size:500"`
	Marks         int             `json:"marks" gorm:"default:1" validate:"min=1"`
	Difficulty    DifficultyLevel `json:"difficulty" gorm:"default:medium;index"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// BulkQuestion is the in-memory shape used by the bulk authoring flow
// and the CSV codec. It is never persisted directly; Submit converts
// valid rows into Question records.
type BulkQuestion struct {
	Type          QuestionType    `json:"type"`
	Text          string          `json:"text"`
	Options       []AnswerOption  `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	Marks         int             `json:"marks"`
	Difficulty    DifficultyLevel `json:"difficulty"`
	Subject       string          `json:"subject"`

	// Validation annotation, refreshed after every mutation.
	ValidationErrors []string `json:"validation_errors"`
	IsValid          bool     `json:"is_valid"`
}

// NewBlankMultipleChoice returns the default question used by manual
// bulk entry: four empty options, first option marked correct.
func NewBlankMultipleChoice(subject string) BulkQuestion {
	return BulkQuestion{
		Type: MultipleChoice,
		Options: []AnswerOption{
			{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"},
		},
		CorrectAnswer: "1",
		Marks:         1,
		Difficulty:    DifficultyMedium,
		Subject:       subject,
	}
}
