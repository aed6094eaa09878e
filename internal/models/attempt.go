package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

type ExamAttempt struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ExamID    uint   `json:"exam_id" gorm:"not null;index"`
	StudentID string `json:"student_id" gorm:"not null;index;size:255"`
	SchoolID  string `json:"school_id" gorm:"not null;index;size:255"`

	Status      AttemptStatus `json:"status" gorm:"default:in_progress;index"`
	StartedAt   time.Time     `json:"started_at"`
	SubmittedAt *time.Time    `json:"submitted_at"`

	// TotalMarksObtained and Percentage are written once at submission
	// by the grading pass and trusted afterwards.
	TotalMarksObtained float64 `json:"total_marks_obtained" gorm:"default:0"`
	Percentage         float64 `json:"percentage" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Exam       Exam            `json:"exam" gorm:"foreignKey:ExamID"`
	Answers    []StudentAnswer `json:"answers" gorm:"foreignKey:AttemptID"`
	Violations []ProctoringLog `json:"violations" gorm:"foreignKey:AttemptID"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

type StudentAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`

	// Answer is the raw submitted payload (option ID, "true"/"false").
	// Nil means the student skipped the question.
	Answer *string `json:"answer" gorm:"size:500"`

	// IsCorrect is nil until graded. Skipped answers stay nil.
	IsCorrect     *bool          `json:"is_correct"`
	MarksObtained float64        `json:"marks_obtained" gorm:"default:0"`
	Metadata      datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StudentAnswer) TableName() string {
	return "student_answers"
}

// ProctoringLog records one flagged event during an attempt
// (tab switch, focus loss, copy attempt and similar).
type ProctoringLog struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	AttemptID uint   `json:"attempt_id" gorm:"not null;index"`
	Type      string `json:"type" gorm:"not null;size:100"`
	Details   string `json:"details" gorm:"type:text"`

	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ProctoringLog) TableName() string {
	return "proctoring_logs"
}
