package models

import "time"

// ManualScore is a teacher-entered score component (classwork,
// participation and similar), expressed as a percentage 0..100.
type ManualScore struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	StudentID string  `json:"student_id" gorm:"not null;index;size:255"`
	SchoolID  string  `json:"school_id" gorm:"not null;index;size:255"`
	Subject   string  `json:"subject" gorm:"not null;index;size:100"`
	Term      string  `json:"term" gorm:"index;size:50"`
	Score     float64 `json:"score" gorm:"not null" validate:"min=0,max=100"`

	EnteredBy string    `json:"entered_by" gorm:"not null;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ManualScore) TableName() string {
	return "manual_scores"
}

// GradeScaleEntry is one band of a school's custom letter-grade scale.
// A final score matches the entry with the highest MinScore whose
// [MinScore, MaxScore] range contains it.
type GradeScaleEntry struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	SchoolID string `json:"school_id" gorm:"not null;index;size:255"`

	Letter   string  `json:"letter" gorm:"not null;size:5" validate:"required,max=5"`
	MinScore float64 `json:"min_score" gorm:"not null"`
	MaxScore float64 `json:"max_score" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (GradeScaleEntry) TableName() string {
	return "grade_scale_entries"
}

// StudentGrade is the persisted output of the grade aggregation engine
// for one student, subject and term.
type StudentGrade struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;index;size:255"`
	SchoolID  string `json:"school_id" gorm:"not null;index;size:255"`
	Subject   string `json:"subject" gorm:"not null;index;size:100"`
	Term      string `json:"term" gorm:"index;size:50"`

	FinalScore  int    `json:"final_score" gorm:"not null"`
	LetterGrade string `json:"letter_grade" gorm:"not null;size:5"`

	ComputedBy string    `json:"computed_by" gorm:"not null;size:255"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (StudentGrade) TableName() string {
	return "student_grades"
}
