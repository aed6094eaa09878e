package models

import "time"

type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamPublished ExamStatus = "published"
	ExamClosed    ExamStatus = "closed"
)

// Exam is an online exam taken through the platform. Paper exams are
// recorded separately as PaperExam with manually entered scores.
type Exam struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Title    string `json:"title" gorm:"not null;size:255" validate:"required,max=255"`
	Subject  string `json:"subject" gorm:"not null;index;size:100"`
	SchoolID string `json:"school_id" gorm:"not null;index;size:255"`

	Duration     int        `json:"duration" gorm:"not null"` // minutes
	TotalMarks   float64    `json:"total_marks" gorm:"not null"`
	PassingMarks *float64   `json:"passing_marks"` // nil means 50% of total
	Status       ExamStatus `json:"status" gorm:"default:draft;index"`
	Term         string     `json:"term" gorm:"index;size:50"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []ExamQuestion `json:"questions" gorm:"foreignKey:ExamID"`
	Attempts  []ExamAttempt  `json:"attempts" gorm:"foreignKey:ExamID"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamQuestion links a bank question into an exam with its position.
type ExamQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ExamID     uint `json:"exam_id" gorm:"not null;index"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`
	Order      int  `json:"order" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}

// PaperExam is a pen-and-paper assessment whose scores are entered by
// the teacher and feed the grade aggregation alongside online exams.
type PaperExam struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	Title      string  `json:"title" gorm:"not null;size:255"`
	Subject    string  `json:"subject" gorm:"not null;index;size:100"`
	SchoolID   string  `json:"school_id" gorm:"not null;index;size:255"`
	Term       string  `json:"term" gorm:"index;size:50"`
	TotalMarks float64 `json:"total_marks" gorm:"not null"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Scores []PaperExamScore `json:"scores" gorm:"foreignKey:PaperExamID"`
}

func (PaperExam) TableName() string {
	return "paper_exams"
}

// PaperExamScore is one student's result on a paper exam. TotalMarks is
// denormalized from the exam so averages survive exam edits.
type PaperExamScore struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	PaperExamID uint   `json:"paper_exam_id" gorm:"not null;index"`
	StudentID   string `json:"student_id" gorm:"not null;index;size:255"`

	MarksObtained float64 `json:"marks_obtained" gorm:"not null"`
	TotalMarks    float64 `json:"total_marks" gorm:"not null"`

	EnteredBy string    `json:"entered_by" gorm:"not null;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PaperExamScore) TableName() string {
	return "paper_exam_scores"
}
