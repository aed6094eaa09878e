package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by this service.
const (
	TypeQuestionsBulkImported = "question.bulk_imported"
	TypeGradeComputed         = "exam.grade_computed"
	TypeSummaryExported       = "exam.summary_exported"
)

// Source identifies this service in every published event.
const Source = "exam-service"

// Version is the event schema version.
const Version = "1.0"

// Event is the envelope every published message shares.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope around a payload.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// QuestionsBulkImportedEvent signals a completed batch insert into a
// teacher's question bank.
type QuestionsBulkImportedEvent struct {
	SchoolID  string `json:"school_id"`
	TeacherID string `json:"teacher_id"`
	Subject   string `json:"subject"`
	Count     int    `json:"count"`
}

// GradeComputedEvent signals a persisted final grade.
type GradeComputedEvent struct {
	SchoolID   string `json:"school_id"`
	StudentID  string `json:"student_id"`
	Subject    string `json:"subject"`
	Term       string `json:"term"`
	FinalScore int    `json:"final_score"`
	Letter     string `json:"letter"`
}

// SummaryExportedEvent signals an exam summary workbook download.
type SummaryExportedEvent struct {
	SchoolID   string `json:"school_id"`
	ExamID     uint   `json:"exam_id"`
	Subject    string `json:"subject"`
	ExportedBy string `json:"exported_by"`
	Filename   string `json:"filename"`
}
