package validator

import "github.com/examforge/exam-service/internal/models"

// StartManualRequest begins manual bulk entry for a subject.
type StartManualRequest struct {
	Subject string `json:"subject" validate:"required,subject_name"`
	Count   int    `json:"count" validate:"required,bulk_count"`
}

// StartImportRequest begins a CSV import preview. FileData is the raw
// file text as uploaded.
type StartImportRequest struct {
	Subject  string `json:"subject" validate:"required,subject_name"`
	FileData string `json:"file_data" validate:"required"`
}

// StartExportRequest begins an export preview over the caller's bank.
type StartExportRequest struct {
	Subject string `json:"subject" validate:"required,subject_name"`
}

// UpdateQuestionRequest replaces one question of a bulk session.
type UpdateQuestionRequest struct {
	Index    int                 `json:"index" validate:"min=0"`
	Question models.BulkQuestion `json:"question" validate:"required"`
}

// ToggleSelectionRequest flips one export row's selection.
type ToggleSelectionRequest struct {
	Index int `json:"index" validate:"min=0"`
}

// ComputeGradeRequest asks for a student's final grade in one subject
// and term.
type ComputeGradeRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Subject   string `json:"subject" validate:"required,subject_name"`
	Term      string `json:"term" validate:"required,max=50"`
}

// ManualScoreRequest records a teacher-entered term score.
type ManualScoreRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	Subject   string  `json:"subject" validate:"required,subject_name"`
	Term      string  `json:"term" validate:"required,max=50"`
	Score     float64 `json:"score" validate:"min=0,max=100"`
}
