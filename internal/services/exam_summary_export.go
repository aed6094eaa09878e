package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/examforge/exam-service/internal/events"
	"github.com/examforge/exam-service/internal/models"
)

func (s *examSummaryService) ExportSummaryXLSX(ctx context.Context, actor models.Actor, examID uint) ([]byte, string, error) {
	summary, err := s.BuildSummary(ctx, actor, examID)
	if err != nil {
		return nil, "", err
	}

	data, err := renderSummaryWorkbook(summary)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := SummaryFilename(summary.ExamTitle, time.Now())

	event := events.NewEvent(events.TypeSummaryExported, events.SummaryExportedEvent{
		ExamID:     summary.ExamID,
		Subject:    summary.Subject,
		ExportedBy: actor.UserID,
		SchoolID:   actor.SchoolID,
		Filename:   filename,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish summary export event", "exam_id", examID, "error", err)
	}

	s.logger.Info("Exported exam summary workbook", "exam_id", examID, "filename", filename, "bytes", len(data))

	return data, filename, nil
}

// SummaryFilename builds the download name for a summary workbook,
// e.g. "Midterm_Algebra_summary_2026-03-14.xlsx".
func SummaryFilename(examTitle string, now time.Time) string {
	name := strings.ReplaceAll(strings.TrimSpace(examTitle), " ", "_")
	if name == "" {
		name = "exam"
	}
	return fmt.Sprintf("%s_summary_%s.xlsx", name, now.Format("2006-01-02"))
}

func renderSummaryWorkbook(summary *ExamSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const overview = "Overview"
	if err := f.SetSheetName("Sheet1", overview); err != nil {
		return nil, err
	}

	setRow := func(sheet string, row int, values ...interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	overviewRows := [][]interface{}{
		{"Exam", summary.ExamTitle},
		{"Subject", summary.Subject},
		{"Total Attempts", summary.TotalAttempts},
		{"Submitted", summary.SubmittedCount},
		{"Passed", summary.PassedCount},
		{"Pass Rate (%)", summary.PassRate},
		{"Average Score", summary.AvgScore},
		{"Highest Score", summary.HighestScore},
		{"Lowest Score", summary.LowestScore},
	}
	row := 1
	for _, r := range overviewRows {
		if err := setRow(overview, row, r...); err != nil {
			return nil, err
		}
		row++
	}

	row += 1
	if err := setRow(overview, row, "Score Band", "Students"); err != nil {
		return nil, err
	}
	for _, bucket := range summary.Distribution {
		row++
		if err := setRow(overview, row, bucket.Label, bucket.Count); err != nil {
			return nil, err
		}
	}

	const questions = "Questions"
	if _, err := f.NewSheet(questions); err != nil {
		return nil, err
	}
	if err := setRow(questions, 1, "Question", "Marks", "Correct", "Wrong", "Skipped"); err != nil {
		return nil, err
	}
	for i, stat := range summary.Questions {
		if err := setRow(questions, i+2, stat.Text, stat.Marks, stat.Correct, stat.Wrong, stat.Skipped); err != nil {
			return nil, err
		}
	}

	const proctoring = "Violations"
	if _, err := f.NewSheet(proctoring); err != nil {
		return nil, err
	}
	if err := setRow(proctoring, 1, "Violation Type", "Count"); err != nil {
		return nil, err
	}
	for i, stat := range summary.Violations {
		if err := setRow(proctoring, i+2, stat.Type, stat.Count); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
