package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/validator"
)

// toBulkQuestion converts a persisted question into the editing shape.
// Undecodable option payloads degrade to empty options so a corrupt row
// shows up as invalid instead of breaking the whole preview.
func toBulkQuestion(q *models.Question) models.BulkQuestion {
	var options []models.AnswerOption
	if len(q.Options) > 0 {
		_ = json.Unmarshal(q.Options, &options)
	}

	return validator.Annotate(models.BulkQuestion{
		Type:          q.Type,
		Text:          q.Text,
		Options:       options,
		CorrectAnswer: q.CorrectAnswer,
		Marks:         q.Marks,
		Difficulty:    q.Difficulty,
		Subject:       q.Subject,
	})
}

// toModelQuestion converts an editing-shape question into a persistable
// row scoped to the actor's school. Option payloads are normalized per
// type: multiple choice keeps its options, true/false stores the fixed
// pair, fill-blank stores none.
func toModelQuestion(q models.BulkQuestion, actor models.Actor, subject string) (*models.Question, error) {
	var options []models.AnswerOption
	switch q.Type {
	case models.TrueFalse:
		options = []models.AnswerOption{
			{ID: "true", Text: "True"},
			{ID: "false", Text: "False"},
		}
	case models.FillBlank:
		options = nil
	default:
		options = q.Options
	}

	var optionsJSON []byte
	if options != nil {
		data, err := json.Marshal(options)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal options: %w", err)
		}
		optionsJSON = data
	}

	now := time.Now()

	return &models.Question{
		Type:          q.Type,
		Text:          q.Text,
		Subject:       subject,
		SchoolID:      actor.SchoolID,
		Options:       optionsJSON,
		CorrectAnswer: q.CorrectAnswer,
		Marks:         q.Marks,
		Difficulty:    q.Difficulty,
		CreatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
