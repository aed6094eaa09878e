package validator

import (
	"strings"

	"github.com/examforge/exam-service/internal/models"
)

// Question rule messages. These are user-facing and shown verbatim in
// the bulk authoring preview, so their wording is part of the contract.
const (
	MsgTextRequired   = "Question text is required"
	MsgAnswerRequired = "Correct answer is required"
	MsgTooFewOptions  = "At least 2 options required"
	MsgSelectedBlank  = "Selected answer option is empty"
	MsgMarksTooLow    = "Marks must be at least 1"
)

// ValidateBulkQuestion checks one question's structural completeness and
// returns every applicable violation, in rule order. It never stops at
// the first failure. A nil/empty result means the question is valid.
//
// The function is pure; callers re-run it after every mutation rather
// than caching results.
func ValidateBulkQuestion(q models.BulkQuestion) []string {
	var errs []string

	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, MsgTextRequired)
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		errs = append(errs, MsgAnswerRequired)
	}

	if q.Type == models.MultipleChoice {
		filled := 0
		for _, opt := range q.Options {
			if strings.TrimSpace(opt.Text) != "" {
				filled++
			}
		}
		if filled < 2 {
			errs = append(errs, MsgTooFewOptions)
		}
		if strings.TrimSpace(q.CorrectAnswer) != "" && selectedOptionBlank(q) {
			errs = append(errs, MsgSelectedBlank)
		}
	}

	if q.Marks < 1 {
		errs = append(errs, MsgMarksTooLow)
	}

	return errs
}

// Annotate runs ValidateBulkQuestion and writes the result back onto a
// copy of the question.
func Annotate(q models.BulkQuestion) models.BulkQuestion {
	errs := ValidateBulkQuestion(q)
	q.ValidationErrors = errs
	q.IsValid = len(errs) == 0
	return q
}

func selectedOptionBlank(q models.BulkQuestion) bool {
	for _, opt := range q.Options {
		if opt.ID == q.CorrectAnswer {
			return strings.TrimSpace(opt.Text) == ""
		}
	}
	// The selected ID does not exist among the options, which reads the
	// same as pointing at a blank one.
	return true
}
