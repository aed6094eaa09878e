// Package questioncsv implements the question-bank CSV format used by
// bulk import and export.
//
// The format is RFC4180-like but deliberately hand-rolled: fields are
// tokenized per line with a quote-toggle state machine, doubled quotes
// inside a quoted field decode to a literal quote, and rows that do not
// produce the full column set are dropped rather than reported. Those
// row-level semantics differ from encoding/csv, which is why no CSV
// library is used here.
package questioncsv

import (
	"errors"
	"strconv"
	"strings"

	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/validator"
)

// ErrNoValidQuestions is returned when a file parses to zero usable
// rows. It is distinct from the file being too short to contain data.
var ErrNoValidQuestions = errors.New("no valid questions found")

const fieldCount = 9

var header = []string{
	"Question Type", "Question Text",
	"Option 1", "Option 2", "Option 3", "Option 4",
	"Correct Answer", "Marks", "Difficulty",
}

var optionIDs = []string{"1", "2", "3", "4"}

// Parse decodes raw file text into annotated bulk questions. The first
// non-blank line is treated as the header and dropped. Rows with fewer
// than 9 fields are silently skipped. Each surviving row is validated
// and carries its validation result.
func Parse(data string) ([]models.BulkQuestion, error) {
	var lines []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) > 0 {
		lines = lines[1:] // header
	}

	var questions []models.BulkQuestion
	for _, line := range lines {
		fields := splitLine(line)
		if len(fields) < fieldCount {
			continue
		}
		questions = append(questions, parseRow(fields))
	}

	if len(questions) == 0 {
		return nil, ErrNoValidQuestions
	}

	return questions, nil
}

// Render encodes questions to CSV text with the fixed header. Every
// field is quoted and embedded quotes are doubled. Rows are joined with
// a bare newline and there is no trailing newline.
func Render(questions []models.BulkQuestion) string {
	rows := make([]string, 0, len(questions)+1)
	rows = append(rows, renderRow(header))

	for _, q := range questions {
		fields := make([]string, 0, fieldCount)
		fields = append(fields, string(q.Type), q.Text)
		for i := 0; i < 4; i++ {
			if i < len(q.Options) {
				fields = append(fields, q.Options[i].Text)
			} else {
				fields = append(fields, "")
			}
		}
		fields = append(fields,
			exportedAnswer(q),
			strconv.Itoa(q.Marks),
			string(q.Difficulty))
		rows = append(rows, renderRow(fields))
	}

	return strings.Join(rows, "\n")
}

func parseRow(fields []string) models.BulkQuestion {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	q := models.BulkQuestion{
		Type:       parseType(fields[0]),
		Text:       fields[1],
		Marks:      parseMarks(fields[7]),
		Difficulty: parseDifficulty(fields[8]),
	}

	q.Options = make([]models.AnswerOption, 4)
	for i := 0; i < 4; i++ {
		q.Options[i] = models.AnswerOption{ID: optionIDs[i], Text: fields[2+i]}
	}

	q.CorrectAnswer = fields[6]
	if q.Type == models.MultipleChoice {
		q.CorrectAnswer = resolveOptionID(fields[6], q.Options)
	}

	return validator.Annotate(q)
}

func parseType(raw string) models.QuestionType {
	switch models.QuestionType(strings.ToLower(raw)) {
	case models.TrueFalse:
		return models.TrueFalse
	case models.FillBlank:
		return models.FillBlank
	default:
		return models.MultipleChoice
	}
}

func parseMarks(raw string) int {
	marks, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return marks
}

func parseDifficulty(raw string) models.DifficultyLevel {
	switch models.DifficultyLevel(strings.ToLower(raw)) {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return models.DifficultyLevel(strings.ToLower(raw))
	default:
		return models.DifficultyMedium
	}
}

// resolveOptionID maps a raw correct-answer cell to an option ID.
// Resolution order: case-insensitive exact match on option text, then
// the raw value if it already is an option ID, then the first option
// with non-blank text, then "1".
func resolveOptionID(raw string, options []models.AnswerOption) string {
	for _, opt := range options {
		if strings.TrimSpace(opt.Text) != "" && strings.EqualFold(opt.Text, raw) {
			return opt.ID
		}
	}

	for _, id := range optionIDs {
		if raw == id {
			return raw
		}
	}

	for _, opt := range options {
		if strings.TrimSpace(opt.Text) != "" {
			return opt.ID
		}
	}

	return "1"
}

// exportedAnswer renders the correct answer as option text for
// multiple choice; other types already store literal text. If the
// stored ID matches no option the raw value is exported unchanged.
func exportedAnswer(q models.BulkQuestion) string {
	if q.Type != models.MultipleChoice {
		return q.CorrectAnswer
	}
	for _, opt := range q.Options {
		if opt.ID == q.CorrectAnswer {
			return opt.Text
		}
	}
	return q.CorrectAnswer
}

func renderRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// splitLine tokenizes one CSV line. A double quote toggles quoted
// state; inside quotes a doubled quote emits a literal quote and a
// comma is data. Outside quotes a comma ends the field.
func splitLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, cur.String())

	return fields
}
