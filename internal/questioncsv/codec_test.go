package questioncsv

import (
	"errors"
	"strings"
	"testing"

	"github.com/examforge/exam-service/internal/models"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain fields",
			line: "a,b,c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "quoted comma stays literal",
			line: `"a,b",c`,
			want: []string{"a,b", "c"},
		},
		{
			name: "doubled quote decodes to literal quote",
			line: `"say ""hi""",x`,
			want: []string{`say "hi"`, "x"},
		},
		{
			name: "empty fields preserved",
			line: "a,,c",
			want: []string{"a", "", "c"},
		},
		{
			name: "trailing empty field",
			line: "a,b,",
			want: []string{"a", "b", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitLine(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("splitLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseSkipsShortRows(t *testing.T) {
	data := strings.Join([]string{
		"Question Type,Question Text,Option 1,Option 2,Option 3,Option 4,Correct Answer,Marks,Difficulty",
		`multiple_choice,First,A,B,C,D,A,2,easy`,
		`multiple_choice,Broken,A,B,C`,
		`multiple_choice,Third,W,X,Y,Z,Z,1,hard`,
	}, "\n")

	questions, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if questions[0].Text != "First" || questions[1].Text != "Third" {
		t.Errorf("short row not skipped cleanly: %q, %q", questions[0].Text, questions[1].Text)
	}
}

func TestParseNoValidQuestions(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "header only", data: "Question Type,Question Text,Option 1,Option 2,Option 3,Option 4,Correct Answer,Marks,Difficulty"},
		{name: "all rows short", data: "header\na,b\nc,d,e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, ErrNoValidQuestions) {
				t.Fatalf("Parse error = %v, want ErrNoValidQuestions", err)
			}
		})
	}
}

func TestParseCorrectAnswerResolution(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		opts    string
		want    string
	}{
		{name: "exact text match", correct: "Paris", opts: "London,Paris,Rome,Berlin", want: "2"},
		{name: "case insensitive text match", correct: "PARIS", opts: "London,Paris,Rome,Berlin", want: "2"},
		{name: "raw id kept", correct: "3", opts: "London,Paris,Rome,Berlin", want: "3"},
		{name: "no match falls back to first non-blank", correct: "Madrid", opts: ",Paris,Rome,", want: "2"},
		{name: "all blank falls back to 1", correct: "Madrid", opts: ",,,", want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "header\n" + `multiple_choice,Capital?,` + tt.opts + `,` + tt.correct + `,1,medium`
			questions, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if got := questions[0].CorrectAnswer; got != tt.want {
				t.Errorf("CorrectAnswer = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	data := "header\n" + `,"What?",A,B,C,D,A,notanumber,`

	questions, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	q := questions[0]
	if q.Type != models.MultipleChoice {
		t.Errorf("blank type = %q, want multiple_choice", q.Type)
	}
	if q.Marks != 1 {
		t.Errorf("unparseable marks = %d, want 1", q.Marks)
	}
	if q.Difficulty != models.DifficultyMedium {
		t.Errorf("blank difficulty = %q, want medium", q.Difficulty)
	}
}

func TestParseAnnotatesValidation(t *testing.T) {
	data := "header\n" +
		`multiple_choice,,A,B,C,D,A,1,easy` + "\n" +
		`multiple_choice,Fine,A,B,C,D,B,1,easy`

	questions, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if questions[0].IsValid {
		t.Error("blank-text question marked valid")
	}
	if !questions[1].IsValid {
		t.Errorf("valid question flagged: %v", questions[1].ValidationErrors)
	}
}

func TestRoundTripPreservesQuotesAndCommas(t *testing.T) {
	q := models.BulkQuestion{
		Type: models.MultipleChoice,
		Text: `He said "wait, stop" before leaving`,
		Options: []models.AnswerOption{
			{ID: "1", Text: `Yes, "sure"`},
			{ID: "2", Text: "No"},
			{ID: "3", Text: "Maybe"},
			{ID: "4", Text: ""},
		},
		CorrectAnswer: "1",
		Marks:         3,
		Difficulty:    models.DifficultyHard,
	}

	parsed, err := Parse(Render([]models.BulkQuestion{q}))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	got := parsed[0]

	if got.Text != q.Text {
		t.Errorf("text = %q, want %q", got.Text, q.Text)
	}
	for i := range q.Options {
		if got.Options[i].Text != q.Options[i].Text {
			t.Errorf("option %d = %q, want %q", i, got.Options[i].Text, q.Options[i].Text)
		}
	}
	if got.CorrectAnswer != "1" {
		t.Errorf("correct answer = %q, want re-resolved id 1", got.CorrectAnswer)
	}
	if got.Marks != q.Marks || got.Difficulty != q.Difficulty {
		t.Errorf("marks/difficulty = %d/%q, want %d/%q", got.Marks, got.Difficulty, q.Marks, q.Difficulty)
	}
}

func TestRenderExportsAnswerText(t *testing.T) {
	q := models.BulkQuestion{
		Type: models.MultipleChoice,
		Text: "Capital of France?",
		Options: []models.AnswerOption{
			{ID: "1", Text: "London"},
			{ID: "2", Text: "Paris"},
			{ID: "3", Text: "Rome"},
			{ID: "4", Text: "Berlin"},
		},
		CorrectAnswer: "2",
		Marks:         1,
		Difficulty:    models.DifficultyEasy,
	}

	out := Render([]models.BulkQuestion{q})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[1], `"Paris"`) {
		t.Errorf("row %q does not export answer as option text", lines[1])
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("output has trailing newline")
	}
}

func TestRenderFallsBackToRawAnswer(t *testing.T) {
	q := models.BulkQuestion{
		Type:          models.FillBlank,
		Text:          "2+2=?",
		CorrectAnswer: "4",
		Marks:         1,
		Difficulty:    models.DifficultyEasy,
	}

	out := Render([]models.BulkQuestion{q})
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[1], `"4"`) {
		t.Errorf("row %q should carry the literal answer", lines[1])
	}
}

func BenchmarkParse(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("header\n")
	for i := 0; i < 500; i++ {
		sb.WriteString(`multiple_choice,"Question, with ""quotes""",A,B,C,D,B,2,medium` + "\n")
	}
	data := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(data); err != nil {
			b.Fatal(err)
		}
	}
}
