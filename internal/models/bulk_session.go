package models

import "time"

type BulkMode string

const (
	BulkModeSetup         BulkMode = "setup"
	BulkModeManualEntry   BulkMode = "manual-entry"
	BulkModeImportPreview BulkMode = "import-preview"
	BulkModeExportPreview BulkMode = "export-preview"
)

// BulkSession is the state of one bulk-authoring flow. Sessions are
// value types: every transition returns a new session, never mutates
// the one passed in.
type BulkSession struct {
	ID      string   `json:"id"`
	Mode    BulkMode `json:"mode"`
	Subject string   `json:"subject"`

	Questions []BulkQuestion `json:"questions"`

	// Selected marks export rows by index, parallel to Questions.
	Selected []bool `json:"selected"`

	// Export-preview rows carry the persisted IDs they came from.
	QuestionIDs []uint `json:"question_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBulkSession returns a fresh session in setup mode.
func NewBulkSession(id string) BulkSession {
	now := time.Now()
	return BulkSession{
		ID:        id,
		Mode:      BulkModeSetup,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidCount and InvalidCount summarize the annotation state.
func (s BulkSession) ValidCount() int {
	n := 0
	for _, q := range s.Questions {
		if q.IsValid {
			n++
		}
	}
	return n
}

func (s BulkSession) InvalidCount() int {
	return len(s.Questions) - s.ValidCount()
}

func (s BulkSession) SelectedCount() int {
	n := 0
	for _, sel := range s.Selected {
		if sel {
			n++
		}
	}
	return n
}
