package models

import "time"

type GenerationStatus string

const (
	StatusGenerating GenerationStatus = "generating"
	StatusCompleted  GenerationStatus = "completed"
	StatusError      GenerationStatus = "error"
)

// TimestampLayout formats HistoryEntry.Timestamp for display.
const TimestampLayout = "Jan 2, 2006, 3:04:05 PM"

// HistoryEntry is one generation attempt tracked by the history ledger.
// ResultHandle is set only when completed, ErrorMessage only on error and
// ProgressMessage only while generating.
type HistoryEntry struct {
	ID              string           `json:"id"`
	Prompt          string           `json:"prompt"`
	AspectRatio     AspectRatio      `json:"aspectRatio"`
	Resolution      Resolution       `json:"resolution"`
	ModelVariant    string           `json:"veoModel"`
	SoundEnabled    bool             `json:"soundEnabled"`
	ImageUsed       bool             `json:"imageUsed"`
	Timestamp       string           `json:"timestamp"`
	CreatedAt       time.Time        `json:"createdAt"`
	Status          GenerationStatus `json:"status"`
	ResultHandle    string           `json:"videoHandle,omitempty"`
	ProgressMessage string           `json:"loadingMessage,omitempty"`
	ErrorMessage    string           `json:"error,omitempty"`
}

// NewGeneratingEntry builds the entry appended at submission time.
func NewGeneratingEntry(id string, req GenerationRequest, progress string, now time.Time) HistoryEntry {
	return HistoryEntry{
		ID:              id,
		Prompt:          req.Prompt,
		AspectRatio:     req.AspectRatio,
		Resolution:      req.Resolution,
		ModelVariant:    req.ModelVariant,
		SoundEnabled:    req.SoundEnabled,
		ImageUsed:       req.ReferenceImage != nil,
		Timestamp:       now.Format(TimestampLayout),
		CreatedAt:       now,
		Status:          StatusGenerating,
		ProgressMessage: progress,
	}
}

func (e HistoryEntry) IsTerminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusError
}

// HistoryUpdate carries the fields to merge into an entry; nil fields are left as-is.
type HistoryUpdate struct {
	Status          *GenerationStatus
	ResultHandle    *string
	ProgressMessage *string
	ErrorMessage    *string
}

func (u HistoryUpdate) Apply(e *HistoryEntry) {
	if u.Status != nil {
		e.Status = *u.Status
	}
	if u.ResultHandle != nil {
		e.ResultHandle = *u.ResultHandle
	}
	if u.ProgressMessage != nil {
		e.ProgressMessage = *u.ProgressMessage
	}
	if u.ErrorMessage != nil {
		e.ErrorMessage = *u.ErrorMessage
	}
}

// ProgressUpdate changes only the progress message.
func ProgressUpdate(message string) HistoryUpdate {
	return HistoryUpdate{ProgressMessage: &message}
}

// CompletedUpdate moves an entry to completed and attaches its result.
func CompletedUpdate(handle string) HistoryUpdate {
	status := StatusCompleted
	empty := ""
	return HistoryUpdate{Status: &status, ResultHandle: &handle, ProgressMessage: &empty, ErrorMessage: &empty}
}

// FailedUpdate moves an entry to error with the given reason.
func FailedUpdate(message string) HistoryUpdate {
	status := StatusError
	empty := ""
	return HistoryUpdate{Status: &status, ResultHandle: &empty, ProgressMessage: &empty, ErrorMessage: &message}
}
