package types

import "fmt"

// ErrorKind tags a SyncError with its place in the failure taxonomy.
// Duplicate skips are deliberately not an error kind: they are counted
// outcomes, never failures.
type ErrorKind string

const (
	// ErrValidation blocks a single record's transform; field detail goes in Message.
	ErrValidation ErrorKind = "validation"
	// ErrTransformation wraps unexpected failures during mapping or extraction.
	ErrTransformation ErrorKind = "transformation"
	// ErrBatch marks every remaining item of a batch after an infrastructure failure.
	ErrBatch ErrorKind = "batch"
	// ErrSync is the top-level catch-all that fails a whole run.
	ErrSync ErrorKind = "sync"
	// ErrSchedulerQuery means a scheduler poll could not read the config store.
	ErrSchedulerQuery ErrorKind = "scheduler_query"
)

// SyncError is the structured error accumulated by imports and sync runs.
// Per-item errors are collected, never returned up, so one bad record cannot
// abort a batch or a run.
type SyncError struct {
	Kind    ErrorKind `json:"kind" firestore:"kind"`
	Phase   string    `json:"phase,omitempty" firestore:"phase,omitempty"`
	ItemID  string    `json:"item_id,omitempty" firestore:"item_id,omitempty"`
	Message string    `json:"message" firestore:"message"`
}

func (e *SyncError) Error() string {
	switch {
	case e.Phase != "" && e.ItemID != "":
		return fmt.Sprintf("%s [%s] %s: %s", e.Kind, e.Phase, e.ItemID, e.Message)
	case e.Phase != "":
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Phase, e.Message)
	case e.ItemID != "":
		return fmt.Sprintf("%s %s: %s", e.Kind, e.ItemID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidationError builds a validation error for one record.
func NewValidationError(itemID, message string) *SyncError {
	return &SyncError{Kind: ErrValidation, ItemID: itemID, Message: message}
}

// NewTransformationError wraps an unexpected transform failure.
func NewTransformationError(itemID string, err error) *SyncError {
	return &SyncError{Kind: ErrTransformation, ItemID: itemID, Message: err.Error()}
}
