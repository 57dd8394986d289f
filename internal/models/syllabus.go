package models

import "time"

// SyllabusStatus represents the processing status of an uploaded syllabus.
type SyllabusStatus string

const (
	SyllabusStatusPending    SyllabusStatus = "pending"
	SyllabusStatusProcessing SyllabusStatus = "processing"
	SyllabusStatusCompleted  SyllabusStatus = "completed"
	SyllabusStatusError      SyllabusStatus = "error"
)

// Terminal reports whether no further transition is allowed from s.
func (s SyllabusStatus) Terminal() bool {
	return s == SyllabusStatusCompleted || s == SyllabusStatusError
}

// CanTransition reports whether a record in status s may move to next.
// The only allowed path is pending -> processing -> {completed, error}.
func (s SyllabusStatus) CanTransition(next SyllabusStatus) bool {
	switch s {
	case SyllabusStatusPending:
		return next == SyllabusStatusProcessing
	case SyllabusStatusProcessing:
		return next.Terminal()
	default:
		return false
	}
}

// SyllabusFile records one ingestion attempt for a subject.
// The uploaded document itself is never stored.
type SyllabusFile struct {
	ID        string         `json:"id" msgpack:"id"`
	Name      string         `json:"name" msgpack:"name"`
	Status    SyllabusStatus `json:"status" msgpack:"status"`
	Error     string         `json:"error,omitempty" msgpack:"error,omitempty"`
	CreatedAt time.Time      `json:"createdAt" msgpack:"createdAt"`
}
