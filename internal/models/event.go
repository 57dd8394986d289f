package models

// EventType is the category of an academic event.
type EventType string

const (
	EventTypeExam       EventType = "Exam"
	EventTypeAssignment EventType = "Assignment"
	EventTypeReading    EventType = "Reading"
	EventTypeProject    EventType = "Project"
	EventTypeOther      EventType = "Other"
)

// EventTypes lists every category in display order.
var EventTypes = []EventType{
	EventTypeExam,
	EventTypeAssignment,
	EventTypeReading,
	EventTypeProject,
	EventTypeOther,
}

// Valid reports whether t is one of the known categories.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AcademicEvent is a dated deadline or task belonging to one subject.
// SubjectName and SubjectColor are snapshots kept in sync by the catalog.
type AcademicEvent struct {
	ID           string    `json:"id" msgpack:"id"`
	SubjectID    string    `json:"subjectId" msgpack:"subjectId"`
	SubjectName  string    `json:"subjectName" msgpack:"subjectName"`
	SubjectColor string    `json:"subjectColor" msgpack:"subjectColor"`
	Title        string    `json:"title" msgpack:"title"`
	Date         Date      `json:"date" msgpack:"date"`
	Type         EventType `json:"type" msgpack:"type"`
}

// Candidate is an event proposed by inference, before it has an id or owner.
type Candidate struct {
	Title string    `json:"title" validate:"required"`
	Date  Date      `json:"date" validate:"required,isodate"`
	Type  EventType `json:"type" validate:"required,category"`
}
