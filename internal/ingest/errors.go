package ingest

import (
	"errors"
	"fmt"
)

// Failure kinds. Every pipeline failure is an *Error whose Kind is one of these.
var (
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrExtractionFailed   = errors.New("extraction failed")
	ErrUnreadableDocument = errors.New("unreadable document")
	ErrInferenceFailed    = errors.New("inference failed")
	ErrStoreFailed        = errors.New("saving events failed")
)

// UnreadableMessage is shown when a document yields too little text.
const UnreadableMessage = "This PDF appears to be image-based and cannot be read. Please upload the original PDF."

// Error is a recoverable ingestion failure with a user-displayable message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// UserMessage returns the message to show for err.
func UserMessage(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "An unknown error occurred."
}

func subjectNotFound(id string) *Error {
	return &Error{
		Kind:    ErrSubjectNotFound,
		Message: "The subject no longer exists.",
		Err:     fmt.Errorf("subject %s", id),
	}
}

func extractionFailed(name string, err error) *Error {
	return &Error{
		Kind:    ErrExtractionFailed,
		Message: fmt.Sprintf("Could not read the text of %q.", name),
		Err:     err,
	}
}

func unreadable(length, minimum int) *Error {
	return &Error{
		Kind:    ErrUnreadableDocument,
		Message: UnreadableMessage,
		Err:     fmt.Errorf("extracted %d characters, need at least %d", length, minimum),
	}
}

func inferenceFailed(err error) *Error {
	return &Error{
		Kind:    ErrInferenceFailed,
		Message: "The syllabus could not be processed. Please try again.",
		Err:     err,
	}
}

func storeFailed(err error) *Error {
	return &Error{
		Kind:    ErrStoreFailed,
		Message: "The extracted events could not be saved. Please try again.",
		Err:     err,
	}
}
