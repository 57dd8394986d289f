package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/notify"
)

// FakeExtractor returns Text (or Err) for every document. When Gate is set,
// Extract blocks until it is closed.
type FakeExtractor struct {
	Text string
	Err  error
	Gate chan struct{}

	mu    sync.Mutex
	calls []string
}

func (f *FakeExtractor) Extract(ctx context.Context, doc models.Document) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, doc.Name)
	f.mu.Unlock()

	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// Calls returns the names of the documents seen so far.
func (f *FakeExtractor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// FakeInferrer returns Candidates (or Err) and records the texts it was given.
type FakeInferrer struct {
	Candidates []models.Candidate
	Err        error

	mu    sync.Mutex
	texts []string
}

func (f *FakeInferrer) Infer(_ context.Context, text string) ([]models.Candidate, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return append([]models.Candidate(nil), f.Candidates...), nil
}

// Calls returns how many times Infer ran.
func (f *FakeInferrer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

// Sent is a notification captured by RecordingNotifier.
type Sent struct {
	Kind    notify.Kind
	Message string
}

// RecordingNotifier captures notifications for assertions.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Sent
}

func (r *RecordingNotifier) Notify(kind notify.Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Kind: kind, Message: message})
}

// Sent returns the captured notifications in order.
func (r *RecordingNotifier) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// Text returns a string of n characters, long enough to pass the extraction gate.
func Text(n int) string {
	return strings.Repeat("a", n)
}
