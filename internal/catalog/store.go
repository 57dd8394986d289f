// Package catalog holds the authoritative subject and event collections and
// mediates every mutation so that ownership and denormalization invariants hold.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CamiloThisPunk/PlanUnsch/internal/logging"
	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/storage"
)

// Record names in the backing RecordStore.
const (
	RecordSubjects = "subjects"
	RecordEvents   = "events"
)

// InterruptedMessage is recorded on syllabi that were still processing when the process stopped.
const InterruptedMessage = "Processing was interrupted. Please upload the file again."

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid syllabus status transition")
)

var logger = logging.New("catalog")

// Store is the single writer for subjects and events. Every mutation runs under
// one lock, is persisted, and only then becomes visible to readers.
type Store struct {
	mu       sync.RWMutex
	records  storage.RecordStore
	subjects []models.Subject
	events   []models.AcademicEvent
	now      func() time.Time
}

// New loads both collections from records, defaulting to empty.
func New(records storage.RecordStore) (*Store, error) {
	s := &Store{
		records:  records,
		subjects: []models.Subject{},
		events:   []models.AcademicEvent{},
		now:      time.Now,
	}

	names, err := records.Names()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	for _, name := range names {
		switch name {
		case RecordSubjects, RecordEvents, RecordProfile:
		default:
			logger.Warnf("ignoring unknown stored record %q", name)
		}
	}

	if _, err := records.Load(RecordSubjects, &s.subjects); err != nil {
		return nil, fmt.Errorf("loading subjects: %w", err)
	}
	if _, err := records.Load(RecordEvents, &s.events); err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	if s.subjects == nil {
		s.subjects = []models.Subject{}
	}
	if s.events == nil {
		s.events = []models.AcademicEvent{}
	}

	if n := s.settleInterrupted(); n > 0 {
		logger.Warnf("settled %d syllabus records interrupted by restart", n)
		if err := s.records.Save(RecordSubjects, s.subjects); err != nil {
			return nil, fmt.Errorf("saving subjects: %w", err)
		}
	}

	logger.Infof("loaded %d subjects, %d events", len(s.subjects), len(s.events))
	return s, nil
}

// settleInterrupted moves records orphaned mid-processing to error; their blobs are gone.
func (s *Store) settleInterrupted() int {
	n := 0
	for i := range s.subjects {
		for j := range s.subjects[i].Syllabi {
			f := &s.subjects[i].Syllabi[j]
			if f.Status == models.SyllabusStatusProcessing || f.Status == models.SyllabusStatusPending {
				f.Status = models.SyllabusStatusError
				f.Error = InterruptedMessage
				n++
			}
		}
	}
	return n
}

// commit persists the changed collections and then publishes them.
// Callers hold s.mu.
func (s *Store) commit(subjects []models.Subject, events []models.AcademicEvent) error {
	if subjects != nil {
		if err := s.records.Save(RecordSubjects, subjects); err != nil {
			return fmt.Errorf("saving subjects: %w", err)
		}
	}
	if events != nil {
		if err := s.records.Save(RecordEvents, events); err != nil {
			if subjects != nil {
				// keep both records consistent with the published state
				if rbErr := s.records.Save(RecordSubjects, s.subjects); rbErr != nil {
					logger.Errorf("restoring subjects after failed write: %v", rbErr)
				}
			}
			return fmt.Errorf("saving events: %w", err)
		}
	}

	if subjects != nil {
		s.subjects = subjects
	}
	if events != nil {
		s.events = events
	}
	return nil
}

func (s *Store) indexOfSubject(id string) int {
	for i, sub := range s.subjects {
		if sub.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) cloneSubjects() []models.Subject {
	out := make([]models.Subject, len(s.subjects))
	for i, sub := range s.subjects {
		out[i] = sub.Clone()
	}
	return out
}

func (s *Store) cloneEvents() []models.AcademicEvent {
	return append(make([]models.AcademicEvent, 0, len(s.events)), s.events...)
}

// AddSubject creates a subject with the next palette color.
func (s *Store) AddSubject(name string) (models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := models.Subject{
		ID:      uuid.New().String(),
		Name:    strings.TrimSpace(name),
		Color:   models.PaletteColor(len(s.subjects)),
		Syllabi: []models.SyllabusFile{},
	}

	subjects := append(s.cloneSubjects(), sub)
	if err := s.commit(subjects, nil); err != nil {
		return models.Subject{}, err
	}
	return sub.Clone(), nil
}

// RenameSubject updates the subject's name and every owned event's snapshot.
func (s *Store) RenameSubject(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfSubject(id)
	if idx < 0 {
		return fmt.Errorf("subject %s: %w", id, ErrNotFound)
	}

	name = strings.TrimSpace(name)
	subjects := s.cloneSubjects()
	subjects[idx].Name = name

	events := s.cloneEvents()
	for i := range events {
		if events[i].SubjectID == id {
			events[i].SubjectName = name
		}
	}

	return s.commit(subjects, events)
}

// DeleteSubject removes the subject and all of its events.
func (s *Store) DeleteSubject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfSubject(id)
	if idx < 0 {
		return fmt.Errorf("subject %s: %w", id, ErrNotFound)
	}

	subjects := s.cloneSubjects()
	subjects = append(subjects[:idx], subjects[idx+1:]...)

	events := make([]models.AcademicEvent, 0, len(s.events))
	for _, e := range s.events {
		if e.SubjectID != id {
			events = append(events, e)
		}
	}

	return s.commit(subjects, events)
}

// Subject returns a copy of the subject with the given id.
func (s *Store) Subject(id string) (models.Subject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOfSubject(id)
	if idx < 0 {
		return models.Subject{}, false
	}
	return s.subjects[idx].Clone(), true
}

// Subjects returns copies of all subjects in creation order.
func (s *Store) Subjects() []models.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneSubjects()
}

// AddSyllabusRecord appends a syllabus record to the subject.
func (s *Store) AddSyllabusRecord(subjectID string, file models.SyllabusFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfSubject(subjectID)
	if idx < 0 {
		return fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
	}
	if _, exists := s.subjects[idx].Syllabus(file.ID); exists {
		return fmt.Errorf("syllabus %s already exists", file.ID)
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = s.now()
	}

	subjects := s.cloneSubjects()
	subjects[idx].Syllabi = append(subjects[idx].Syllabi, file)
	return s.commit(subjects, nil)
}

// UpdateSyllabusStatus moves a syllabus record to status, recording msg for errors.
func (s *Store) UpdateSyllabusStatus(subjectID, fileID string, status models.SyllabusStatus, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfSubject(subjectID)
	if idx < 0 {
		return fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
	}

	subjects := s.cloneSubjects()
	syllabi := subjects[idx].Syllabi
	for i := range syllabi {
		if syllabi[i].ID != fileID {
			continue
		}
		if !syllabi[i].Status.CanTransition(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, syllabi[i].Status, status)
		}
		syllabi[i].Status = status
		if status == models.SyllabusStatusError {
			syllabi[i].Error = msg
		} else {
			syllabi[i].Error = ""
		}
		return s.commit(subjects, nil)
	}
	return fmt.Errorf("syllabus %s: %w", fileID, ErrNotFound)
}

// AppendEvents adds a batch of events owned by subjectID. The subject's current
// name and color are stamped on every event. If the subject no longer exists the
// batch is rejected with ErrNotFound and nothing is written.
func (s *Store) AppendEvents(subjectID string, batch []models.AcademicEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfSubject(subjectID)
	if idx < 0 {
		return fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
	}
	if len(batch) == 0 {
		return nil
	}

	sub := s.subjects[idx]
	events := s.cloneEvents()
	for _, e := range batch {
		e.SubjectID = sub.ID
		e.SubjectName = sub.Name
		e.SubjectColor = sub.Color
		events = append(events, e)
	}
	return s.commit(nil, events)
}

// UpsertEvent inserts the event or replaces the one with the same id in place.
// Subject ownership is the caller's responsibility.
func (s *Store) UpsertEvent(event models.AcademicEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertLocked(event)
}

// SaveOwnedEvent upserts the event after stamping its subject's current name and
// color. The subject lookup and the write happen under the same lock, so a
// concurrent DeleteSubject cannot leave the event orphaned. Returns ErrNotFound
// when the subject does not exist.
func (s *Store) SaveOwnedEvent(event models.AcademicEvent) (models.AcademicEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfSubject(event.SubjectID)
	if idx < 0 {
		return models.AcademicEvent{}, fmt.Errorf("subject %s: %w", event.SubjectID, ErrNotFound)
	}
	sub := s.subjects[idx]
	event.SubjectName = sub.Name
	event.SubjectColor = sub.Color
	if err := s.upsertLocked(event); err != nil {
		return models.AcademicEvent{}, err
	}
	return event, nil
}

func (s *Store) upsertLocked(event models.AcademicEvent) error {
	events := s.cloneEvents()
	replaced := false
	for i := range events {
		if events[i].ID == event.ID {
			events[i] = event
			replaced = true
			break
		}
	}
	if !replaced {
		events = append(events, event)
	}
	return s.commit(nil, events)
}

// DeleteEvent removes the event if present.
func (s *Store) DeleteEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]models.AcademicEvent, 0, len(s.events))
	for _, e := range s.events {
		if e.ID != id {
			events = append(events, e)
		}
	}
	if len(events) == len(s.events) {
		return nil
	}
	return s.commit(nil, events)
}

// Event returns the event with the given id.
func (s *Store) Event(id string) (models.AcademicEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return models.AcademicEvent{}, false
}

// Events returns a copy of all events in insertion order.
func (s *Store) Events() []models.AcademicEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneEvents()
}
