// Package ingest turns uploaded syllabi into academic events: extraction,
// inference and a single batch merge, with one terminal status per file.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/CamiloThisPunk/PlanUnsch/internal/catalog"
	"github.com/CamiloThisPunk/PlanUnsch/internal/logging"
	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/notify"
)

// DefaultMinTextLength is the shortest extracted text treated as readable.
const DefaultMinTextLength = 100

// Stage is the step an ingestion job is currently in.
type Stage string

const (
	StageQueued     Stage = "queued"
	StageExtracting Stage = "extracting"
	StageInferring  Stage = "inferring"
	StageMerging    Stage = "merging"
	StageDone       Stage = "done"
)

// Catalog is the part of the domain store the pipeline writes to.
type Catalog interface {
	Subject(id string) (models.Subject, bool)
	AddSyllabusRecord(subjectID string, file models.SyllabusFile) error
	UpdateSyllabusStatus(subjectID, fileID string, status models.SyllabusStatus, msg string) error
	AppendEvents(subjectID string, events []models.AcademicEvent) error
}

// Extractor produces plain text from a document.
type Extractor interface {
	Extract(ctx context.Context, doc models.Document) (string, error)
}

// Inferrer proposes events found in syllabus text.
type Inferrer interface {
	Infer(ctx context.Context, text string) ([]models.Candidate, error)
}

// Job tracks one ingestion. Its ID is the syllabus record id.
type Job struct {
	ID          string                `json:"id"`
	SubjectID   string                `json:"subjectId"`
	FileName    string                `json:"fileName"`
	Status      models.SyllabusStatus `json:"status"`
	Stage       Stage                 `json:"stage"`
	EventCount  int                   `json:"eventCount"`
	Error       string                `json:"error,omitempty"`
	Dropped     bool                  `json:"dropped,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
}

// Options tune a Manager.
type Options struct {
	// MinTextLength is the extraction gate in characters. Zero uses DefaultMinTextLength.
	MinTextLength int
	// MaxConcurrent bounds pipelines running extraction or inference at once. Zero is unbounded.
	MaxConcurrent int
}

// Manager runs ingestion pipelines, one goroutine per uploaded file.
type Manager struct {
	catalog   Catalog
	extractor Extractor
	inferrer  Inferrer
	notifier  notify.Sink

	minTextLength int
	slots         chan struct{}

	mu   sync.RWMutex
	jobs map[string]*Job
	wg   sync.WaitGroup
	now  func() time.Time
}

var logger = logging.New("ingest")

// NewManager creates a new ingestion manager.
func NewManager(c Catalog, extractor Extractor, inferrer Inferrer, notifier notify.Sink, opts Options) *Manager {
	m := &Manager{
		catalog:       c,
		extractor:     extractor,
		inferrer:      inferrer,
		notifier:      notifier,
		minTextLength: opts.MinTextLength,
		jobs:          make(map[string]*Job),
		now:           time.Now,
	}
	if m.minTextLength <= 0 {
		m.minTextLength = DefaultMinTextLength
	}
	if opts.MaxConcurrent > 0 {
		m.slots = make(chan struct{}, opts.MaxConcurrent)
	}
	return m
}

// Ingest registers a processing syllabus record for the subject and starts the
// pipeline in the background. It fails only when the subject does not exist.
// The pipeline outlives ctx's cancellation; it always settles to completed or error.
func (m *Manager) Ingest(ctx context.Context, subjectID string, doc models.Document) (models.SyllabusFile, error) {
	subject, ok := m.catalog.Subject(subjectID)
	if !ok {
		return models.SyllabusFile{}, subjectNotFound(subjectID)
	}

	now := m.now()
	file := models.SyllabusFile{
		ID:        uuid.New().String(),
		Name:      doc.Name,
		Status:    models.SyllabusStatusProcessing,
		CreatedAt: now,
	}
	if err := m.catalog.AddSyllabusRecord(subject.ID, file); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return models.SyllabusFile{}, subjectNotFound(subjectID)
		}
		return models.SyllabusFile{}, fmt.Errorf("registering syllabus: %w", err)
	}

	job := &Job{
		ID:        file.ID,
		SubjectID: subject.ID,
		FileName:  doc.Name,
		Status:    models.SyllabusStatusProcessing,
		Stage:     StageQueued,
		CreatedAt: now,
	}
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(context.WithoutCancel(ctx), job, doc)

	return file, nil
}

// Job returns a snapshot of the job with the given id.
func (m *Manager) Job(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Wait blocks until every started pipeline has settled.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context, job *Job, doc models.Document) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Ingest %s] PANIC recovered: %v", logging.ShortID(job.ID), r)
			m.fail(job, inferenceFailed(fmt.Errorf("panic: %v", r)))
		}
	}()

	if m.slots != nil {
		m.slots <- struct{}{}
		defer func() { <-m.slots }()
	}

	logger.Infof("[Ingest %s] Starting processing: %s (%d bytes)", logging.ShortID(job.ID), doc.Name, len(doc.Data))

	m.setStage(job, StageExtracting)
	text, err := m.extractor.Extract(ctx, doc)
	if err != nil {
		m.fail(job, extractionFailed(doc.Name, err))
		return
	}
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < m.minTextLength {
		m.fail(job, unreadable(n, m.minTextLength))
		return
	}

	m.setStage(job, StageInferring)
	candidates, err := m.inferrer.Infer(ctx, text)
	if err != nil {
		m.fail(job, inferenceFailed(err))
		return
	}

	m.setStage(job, StageMerging)
	subject, ok := m.catalog.Subject(job.SubjectID)
	if !ok {
		m.drop(job)
		return
	}
	events := make([]models.AcademicEvent, 0, len(candidates))
	for _, c := range candidates {
		events = append(events, models.AcademicEvent{
			ID:           uuid.New().String(),
			SubjectID:    subject.ID,
			SubjectName:  subject.Name,
			SubjectColor: subject.Color,
			Title:        c.Title,
			Date:         c.Date,
			Type:         c.Type,
		})
	}

	if err := m.catalog.AppendEvents(subject.ID, events); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			m.drop(job)
			return
		}
		m.fail(job, storeFailed(err))
		return
	}

	m.complete(job, len(events))
}

func (m *Manager) setStage(job *Job, stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Stage = stage
}

func (m *Manager) complete(job *Job, count int) {
	err := m.catalog.UpdateSyllabusStatus(job.SubjectID, job.ID, models.SyllabusStatusCompleted, "")
	if errors.Is(err, catalog.ErrNotFound) {
		m.drop(job)
		return
	}
	if err != nil {
		logger.Errorf("[Ingest %s] Failed to mark completed: %v", logging.ShortID(job.ID), err)
	}

	m.finish(job, models.SyllabusStatusCompleted, count, "")
	logger.Infof("[Ingest %s] Processing complete: %d events", logging.ShortID(job.ID), count)

	if count == 0 {
		m.notifier.Notify(notify.KindInfo, fmt.Sprintf("Done! No clear academic events were found in %q.", job.FileName))
		return
	}
	m.notifier.Notify(notify.KindSuccess, fmt.Sprintf("Extracted %d events from %q.", count, job.FileName))
}

func (m *Manager) fail(job *Job, err error) {
	msg := UserMessage(err)
	logger.Warnf("[Ingest %s] Error: %v", logging.ShortID(job.ID), err)

	uerr := m.catalog.UpdateSyllabusStatus(job.SubjectID, job.ID, models.SyllabusStatusError, msg)
	if errors.Is(uerr, catalog.ErrNotFound) {
		m.drop(job)
		return
	}
	if uerr != nil {
		logger.Errorf("[Ingest %s] Failed to mark error: %v", logging.ShortID(job.ID), uerr)
	}

	m.finish(job, models.SyllabusStatusError, 0, msg)
	m.notifier.Notify(notify.KindError, msg)
}

// drop settles a job whose subject was deleted mid-flight. Nothing is written
// and nothing is announced.
func (m *Manager) drop(job *Job) {
	logger.Infof("[Ingest %s] Subject %s was deleted, discarding results", logging.ShortID(job.ID), logging.ShortID(job.SubjectID))

	m.mu.Lock()
	job.Dropped = true
	m.mu.Unlock()
	m.finish(job, models.SyllabusStatusError, 0, subjectNotFound(job.SubjectID).Message)
}

func (m *Manager) finish(job *Job, status models.SyllabusStatus, count int, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	job.Status = status
	job.Stage = StageDone
	job.EventCount = count
	job.Error = msg
	job.CompletedAt = &now
}

// CleanupOldJobs removes finished jobs completed before maxAge ago.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for id, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}
