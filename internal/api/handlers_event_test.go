package api

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

func TestCreateEvent_Defaults(t *testing.T) {
	s := newTestServer(t)
	calc := s.createSubject(t, "Calc")

	rec := s.do(t, http.MethodPost, "/api/events", map[string]string{"subjectId": calc.ID, "title": " Problem set 1 "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	ev := decode[models.AcademicEvent](t, rec)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Problem set 1", ev.Title)
	assert.Equal(t, models.Date("2024-10-01"), ev.Date)
	assert.Equal(t, models.EventTypeAssignment, ev.Type)
	assert.Equal(t, "Calc", ev.SubjectName)
	assert.Equal(t, calc.Color, ev.SubjectColor)
}

func TestCreateEvent_Validation(t *testing.T) {
	s := newTestServer(t)
	calc := s.createSubject(t, "Calc")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantField  string
	}{
		{"missing title", map[string]string{"subjectId": calc.ID}, http.StatusBadRequest, "title"},
		{"bad date", map[string]string{"subjectId": calc.ID, "title": "T", "date": "2024-02-30"}, http.StatusBadRequest, "date"},
		{"bad type", map[string]string{"subjectId": calc.ID, "title": "T", "type": "Party"}, http.StatusBadRequest, "type"},
		{"unknown subject", map[string]string{"subjectId": "nope", "title": "T"}, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/events", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantField != "" {
				assert.Contains(t, decode[APIError](t, rec).Fields, tt.wantField)
			}
		})
	}
	assert.Empty(t, s.store.Events())
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	s := newTestServer(t)
	calc := s.createSubject(t, "Calc")
	hist := s.createSubject(t, "History")

	rec := s.do(t, http.MethodPost, "/api/events", map[string]string{"subjectId": calc.ID, "title": "Quiz", "date": "2024-10-20", "type": "Exam"})
	require.Equal(t, http.StatusCreated, rec.Code)
	ev := decode[models.AcademicEvent](t, rec)

	rec = s.do(t, http.MethodPut, "/api/events/"+ev.ID, map[string]string{"subjectId": hist.ID, "title": "Essay", "date": "2024-10-22", "type": "Assignment"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.AcademicEvent](t, rec)
	assert.Equal(t, ev.ID, updated.ID)
	assert.Equal(t, "History", updated.SubjectName)
	assert.Equal(t, hist.Color, updated.SubjectColor)

	all := s.store.Events()
	require.Len(t, all, 1, "update replaces in place")
	assert.Equal(t, "Essay", all[0].Title)

	rec = s.do(t, http.MethodPut, "/api/events/missing", map[string]string{"subjectId": hist.ID, "title": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/events/"+ev.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/events/"+ev.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.store.Events())
}

func TestCreateEvent_RacingSubjectDeleteLeavesNoOrphans(t *testing.T) {
	s := newTestServer(t)
	calc := s.createSubject(t, "Calc")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			rec := s.do(t, http.MethodPost, "/api/events", map[string]string{"subjectId": calc.ID, "title": "Quiz"})
			if rec.Code != http.StatusCreated && rec.Code != http.StatusNotFound {
				t.Errorf("unexpected status %d: %s", rec.Code, rec.Body.String())
			}
		}
	}()
	go func() {
		defer wg.Done()
		rec := s.do(t, http.MethodDelete, "/api/subjects/"+calc.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}()
	wg.Wait()

	assert.Empty(t, s.store.Events())
	rec := s.do(t, http.MethodPost, "/api/events", map[string]string{"subjectId": calc.ID, "title": "Late"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEvents_FilterAndMsgpack(t *testing.T) {
	s := newTestServer(t)
	calc := s.createSubject(t, "Calc")
	hist := s.createSubject(t, "History")
	for _, body := range []map[string]string{
		{"subjectId": calc.ID, "title": "A", "date": "2024-10-05"},
		{"subjectId": hist.ID, "title": "B", "date": "2024-10-06"},
		{"subjectId": calc.ID, "title": "C", "date": "2024-10-07"},
	} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/events", body).Code)
	}

	rec := s.do(t, http.MethodGet, "/api/events?subjectId="+calc.ID, nil)
	events := decode[[]models.AcademicEvent](t, rec)
	require.Len(t, events, 2)
	assert.Equal(t, "A", events[0].Title)
	assert.Equal(t, "C", events[1].Title)

	rec = s.do(t, http.MethodGet, "/api/events/msgpack", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var payload struct {
		Events []models.AcademicEvent `msgpack:"events"`
		Total  int                    `msgpack:"total"`
	}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 3, payload.Total)
	assert.Equal(t, "B", payload.Events[1].Title)
}
