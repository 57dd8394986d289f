package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CamiloThisPunk/PlanUnsch/internal/catalog"
	"github.com/CamiloThisPunk/PlanUnsch/internal/ingest"
	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/notify"
	"github.com/CamiloThisPunk/PlanUnsch/internal/testutil"
)

var testNow = time.Date(2024, 10, 1, 10, 0, 0, 0, time.UTC)

type testServer struct {
	e         *echo.Echo
	store     *catalog.Store
	ingest    *ingest.Manager
	hub       *notify.Hub
	extractor *testutil.FakeExtractor
	inferrer  *testutil.FakeInferrer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := catalog.New(testutil.NewMockRecordStore())
	require.NoError(t, err)

	hub := notify.NewHub(20)
	extractor := &testutil.FakeExtractor{Text: testutil.Text(500)}
	inferrer := &testutil.FakeInferrer{}
	mgr := ingest.NewManager(store, extractor, inferrer, hub, ingest.Options{MinTextLength: 100})
	t.Cleanup(mgr.Wait)

	e := echo.New()
	SetupMiddleware(e)
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Catalog:  store,
		Ingester: mgr,
		Feed:     hub,
		Notifier: hub,
		Version:  "test",

		StorageBackend:   "file",
		InferenceBackend: "fake",
		Now:              func() time.Time { return testNow },
	}))

	return &testServer{e: e, store: store, ingest: mgr, hub: hub, extractor: extractor, inferrer: inferrer}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createSubject(t *testing.T, name string) models.Subject {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/subjects", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Subject](t, rec)
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	calc := s.createSubject(t, "Calc")
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/events", map[string]string{"subjectId": calc.ID, "title": "Quiz"}).Code)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(HealthInfo{
		Version:          "1.2.3",
		StorageBackend:   "duckdb",
		InferenceBackend: "heuristic",
		StartedAt:        testNow.Add(-90 * time.Second),
	}, s.store, func() time.Time { return testNow })

	if assert.NoError(t, h.HandleHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","version":"1.2.3","storage":"duckdb","inference":"heuristic","subjects":1,"events":1,"uptimeSeconds":90}`, rec.Body.String())
	}
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "file", body["storage"])
	assert.Equal(t, "fake", body["inference"])
	assert.EqualValues(t, 0, body["uptimeSeconds"])
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/profile", map[string]string{"name": "  Ana Quispe "})
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[models.Profile](t, rec)
	assert.Equal(t, "Ana Quispe", profile.Name)
	assert.Equal(t, "ana.quispe@planunsch.edu", profile.Email)

	rec = s.do(t, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/profile", map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decode[APIError](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Fields, "name")

	rec = s.do(t, http.MethodDelete, "/api/profile", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubjectHandlers(t *testing.T) {
	s := newTestServer(t)

	calc := s.createSubject(t, " Calculus I ")
	assert.Equal(t, "Calculus I", calc.Name)
	assert.Equal(t, models.Palette[0], calc.Color)
	hist := s.createSubject(t, "History")
	assert.Equal(t, models.Palette[1], hist.Color)

	rec := s.do(t, http.MethodPost, "/api/subjects", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/subjects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Subject](t, rec), 2)

	rec = s.do(t, http.MethodPut, "/api/subjects/"+calc.ID, map[string]string{"name": "Calculus II"})
	require.Equal(t, http.StatusOK, rec.Code)
	renamed := decode[models.Subject](t, rec)
	assert.Equal(t, "Calculus II", renamed.Name)
	assert.Equal(t, calc.Color, renamed.Color)

	rec = s.do(t, http.MethodPut, "/api/subjects/missing", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[APIError](t, rec).Code)

	rec = s.do(t, http.MethodDelete, "/api/subjects/"+hist.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/subjects/"+hist.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadSyllabus_EndToEnd(t *testing.T) {
	s := newTestServer(t)
	s.inferrer.Candidates = []models.Candidate{{Title: "Midterm", Date: "2024-10-15", Type: models.EventTypeExam}}
	calc := s.createSubject(t, "Calc I")

	body, contentType := multipartBody(t, map[string]string{"syllabus.pdf": "%PDF-1.4 fake"})
	req := httptest.NewRequest(http.MethodPost, "/api/subjects/"+calc.ID+"/syllabi", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	files := decode[[]models.SyllabusFile](t, rec)
	require.Len(t, files, 1)
	assert.Equal(t, "syllabus.pdf", files[0].Name)
	assert.Equal(t, models.SyllabusStatusProcessing, files[0].Status)

	s.ingest.Wait()

	rec = s.do(t, http.MethodGet, "/api/ingestions/"+files[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	job := decode[ingest.Job](t, rec)
	assert.Equal(t, models.SyllabusStatusCompleted, job.Status)
	assert.Equal(t, 1, job.EventCount)

	rec = s.do(t, http.MethodGet, "/api/events", nil)
	events := decode[[]models.AcademicEvent](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, calc.ID, events[0].SubjectID)
	assert.Equal(t, "Calc I", events[0].SubjectName)

	notes := s.hub.Since(0)
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindSuccess, notes[0].Kind)

	rec = s.do(t, http.MethodGet, "/api/ingestions/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadSyllabus_Errors(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"a.pdf": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/subjects/missing/syllabi", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	calc := s.createSubject(t, "Calc")
	body, contentType = multipartBody(t, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/subjects/"+calc.ID+"/syllabi", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadSyllabusBase64(t *testing.T) {
	s := newTestServer(t)
	calc := s.createSubject(t, "Calc")

	rec := s.do(t, http.MethodPost, "/api/subjects/"+calc.ID+"/syllabi/base64", map[string]string{"name": "s.txt", "data": "not base64!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/subjects/"+calc.ID+"/syllabi/base64", map[string]string{
		"name": "../../s.txt", "contentType": "text/plain", "data": "aGVsbG8=",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	files := decode[[]models.SyllabusFile](t, rec)
	require.Len(t, files, 1)
	assert.Equal(t, "s.txt", files[0].Name)

	s.ingest.Wait()
	subject, ok := s.store.Subject(calc.ID)
	require.True(t, ok)
	require.Len(t, subject.Syllabi, 1)
	assert.Equal(t, models.SyllabusStatusCompleted, subject.Syllabi[0].Status)
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"api error", NewNotFoundError("subject", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"plain error", io.ErrUnexpectedEOF, http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			ErrorHandler(tt.err, e.NewContext(req, rec))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decode[APIError](t, rec).Code)
		})
	}
}
