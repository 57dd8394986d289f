package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterStaticRoutes(t *testing.T) {
	fsys := fstest.MapFS{
		"index.html":    {Data: []byte("<html>app</html>")},
		"assets/app.js": {Data: []byte("console.log(1)")},
	}
	e := echo.New()
	RegisterStaticRoutes(e, fsys)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, "<html>app</html>"},
		{"/calendar/2024-10", http.StatusOK, "<html>app</html>"},
		{"/assets/app.js", http.StatusOK, "console.log(1)"},
		{"/assets", http.StatusOK, "<html>app</html>"},
		{"/api/unknown", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestDirFS(t *testing.T) {
	_, ok := DirFS("")
	assert.False(t, ok)

	dir := t.TempDir()
	_, ok = DirFS(dir)
	assert.False(t, ok, "no index.html")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0644))
	fsys, ok := DirFS(dir)
	require.True(t, ok)
	assert.NotNil(t, fsys)
}
