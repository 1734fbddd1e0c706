package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"diamond-dashboard/internal/config"
	"diamond-dashboard/internal/dashboard"
	"diamond-dashboard/internal/excel"
	"diamond-dashboard/internal/figure"
	"diamond-dashboard/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "diamonds.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Seed(ctx, store.SampleTables()...))

	app, err := dashboard.Load(ctx, s, 10, zap.NewNop())
	require.NoError(t, err)
	return New(app, config.DefaultConfig(), zap.NewNop())
}

func get(r http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeFigure(t *testing.T, w *httptest.ResponseRecorder) figure.Figure {
	t.Helper()
	var f figure.Figure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	return f
}

func TestHealthz(t *testing.T) {
	w := get(newRouter(t), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	newRouter(t).ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestMinesEndpoint(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no filter", "", 40},
		{"single country", "?country=Russia", 6},
		{"unknown country ignored", "?country=Russia&country=Atlantis", 6},
		{"two countries", "?country=Russia&country=Botswana", 11},
		{"only unknown", "?country=Atlantis", 0},
		{"blank country", "?country=", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/api/mines"+tt.query)
			require.Equal(t, http.StatusOK, w.Code)
			f := decodeFigure(t, w)
			assert.Equal(t, dashboard.MapID, f.ID)
			assert.Equal(t, tt.want, f.PointCount())
		})
	}
}

func TestSelectionPersistsInSession(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/mines?country=Russia&country=Botswana&country=Russia")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = get(r, "/api/selection", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"countries":["Botswana","Russia"]}`, w.Body.String())

	w = get(r, "/", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<option value="Russia" selected>Russia</option>`)
	assert.Contains(t, w.Body.String(), `<option value="Canada">Canada</option>`)
}

func TestSelectionWithoutSession(t *testing.T) {
	w := get(newRouter(t), "/api/selection")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"countries":null}`, w.Body.String())
}

func TestIndex(t *testing.T) {
	w := get(newRouter(t), "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, id := range dashboard.Layout {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	assert.Contains(t, body, "<title>Diamond Project</title>")
}

func TestFigureEndpoint(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/figures/"+dashboard.BoxID)
	require.Equal(t, http.StatusOK, w.Code)
	f := decodeFigure(t, w)
	assert.Equal(t, figure.KindBox, f.Kind)

	w = get(r, "/api/figures/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPNGEndpoint(t *testing.T) {
	r := newRouter(t)

	for _, id := range []string{dashboard.LabBarID, dashboard.NaturalPieID} {
		w := get(r, "/figures/"+id+"/png")
		require.Equal(t, http.StatusOK, w.Code, id)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")), id)
	}

	assert.Equal(t, http.StatusBadRequest, get(r, "/figures/"+dashboard.BoxID+"/png").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/figures/nope/png").Code)
}

func TestExportEndpoint(t *testing.T) {
	w := get(newRouter(t), "/export/production.xlsx")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{excel.NaturalSheet, excel.LabSheet}, f.GetSheetList())
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	err := Run(ctx, "127.0.0.1:0", http.NotFoundHandler(), zap.NewNop())
	assert.NoError(t, err)
}

func TestRunListenError(t *testing.T) {
	err := Run(context.Background(), "127.0.0.1:-1", http.NotFoundHandler(), zap.NewNop())
	assert.Error(t, err)
}
