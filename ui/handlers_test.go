package ui

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"
)

func newTestApp(t *testing.T, withData bool) *App {
	t.Helper()
	store := NewStore()
	if withData {
		store.Add("contest.csv", testDataset(t))
	}
	app, err := NewApp(Config{Logger: zaptest.NewLogger(t)}, store)
	require.NoError(t, err)
	return app
}

func serve(app *App, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexWithoutData(t *testing.T) {
	app := newTestApp(t, false)
	rec := serve(app, http.MethodGet, "/", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/upload"`)
	assert.Contains(t, body, "데이터가 없습니다")
}

func TestIndexRendersViews(t *testing.T) {
	app := newTestApp(t, true)

	tests := []struct {
		query string
		want  []string
	}{
		{"/", []string{"회사별 건수", "A사", "워드 클라우드", `name="f.company"`}},
		{"/?view=categories", []string{"난이도별 건수", "conic-gradient", "심사위원별 건수"}},
		{"/?view=crosstab", []string{"회사 × 난이도", "bar-seg"}},
		{"/?view=keywords", []string{"제목 키워드", "검출"}},
		{"/?view=data", []string{`href="https://github.com/a/1"`, "로봇 팔 제어"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := serve(app, http.MethodGet, tt.query, nil, "")
			require.Equal(t, http.StatusOK, rec.Code)
			for _, s := range tt.want {
				assert.Contains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestIndexEmptySelection(t *testing.T) {
	app := newTestApp(t, true)
	rec := serve(app, http.MethodGet, "/?f.company=Z%EC%82%AC", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="empty"`)
	assert.NotContains(t, rec.Body.String(), "회사별 건수")
}

func TestIndexInvalidColumn(t *testing.T) {
	app := newTestApp(t, true)
	rec := serve(app, http.MethodGet, "/?f.color=red", nil, "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="banner"`)
	assert.Contains(t, rec.Body.String(), "color")
}

func TestIndexUnknownDataset(t *testing.T) {
	app := newTestApp(t, true)
	rec := serve(app, http.MethodGet, "/?ds=missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUpload(t *testing.T) {
	app := newTestApp(t, false)
	body, ct := multipartBody(t, "upload.csv", contestCSV)

	rec := serve(app, http.MethodPost, "/upload", body, ct)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/?ds="), loc)

	require.Equal(t, 1, app.Store().Len())
	entry, ok := app.Store().Get("")
	require.True(t, ok)
	assert.Equal(t, "upload.csv", entry.Name)
	assert.Equal(t, 4, entry.Dataset.View.Len())
}

func TestUploadMissingRequiredColumn(t *testing.T) {
	app := newTestApp(t, false)
	body, ct := multipartBody(t, "bad.csv", "주제,제목\nVision,불량 검출\n")

	rec := serve(app, http.MethodPost, "/upload", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="banner"`)
	assert.Zero(t, app.Store().Len())
}

func TestUploadWithoutFile(t *testing.T) {
	app := newTestApp(t, false)
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("note", "x"))
	require.NoError(t, w.Close())

	rec := serve(app, http.MethodPost, "/upload", &buf, w.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, true)
	rec := serve(app, http.MethodGet, "/healthz", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())
	assert.Equal(t, int64(1), gjson.Get(rec.Body.String(), "datasets").Int())
}

func TestAPIListAndSummary(t *testing.T) {
	app := newTestApp(t, true)

	rec := serve(app, http.MethodGet, "/api/datasets", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := rec.Body.String()
	id := gjson.Get(list, "datasets.0.id").String()
	require.NotEmpty(t, id)
	assert.True(t, gjson.Get(list, "datasets.0.default").Bool())
	assert.Equal(t, "회사", gjson.Get(list, "datasets.0.roles.company").String())

	rec = serve(app, http.MethodGet, "/api/datasets/"+id+"/summary?f.level=%EC%83%81", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, int64(2), gjson.Get(body, "result.rows").Int())
	assert.Equal(t, int64(4), gjson.Get(body, "result.totalRows").Int())
	assert.Equal(t, "회사", gjson.Get(body, "result.frequencies.0.column").String())
	assert.Equal(t, "A사", gjson.Get(body, "result.frequencies.0.table.0.value").String())
	assert.Equal(t, "검출", gjson.Get(body, "result.keywords.0.token").String())
	assert.Equal(t, int64(5), gjson.Get(body, "charts.#").Int())
}

func TestAPISummaryErrors(t *testing.T) {
	app := newTestApp(t, true)

	rec := serve(app, http.MethodGet, "/api/datasets/missing/summary", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", gjson.Get(rec.Body.String(), "error.code").String())

	id := app.Store().List()[0].ID
	rec = serve(app, http.MethodGet, "/api/datasets/"+id+"/summary?f.color=red", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_COLUMN", gjson.Get(rec.Body.String(), "error.code").String())
}

func TestAPIFetchDataset(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contest.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(contestCSV))
	}))
	defer upstream.Close()

	client := &http.Client{Transport: &http.Transport{}}
	defer client.CloseIdleConnections()

	app, err := NewApp(Config{Logger: zaptest.NewLogger(t), Client: client}, nil)
	require.NoError(t, err)

	body := bytes.NewBufferString(`{"url":"` + upstream.URL + `/contest.csv","name":"remote"}`)
	rec := serve(app, http.MethodPost, "/api/datasets", body, "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "remote", gjson.Get(rec.Body.String(), "name").String())
	assert.Equal(t, int64(4), gjson.Get(rec.Body.String(), "rows").Int())

	body = bytes.NewBufferString(`{"url":"` + upstream.URL + `/missing.csv"}`)
	rec = serve(app, http.MethodPost, "/api/datasets", body, "application/json")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "LOAD_FAILED", gjson.Get(rec.Body.String(), "error.code").String())

	// A failed API fetch is reported to its caller only.
	rec = serve(app, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `class="banner"`)

	body = bytes.NewBufferString(`{"url":"file:///etc/passwd"}`)
	rec = serve(app, http.MethodPost, "/api/datasets", body, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", gjson.Get(rec.Body.String(), "error.code").String())
}

func TestStartupLoadBanner(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "contest.csv")
	require.NoError(t, os.WriteFile(good, []byte(contestCSV), 0o644))

	app := newTestApp(t, false)

	_, err := app.LoadStartup(context.Background(), "missing.csv", filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	rec := serve(app, http.MethodGet, "/", nil, "")
	assert.Contains(t, rec.Body.String(), `class="banner"`)

	entry, err := app.LoadStartup(context.Background(), "contest.csv", good)
	require.NoError(t, err)
	assert.Equal(t, "contest.csv", entry.Name)
	rec = serve(app, http.MethodGet, "/", nil, "")
	assert.NotContains(t, rec.Body.String(), `class="banner"`)
}
