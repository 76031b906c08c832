package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joe-ervin05/myblog/config"
	"github.com/joe-ervin05/myblog/daos"
	"github.com/joe-ervin05/myblog/photos"
	"github.com/joe-ervin05/myblog/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	dao    *daos.Database
	cfg    config.Config
	router http.Handler
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := context.Background()
	root := t.TempDir()

	cfg := config.Config{
		DBPath:         filepath.Join(root, "test.db"),
		PhotoDir:       filepath.Join(root, "photos"),
		UploadTmpDir:   filepath.Join(root, "tmp"),
		MaxUploadBytes: 1 << 20,
		IndexPath:      filepath.Join(root, "index.html"),
	}

	dao, err := daos.Open(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { dao.Close() })

	require.NoError(t, dao.Bootstrap(ctx))

	photoStore, err := photos.NewStore(cfg.PhotoDir, cfg.UploadTmpDir, discardLogger())
	require.NoError(t, err)

	h := NewHandler(dao, photoStore, views.New(), cfg, discardLogger())
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 0, 0, time.Local) }

	return &testServer{dao: dao, cfg: cfg, router: h.Router()}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(target string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (s *testServer) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) rows(t *testing.T, table string) []daos.Row {
	t.Helper()

	_, rows, err := s.dao.List(context.Background(), table)
	require.NoError(t, err)
	return rows
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &body, mw.FormDataContentType()
}

func TestPortal(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/", "/portal", "/portal?page=0", "/portal?page=abc"} {
		rec := s.get(target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "＜1＞", target)
		assert.Contains(t, rec.Body.String(), "サンプルコメント", target)
	}

	rec := s.get("/portal?page=9")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "＜1＞")
	assert.NotContains(t, rec.Body.String(), "次へ")
}

func TestTableShow(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/tableshow?tablename=member")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>admin</td>")

	tests := []struct {
		target string
		status int
	}{
		{"/tableshow", http.StatusBadRequest},
		{"/tableshow?tablename=ghost", http.StatusNotFound},
		{"/tableshow?tablename=sqlite_master", http.StatusForbidden},
		{"/tableshow?tablename=" + url.QueryEscape("rireki; DROP TABLE rireki"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := s.get(tt.target)
		assert.Equal(t, tt.status, rec.Code, tt.target)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"), tt.target)
	}

	assert.Len(t, s.rows(t, daos.TableRireki), 1)
}

func TestInsertForm(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/insert?tablename=rireki&photo=cat.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="photo" value="cat.png"`)
	assert.Contains(t, rec.Body.String(), `name="date" value="2024-01-02-03-04"`)

	rec = s.get("/insert?tablename=rireki")
	assert.Contains(t, rec.Body.String(), `name="photo" value="white.png"`)

	rec = s.get("/insert?tablename=member")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pass: <input type="text" name="pass">`)

	assert.Equal(t, http.StatusBadRequest, s.get("/insert").Code)
	assert.Equal(t, http.StatusNotFound, s.get("/insert?tablename=ghost").Code)
}

func TestUpdateAndDeleteForms(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/update?tablename=member")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="pass_1" value="admin"`)

	rec = s.get("/delete?tablename=member")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="shiteigyou" value="1"`)

	assert.Equal(t, http.StatusNotFound, s.get("/update?tablename=ghost").Code)
	assert.Equal(t, http.StatusBadRequest, s.get("/delete").Code)
}

func TestInsertUpdateDelete(t *testing.T) {
	s := newTestServer(t)

	rec := s.postForm("/insert_ex", url.Values{
		"tablename": {"rireki"},
		"id":        {"u1"},
		"name":      {"N"},
		"title":     {"T"},
		"date":      {"2024-01-01-00-00"},
		"comments":  {"c"},
		"photo":     {"x.png"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/tableshow?tablename=rireki", rec.Header().Get("Location"))

	rows := s.rows(t, daos.TableRireki)
	require.Len(t, rows, 2)
	assert.Equal(t, daos.Rireki{
		Key: 2, ID: "u1", Name: "N", Title: "T", Date: "2024-01-01-00-00", Comments: "c", Photo: "x.png",
	}, daos.RirekiFromRow(rows[1]))

	rec = s.postForm("/update_ex", url.Values{
		"tablename":  {"rireki"},
		"shiteigyou": {"2"},
		"id_2":       {"u1"},
		"name_2":     {"renamed"},
		"title_2":    {"T"},
		"date_2":     {"2024-01-01-00-00"},
		"comments_2": {"c"},
		"photo_2":    {"x.png"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)

	rows = s.rows(t, daos.TableRireki)
	assert.Equal(t, "renamed", rows[1]["name"])
	assert.Equal(t, "管理者", rows[0]["name"])

	rec = s.postForm("/delete_ex", url.Values{"tablename": {"rireki"}, "shiteigyou": {"2"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/tableshow?tablename=rireki", rec.Header().Get("Location"))
	assert.Len(t, s.rows(t, daos.TableRireki), 1)

	rec = s.postForm("/delete_ex", url.Values{"tablename": {"rireki"}, "shiteigyou": {"2"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Len(t, s.rows(t, daos.TableRireki), 1)
}

func TestFormWriteErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		form   url.Values
		status int
		body   string
	}{
		{"update without row", "/update_ex", url.Values{"tablename": {"rireki"}, "name_1": {"x"}}, http.StatusBadRequest, "no row selected"},
		{"delete without row", "/delete_ex", url.Values{"tablename": {"rireki"}}, http.StatusBadRequest, "no row selected"},
		{"insert unknown table", "/insert_ex", url.Values{"tablename": {"ghost"}}, http.StatusBadRequest, "column mismatch"},
		{"insert without table", "/insert_ex", url.Values{"name": {"x"}}, http.StatusBadRequest, "tablename is required"},
		{"delete unknown table", "/delete_ex", url.Values{"tablename": {"ghost"}, "shiteigyou": {"1"}}, http.StatusNotFound, "table not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.postForm(tt.target, tt.form)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}

	assert.Len(t, s.rows(t, daos.TableRireki), 1)
}

func TestUploadPhoto(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartUpload(t, map[string]string{"tablename": "rireki"}, `C:\pics\my cat.png`, "png-bytes")
	req := httptest.NewRequest(http.MethodPost, "/upphoto", body)
	req.Header.Set("Content-Type", contentType)

	rec := s.do(req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/insert?tablename=rireki&photo=my+cat.png", rec.Header().Get("Location"))

	stored, err := os.ReadFile(filepath.Join(s.cfg.PhotoDir, "my cat.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(stored))

	rec = s.get("/photos/my%20cat.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestUploadDefaultsTable(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartUpload(t, nil, "dog.jpg", "jpg-bytes")
	req := httptest.NewRequest(http.MethodPost, "/upphoto", body)
	req.Header.Set("Content-Type", contentType)

	rec := s.do(req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/insert?tablename=rireki&photo=dog.jpg", rec.Header().Get("Location"))
}

func TestUploadWithoutFile(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartUpload(t, map[string]string{"tablename": "rireki"}, "", "")
	req := httptest.NewRequest(http.MethodPost, "/upphoto", body)
	req.Header.Set("Content-Type", contentType)

	rec := s.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file selected")
}

func TestUploadNotMultipart(t *testing.T) {
	s := newTestServer(t)

	rec := s.postForm("/upphoto", url.Values{"tablename": {"rireki"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPhotos(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(s.cfg.PhotoDir, "a.gif"), []byte("gif"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.cfg.PhotoDir, "a.bin"), []byte("bin"), 0o644))

	rec := s.get("/photos/a.gif")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))

	rec = s.get("/photos/a.bin")
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, s.get("/photos/missing.png").Code)
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.get("/index.html").Code)

	require.NoError(t, os.WriteFile(s.cfg.IndexPath, []byte("<h1>hello</h1>"), 0o644))

	rec := s.get("/index.html")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>hello</h1>", rec.Body.String())
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/nope", nil),
		httptest.NewRequest(http.MethodPost, "/", nil),
		httptest.NewRequest(http.MethodGet, "/insert_ex", nil),
	} {
		rec := s.do(req)
		assert.Equal(t, http.StatusNotFound, rec.Code, req.Method+" "+req.URL.Path)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	}
}

func TestJSONHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/api/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
}

func TestJSONTable(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/api/v1/tables/member")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Table   string           `json:"table"`
		Columns []daos.Col       `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "member", body.Table)
	assert.Equal(t, daos.Col{Name: "key", Type: "INTEGER", Pk: true}, body.Columns[0])
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "admin", body.Rows[0]["pass"])
	assert.Equal(t, float64(1), body.Rows[0]["key"])

	assert.Equal(t, http.StatusNotFound, s.get("/api/v1/tables/ghost").Code)
	assert.Equal(t, http.StatusForbidden, s.get("/api/v1/tables/schema_migrations").Code)
}

func TestJSONPortal(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 6; i++ {
		_, err := s.dao.Insert(context.Background(), daos.TableRireki, daos.Rireki{Name: "p"}.Values())
		require.NoError(t, err)
	}

	var body struct {
		Page       int           `json:"page"`
		TotalPages int           `json:"total_pages"`
		HasPrev    bool          `json:"has_prev"`
		HasNext    bool          `json:"has_next"`
		Posts      []daos.Rireki `json:"posts"`
	}

	rec := s.get("/api/v1/portal?page=abc")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 3, body.TotalPages)
	assert.False(t, body.HasPrev)
	assert.True(t, body.HasNext)
	require.Len(t, body.Posts, 3)
	assert.Equal(t, int64(7), body.Posts[0].Key)

	rec = s.get("/api/v1/portal?page=3")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Posts, 1)
	assert.Equal(t, int64(1), body.Posts[0].Key)
	assert.False(t, body.HasNext)
}

type panicStore struct{ Store }

func (panicStore) Page(context.Context, int) (daos.Page, error) { panic("boom") }

func TestPanicIsRecovered(t *testing.T) {
	h := NewHandler(panicStore{}, nil, views.New(), config.Config{}, discardLogger())

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portal", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
