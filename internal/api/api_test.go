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
	"path/filepath"
	"strings"
	"testing"
	"time"

	"accordion/internal/content"
	"accordion/internal/faq"
	"accordion/internal/filestore"
	"accordion/internal/models"
	"accordion/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal PNG signature and IHDR chunk start; enough for type sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newTestAPI(t *testing.T) (*API, *http.ServeMux) {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewBboltStorage(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	files, err := filestore.NewLocalFileStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := faq.NewService(ctx, store, content.New(), nil, time.Minute)
	a := New(svc, files, store, Config{BaseURL: "http://faq.test/", MaxUploadSize: 1024}, slog.New(slog.DiscardHandler))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/faqs", a.ListHandler)
	mux.HandleFunc("GET /api/faqs/{id}", a.GetHandler)
	mux.HandleFunc("GET /api/images/{id}", a.GetImageHandler)
	mux.HandleFunc("POST /admin/faqs", a.CreateHandler)
	mux.HandleFunc("PUT /admin/faqs/{id}", a.UpdateHandler)
	mux.HandleFunc("DELETE /admin/faqs/{id}", a.DeleteHandler)
	mux.HandleFunc("POST /admin/faqs/reorder", a.ReorderHandler)
	mux.HandleFunc("POST /admin/preview", a.PreviewHandler)
	mux.HandleFunc("POST /admin/images", a.UploadImageHandler)
	return a, mux
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestFAQLifecycle(t *testing.T) {
	_, mux := newTestAPI(t)

	rec := doJSON(t, mux, http.MethodPost, "/admin/faqs", map[string]string{
		"question": "How do I reset?",
		"answer":   "Click <b>Reset</b><script>alert(1)</script>",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Entry](t, rec)
	assert.Equal(t, content.FormatHTML, created.Format)

	rec = doJSON(t, mux, http.MethodGet, "/api/faqs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rendered := decode[models.RenderedEntry](t, rec)
	assert.Equal(t, "Click <b>Reset</b>", rendered.HTML)
	assert.True(t, rendered.Modified)
	assert.NotEmpty(t, rendered.Warnings)

	rec = doJSON(t, mux, http.MethodPut, "/admin/faqs/"+created.ID, map[string]string{"format": "text"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, content.FormatText, decode[models.Entry](t, rec).Format)

	second := decode[models.Entry](t, doJSON(t, mux, http.MethodPost, "/admin/faqs", map[string]string{"question": "Second?"}))

	rec = doJSON(t, mux, http.MethodPost, "/admin/faqs/reorder", map[string][]string{"ids": {second.ID, created.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := decode[[]models.RenderedEntry](t, doJSON(t, mux, http.MethodGet, "/api/faqs", nil))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	rec = doJSON(t, mux, http.MethodDelete, "/admin/faqs/"+second.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/faqs/"+second.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEmpty(t *testing.T) {
	_, mux := newTestAPI(t)
	rec := doJSON(t, mux, http.MethodGet, "/api/faqs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestErrors(t *testing.T) {
	_, mux := newTestAPI(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		raw        string
		wantStatus int
	}{
		{name: "MissingQuestion", method: http.MethodPost, path: "/admin/faqs", body: map[string]string{"answer": "x"}, wantStatus: http.StatusBadRequest},
		{name: "UnknownFormat", method: http.MethodPost, path: "/admin/faqs", body: map[string]string{"question": "q", "format": "rtf"}, wantStatus: http.StatusBadRequest},
		{name: "UnknownField", method: http.MethodPost, path: "/admin/faqs", body: map[string]string{"question": "q", "color": "red"}, wantStatus: http.StatusBadRequest},
		{name: "BadJSON", method: http.MethodPost, path: "/admin/faqs", raw: "{", wantStatus: http.StatusBadRequest},
		{name: "UpdateMissing", method: http.MethodPut, path: "/admin/faqs/nope", body: map[string]string{"answer": "x"}, wantStatus: http.StatusNotFound},
		{name: "DeleteMissing", method: http.MethodDelete, path: "/admin/faqs/nope", wantStatus: http.StatusNotFound},
		{name: "BadOrder", method: http.MethodPost, path: "/admin/faqs/reorder", body: map[string][]string{"ids": {"nope"}}, wantStatus: http.StatusBadRequest},
		{name: "ImageMissing", method: http.MethodGet, path: "/api/images/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.raw != "" {
				req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.raw))
				rec = httptest.NewRecorder()
				mux.ServeHTTP(rec, req)
			} else {
				rec = doJSON(t, mux, tt.method, tt.path, tt.body)
			}
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			resp := decode[models.APIResponse](t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestPreview(t *testing.T) {
	_, mux := newTestAPI(t)

	rec := doJSON(t, mux, http.MethodPost, "/admin/preview", PreviewRequest{Content: "<p onclick=\"x\">Hi</p>", Format: "html"})
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[content.Report](t, rec)
	assert.Equal(t, "<p>Hi</p>", report.HTML)
	assert.True(t, report.Modified)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "Event handlers")
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestImages(t *testing.T) {
	_, mux := newTestAPI(t)

	t.Run("UploadAndServe", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "pixel.png", pngBytes)
		req := httptest.NewRequest(http.MethodPost, "/admin/images", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		resp := decode[models.UploadResponse](t, rec)
		assert.True(t, resp.Success)
		assert.Equal(t, "image/png", resp.MimeType)
		assert.Equal(t, "http://faq.test/api/images/"+resp.ID, resp.URL)

		rec = doJSON(t, mux, http.MethodGet, "/api/images/"+resp.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, pngBytes, rec.Body.Bytes())
	})

	t.Run("RejectsNonImage", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "evil.png", []byte("<svg onload=alert(1)></svg>"))
		req := httptest.NewRequest(http.MethodPost, "/admin/images", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("RejectsMissingField", func(t *testing.T) {
		body, ct := multipartBody(t, "upload", "pixel.png", pngBytes)
		req := httptest.NewRequest(http.MethodPost, "/admin/images", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("RejectsTooLarge", func(t *testing.T) {
		big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 2048)...)
		body, ct := multipartBody(t, "file", "big.png", big)
		req := httptest.NewRequest(http.MethodPost, "/admin/images", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest}, rec.Code)
	})
}
