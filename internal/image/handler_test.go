package image

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(svc *Service) *chi.Mux {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Get("/images", h.List)
	r.Post("/images", h.Upload)
	r.Get("/images/{id}", h.Get)
	r.Delete("/images/{id}", h.Delete)
	r.Post("/host/test", h.TestHost)
	return r
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	host := &fakeHost{ready: true}
	router := newTestRouter(NewService(newFakeStore(), host))

	body, contentType := multipartBody(t, "file", "cat.png", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool  `json:"success"`
		Data    Image `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success || !strings.HasSuffix(envelope.Data.Path, "-cat.png") {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
}

func TestUploadEndpointMissingFile(t *testing.T) {
	router := newTestRouter(NewService(newFakeStore(), &fakeHost{ready: true}))

	req := httptest.NewRequest(http.MethodPost, "/images", strings.NewReader("not multipart"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
}

func TestUploadEndpointHostNotReady(t *testing.T) {
	router := newTestRouter(NewService(newFakeStore(), &fakeHost{ready: false}))

	body, contentType := multipartBody(t, "file", "cat.png", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/images", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d; want 503", rec.Code)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	host := &fakeHost{ready: true}
	store := newFakeStore()
	store.byID["img-1"] = &Image{ID: "img-1", URL: "https://raw.example/images/a.png"}
	router := newTestRouter(NewService(store, host))

	req := httptest.NewRequest(http.MethodDelete, "/images/img-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(host.removed) != 1 {
		t.Fatalf("host.removed = %v", host.removed)
	}
}

func TestDeleteEndpointNotFound(t *testing.T) {
	router := newTestRouter(NewService(newFakeStore(), &fakeHost{ready: true}))

	req := httptest.NewRequest(http.MethodDelete, "/images/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", rec.Code)
	}
}

func TestListEndpoint(t *testing.T) {
	store := newFakeStore()
	store.byID["img-1"] = &Image{ID: "img-1", Path: "images/a.png"}
	router := newTestRouter(NewService(store, &fakeHost{ready: true}))

	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "images/a.png") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestTestHostEndpoint(t *testing.T) {
	router := newTestRouter(NewService(newFakeStore(), &fakeHost{ready: true}))

	payload := `{"personal_access_token":"tok","user_name":"u","repository_name":"r"}`
	req := httptest.NewRequest(http.MethodPost, "/host/test", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var envelope struct {
		Data testHostData `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Ok || envelope.Data.Message != "tested" {
		t.Fatalf("data = %+v", envelope.Data)
	}
}
