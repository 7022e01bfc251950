package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"viral-clip-gen/internal"
	"viral-clip-gen/internal/logging"
	"viral-clip-gen/internal/media"
	"viral-clip-gen/internal/model"
	"viral-clip-gen/internal/pipeline"
	"viral-clip-gen/internal/store"
)

type fakeRunner struct {
	assets []model.UploadedAsset
	params model.GenerationParams
	pos    media.Position
	res    *pipeline.BatchResult
	err    error
}

func (f *fakeRunner) Run(_ context.Context, assets []model.UploadedAsset, params model.GenerationParams, pos media.Position) (*pipeline.BatchResult, error) {
	f.assets = assets
	f.params = params
	f.pos = pos
	if f.err != nil {
		return &pipeline.BatchResult{}, f.err
	}
	return f.res, nil
}

type fakeContentStore struct {
	recs map[string]*model.ContentRecord
}

func (f *fakeContentStore) Save(_ context.Context, rec *model.ContentRecord) error {
	f.recs[rec.ID] = rec
	return nil
}

func (f *fakeContentStore) Get(_ context.Context, id string) (*model.ContentRecord, error) {
	rec, ok := f.recs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (f *fakeContentStore) Recent(context.Context, int) ([]model.ContentRecord, error) {
	var out []model.ContentRecord
	for _, rec := range f.recs {
		out = append(out, *rec)
	}
	return out, nil
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

func testHandlers(t *testing.T, runner *fakeRunner, contents *fakeContentStore, db Pinger) (http.Handler, internal.Config) {
	t.Helper()
	cfg := internal.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 32 << 20,
	}
	if contents == nil {
		contents = &fakeContentStore{recs: map[string]*model.ContentRecord{}}
	}
	h := &handlers{
		cfg:      cfg,
		log:      logging.NewDiscard(),
		runner:   runner,
		contents: contents,
		db:       db,
	}
	return newRouter(h), cfg
}

func multipartBody(t *testing.T, fields map[string]string, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range filenames {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(fw, "fake-media-bytes")
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadRunsBatch(t *testing.T) {
	runner := &fakeRunner{res: &pipeline.BatchResult{
		ID:       "batch-1",
		Document: `{"title":"T"}`,
		Outcomes: []pipeline.FileOutcome{
			{Asset: model.UploadedAsset{OriginalName: "clip.mp4"}, Status: pipeline.StatusProcessed},
		},
		Records: []model.ContentRecord{
			{ID: "rec-1", ProcessedFilename: "x_with_text.mp4"},
		},
	}}
	router, cfg := testHandlers(t, runner, nil, nil)

	body, ct := multipartBody(t, map[string]string{
		"theme":            "cyber",
		"effect_intensity": "high",
		"text_position":    "top",
	}, "clip.mp4")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	if len(runner.assets) != 1 || runner.assets[0].OriginalName != "clip.mp4" {
		t.Fatalf("assets = %+v", runner.assets)
	}
	if !strings.HasSuffix(runner.assets[0].Path, ".mp4") {
		t.Errorf("stored path %q should keep the extension", runner.assets[0].Path)
	}
	if filepath.Base(runner.assets[0].Path) == "clip.mp4" {
		t.Error("stored name must not reuse the client filename")
	}
	if data, err := os.ReadFile(runner.assets[0].Path); err != nil || string(data) != "fake-media-bytes" {
		t.Errorf("stored file content: %q, %v", data, err)
	}
	if filepath.Dir(runner.assets[0].Path) != cfg.UploadDir {
		t.Errorf("stored outside upload dir: %q", runner.assets[0].Path)
	}
	if runner.params.Theme != model.ThemeCyber || runner.params.Intensity != model.IntensityHigh {
		t.Errorf("params = %+v", runner.params)
	}
	if runner.pos != media.PositionTop {
		t.Errorf("pos = %q", runner.pos)
	}

	var resp uploadResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.BatchID != "batch-1" || len(resp.Results) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Results[0].DownloadURL != "/download/rec-1" {
		t.Errorf("download url = %q", resp.Results[0].DownloadURL)
	}
}

func TestUploadWithoutFiles(t *testing.T) {
	router, _ := testHandlers(t, &fakeRunner{}, nil, nil)
	body, ct := multipartBody(t, map[string]string{"theme": "cyber"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	h := &handlers{
		cfg: internal.Config{
			UploadDir:      t.TempDir(),
			MaxUploadBytes: 1 << 10,
		},
		log:      logging.NewDiscard(),
		runner:   &fakeRunner{},
		contents: &fakeContentStore{recs: map[string]*model.ContentRecord{}},
	}
	router := newRouter(h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "huge.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(bytes.Repeat([]byte("x"), 4<<10)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rr.Code)
	}
}

func TestUploadNoEligibleFiles(t *testing.T) {
	router, _ := testHandlers(t, &fakeRunner{err: pipeline.ErrNoEligibleFiles}, nil, nil)
	body, ct := multipartBody(t, nil, "notes.txt")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestDownloadSetsDisposition(t *testing.T) {
	contents := &fakeContentStore{recs: map[string]*model.ContentRecord{}}
	router, cfg := testHandlers(t, &fakeRunner{}, contents, nil)
	contents.recs["rec-1"] = &model.ContentRecord{
		ID:                "rec-1",
		OriginalFilename:  "my song.mp3",
		StoredFilename:    "u1.mp3",
		ProcessedFilename: "u1_processed.mp3",
	}
	if err := os.WriteFile(filepath.Join(cfg.UploadDir, "u1_processed.mp3"), []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/download/rec-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="my song_processed.mp3"` {
		t.Errorf("disposition = %q", got)
	}
	if got := rr.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("content type = %q", got)
	}
}

func TestPreviewReturnsGeneratedCopy(t *testing.T) {
	contents := &fakeContentStore{recs: map[string]*model.ContentRecord{}}
	router, _ := testHandlers(t, &fakeRunner{}, contents, nil)
	contents.recs["rec-1"] = &model.ContentRecord{
		ID:               "rec-1",
		OriginalFilename: "clip.mp4",
		Theme:            "cyber",
		GeneratedContent: `{"title":"Big reveal"}`,
	}

	req := httptest.NewRequest(http.MethodGet, "/preview/rec-1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		ID      string          `json:"id"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "rec-1" || string(resp.Content) != `{"title":"Big reveal"}` {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestPreviewUnknownID(t *testing.T) {
	router, _ := testHandlers(t, &fakeRunner{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/preview/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestTranslations(t *testing.T) {
	router, _ := testHandlers(t, &fakeRunner{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/translations/en", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("en status = %d", rr.Code)
	}
	var m map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil || m["app.title"] == "" {
		t.Errorf("en catalog: %v, %v", m, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/translations/de", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("de status = %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "{}" {
		t.Errorf("de body = %q", rr.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	router, _ := testHandlers(t, &fakeRunner{}, nil, &fakePinger{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	router, _ = testHandlers(t, &fakeRunner{}, nil, &fakePinger{err: errors.New("down")})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestDownloadName(t *testing.T) {
	cases := []struct {
		original, processed, want string
	}{
		{"my song.mp3", "u1_processed.mp3", "my song_processed.mp3"},
		{"clip.mp4", "u2_with_text.mp4", "clip_with_text.mp4"},
		{"clip.mp4", "batch-9_combined.mp4", "clip_combined.mp4"},
		{"clip.mp4", "plain.mp4", "plain.mp4"},
	}
	for _, c := range cases {
		rec := &model.ContentRecord{OriginalFilename: c.original, ProcessedFilename: c.processed}
		if got := downloadName(rec); got != c.want {
			t.Errorf("downloadName(%q, %q) = %q, want %q", c.original, c.processed, got, c.want)
		}
	}
}
