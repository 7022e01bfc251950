package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"viral-clip-gen/internal"
	"viral-clip-gen/internal/i18n"
	"viral-clip-gen/internal/logging"
	"viral-clip-gen/internal/media"
	"viral-clip-gen/internal/model"
	"viral-clip-gen/internal/pipeline"
	"viral-clip-gen/internal/store"
)

type handlers struct {
	cfg      internal.Config
	log      *logging.Logger
	runner   BatchRunner
	contents store.ContentStore
	db       Pinger
}

type uploadResponse struct {
	BatchID       string          `json:"batch_id"`
	Content       json.RawMessage `json:"content"`
	Transcription string          `json:"transcription,omitempty"`
	Outcomes      []outcomeView   `json:"outcomes"`
	Results       []resultView    `json:"results"`
}

type outcomeView struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

type resultView struct {
	ID                string `json:"id"`
	ProcessedFilename string `json:"processed_filename"`
	PreviewURL        string `json:"preview_url"`
	DownloadURL       string `json:"download_url"`
}

func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "malformed multipart request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files in request")
		return
	}

	assets, err := h.saveUploads(files)
	if err != nil {
		h.log.Errorf("save uploads: %v", err)
		writeError(w, http.StatusInternalServerError, "could not store uploads")
		return
	}

	params := paramsFromForm(r)
	pos := media.ParsePosition(r.FormValue("text_position"))

	res, err := h.runner.Run(r.Context(), assets, params, pos)
	switch {
	case errors.Is(err, pipeline.ErrNoEligibleFiles):
		writeError(w, http.StatusBadRequest, "no .mp3 or .mp4 files in batch")
		return
	case errors.Is(err, pipeline.ErrNoArtifacts):
		writeError(w, http.StatusInternalServerError, "processing failed for every file")
		return
	case err != nil:
		h.log.Errorf("batch run: %v", err)
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	writeJSON(w, http.StatusOK, uploadView(res))
}

func uploadView(res *pipeline.BatchResult) uploadResponse {
	resp := uploadResponse{
		BatchID:       res.ID,
		Content:       json.RawMessage(res.Document),
		Transcription: res.Transcription,
		Outcomes:      []outcomeView{},
		Results:       []resultView{},
	}
	for _, o := range res.Outcomes {
		v := outcomeView{Filename: o.Asset.OriginalName, Status: string(o.Status)}
		if o.Err != nil {
			v.Error = o.Err.Error()
		}
		resp.Outcomes = append(resp.Outcomes, v)
	}
	for _, rec := range res.Records {
		resp.Results = append(resp.Results, resultView{
			ID:                rec.ID,
			ProcessedFilename: rec.ProcessedFilename,
			PreviewURL:        "/preview/" + rec.ID,
			DownloadURL:       "/download/" + rec.ID,
		})
	}
	return resp
}

func (h *handlers) saveUploads(files []*multipart.FileHeader) ([]model.UploadedAsset, error) {
	assets := make([]model.UploadedAsset, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		name := filepath.Base(fh.Filename)
		ext := strings.ToLower(filepath.Ext(name))
		path := filepath.Join(h.cfg.UploadDir, uuid.NewString()+ext)
		dst, err := os.Create(path)
		if err != nil {
			src.Close()
			return nil, err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return nil, err
		}
		assets = append(assets, model.UploadedAsset{Path: path, OriginalName: name})
	}
	return assets, nil
}

func paramsFromForm(r *http.Request) model.GenerationParams {
	p := model.DefaultGenerationParams()
	p.Theme = model.ParseTheme(r.FormValue("theme"))
	p.Intensity = model.ParseIntensity(r.FormValue("effect_intensity"))
	setIfPresent(&p.Tone, r.FormValue("tone"))
	setIfPresent(&p.Platform, r.FormValue("platform"))
	setIfPresent(&p.Length, r.FormValue("length"))
	setIfPresent(&p.Language, r.FormValue("language"))
	setIfPresent(&p.ContentFormat, r.FormValue("content_format"))
	setIfPresent(&p.TargetEmotion, r.FormValue("target_emotion"))
	setIfPresent(&p.CallToAction, r.FormValue("call_to_action"))
	return p
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// preview returns the generated copy for a record; the media itself is
// fetched through download.
func (h *handlers) preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.contents.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown content id")
		} else {
			h.log.Errorf("lookup %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "lookup failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":                rec.ID,
		"original_filename": rec.OriginalFilename,
		"theme":             rec.Theme,
		"content":           json.RawMessage(rec.GeneratedContent),
		"created_at":        rec.CreatedAt,
	})
}

func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", mediaContentType(rec.ProcessedFilename))
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName(rec)+`"`)
	http.ServeFile(w, r, filepath.Join(h.cfg.UploadDir, rec.ProcessedFilename))
}

func (h *handlers) lookup(w http.ResponseWriter, r *http.Request) (*model.ContentRecord, bool) {
	id := chi.URLParam(r, "id")
	rec, err := h.contents.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown content id")
		} else {
			h.log.Errorf("lookup %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "lookup failed")
		}
		return nil, false
	}
	if rec.ProcessedFilename == "" {
		writeError(w, http.StatusNotFound, "no processed file for this content")
		return nil, false
	}
	return rec, true
}

func (h *handlers) listContents(w http.ResponseWriter, r *http.Request) {
	recs, err := h.contents.Recent(r.Context(), 50)
	if err != nil {
		h.log.Errorf("list contents: %v", err)
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}
	type item struct {
		ID               string    `json:"id"`
		OriginalFilename string    `json:"original_filename"`
		Theme            string    `json:"theme"`
		CreatedAt        time.Time `json:"created_at"`
		DownloadURL      string    `json:"download_url"`
	}
	items := make([]item, 0, len(recs))
	for _, rec := range recs {
		items = append(items, item{
			ID:               rec.ID,
			OriginalFilename: rec.OriginalFilename,
			Theme:            rec.Theme,
			CreatedAt:        rec.CreatedAt,
			DownloadURL:      "/download/" + rec.ID,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) translations(w http.ResponseWriter, r *http.Request) {
	data, err := i18n.Catalog(chi.URLParam(r, "lang"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("{}"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "fail"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// downloadName rebuilds a client-facing filename: the original stem
// plus the stage suffix of the processed file.
func downloadName(rec *model.ContentRecord) string {
	stem := strings.TrimSuffix(rec.OriginalFilename, filepath.Ext(rec.OriginalFilename))
	if i := strings.Index(rec.ProcessedFilename, "_"); i >= 0 {
		return stem + rec.ProcessedFilename[i:]
	}
	return rec.ProcessedFilename
}

func mediaContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	}
	return "application/octet-stream"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
