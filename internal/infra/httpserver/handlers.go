package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appsessions "github.com/bryanwahyu/complaint-analyst/internal/application/sessions"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
	domain "github.com/bryanwahyu/complaint-analyst/internal/domain/sessions"
	"github.com/bryanwahyu/complaint-analyst/internal/middleware"
	"github.com/bryanwahyu/complaint-analyst/internal/observability"
)

// sessionID reads and validates {session}, and tags the request logger with it.
func sessionID(req *http.Request) (domain.ID, *http.Request, error) {
	raw := chi.URLParam(req, "session")
	if err := middleware.ValidateSessionID(raw); err != nil {
		return "", req, badRequest("%v", err)
	}
	ctx := observability.WithSessionID(req.Context(), raw)
	return domain.ID(raw), req.WithContext(ctx), nil
}

// POST /v1/sessions
func (r *Router) handleCreate(w http.ResponseWriter, req *http.Request) error {
	v, err := r.sessions.Create(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, v)
}

// GET /v1/sessions/{session}
func (r *Router) handleView(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}
	v, err := r.sessions.View(req.Context(), id)
	return respondView(w, v, err)
}

// DELETE /v1/sessions/{session}
func (r *Router) handleEnd(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}
	if err := r.sessions.End(req.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// PUT /v1/sessions/{session}/draft
// Body: {"text": "..."}
func (r *Router) handleDraft(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}
	var body struct {
		Text *string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if body.Text == nil {
		return badRequest("text is required")
	}
	v, err := r.sessions.SetDraft(req.Context(), id, *body.Text)
	return respondView(w, v, err)
}

// POST /v1/sessions/{session}/analyze
// Failures of the analysis itself come back in the view's error field.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}
	v, err := r.sessions.Analyze(req.Context(), id)
	return respondView(w, v, err)
}

// POST /v1/sessions/{session}/extract
// multipart/form-data with one "file" part
func (r *Router) handleExtract(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return badRequest("invalid multipart body: %v", err)
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest("file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data)
	}

	v, err := r.sessions.Extract(req.Context(), id, appsessions.Upload{
		Name:      middleware.SanitizeFilename(header.Filename),
		MediaType: mediaType,
		Data:      data,
	})
	return respondView(w, v, err)
}

// POST /v1/sessions/{session}/clear
func (r *Router) handleClear(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}
	v, err := r.sessions.Clear(req.Context(), id)
	return respondView(w, v, err)
}

// POST /v1/sessions/{session}/examples/{lang}
func (r *Router) handleExample(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}
	lang, err := middleware.ValidateLanguage(chi.URLParam(req, "lang"))
	if err != nil {
		return badRequest("%v", err)
	}
	v, err := r.sessions.LoadExample(req.Context(), id, lang)
	return respondView(w, v, err)
}

// GET /v1/sessions/{session}/history
// Most recent first.
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}
	items, err := r.sessions.History(req.Context(), id)
	if err != nil {
		return err
	}
	if items == nil {
		items = []complaints.HistoryItem{}
	}
	return writeJSON(w, http.StatusOK, items)
}

// GET /v1/sessions/{session}/history/{id}
func (r *Router) handleHistoryItem(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}
	itemID, err := middleware.ValidateHistoryID(chi.URLParam(req, "id"))
	if err != nil {
		return badRequest("%v", err)
	}
	item, err := r.sessions.HistoryItem(req.Context(), id, itemID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, item)
}

// POST /v1/sessions/{session}/history/{id}/select
// Shows a past analysis again without calling the model.
func (r *Router) handleSelect(w http.ResponseWriter, req *http.Request) error {
	id, req, err := sessionID(req)
	if err != nil {
		return err
	}
	itemID, err := middleware.ValidateHistoryID(chi.URLParam(req, "id"))
	if err != nil {
		return badRequest("%v", err)
	}
	v, err := r.sessions.Select(req.Context(), id, itemID)
	return respondView(w, v, err)
}

// GET /v1/archive?page=&page_size=
func (r *Router) handleArchiveList(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.archive.ListAnalyses(req.Context(), middleware.ValidatePage(page), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}
