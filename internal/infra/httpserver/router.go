package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	apparchive "github.com/bryanwahyu/complaint-analyst/internal/application/archive"
	appsessions "github.com/bryanwahyu/complaint-analyst/internal/application/sessions"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
	domain "github.com/bryanwahyu/complaint-analyst/internal/domain/sessions"
	"github.com/bryanwahyu/complaint-analyst/internal/middleware"
	"github.com/bryanwahyu/complaint-analyst/internal/observability"
)

const defaultMaxUpload = 20 << 20

var errBadRequest = errors.New("bad request")

type Options struct {
	Sessions       *appsessions.Service
	Archive        *apparchive.Service // nil hides /v1/archive
	MaxUploadBytes int64
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	sessions  *appsessions.Service
	archive   *apparchive.Service
	maxUpload int64
}

func NewRouter(opts Options) http.Handler {
	r := &Router{
		sessions:  opts.Sessions,
		archive:   opts.Archive,
		maxUpload: opts.MaxUploadBytes,
	}
	if r.maxUpload <= 0 {
		r.maxUpload = defaultMaxUpload
	}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler(r.sessions.Count))

	mux.Route("/v1/sessions", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleCreate))
		rt.Route("/{session}", func(rs chi.Router) {
			rs.Get("/", r.wrap(r.handleView))
			rs.Delete("/", r.wrap(r.handleEnd))
			rs.Put("/draft", r.wrap(r.handleDraft))
			rs.Post("/analyze", r.wrap(r.handleAnalyze))
			rs.Post("/extract", r.wrap(r.handleExtract))
			rs.Post("/clear", r.wrap(r.handleClear))
			rs.Post("/examples/{lang}", r.wrap(r.handleExample))
			rs.Get("/history", r.wrap(r.handleHistory))
			rs.Get("/history/{id}", r.wrap(r.handleHistoryItem))
			rs.Post("/history/{id}/select", r.wrap(r.handleSelect))
		})
	})

	if r.archive != nil {
		mux.Get("/v1/archive", r.wrap(r.handleArchiveList))
	}

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				observability.LoggerFromContext(req.Context()).Error("request failed", "error", err)
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
		}
	}
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrHistoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, complaints.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest), errors.Is(err, appsessions.ErrUnknownLanguage):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondView writes the view. Busy and unsupported-type refusals still carry the
// view, so the page can show the inline message.
func respondView(w http.ResponseWriter, v *appsessions.View, err error) error {
	if err == nil {
		return writeJSON(w, http.StatusOK, v)
	}
	if v == nil {
		return err
	}
	switch status := statusFor(err); status {
	case http.StatusConflict, http.StatusUnsupportedMediaType:
		return writeJSON(w, status, v)
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}
