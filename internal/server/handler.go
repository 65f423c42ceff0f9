package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/composeviz/pkg/errors"
	"github.com/matzehuels/composeviz/pkg/observability"
	"github.com/matzehuels/composeviz/pkg/pipeline"
	"github.com/matzehuels/composeviz/pkg/share"
	"github.com/matzehuels/composeviz/pkg/store"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	cfg    Config
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewHandler creates a new API handler. A nil runner gets an uncached one.
func NewHandler(cfg Config, runner *pipeline.Runner, st store.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = errors.DefaultMaxDocumentBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Handler{cfg: cfg, runner: runner, store: st, logger: logger}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(h.requestIDHeader)

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.jsonContentType)

		r.Get("/health", h.handleHealth)

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/graph", h.handleGraph)
			r.Post("/validate", h.handleValidate)
			r.Post("/layout", h.handleLayout)
			r.Post("/analyze", h.handleAnalyze)

			r.Route("/snapshots", func(r chi.Router) {
				r.Post("/", h.handleCreateSnapshot)
				r.Get("/", h.handleListSnapshots)
				r.Get("/{id}", h.handleGetSnapshot)
				r.Delete("/{id}", h.handleDeleteSnapshot)
			})

			r.Post("/share", h.handleEncodeShare)
			r.Get("/share/{token}", h.handleShare)
		})
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request and reports it to the HTTP hooks under
// its route pattern.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			d := time.Since(start)
			observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)
			h.logger.Debug("request",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", d,
				"request_id", middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Version: h.cfg.Version})
}

// =============================================================================
// Analysis Handlers
// =============================================================================

func (h *Handler) handleGraph(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := h.decodeDocument(w, r, false)
	if !ok {
		return
	}
	parsed, _, err := h.runner.ParseWithCacheInfo(r.Context(), req.Document, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, GraphResponse{Outcome: parsed.Outcome, Graph: parsed.Graph})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := h.decodeDocument(w, r, false)
	if !ok {
		return
	}
	report, _, err := h.runner.ValidateWithCacheInfo(r.Context(), req.Document, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := h.decodeDocument(w, r, false)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	parsed, _, err := h.runner.ParseWithCacheInfo(ctx, req.Document, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	l, _, err := h.runner.LayoutWithCacheInfo(ctx, parsed.Graph, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, LayoutResponse{Outcome: parsed.Outcome, Layout: l})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, opts, ok := h.decodeDocument(w, r, false)
	if !ok {
		return
	}
	res, err := h.analyze(r.Context(), req.Document, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) analyze(ctx context.Context, text string, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.RequestTimeout)
	defer cancel()
	return h.runner.Analyze(ctx, text, opts)
}

// =============================================================================
// Snapshot Handlers
// =============================================================================

func (h *Handler) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	req, opts, ok := h.decodeDocument(w, r, true)
	if !ok {
		return
	}
	res, err := h.analyze(r.Context(), req.Document, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	snap := store.NewSnapshot(req.Document, opts.Direction, opts.Engine, h.cfg.SnapshotTTL)
	if err := h.store.Save(r.Context(), snap); err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "failed to save snapshot"))
		return
	}
	h.logger.Info("saved snapshot", "id", snap.ID, "bytes", len(snap.Document))

	w.Header().Set("Location", "/api/v1/snapshots/"+snap.ID)
	h.writeJSON(w, http.StatusCreated, SnapshotResponse{
		Snapshot: snap,
		Analysis: res,
		ShareURL: h.shareURL(snap.Document),
	})
}

func (h *Handler) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	snap, ok := h.lookupSnapshot(w, r)
	if !ok {
		return
	}
	res, err := h.analyze(r.Context(), snap.Document, pipeline.Options{
		Direction: snap.Direction,
		Engine:    snap.Engine,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, SnapshotResponse{
		Snapshot: snap,
		Analysis: res,
		ShareURL: h.shareURL(snap.Document),
	})
}

func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			h.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be between 1 and 500"))
			return
		}
		limit = n
	}
	snaps, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "failed to list snapshots"))
		return
	}
	if snaps == nil {
		snaps = []*store.Snapshot{}
	}
	h.writeJSON(w, http.StatusOK, SnapshotListResponse{Snapshots: snaps})
}

func (h *Handler) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	snap, ok := h.lookupSnapshot(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), snap.ID); err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "failed to delete snapshot"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookupSnapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateSnapshotID(id); err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	snap, err := h.store.Get(r.Context(), id)
	if stderrors.Is(err, store.ErrNotFound) {
		h.writeError(w, r, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", id))
		return nil, false
	}
	if err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "failed to load snapshot"))
		return nil, false
	}
	return snap, true
}

func (h *Handler) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if h.store == nil {
		h.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "snapshots are not enabled on this server"))
		return false
	}
	return true
}

// =============================================================================
// Share Handlers
// =============================================================================

func (h *Handler) handleEncodeShare(w http.ResponseWriter, r *http.Request) {
	req, _, ok := h.decodeDocument(w, r, true)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, ShareResponse{
		Token: share.Encode(req.Document),
		URL:   h.shareURL(req.Document),
	})
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request) {
	text, err := share.Decode(chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidShareToken, err, "share token is not valid"))
		return
	}
	if err := errors.ValidateDocument(text, h.cfg.MaxDocumentBytes); err != nil {
		h.writeError(w, r, err)
		return
	}
	opts := pipeline.Options{
		Direction: r.URL.Query().Get("direction"),
		Engine:    r.URL.Query().Get("engine"),
	}
	res, err := h.analyze(r.Context(), text, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) shareURL(text string) string {
	if h.cfg.ShareBaseURL == "" {
		return ""
	}
	u, err := share.URL(h.cfg.ShareBaseURL, text)
	if err != nil {
		h.logger.Warn("invalid share base url", "url", h.cfg.ShareBaseURL, "err", err)
		return ""
	}
	return u
}

// =============================================================================
// Helpers
// =============================================================================

// decodeDocument reads a DocumentRequest and validates its options. Blank
// documents are accepted unless required is set, since the core reports
// them as empty rather than failing.
func (h *Handler) decodeDocument(w http.ResponseWriter, r *http.Request, required bool) (DocumentRequest, pipeline.Options, bool) {
	var req DocumentRequest
	// JSON escaping can inflate a document up to six times.
	r.Body = http.MaxBytesReader(w, r.Body, int64(6*h.cfg.MaxDocumentBytes+4096))
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			h.writeError(w, r, errors.New(errors.ErrCodeDocumentTooLarge, "request body too large"))
		} else {
			h.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON"))
		}
		return req, pipeline.Options{}, false
	}

	if required || strings.TrimSpace(req.Document) != "" {
		if err := errors.ValidateDocument(req.Document, h.cfg.MaxDocumentBytes); err != nil {
			h.writeError(w, r, err)
			return req, pipeline.Options{}, false
		}
	}

	opts := req.options()
	opts.Logger = h.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		h.writeError(w, r, err)
		return req, pipeline.Options{}, false
	}
	return req, opts, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

// writeError maps coded errors to statuses. Uncoded and internal errors are
// logged and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" || code == errors.ErrCodeInternal {
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", code,
			"err", err,
			"request_id", middleware.GetReqID(r.Context()))
	}
	h.writeJSON(w, status, ErrorResponse{
		Error:     msg,
		Code:      string(code),
		RequestID: middleware.GetReqID(r.Context()),
	})
}
