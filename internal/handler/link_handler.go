package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coderedlink/coderedlink/internal/apperr"
	"github.com/coderedlink/coderedlink/internal/logger"
	"github.com/coderedlink/coderedlink/internal/middleware"
	"github.com/coderedlink/coderedlink/internal/model"
	"github.com/coderedlink/coderedlink/internal/service"
	"github.com/coderedlink/coderedlink/internal/worker"
)

// unknownIP is recorded when no client address can be determined.
const unknownIP = "unknown"

// LinkHandler handles HTTP requests for link operations and redirects.
type LinkHandler struct {
	service      *service.LinkService
	recorder     *worker.Recorder
	log          *logger.Logger
	notFoundPath string
}

// NewLinkHandler creates a new handler instance.
func NewLinkHandler(svc *service.LinkService, rec *worker.Recorder, log *logger.Logger, notFoundPath string) *LinkHandler {
	return &LinkHandler{
		service:      svc,
		recorder:     rec,
		log:          log,
		notFoundPath: notFoundPath,
	}
}

// ============ API HANDLERS ============

// HandleCreate creates a new short link.
// POST /api/links
func (h *LinkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.InvalidJSON(err.Error()).WriteJSON(w)
		return
	}

	link, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// HandleList returns all active links, newest first.
// GET /api/links
func (h *LinkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, links)
}

// HandleGet returns one link with its ordered clicks.
// GET /api/links/{code}
func (h *LinkHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.Get(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// HandleDelete soft-deletes a link.
// DELETE /api/links/{code}
func (h *LinkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("code")); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteResponse{Message: "Link deleted"})
}

// ============ REDIRECT ============

// HandleRedirect resolves a code and redirects to its target, recording the
// click off the response path. Missing, deleted, and broken lookups all land
// on the not-found page so nothing internal leaks to visitors.
// GET /{code}
func (h *LinkHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "favicon.ico" {
		http.NotFound(w, r)
		return
	}

	link, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		var ae *apperr.Error
		if !errors.As(err, &ae) || ae.StatusCode != http.StatusNotFound {
			h.log.Error("redirect lookup failed",
				"request_id", middleware.GetRequestID(r.Context()),
				"code", code,
				"error", err.Error())
		}
		http.Redirect(w, r, h.notFoundPath, http.StatusFound)
		return
	}

	// Fire and forget: the visitor is redirected before the click is
	// durable, and a full buffer just drops the event.
	h.recorder.Enqueue(worker.Event{
		LinkID:    link.ID,
		Time:      time.Now().UTC(),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	})

	http.Redirect(w, r, link.TargetURL, http.StatusFound)
}

// HandleNotFoundPage is the landing page for dead short links.
// GET /404
func (h *LinkHandler) HandleNotFoundPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("<!DOCTYPE html><html><head><title>Not Found</title></head>" +
		"<body><h1>404</h1><p>This link does not exist or has been removed.</p></body></html>"))
}

// HandleHealth returns service health status.
// GET /health
func (h *LinkHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}

// ============ ROUTER SETUP ============

// SetupRoutes configures all HTTP routes.
func (h *LinkHandler) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/links", h.HandleCreate)
	mux.HandleFunc("GET /api/links", h.HandleList)
	mux.HandleFunc("GET /api/links/{code}", h.HandleGet)
	mux.HandleFunc("DELETE /api/links/{code}", h.HandleDelete)

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /404", h.HandleNotFoundPage)

	// Catch-all single-segment redirect.
	mux.HandleFunc("GET /{code}", h.HandleRedirect)
	mux.HandleFunc("GET /{$}", h.HandleNotFoundPage)

	return mux
}

// ============ HELPERS ============

func (h *LinkHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		ae.WriteJSON(w)
		return
	}

	h.log.Error("request failed",
		"request_id", middleware.GetRequestID(r.Context()),
		"path", r.URL.Path,
		"error", err.Error())
	apperr.StoreFailure().WriteJSON(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// clientIP extracts the best-effort client address: first X-Forwarded-For
// value, then X-Real-IP, then a sentinel.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return unknownIP
}
