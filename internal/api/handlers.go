// Package api exposes the folders and notes services over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kuitang/noteful/internal/db"
	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/folders"
	"github.com/kuitang/noteful/internal/notes"
	"github.com/kuitang/noteful/internal/obs"
)

const (
	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes = 1 << 20

	healthTimeout = 2 * time.Second
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the folders and notes resources.
type Handler struct {
	folders *folders.Service
	notes   *notes.Service
	pinger  Pinger
	prefix  string
}

// NewHandler creates a handler. Routes are mounted under prefix ("" or "/api").
func NewHandler(folderSvc *folders.Service, noteSvc *notes.Service, pinger Pinger, prefix string) *Handler {
	return &Handler{folders: folderSvc, notes: noteSvc, pinger: pinger, prefix: prefix}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	p := h.prefix

	mux.Handle("GET "+p+"/folders", h.handle(h.ListFolders))
	mux.Handle("POST "+p+"/folders", h.handle(h.CreateFolder))
	mux.Handle("GET "+p+"/folders/{id}", h.handle(h.withFolder(h.GetFolder)))
	mux.Handle("PATCH "+p+"/folders/{id}", h.handle(h.withFolder(h.UpdateFolder)))
	mux.Handle("DELETE "+p+"/folders/{id}", h.handle(h.withFolder(h.DeleteFolder)))

	mux.Handle("GET "+p+"/notes", h.handle(h.ListNotes))
	mux.Handle("POST "+p+"/notes", h.handle(h.CreateNote))
	mux.Handle("GET "+p+"/notes/{id}", h.handle(h.withNote(h.GetNote)))
	mux.Handle("PATCH "+p+"/notes/{id}", h.handle(h.withNote(h.UpdateNote)))
	mux.Handle("DELETE "+p+"/notes/{id}", h.handle(h.withNote(h.DeleteNote)))

	mux.Handle("GET /healthz", h.handle(h.Health))
}

// NewRouter wraps the mux with the request id, access log, panic recovery
// and CORS middleware, outermost first.
func NewRouter(h *Handler, corsOrigin string) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = obs.CORSMiddleware(corsOrigin, handler)
	handler = obs.RecoverMiddleware(handler)
	handler = obs.AccessLogMiddleware("api", handler)
	handler = obs.RequestContextMiddleware(handler)
	return handler
}

// apiFunc is an HTTP handler that reports failures by returning an error.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

func (h *Handler) handle(fn apiFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	})
}

// Health handles GET /healthz - pings the store.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		return errs.Wrap(errs.Unavailable, "store unavailable", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

// pathID parses the {id} path segment. Non-integer ids never match a row.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// decodeJSON reads at most MaxBodyBytes into dst. An empty body decodes as {}.
// The body must hold a single JSON value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return bodyError(err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after JSON value")
		}
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return errs.Wrap(errs.InvalidArgument, "Request body too large", err)
	}
	return errs.Wrap(errs.InvalidArgument, "Invalid JSON", err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		obs.Pkg("api").Warn("response encode failed", "error", err)
	}
}

// writeError maps err to a status and an {"error":{"message":...}} body.
// Uncoded errors become 500 "internal error"; their text is only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.CodeOf(err)
	status := errs.HTTPStatus(code)

	logger := obs.From(r.Context()).With("pkg", "api")
	if status >= http.StatusInternalServerError {
		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		}
		attrs = append(attrs, db.ErrorAttrs(err)...)
		if db.IsConnectionError(err) {
			attrs = append(attrs, slog.Bool("store_unreachable", true))
		}
		logger.LogAttrs(r.Context(), slog.LevelError, "request failed", attrs...)
	} else {
		logger.Info("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "reason", errs.MessageOf(err))
	}

	writeJSON(w, status, errs.BodyOf(err))
}
