// Package diag exposes a registry over HTTP: a read-only view of its
// registrations and a middleware that scopes per-thread instances to a request.
package diag

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/centraunit/ioc"
	"github.com/centraunit/ioc/internal/ctxlog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler serves registration snapshots as JSON.
type Handler struct {
	mux      chi.Router
	registry *ioc.Registry
	logger   *slog.Logger
}

// NewHandler creates a Handler for r with the routes:
//
//	GET /registrations             every registration, sorted by contract
//	GET /registrations/{contract}  one registration by its type string
func NewHandler(r *ioc.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = ctxlog.Discard()
	}
	h := &Handler{mux: chi.NewRouter(), registry: r, logger: logger}
	h.mux.Use(middleware.Recoverer)
	h.mux.Get("/registrations", h.list)
	h.mux.Get("/registrations/{contract}", h.show)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.mux.ServeHTTP(w, req)
}

func (h *Handler) list(w http.ResponseWriter, req *http.Request) {
	h.writeJSON(w, http.StatusOK, h.registry.Registrations())
}

func (h *Handler) show(w http.ResponseWriter, req *http.Request) {
	contract, err := url.PathUnescape(chi.URLParam(req, "contract"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	for _, info := range h.registry.Registrations() {
		if info.Contract == contract {
			h.writeJSON(w, http.StatusOK, info)
			return
		}
	}
	h.writeJSON(w, http.StatusNotFound, errorBody{Error: "contract not registered: " + contract})
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write diagnostics response.", "error", err)
	}
}
