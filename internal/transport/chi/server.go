package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prospect-labs/prospector/internal/db"
	"github.com/prospect-labs/prospector/internal/domain"
	"github.com/prospect-labs/prospector/internal/domain/filter"
	"github.com/prospect-labs/prospector/internal/metrics"
	"github.com/prospect-labs/prospector/internal/repository/savedsearch"
	healthuc "github.com/prospect-labs/prospector/internal/usecase/health"
	optionsuc "github.com/prospect-labs/prospector/internal/usecase/options"
	searchuc "github.com/prospect-labs/prospector/internal/usecase/search"
)

// Server exposes the query core over HTTP. Rendering and filter input
// collection live in external callers; this surface only moves validated
// filter sets in and result pages out.
type Server struct {
	search      *searchuc.Service
	options     *optionsuc.Service
	saved       *savedsearch.Repository
	health      *healthuc.Service
	maxPageSize int
	logger      *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	options *optionsuc.Service,
	saved *savedsearch.Repository,
	health *healthuc.Service,
	maxPageSize int,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:      search,
		options:     options,
		saved:       saved,
		health:      health,
		maxPageSize: maxPageSize,
		logger:      logger,
	}
}

// Routes builds the router with middleware and all endpoints.
func (s *Server) Routes(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/schema", s.handleSchema)
		r.Post("/filters/{name}/options", s.handleOptions)
		r.Post("/filters/{name}/invalidate", s.handleInvalidate)

		r.Route("/searches/{user}", func(r chi.Router) {
			r.Get("/", s.handleListSearches)
			r.Put("/{name}", s.handleSaveSearch)
			r.Get("/{name}", s.handleGetSearch)
			r.Delete("/{name}", s.handleDeleteSearch)
		})
	})

	return r
}

type searchRequest struct {
	Filters  json.RawMessage `json:"filters"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	filters, err := decodeFilters(req.Filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if req.PageSize > s.maxPageSize {
		writeError(w, http.StatusBadRequest, "validation_failed", "page_size exceeds maximum")
		return
	}

	page, err := s.search.Search(r.Context(), filters, req.Page, req.PageSize)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type schemaFilter struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Column    string   `json:"column"`
	Options   []string `json:"options,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	defs := s.search.Schema().Definitions()
	out := make([]schemaFilter, 0, len(defs))
	for _, d := range defs {
		out = append(out, schemaFilter{
			Name:      d.Name(),
			Kind:      string(d.Kind()),
			Column:    d.Column(),
			Options:   d.Options(),
			DependsOn: d.DependsOn(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"filters": out})
}

type optionsRequest struct {
	Filters json.RawMessage `json:"filters"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	deps := filter.Set{}
	if r.Body != nil && r.ContentLength != 0 {
		var req optionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
			return
		}
		var err error
		if deps, err = decodeFilters(req.Filters); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	values, err := s.options.Options(r.Context(), name, deps)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"options": values})
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version, err := s.options.Invalidate(name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filter": name, "version": version})
}

type saveSearchRequest struct {
	Filters json.RawMessage `json:"filters"`
}

func (s *Server) handleSaveSearch(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	name := chi.URLParam(r, "name")

	var req saveSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	filters, err := decodeFilters(req.Filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if err := s.search.Schema().ValidateSet(filters); err != nil {
		s.handleDomainError(w, err)
		return
	}

	if err := s.saved.Save(r.Context(), user, name, filters); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	names, err := s.saved.List(r.Context(), user)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"names": names})
}

func (s *Server) handleGetSearch(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	name := chi.URLParam(r, "name")

	set, err := s.saved.Get(r.Context(), user, name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	blob, err := filter.Marshal(set)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filters": json.RawMessage(blob)})
}

func (s *Server) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	name := chi.URLParam(r, "name")
	if err := s.saved.Delete(r.Context(), user, name); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func decodeFilters(raw json.RawMessage) (filter.Set, error) {
	if len(raw) == 0 {
		return filter.Set{}, nil
	}
	return filter.Unmarshal(raw)
}

// handleDomainError maps error taxonomy to HTTP status codes.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	var dbErr *db.Error
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownFilter):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrGeocodeFailure):
		writeError(w, http.StatusUnprocessableEntity, "geocode_failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &dbErr):
		s.logger.Error("Backend query failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "backend_error", err.Error())
	default:
		s.logger.Error("Unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
