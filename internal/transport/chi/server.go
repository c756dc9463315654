// Package chi exposes the HTTP API: search, ingest, health, metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/querymorph/querymorph/internal/domain"
	healthuc "github.com/querymorph/querymorph/internal/usecase/health"
	ingestuc "github.com/querymorph/querymorph/internal/usecase/ingest"
	queryuc "github.com/querymorph/querymorph/internal/usecase/query"
)

// Error response codes returned to API clients.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeQuotaExceeded    = "quota_exceeded"
	CodeUpstreamError    = "upstream_error"
	CodeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the query, ingest, and health services.
type Server struct {
	query         *queryuc.Service
	ingest        *ingestuc.Service
	health        *healthuc.Service
	sources       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. sources is the feed list swept
// by the ingest trigger endpoint.
func NewServer(query *queryuc.Service, ingest *ingestuc.Service, health *healthuc.Service, sources []string, logger *zap.Logger) *Server {
	s := &Server{
		query:   query,
		ingest:  ingest,
		health:  health,
		sources: sources,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusTooManyRequests, CodeQuotaExceeded),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, CodeUpstreamError),
	}
	return s
}

// Routes registers all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search", s.Search)
	r.Post("/ingest", s.Ingest)
	r.Post("/ingest/sweep", s.Sweep)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchRequest is the POST /search body. TopK and Threshold are
// pointers so an explicit zero is distinguishable from an omitted field.
type SearchRequest struct {
	UserID    string   `json:"user_id"`
	Query     string   `json:"query"`
	TopK      *int     `json:"top_k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// SearchResult is one ranked document in the response.
type SearchResult struct {
	ID        string  `json:"id"`
	Title     string  `json:"title,omitempty"`
	Content   string  `json:"content"`
	SourceURL string  `json:"source_url,omitempty"`
	Score     float64 `json:"score"`
}

// SearchResponse is the POST /search body on success.
type SearchResponse struct {
	Answer  string         `json:"answer"`
	Results []SearchResult `json:"results"`
	Cached  bool           `json:"cached"`
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "user_id is required")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}
	if req.TopK != nil && *req.TopK < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "top_k must not be negative")
		return
	}
	if req.Threshold != nil && (*req.Threshold < 0 || *req.Threshold > 1) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "threshold must be between 0 and 1")
		return
	}

	resp, err := s.query.Answer(r.Context(), queryuc.Request{
		UserID:    req.UserID,
		Query:     req.Query,
		TopK:      req.TopK,
		Threshold: req.Threshold,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]SearchResult, len(resp.Results))
	for i, res := range resp.Results {
		results[i] = SearchResult{
			ID:        res.ID,
			Title:     res.Title,
			Content:   res.Content,
			SourceURL: res.SourceURL,
			Score:     res.Score,
		}
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Answer:  resp.Answer,
		Results: results,
		Cached:  resp.Cached,
	})
}

// IngestRequest is the POST /ingest body.
type IngestRequest struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content"`
}

// IngestResponse is the POST /ingest body on success.
type IngestResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// Ingest handles POST /ingest.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.ingest.IngestArticle(r.Context(), domain.Article{
		Title:   req.Title,
		URL:     req.URL,
		Content: req.Content,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, IngestResponse{
		ID:        doc.ID(),
		Title:     doc.Title(),
		SourceURL: doc.SourceURL(),
	})
}

// SweepResponse summarizes an on-demand ingest sweep.
type SweepResponse struct {
	Sources  int `json:"sources"`
	Articles int `json:"articles"`
	Stored   int `json:"stored"`
	Failed   int `json:"failed"`
}

// Sweep handles POST /ingest/sweep. It runs one sweep over the
// configured sources synchronously and reports the counts; per-source
// failures are logged and skipped, never surfaced as an HTTP error.
func (s *Server) Sweep(w http.ResponseWriter, r *http.Request) {
	report := s.ingest.Sweep(r.Context(), s.sources)

	writeJSON(w, http.StatusOK, SweepResponse{
		Sources:  report.Sources,
		Articles: report.Articles,
		Stored:   report.Stored,
		Failed:   report.Failed,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Check())
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrQuotaExceeded,
		domain.ErrInvalidInput,
		domain.ErrVectorDimMismatch,
		domain.ErrUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
