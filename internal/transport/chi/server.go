// Package chi exposes the search and admin HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/listdex/listdex/internal/domain"
	"github.com/listdex/listdex/internal/domain/filter"
	"github.com/listdex/listdex/internal/domain/listing"
	healthuc "github.com/listdex/listdex/internal/usecase/health"
	reindexuc "github.com/listdex/listdex/internal/usecase/reindex"
	syncuc "github.com/listdex/listdex/internal/usecase/sync"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest     = "bad_request"
	codeInvalidFilter  = "invalid_filter"
	codeSyncInProgress = "sync_in_progress"
	codeInternalError  = "internal_error"
	codeUnauthorized   = "unauthorized"
)

// searcher is the single query entry point.
type searcher interface {
	Search(ctx context.Context, f *filter.Filter) (*listing.SearchResult, error)
}

// syncTrigger runs one coalesced sync cycle.
type syncTrigger interface {
	TryRunCycle(ctx context.Context) (syncuc.CycleResult, bool, error)
}

// reindexer rebuilds the whole index.
type reindexer interface {
	Run(ctx context.Context) (reindexuc.Result, error)
}

// healthChecker reports component health.
type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	search  searcher
	syncer  syncTrigger
	reindex reindexer
	health  healthChecker
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search searcher, syncer syncTrigger, reindex reindexer, health healthChecker, logger *zap.Logger) *Server {
	return &Server{search: search, syncer: syncer, reindex: reindex, health: health, logger: logger}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/admin/sync", s.handleSync)
	r.Post("/api/v1/admin/reindex", s.handleReindex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ageRangeDTO is one requested [min, max] age interval.
type ageRangeDTO struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// radiusDTO centers a geo-restricted search.
type radiusDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	KM  float64 `json:"km"`
}

// searchRequest is the public search filter shape.
type searchRequest struct {
	Text         string        `json:"text,omitempty"`
	City         string        `json:"city,omitempty"`
	SettlementID int64         `json:"settlement_id,omitempty"`
	DirectionIDs []int64       `json:"direction_ids,omitempty"`
	AgeRanges    []ageRangeDTO `json:"age_ranges,omitempty"`
	IsFree       bool          `json:"is_free,omitempty"`
	MinPrice     int64         `json:"min_price,omitempty"`
	MaxPrice     int64         `json:"max_price,omitempty"`
	Radius       *radiusDTO    `json:"radius,omitempty"`
	Workdays     []int         `json:"workdays,omitempty"` // 0 = Monday
	MinHour      *int          `json:"min_hour,omitempty"`
	MaxHour      *int          `json:"max_hour,omitempty"`
	Statuses     []string      `json:"statuses,omitempty"`
	OrderBy      string        `json:"order_by,omitempty"`
	From         int           `json:"from,omitempty"`
	Size         int           `json:"size,omitempty"`
}

// toFilter maps the request body onto the domain filter. Unknown weekday
// numbers survive as invalid mask bits the filter validator rejects.
func (req *searchRequest) toFilter() filter.Filter {
	f := filter.New()
	f.Text = req.Text
	f.City = req.City
	f.SettlementID = req.SettlementID
	f.DirectionIDs = req.DirectionIDs
	for _, r := range req.AgeRanges {
		f.AgeRanges = append(f.AgeRanges, filter.AgeRange{Min: r.Min, Max: r.Max})
	}
	f.IsFree = req.IsFree
	f.MinPrice = req.MinPrice
	f.MaxPrice = req.MaxPrice
	if req.Radius != nil {
		f.Radius = &filter.Radius{Lat: req.Radius.Lat, Lon: req.Radius.Lon, KM: req.Radius.KM}
	}
	for _, wd := range req.Workdays {
		if wd < 0 || wd > 7 {
			wd = 7 // out of byte range, force an invalid bit
		}
		f.Workdays |= 1 << wd
	}
	if req.MinHour != nil {
		f.MinHour = *req.MinHour
	}
	if req.MaxHour != nil {
		f.MaxHour = *req.MaxHour
	}
	for _, s := range req.Statuses {
		f.Statuses = append(f.Statuses, listing.Status(s))
	}
	f.OrderBy = filter.OrderBy(req.OrderBy)
	f.From = req.From
	f.Size = req.Size
	return f
}

// handleSearch serves POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	f := req.toFilter()
	res, err := s.search.Search(r.Context(), &f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSync serves POST /api/v1/admin/sync: one coalesced cycle.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	res, ran, err := s.syncer.TryRunCycle(r.Context())
	if !ran {
		writeError(w, http.StatusConflict, codeSyncInProgress, "a sync cycle is already running")
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReindex serves POST /api/v1/admin/reindex. The rebuild runs within
// the request; operators call it rarely and watch it complete.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	res, err := s.reindex.Run(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidFilter) {
		writeError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())
		return
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
