// Package chi is the HTTP transport of the recommendation search API.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recsearch/internal/domain"
	"github.com/kailas-cloud/recsearch/internal/domain/search/request"
	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
	"github.com/kailas-cloud/recsearch/internal/logger"
	healthuc "github.com/kailas-cloud/recsearch/internal/usecase/health"
	recorduc "github.com/kailas-cloud/recsearch/internal/usecase/record"
	searchuc "github.com/kailas-cloud/recsearch/internal/usecase/search"
	"github.com/kailas-cloud/recsearch/internal/version"
)

// maxBodyBytes caps search request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements ServerInterface.
type Server struct {
	search        *searchuc.Service
	records       *recorduc.Service
	health        *healthuc.Service
	limits        request.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	records *recorduc.Service,
	health *healthuc.Service,
	limits request.Limits,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:  search,
		records: records,
		health:  health,
		limits:  limits,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler(domain.ErrInvalidFilter),
		validationHandler(domain.ErrInvalidRequest),
		sentinelHandler(domain.ErrUnresolvedTenant, http.StatusUnauthorized, ErrorCodeUnresolvedTenant),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		storageHandler(domain.ErrStorageTimeout, http.StatusGatewayTimeout, ErrorCodeStorageTimeout),
		storageHandler(domain.ErrStorageUnavailable, http.StatusServiceUnavailable, ErrorCodeStorageUnavailable),
	}
	return s
}

// SearchRecommendations handles POST /v1/recommendations/search.
func (s *Server) SearchRecommendations(w http.ResponseWriter, r *http.Request) {
	key, err := tenant.FromContext(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var body SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := searchRequestFromAPI(body, s.limits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	pg, err := s.search.Search(r.Context(), key, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToAPI(pg))
}

// GetRecommendation handles GET /v1/recommendations/{id}.
func (s *Server) GetRecommendation(w http.ResponseWriter, r *http.Request, id string) {
	key, err := tenant.FromContext(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rec, err := s.records.Get(r.Context(), key, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToAPI(&rec))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
		Version:   version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// bindID binds the {id} path parameter.
func bindID(raw string) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", raw, &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter id: %w", err)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// validationMessage returns the caller-facing part of a validation error,
// without the wrapping added by inner layers.
func validationMessage(err error, sentinel error) string {
	var ife *domain.InvalidFilterError
	if errors.As(err, &ife) {
		return ife.Error()
	}
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

// validationHandler maps a validation sentinel to 400 with its detail.
func validationHandler(sentinel error) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, validationMessage(err, sentinel))
		return true
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// storageHandler reports the failing stage without the underlying cause.
func storageHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if stage := domain.StageOf(err); stage != "" {
			msg += " (stage " + string(stage) + ")"
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Debug("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	if errors.Is(err, r.Context().Err()) && r.Context().Err() != nil {
		log.Info("request canceled", zap.Error(err))
		return
	}
	s.logger.Error("internal error",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
