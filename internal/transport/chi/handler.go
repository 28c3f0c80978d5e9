package chi

import (
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
)

// ServerInterface is the set of API operations.
type ServerInterface interface {
	// SearchRecommendations handles POST /v1/recommendations/search.
	SearchRecommendations(w http.ResponseWriter, r *http.Request)
	// GetRecommendation handles GET /v1/recommendations/{id}.
	GetRecommendation(w http.ResponseWriter, r *http.Request, id string)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ServerOptions configures Handler.
type ServerOptions struct {
	BaseRouter chirouter.Router
	// APIMiddlewares wrap the /v1 routes only.
	APIMiddlewares []func(http.Handler) http.Handler
	// ErrorHandlerFunc reports parameter binding failures.
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts si on options.BaseRouter (a new router if nil).
func Handler(si ServerInterface, options ServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chirouter.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		}
	}

	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)

	r.Route("/v1/recommendations", func(r chirouter.Router) {
		r.Use(options.APIMiddlewares...)
		r.Post("/search", si.SearchRecommendations)
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			id, err := bindID(chirouter.URLParam(req, "id"))
			if err != nil {
				options.ErrorHandlerFunc(w, req, err)
				return
			}
			si.GetRecommendation(w, req, id)
		})
	})
	return r
}
