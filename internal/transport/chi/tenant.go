package chi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recsearch/internal/domain/tenant"
	"github.com/kailas-cloud/recsearch/internal/logger"
)

// TenantMiddleware resolves the tenant key from header and stores it in the
// request context. Requests without a resolvable key are rejected before
// reaching any handler.
func TenantMiddleware(resolver *tenant.Resolver, header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := resolver.Resolve(r.Header.Get(header))
			if err != nil {
				logger.FromContext(r.Context()).Debug("tenant not resolved", zap.Error(err))
				writeError(w, http.StatusUnauthorized, ErrorCodeUnresolvedTenant,
					"missing or malformed "+header+" header")
				return
			}

			ctx := tenant.ContextWithKey(r.Context(), key)
			ctx = logger.WithFields(ctx, zap.String("tenant", key.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
