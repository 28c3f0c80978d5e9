package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// If apiKeys is empty, authentication is disabled (pass-through).
// Tokens are compared by digest in constant time.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	digests := make([][32]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			digests = append(digests, sha256.Sum256([]byte(k)))
		}
	}

	valid := func(token string) bool {
		d := sha256.Sum256([]byte(token))
		ok := 0
		for i := range digests {
			ok |= subtle.ConstantTimeCompare(d[:], digests[i][:])
		}
		return ok == 1
	}

	return func(next http.Handler) http.Handler {
		// auth disabled
		if len(digests) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					ErrorCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			if !valid(strings.TrimSpace(auth[len(bearerPrefix):])) {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
