// Package auth guards the console API with a shared API key.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/stratashop/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// MinKeyLength is the shortest API key that does not trigger a startup warning.
const MinKeyLength = 24

// APIKeyAuth returns middleware that requires "Authorization: Bearer <api-key>".
//
//	r.Group(func(r chi.Router) {
//	    r.Use(apicors.Middleware())
//	    r.Use(auth.APIKeyAuth(appCfg.APIKey, logger))
//	    r.Mount("/api", apiRoutes)
//	})
//
// A missing, malformed or wrong key gets 401 with a JSON error body.
// If validKey is empty every request is rejected.
func APIKeyAuth(validKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	switch {
	case validKey == "":
		logger.Warn("API key not configured - all API requests will be rejected")
	case IsWeakKey(validKey):
		logger.Warn("API key looks like a placeholder or is too short",
			zap.Int("length", len(validKey)),
			zap.Int("min_length", MinKeyLength),
		)
	}
	want := []byte(validKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validKey == "" {
				logger.Warn("API request rejected: API key not configured",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				jsonutil.Unauthorized(w, "API authentication not configured")
				return
			}

			provided, ok := bearerToken(r)
			if !ok {
				logger.Debug("API request rejected: missing or malformed Authorization header",
					zap.String("path", r.URL.Path),
				)
				jsonutil.Unauthorized(w, "expected Authorization: Bearer <api-key>")
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), want) != 1 {
				logger.Warn("API request rejected: invalid API key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				jsonutil.Unauthorized(w, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IsWeakKey reports whether key is short or looks like a default/placeholder value.
func IsWeakKey(key string) bool {
	if len(key) < MinKeyLength {
		return true
	}
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"changeme",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
