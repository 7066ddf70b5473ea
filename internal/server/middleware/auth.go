package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Auth gates the REST surface behind a single static key. The key is accepted
// either as "Authorization: Bearer <key>" or in the X-API-Key header; the
// dashboard uses the former, curl-style scripts tend to use the latter. An
// empty apiKey disables the check entirely, which is the default for local
// mock-mode runs.
func Auth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			presented := bearerOrHeaderKey(r)
			if presented == "" {
				rejectUnauthorized(w, "missing authentication token")
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
				rejectUnauthorized(w, "invalid authentication token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerOrHeaderKey pulls the credential out of the request, preferring the
// Authorization header over X-API-Key when both are present.
func bearerOrHeaderKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, rest, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func rejectUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
