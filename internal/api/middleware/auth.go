package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

// BearerToken requires "Authorization: Bearer <token>" on every request.
// An empty token disables the check.
func BearerToken(token string) func(http.Handler) http.Handler {
	want := hashToken(token)

	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			got := hashToken(strings.TrimSpace(parts[1]))
			if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid API token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// hashToken gives ConstantTimeCompare equal-length inputs.
func hashToken(token string) [sha256.Size]byte {
	return sha256.Sum256([]byte(token))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
