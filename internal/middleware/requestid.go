// Package middleware provides HTTP middleware for the gateway.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID tags each request with an identifier so log lines from one
// request can be correlated. An X-Request-ID supplied by the caller is
// honored; otherwise a fresh one is minted. The ID lands both in the
// request context and on the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = newRequestID()
		}

		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// newRequestID returns 16 random bytes as a 32-character hex string.
func newRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
