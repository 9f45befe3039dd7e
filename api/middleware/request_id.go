package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rvaldezm/orderstream/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Caller-supplied ids longer than this are replaced, they end up in every
// log line for the request.
const maxRequestIDLen = 64

// RequestID honors an inbound X-Request-Id or mints one, echoes it on the
// response, and stamps it into the request logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" || len(reqID) > maxRequestIDLen {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
