package testutil

import (
	"net/http"
	"time"

	"campuscard/pkg/requestcontext"
)

// WithRequestID stamps a request ID onto the request context, simulating the
// request-ID middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

// WithFrozenTime pins the request clock, simulating the request-time
// middleware with a deterministic instant.
func WithFrozenTime(req *http.Request, at time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), at)
	return req.WithContext(ctx)
}
