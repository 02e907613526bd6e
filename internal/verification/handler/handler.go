// Package handler exposes the public verification endpoint.
//
// Verification is deliberately unauthenticated: the caller is whatever
// device scanned the card. The endpoint always answers 200; validity and
// kiosk-facing errors travel in the body.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campuscard/internal/verification"
	dErrors "campuscard/pkg/domain-errors"
	"campuscard/pkg/platform/httputil"
	"campuscard/pkg/requestcontext"
)

// Service is the verification surface the handler depends on.
type Service interface {
	Verify(ctx context.Context, qrText string) verification.Result
}

// Handler serves the verification endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the verification endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verify", h.HandleVerify)
}

// VerifyRequest is the wire shape of a verification call.
type VerifyRequest struct {
	QRText string `json:"qr_text"`
}

func (r VerifyRequest) Validate() error {
	if r.QRText == "" {
		return dErrors.New(dErrors.CodeBadRequest, "qr_text is required")
	}
	return nil
}

// HandleVerify handles POST /verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result := h.service.Verify(ctx, req.QRText)

	h.logger.InfoContext(ctx, "qr verified",
		"request_id", requestID,
		"valid", result.Valid,
		"error", result.Error,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}
