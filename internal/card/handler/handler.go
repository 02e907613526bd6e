// Package handler wires card issuance endpoints to the card service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campuscard/internal/card/models"
	"campuscard/internal/card/service"
	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/httputil"
	"campuscard/pkg/requestcontext"
)

// Service is the issuance surface the handler depends on.
type Service interface {
	Render(ctx context.Context, req service.RenderRequest) (*models.RenderedCard, error)
	RenderBatch(ctx context.Context, templateID id.TemplateID, subjectIDs []id.SubjectID, expiry *time.Time, batchName string) []service.BatchOutcome
}

// Handler serves the card issuance endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts issuance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/cards/render", h.HandleRender)
	r.Post("/cards/render-batch", h.HandleRenderBatch)
}

// HandleRender handles POST /cards/render.
func (h *Handler) HandleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[RenderRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	templateID, err := req.ParsedTemplateID()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	subjectID, err := req.ParsedSubjectID()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	expiry, _ := req.ParsedExpiry()

	card, err := h.service.Render(ctx, service.RenderRequest{
		TemplateID: templateID,
		SubjectID:  subjectID,
		ExpiryDate: expiry,
		BatchName:  req.BatchName,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "card render failed",
			"request_id", requestID,
			"template_id", req.TemplateID,
			"subject_id", req.SubjectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "card rendered",
		"request_id", requestID,
		"template_id", req.TemplateID,
		"subject_id", req.SubjectID,
		"credential_id", card.Credential.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRenderedCard(card))
}

// HandleRenderBatch handles POST /cards/render-batch.
func (h *Handler) HandleRenderBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	templateID, err := id.ParseTemplateID(req.TemplateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	subjectIDs := make([]id.SubjectID, 0, len(req.SubjectIDs))
	for _, raw := range req.SubjectIDs {
		subjectID, err := id.ParseSubjectID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		subjectIDs = append(subjectIDs, subjectID)
	}

	outcomes := h.service.RenderBatch(ctx, templateID, subjectIDs, req.ParsedExpiry(), req.BatchName)
	resp := FromBatchOutcomes(outcomes)

	h.logger.InfoContext(ctx, "batch issuance completed",
		"request_id", requestID,
		"template_id", req.TemplateID,
		"issued", resp.Issued,
		"failed", resp.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}
