package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/audit"
	"campuscard/pkg/requestcontext"
)

// BatchOutcome is the per-subject result of a bulk issuance. Exactly one of
// CredentialID and Err is meaningful.
type BatchOutcome struct {
	SubjectID    id.SubjectID
	CredentialID id.CredentialID
	Err          error
}

// RenderBatch renders one card per subject against a single template. A
// failing subject never aborts the batch: its error is captured in the
// outcome and the rest proceed. Outcomes come back in input order.
func (s *Service) RenderBatch(ctx context.Context, templateID id.TemplateID, subjectIDs []id.SubjectID, expiry *time.Time, batchName string) []BatchOutcome {
	ctx, span := s.tracer.Start(ctx, "card.RenderBatch")
	defer span.End()

	// Pin one timestamp so every card in the batch shares issuance time
	// semantics (default expiry in particular).
	ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))

	outcomes := make([]BatchOutcome, len(subjectIDs))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(s.batchLimit)
	for i, subjectID := range subjectIDs {
		g.Go(func() error {
			card, err := s.Render(ctx, RenderRequest{
				TemplateID: templateID,
				SubjectID:  subjectID,
				ExpiryDate: expiry,
				BatchName:  batchName,
			})
			outcome := BatchOutcome{SubjectID: subjectID, Err: err}
			if err == nil {
				outcome.CredentialID = card.Credential.ID
			}
			mu.Lock()
			outcomes[i] = outcome
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	issued, failed := 0, 0
	for _, o := range outcomes {
		if o.Err == nil {
			issued++
			s.metrics.RecordBatchOutcome("issued")
		} else {
			failed++
			s.metrics.RecordBatchOutcome("failed")
		}
	}
	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			Action:     audit.ActionBatchCompleted,
			TemplateID: templateID.String(),
			BatchName:  batchName,
			Outcome:    strconv.Itoa(issued) + " issued, " + strconv.Itoa(failed) + " failed",
			RequestID:  requestcontext.RequestID(ctx),
		})
	}
	return outcomes
}
