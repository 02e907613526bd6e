// Package service implements card issuance: template-driven field rendering
// plus the issued-credential bookkeeping around it.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"campuscard/internal/card/fields"
	cardmetrics "campuscard/internal/card/metrics"
	"campuscard/internal/card/models"
	"campuscard/internal/card/qrcode"
	"campuscard/internal/school"
	"campuscard/internal/subject"
	id "campuscard/pkg/domain"
	dErrors "campuscard/pkg/domain-errors"
	"campuscard/pkg/platform/audit"
	"campuscard/pkg/platform/sentinel"
	"campuscard/pkg/platform/tx"
	"campuscard/pkg/requestcontext"
)

// DefaultValidity is applied when the caller does not supply an expiry date.
const DefaultValidity = 365 * 24 * time.Hour

// SubjectStore is the subject lookup the renderer needs.
type SubjectStore interface {
	FindByID(ctx context.Context, subjectID id.SubjectID) (*subject.Person, error)
}

// TemplateStore reads templates and maintains the usage counter.
type TemplateStore interface {
	FindByID(ctx context.Context, templateID id.TemplateID) (*models.Template, error)
	IncrementUsage(ctx context.Context, templateID id.TemplateID) error
}

// CredentialStore persists issuance records.
type CredentialStore interface {
	Create(ctx context.Context, c *models.IssuedCredential) error
	Touch(ctx context.Context, credentialID id.CredentialID, now time.Time) error
	FindLatestBySubject(ctx context.Context, subjectID id.SubjectID, types ...id.SubjectType) (*models.IssuedCredential, error)
}

// AuditPublisher records issuance events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service renders cards against templates and records each issuance.
type Service struct {
	subjects     SubjectStore
	templates    TemplateStore
	credentials  CredentialStore
	school       school.Provider
	resolver     *fields.Resolver
	frontendBase string

	auditPublisher AuditPublisher
	metrics        *cardmetrics.Metrics
	tx             tx.Runner
	tracer         trace.Tracer
	batchLimit     int
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithAudit(p AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

func WithMetrics(m *cardmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) { s.tx = r }
}

// WithBatchLimit bounds how many subjects render concurrently in bulk
// issuance.
func WithBatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

func New(
	subjects SubjectStore,
	templates TemplateStore,
	credentials CredentialStore,
	schoolProvider school.Provider,
	resolver *fields.Resolver,
	frontendBase string,
	opts ...Option,
) *Service {
	s := &Service{
		subjects:     subjects,
		templates:    templates,
		credentials:  credentials,
		school:       schoolProvider,
		resolver:     resolver,
		frontendBase: frontendBase,
		tx:           tx.NoopRunner{},
		tracer:       otel.Tracer("campuscard/card"),
		batchLimit:   8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RenderRequest is the input to a single-card render.
type RenderRequest struct {
	TemplateID id.TemplateID
	SubjectID  id.SubjectID
	ExpiryDate *time.Time
	BatchName  string
}

// Render produces the ordered rendered fields for one subject against one
// template, persists the issuance, and supersedes any prior active
// credential of the same type.
//
// The credential insert, the prior-credential touch, and the usage-counter
// increment happen inside one transaction; a failed render writes nothing.
func (s *Service) Render(ctx context.Context, req RenderRequest) (*models.RenderedCard, error) {
	ctx, span := s.tracer.Start(ctx, "card.Render")
	defer span.End()
	start := time.Now()

	template, err := s.templates.FindByID(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load template")
	}
	if err := template.CanRender(); err != nil {
		return nil, err
	}

	person, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject")
	}
	if !person.HasProfileFor(template.SubjectType) {
		return nil, dErrors.Newf(dErrors.CodeTypeMismatch,
			"subject has no %s profile", template.SubjectType)
	}

	// Org metadata is best-effort: the resolver substitutes "Not Set"
	// fallbacks when it is absent.
	info, _ := s.school.Get(ctx)

	rendered := make([]models.RenderedField, 0, len(template.Fields))
	for _, field := range template.Fields {
		value := s.resolver.Resolve(ctx, field, person, info)
		if field.FieldType == models.FieldQR {
			value = s.encodeQR(template.SubjectType, field.DatabaseField, person)
		}
		rendered = append(rendered, models.RenderedField{
			FieldID:   field.ID,
			FieldType: field.FieldType,
			Label:     field.Label,
			Value:     value,
			Geometry:  field.Geometry,
			Style:     field.Style,
		})
	}

	now := requestcontext.Now(ctx)
	expiry := req.ExpiryDate
	if expiry == nil {
		e := now.Add(DefaultValidity)
		expiry = &e
	}
	credential := models.IssuedCredential{
		ID:          id.CredentialID(uuid.New()),
		SubjectID:   person.ID,
		SubjectType: template.SubjectType,
		TemplateID:  template.ID,
		ExpiryDate:  expiry,
		BatchName:   req.BatchName,
		IssuedAt:    now,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		prior, err := s.credentials.FindLatestBySubject(txCtx, person.ID, template.SubjectType)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check prior credential")
		}
		if prior != nil && prior.ActiveAt(now) && prior.SupersededAt == nil {
			if err := s.credentials.Touch(txCtx, prior.ID, now); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to supersede prior credential")
			}
		}
		if err := s.credentials.Create(txCtx, &credential); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist credential")
		}
		if err := s.templates.IncrementUsage(txCtx, template.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to increment template usage")
		}
		if s.auditPublisher != nil {
			return s.auditPublisher.Emit(txCtx, audit.Event{
				Action:      audit.ActionCardIssued,
				SubjectID:   person.ID.String(),
				SubjectType: string(template.SubjectType),
				TemplateID:  template.ID.String(),
				BatchName:   req.BatchName,
				RequestID:   requestcontext.RequestID(ctx),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordIssued(string(template.SubjectType))
	s.metrics.ObserveRender(start)

	return &models.RenderedCard{Fields: rendered, Credential: credential}, nil
}

// encodeQR picks the QR payload from the field's database binding. A
// recognized binding whose identifier is present on the subject encodes that
// identifier; everything else falls back to the generic subject-ID payload.
func (s *Service) encodeQR(subjectType id.SubjectType, binding string, person *subject.Person) string {
	if segment, kind, ok := qrcode.ForBinding(binding); ok {
		if value := identifierValue(person, kind); value != "" {
			return qrcode.Encode(qrcode.Payload{Type: segment, Kind: kind, Value: value}, s.frontendBase)
		}
	}
	return qrcode.Encode(qrcode.Payload{
		Type:  subjectType.PathPrefix(),
		Kind:  id.IdentSubjectID,
		Value: person.ID.String(),
	}, s.frontendBase)
}

func identifierValue(person *subject.Person, kind id.IdentifierKind) string {
	switch kind {
	case id.IdentStudentID:
		if person.Student != nil {
			return person.Student.StudentID
		}
	case id.IdentRollNumber:
		if person.Student != nil {
			return person.Student.RollNumber
		}
	case id.IdentAdmissionNumber:
		if person.Student != nil {
			return person.Student.AdmissionNumber
		}
	case id.IdentEmployeeID:
		if person.Teacher != nil && person.Teacher.EmployeeID != "" {
			return person.Teacher.EmployeeID
		}
		if person.Staff != nil {
			return person.Staff.EmployeeID
		}
	}
	return ""
}
