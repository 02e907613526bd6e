// Package verification resolves a scanned QR payload back to a subject and
// reports whether their newest credential is still valid.
//
// The resolver never returns a Go error to its caller: every failure is a
// tagged {valid:false, error} value so a kiosk can render the message
// directly without an exception path.
package verification

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"campuscard/internal/card/fields"
	"campuscard/internal/card/models"
	"campuscard/internal/card/qrcode"
	"campuscard/internal/subject"
	vmetrics "campuscard/internal/verification/metrics"
	id "campuscard/pkg/domain"
	"campuscard/pkg/platform/audit"
	"campuscard/pkg/requestcontext"
)

// Kiosk-facing error messages. These are contract: scanners display them
// verbatim.
const (
	ErrMsgInvalidFormat   = "Invalid QR code format"
	ErrMsgStudentNotFound = "Student not found"
	ErrMsgTeacherNotFound = "Teacher not found"
	ErrMsgStaffNotFound   = "Staff not found"
	ErrMsgUnknownType     = "Unknown user type in QR code"
)

// SubjectStore is the lookup surface verification dispatches over.
type SubjectStore interface {
	FindStudent(ctx context.Context, kind id.IdentifierKind, value string) (*subject.Person, error)
	FindTeacher(ctx context.Context, identifier string) (*subject.Person, error)
	FindStaff(ctx context.Context, identifier string) (*subject.Person, error)
}

// CredentialStore reads the newest credential for a subject.
type CredentialStore interface {
	FindLatestBySubject(ctx context.Context, subjectID id.SubjectID, types ...id.SubjectType) (*models.IssuedCredential, error)
}

// TemplateStore names the template a credential was rendered from.
type TemplateStore interface {
	FindByID(ctx context.Context, templateID id.TemplateID) (*models.Template, error)
}

// AuditPublisher records verification attempts.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Result is the normalized answer to "who does this QR belong to, and is it
// still valid". Valid refers to the subject resolution; an expired card
// still verifies with Valid=true and Credential.IsActive=false.
type Result struct {
	Valid   bool         `json:"valid"`
	Error   string       `json:"error,omitempty"`
	Subject *SubjectInfo `json:"subject,omitempty"`
}

// SubjectInfo is the verified subject summary shown on the kiosk.
type SubjectInfo struct {
	ID          string            `json:"id"`
	Type        id.SubjectType    `json:"type"`
	DisplayName string            `json:"display_name"`
	Identifier  string            `json:"identifier"`
	PhotoURL    string            `json:"photo_url,omitempty"`
	Details     map[string]string `json:"details"`
	Credential  CredentialInfo    `json:"credential"`
}

// CredentialInfo summarizes the newest matching credential. A subject with
// no credential row still verifies; the template name reports "Unknown" and
// the dates stay empty.
type CredentialInfo struct {
	TemplateName string `json:"template_name"`
	IssuedAt     string `json:"issued_at"`
	ExpiryDate   string `json:"expiry_date"`
	IsActive     bool   `json:"is_active"`
}

// Service is the verification resolver.
type Service struct {
	subjects    SubjectStore
	credentials CredentialStore
	templates   TemplateStore
	images      *fields.ImageNormalizer

	auditPublisher AuditPublisher
	metrics        *vmetrics.Metrics
	tracer         trace.Tracer
}

// Option configures optional collaborators.
type Option func(*Service)

func WithAudit(p AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

func WithMetrics(m *vmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(subjects SubjectStore, credentials CredentialStore, templates TemplateStore, images *fields.ImageNormalizer, opts ...Option) *Service {
	s := &Service{
		subjects:    subjects,
		credentials: credentials,
		templates:   templates,
		images:      images,
		tracer:      otel.Tracer("campuscard/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify decodes a scanned QR payload and resolves it to a subject.
func (s *Service) Verify(ctx context.Context, qrText string) Result {
	ctx, span := s.tracer.Start(ctx, "verification.Verify")
	defer span.End()

	payload, err := qrcode.Decode(qrText)
	if err != nil {
		if errors.Is(err, qrcode.ErrUnknownSubjectType) {
			return s.fail(ctx, "unknown_type", ErrMsgUnknownType)
		}
		return s.fail(ctx, "invalid_format", ErrMsgInvalidFormat)
	}

	person, notFoundMsg := s.lookup(ctx, payload)
	if person == nil {
		return s.fail(ctx, "not_found", notFoundMsg)
	}

	info := s.buildSubjectInfo(ctx, person, payload.Value)
	s.metrics.RecordOutcome("valid")
	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			Action:      audit.ActionVerifySucceed,
			SubjectID:   person.ID.String(),
			SubjectType: string(info.Type),
			Outcome:     "valid",
			RequestID:   requestcontext.RequestID(ctx),
		})
	}
	return Result{Valid: true, Subject: info}
}

// lookup dispatches on the decoded type segment. The employee segment is a
// legacy alias: it tries teachers first and falls through to staff,
// propagating the staff not-found message when both miss.
func (s *Service) lookup(ctx context.Context, payload qrcode.Payload) (*subject.Person, string) {
	switch payload.Type {
	case qrcode.TypeStudent:
		person, err := s.subjects.FindStudent(ctx, payload.Kind, payload.Value)
		if err != nil {
			return nil, ErrMsgStudentNotFound
		}
		return person, ""
	case qrcode.TypeTeacher:
		person, err := s.subjects.FindTeacher(ctx, payload.Value)
		if err != nil {
			return nil, ErrMsgTeacherNotFound
		}
		return person, ""
	case qrcode.TypeEmployee:
		if person, err := s.subjects.FindTeacher(ctx, payload.Value); err == nil {
			return person, ""
		}
		person, err := s.subjects.FindStaff(ctx, payload.Value)
		if err != nil {
			return nil, ErrMsgStaffNotFound
		}
		return person, ""
	case qrcode.TypeStaff:
		person, err := s.subjects.FindStaff(ctx, payload.Value)
		if err != nil {
			return nil, ErrMsgStaffNotFound
		}
		return person, ""
	default:
		return nil, ErrMsgUnknownType
	}
}

func (s *Service) buildSubjectInfo(ctx context.Context, person *subject.Person, identifier string) *SubjectInfo {
	subjectType := person.Type()
	info := &SubjectInfo{
		ID:          person.ID.String(),
		Type:        subjectType,
		DisplayName: person.FullName(),
		Identifier:  identifier,
		Details:     map[string]string{},
	}

	switch {
	case person.Student != nil:
		info.PhotoURL = s.images.Normalize(person.Photo, fields.FolderStudents)
		info.Details["class"] = person.Student.Class
		info.Details["section"] = person.Student.Section
		info.Details["roll_number"] = person.Student.RollNumber
	case person.Teacher != nil:
		info.PhotoURL = s.images.Normalize(person.Photo, fields.FolderTeachers)
		info.Details["designation"] = person.Teacher.Designation
		info.Details["department"] = person.Teacher.Department
		info.Details["qualification"] = person.Teacher.Qualification
		if person.Teacher.ExperienceYears > 0 {
			info.Details["experience"] = strconv.Itoa(person.Teacher.ExperienceYears) + " years"
		}
	case person.Staff != nil:
		info.PhotoURL = s.images.Normalize(person.Photo, fields.FolderDefault)
		info.Details["designation"] = person.Staff.Designation
		info.Details["department"] = person.Staff.Department
		info.Details["employment_date"] = fields.FormatDate(person.Staff.EmploymentDate)
	}

	info.Credential = s.buildCredentialInfo(ctx, person.ID, subjectType)
	return info
}

func (s *Service) buildCredentialInfo(ctx context.Context, subjectID id.SubjectID, subjectType id.SubjectType) CredentialInfo {
	types := []id.SubjectType{subjectType}
	if subjectType.IsStaffLike() {
		types = []id.SubjectType{id.SubjectStaff, id.SubjectStaffNoLogin}
	}
	credential, err := s.credentials.FindLatestBySubject(ctx, subjectID, types...)
	if err != nil || credential == nil {
		// Freshly imported subjects may have no credential row yet; they
		// still verify, with an unknown template and empty dates.
		return CredentialInfo{TemplateName: "Unknown"}
	}

	templateName := "Unknown"
	if t, err := s.templates.FindByID(ctx, credential.TemplateID); err == nil {
		templateName = t.Name
	}
	issuedAt := credential.IssuedAt
	return CredentialInfo{
		TemplateName: templateName,
		IssuedAt:     fields.FormatDate(&issuedAt),
		ExpiryDate:   fields.FormatDate(credential.ExpiryDate),
		IsActive:     credential.ActiveAt(requestcontext.Now(ctx)),
	}
}

func (s *Service) fail(ctx context.Context, outcome, message string) Result {
	s.metrics.RecordOutcome(outcome)
	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			Action:    audit.ActionVerifyFailed,
			Outcome:   outcome,
			Reason:    message,
			RequestID: requestcontext.RequestID(ctx),
		})
	}
	return Result{Valid: false, Error: message}
}
