package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campuscard/internal/card/fields"
	"campuscard/internal/card/models"
	credentialstore "campuscard/internal/card/store/credential"
	templatestore "campuscard/internal/card/store/template"
	"campuscard/internal/school"
	"campuscard/internal/subject"
	subjectstore "campuscard/internal/subject/store"
	id "campuscard/pkg/domain"
	dErrors "campuscard/pkg/domain-errors"
	"campuscard/pkg/platform/audit"
	"campuscard/pkg/requestcontext"
)

const frontendBase = "http://localhost:3000"

type CardServiceSuite struct {
	suite.Suite
	subjects    *subjectstore.InMemory
	templates   *templatestore.InMemory
	credentials *credentialstore.InMemory
	auditStore  *audit.MemoryStore
	service     *Service
	ctx         context.Context
	now         time.Time
}

func TestCardServiceSuite(t *testing.T) {
	suite.Run(t, new(CardServiceSuite))
}

func (s *CardServiceSuite) SetupTest() {
	s.subjects = subjectstore.NewInMemory()
	s.templates = templatestore.NewInMemory()
	s.credentials = credentialstore.NewInMemory()
	s.auditStore = audit.NewMemoryStore()

	resolver := fields.NewResolver(fields.NewImageNormalizer("http://localhost:8080"))
	s.service = New(
		s.subjects, s.templates, s.credentials,
		school.NewMemory(&school.Info{Name: "Hillside Public School"}),
		resolver,
		frontendBase,
		WithAudit(audit.NewPublisher(s.auditStore)),
	)

	s.now = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *CardServiceSuite) seedStudent() *subject.Person {
	p := &subject.Person{
		ID:        id.SubjectID(uuid.New()),
		FirstName: "Asha",
		LastName:  "Rao",
		Photo:     "asha.jpg",
		Student: &subject.StudentProfile{
			StudentID:  "STU100",
			RollNumber: "27",
			Class:      "8",
			Section:    "B",
		},
	}
	s.subjects.Put(p)
	return p
}

func (s *CardServiceSuite) seedTeacher() *subject.Person {
	p := &subject.Person{
		ID:        id.SubjectID(uuid.New()),
		FirstName: "Daniel",
		LastName:  "Okafor",
		Teacher: &subject.TeacherProfile{
			EmployeeID: "EMP-77",
			Department: "Science",
		},
	}
	s.subjects.Put(p)
	return p
}

func (s *CardServiceSuite) seedTemplate(subjectType id.SubjectType, fields ...models.TemplateField) *models.Template {
	t := &models.Template{
		ID:          id.TemplateID(uuid.New()),
		Name:        "Standard " + string(subjectType) + " Card",
		SubjectType: subjectType,
		Status:      models.TemplateActive,
		WidthMM:     85.6,
		HeightMM:    54,
		Orientation: "landscape",
		Fields:      fields,
	}
	s.templates.Put(t)
	return t
}

func studentFields() []models.TemplateField {
	return []models.TemplateField{
		{ID: "f-name", FieldType: models.FieldText, Source: models.SourceDatabase, DatabaseField: "Full Name", Label: "Name"},
		{ID: "f-roll", FieldType: models.FieldText, Source: models.SourceDatabase, DatabaseField: "rollNumber", Label: "Roll No."},
		{ID: "f-qr", FieldType: models.FieldQR, Source: models.SourceDatabase, DatabaseField: "studentId", Label: "QR"},
	}
}

func (s *CardServiceSuite) TestRenderIssuesCredential() {
	person := s.seedStudent()
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)

	card, err := s.service.Render(s.ctx, RenderRequest{
		TemplateID: template.ID,
		SubjectID:  person.ID,
	})
	s.Require().NoError(err)
	s.Require().Len(card.Fields, 3)

	s.Run("fields come back in template order", func() {
		s.Equal("f-name", card.Fields[0].FieldID)
		s.Equal("f-roll", card.Fields[1].FieldID)
		s.Equal("f-qr", card.Fields[2].FieldID)
	})

	s.Run("QR field carries the verify URL", func() {
		s.Equal(frontendBase+"/verify/student/STU100", card.Fields[2].Value)
	})

	s.Run("credential is persisted with defaulted expiry", func() {
		s.False(card.Credential.ID.IsNil())
		s.Equal(person.ID, card.Credential.SubjectID)
		s.Equal(id.SubjectStudent, card.Credential.SubjectType)
		s.Equal(s.now, card.Credential.IssuedAt)
		s.Require().NotNil(card.Credential.ExpiryDate)
		s.Equal(s.now.Add(DefaultValidity), *card.Credential.ExpiryDate)

		rows := s.credentials.All()
		s.Require().Len(rows, 1)
		s.Equal(card.Credential.ID, rows[0].ID)
	})

	s.Run("usage counter incremented exactly once", func() {
		s.Equal(1, s.templates.UsageCount(template.ID))
	})

	s.Run("issuance audited", func() {
		events := s.auditStore.Events()
		s.Require().Len(events, 1)
		s.Equal(audit.ActionCardIssued, events[0].Action)
		s.Equal(person.ID.String(), events[0].SubjectID)
	})
}

func (s *CardServiceSuite) TestRenderHonorsExplicitExpiry() {
	person := s.seedStudent()
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)
	expiry := s.now.AddDate(0, 6, 0)

	card, err := s.service.Render(s.ctx, RenderRequest{
		TemplateID: template.ID,
		SubjectID:  person.ID,
		ExpiryDate: &expiry,
	})
	s.Require().NoError(err)
	s.Require().NotNil(card.Credential.ExpiryDate)
	s.Equal(expiry, *card.Credential.ExpiryDate)
}

func (s *CardServiceSuite) TestRenderSupersedesPriorActiveCredential() {
	person := s.seedStudent()
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)

	first, err := s.service.Render(s.ctx, RenderRequest{TemplateID: template.ID, SubjectID: person.ID})
	s.Require().NoError(err)

	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	second, err := s.service.Render(later, RenderRequest{TemplateID: template.ID, SubjectID: person.ID})
	s.Require().NoError(err)
	s.NotEqual(first.Credential.ID, second.Credential.ID)

	rows := s.credentials.All()
	s.Require().Len(rows, 2, "superseding appends, never deletes")
	for _, row := range rows {
		switch row.ID {
		case first.Credential.ID:
			s.Require().NotNil(row.SupersededAt, "prior credential must be marked superseded")
			s.Equal(s.now.Add(time.Hour), *row.SupersededAt)
		case second.Credential.ID:
			s.Nil(row.SupersededAt)
		}
	}
}

func (s *CardServiceSuite) TestRenderLeavesExpiredPriorAlone() {
	person := s.seedStudent()
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)

	pastExpiry := s.now.Add(-24 * time.Hour)
	expired := models.IssuedCredential{
		ID:          id.CredentialID(uuid.New()),
		SubjectID:   person.ID,
		SubjectType: id.SubjectStudent,
		TemplateID:  template.ID,
		ExpiryDate:  &pastExpiry,
		IssuedAt:    s.now.Add(-48 * time.Hour),
	}
	s.Require().NoError(s.credentials.Create(s.ctx, &expired))

	_, err := s.service.Render(s.ctx, RenderRequest{TemplateID: template.ID, SubjectID: person.ID})
	s.Require().NoError(err)

	for _, row := range s.credentials.All() {
		if row.ID == expired.ID {
			s.Nil(row.SupersededAt, "an already-expired credential is not touched")
		}
	}
}

func (s *CardServiceSuite) TestRenderTemplateNotFound() {
	person := s.seedStudent()

	_, err := s.service.Render(s.ctx, RenderRequest{
		TemplateID: id.TemplateID(uuid.New()),
		SubjectID:  person.ID,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "template not found")
}

func (s *CardServiceSuite) TestRenderRejectsInactiveTemplate() {
	person := s.seedStudent()

	for _, status := range []models.TemplateStatus{models.TemplateDraft, models.TemplateArchived} {
		template := s.seedTemplate(id.SubjectStudent, studentFields()...)
		template.Status = status
		s.templates.Put(template)

		_, err := s.service.Render(s.ctx, RenderRequest{TemplateID: template.ID, SubjectID: person.ID})
		s.Require().Error(err, "status %s must not render", status)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
		s.Equal(0, s.templates.UsageCount(template.ID), "failed render must not bump usage")
	}
	s.Empty(s.credentials.All(), "failed renders must not persist credentials")
}

func (s *CardServiceSuite) TestRenderSubjectNotFound() {
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)

	_, err := s.service.Render(s.ctx, RenderRequest{
		TemplateID: template.ID,
		SubjectID:  id.SubjectID(uuid.New()),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "subject not found")
}

func (s *CardServiceSuite) TestRenderTypeMismatch() {
	teacher := s.seedTeacher()
	template := s.seedTemplate(id.SubjectStudent, studentFields()...)

	_, err := s.service.Render(s.ctx, RenderRequest{TemplateID: template.ID, SubjectID: teacher.ID})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTypeMismatch))
	s.Contains(err.Error(), "subject has no STUDENT profile")
	s.Equal(0, s.templates.UsageCount(template.ID))
}

func (s *CardServiceSuite) TestStaffNoLoginTemplateAcceptsStaffProfile() {
	person := &subject.Person{
		ID:        id.SubjectID(uuid.New()),
		FirstName: "Rita",
		Staff:     &subject.StaffProfile{EmployeeID: "EMP-90"},
	}
	s.subjects.Put(person)
	template := s.seedTemplate(id.SubjectStaffNoLogin,
		models.TemplateField{ID: "f1", FieldType: models.FieldText, Source: models.SourceDatabase, DatabaseField: "Full Name", Label: "Name"},
	)

	card, err := s.service.Render(s.ctx, RenderRequest{TemplateID: template.ID, SubjectID: person.ID})
	s.Require().NoError(err)
	s.Equal(id.SubjectStaffNoLogin, card.Credential.SubjectType)
}

func (s *CardServiceSuite) TestQRFallsBackToSubjectID() {
	// A student QR bound to an identifier the record does not carry encodes
	// the generic subject-ID payload instead.
	person := s.seedStudent()
	person.Student.StudentID = ""
	s.subjects.Put(person)
	template := s.seedTemplate(id.SubjectStudent,
		models.TemplateField{ID: "f-qr", FieldType: models.FieldQR, Source: models.SourceDatabase, DatabaseField: "studentId", Label: "QR"},
	)

	card, err := s.service.Render(s.ctx, RenderRequest{TemplateID: template.ID, SubjectID: person.ID})
	s.Require().NoError(err)
	s.Equal(frontendBase+"/verify/student/"+person.ID.String(), card.Fields[0].Value)
}

func (s *CardServiceSuite) TestQRBindingVariants() {
	person := s.seedStudent()
	teacher := s.seedTeacher()

	tests := []struct {
		name      string
		subjectID id.SubjectID
		template  *models.Template
		want      string
	}{
		{
			name:      "roll number binding",
			subjectID: person.ID,
			template: s.seedTemplate(id.SubjectStudent,
				models.TemplateField{ID: "q", FieldType: models.FieldQR, Source: models.SourceDatabase, DatabaseField: "rollNumber", Label: "QR"}),
			want: frontendBase + "/verify/student/roll/27",
		},
		{
			name:      "teacherId binding pins teacher segment",
			subjectID: teacher.ID,
			template: s.seedTemplate(id.SubjectTeacher,
				models.TemplateField{ID: "q", FieldType: models.FieldQR, Source: models.SourceDatabase, DatabaseField: "teacherId", Label: "QR"}),
			want: frontendBase + "/verify/teacher/EMP-77",
		},
		{
			name:      "employeeId binding keeps legacy employee segment",
			subjectID: teacher.ID,
			template: s.seedTemplate(id.SubjectTeacher,
				models.TemplateField{ID: "q", FieldType: models.FieldQR, Source: models.SourceDatabase, DatabaseField: "employeeId", Label: "QR"}),
			want: frontendBase + "/verify/employee/EMP-77",
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			card, err := s.service.Render(s.ctx, RenderRequest{TemplateID: tt.template.ID, SubjectID: tt.subjectID})
			s.Require().NoError(err)
			s.Equal(tt.want, card.Fields[0].Value)
		})
	}
}
