package fields

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campuscard/internal/card/models"
	"campuscard/internal/school"
	"campuscard/internal/subject"
	"campuscard/pkg/requestcontext"
)

type ResolverSuite struct {
	suite.Suite
	resolver *Resolver
	ctx      context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.resolver = NewResolver(NewImageNormalizer("http://localhost:8080"))
	s.ctx = requestcontext.WithTime(context.Background(),
		time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC))
}

func dbField(name string) models.TemplateField {
	return models.TemplateField{
		ID:            "f1",
		FieldType:     models.FieldText,
		Source:        models.SourceDatabase,
		DatabaseField: name,
		Label:         "Field Label",
	}
}

func testStudent() *subject.Person {
	dob := time.Date(2010, time.June, 2, 0, 0, 0, 0, time.UTC)
	return &subject.Person{
		FirstName:   "Asha",
		LastName:    "Rao",
		Email:       "asha@example.com",
		Phone:       "555-0101",
		Address:     "12 Lake Road",
		DateOfBirth: &dob,
		BloodGroup:  "O+",
		Photo:       "asha.jpg",
		Student: &subject.StudentProfile{
			StudentID:       "STU100",
			RollNumber:      "27",
			AdmissionNumber: "ADM-2020-041",
			Class:           "8",
			Section:         "B",
			FatherName:      "Vikram Rao",
			FatherPhone:     "555-0102",
			MotherName:      "Meera Rao",
			MotherPhone:     "555-0103",
		},
	}
}

func testTeacher() *subject.Person {
	joined := time.Date(2018, time.July, 1, 0, 0, 0, 0, time.UTC)
	return &subject.Person{
		FirstName: "Daniel",
		LastName:  "Okafor",
		Photo:     "daniel.jpg",
		Teacher: &subject.TeacherProfile{
			EmployeeID:      "EMP-77",
			Designation:     "Senior Teacher",
			Department:      "Science",
			Subjects:        []string{"Physics", "Chemistry"},
			Qualification:   "MSc",
			ExperienceYears: 9,
			JoiningDate:     &joined,
		},
	}
}

func testStaff() *subject.Person {
	employed := time.Date(2021, time.January, 10, 0, 0, 0, 0, time.UTC)
	return &subject.Person{
		FirstName: "Rita",
		LastName:  "Lobo",
		Photo:     "rita.jpg",
		Staff: &subject.StaffProfile{
			EmployeeID:     "EMP-90",
			Designation:    "Accountant",
			Department:     "Administration",
			Position:       "Senior Accountant",
			Shift:          "Morning",
			WorkingHours:   "9-5",
			EmploymentDate: &employed,
		},
	}
}

func (s *ResolverSuite) resolve(field models.TemplateField, p *subject.Person, info *school.Info) string {
	return s.resolver.Resolve(s.ctx, field, p, info)
}

func (s *ResolverSuite) TestStaticFields() {
	p := testStudent()

	s.Run("static text wins", func() {
		f := models.TemplateField{Source: models.SourceStatic, StaticText: "Valid for 2026", Label: "L"}
		s.Equal("Valid for 2026", s.resolve(f, p, nil))
	})

	s.Run("static image URL when text empty", func() {
		f := models.TemplateField{Source: models.SourceStatic, ImageURL: "https://cdn.example.com/seal.png", Label: "L"}
		s.Equal("https://cdn.example.com/seal.png", s.resolve(f, p, nil))
	})

	s.Run("empty static falls to placeholder", func() {
		f := models.TemplateField{Source: models.SourceStatic, Placeholder: "PLACEHOLDER", Label: "L"}
		s.Equal("PLACEHOLDER", s.resolve(f, p, nil))
	})

	s.Run("empty static and placeholder falls to label", func() {
		f := models.TemplateField{Source: models.SourceStatic, StaticText: "  ", Label: "The Label"}
		s.Equal("The Label", s.resolve(f, p, nil))
	})
}

func (s *ResolverSuite) TestLabelAndAliasResolveIdentically() {
	p := testStudent()

	pairs := map[string]string{
		"First Name":       "firstName",
		"Full Name":        "fullName",
		"Roll Number":      "rollNumber",
		"Admission Number": "admissionNumber",
		"Blood Group":      "bloodGroup",
		"Guardian Name":    "guardianName",
		"Date of Birth":    "dateOfBirth",
	}
	for label, alias := range pairs {
		byLabel := s.resolve(dbField(label), p, nil)
		byAlias := s.resolve(dbField(alias), p, nil)
		s.Equal(byLabel, byAlias, "label %q and alias %q must resolve identically", label, alias)
		s.NotEqual("Field Label", byLabel, "label %q should resolve real data", label)
	}
}

func (s *ResolverSuite) TestIdentityFields() {
	p := testStudent()

	s.Equal("Asha", s.resolve(dbField("First Name"), p, nil))
	s.Equal("Asha Rao", s.resolve(dbField("Full Name"), p, nil))
	s.Equal("Asha Rao", s.resolve(dbField("name"), p, nil))
	s.Equal("O+", s.resolve(dbField("bloodGroup"), p, nil))
	s.Equal("Jun 2, 2010", s.resolve(dbField("dob"), p, nil))
	s.Equal("555-0101", s.resolve(dbField("phoneNumber"), p, nil))
}

func (s *ResolverSuite) TestStudentFields() {
	p := testStudent()

	s.Equal("STU100", s.resolve(dbField("studentId"), p, nil))
	s.Equal("27", s.resolve(dbField("Roll Number"), p, nil))
	s.Equal("ADM-2020-041", s.resolve(dbField("admissionNumber"), p, nil))
	s.Equal("8", s.resolve(dbField("Class Name"), p, nil))
	s.Equal("B", s.resolve(dbField("section"), p, nil))
}

func (s *ResolverSuite) TestAcademicYearUsesRequestClock() {
	p := testStudent()
	s.Equal("2026", s.resolve(dbField("Academic Year"), p, nil))

	shifted := requestcontext.WithTime(context.Background(),
		time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC))
	s.Equal(strconv.Itoa(2030), s.resolver.Resolve(shifted, dbField("academicYear"), p, nil))
}

func (s *ResolverSuite) TestGuardianPrefersFatherThenMother() {
	p := testStudent()
	s.Equal("Vikram Rao", s.resolve(dbField("Guardian Name"), p, nil))
	s.Equal("555-0102", s.resolve(dbField("Guardian Contact"), p, nil))

	p.Student.FatherName = ""
	p.Student.FatherPhone = ""
	s.Equal("Meera Rao", s.resolve(dbField("Guardian Name"), p, nil))
	s.Equal("555-0103", s.resolve(dbField("guardianPhone"), p, nil))
}

func (s *ResolverSuite) TestTeacherFields() {
	p := testTeacher()

	s.Equal("Physics, Chemistry", s.resolve(dbField("Subjects"), p, nil))
	s.Equal("MSc", s.resolve(dbField("qualification"), p, nil))
	s.Equal("9 years", s.resolve(dbField("Experience"), p, nil))
	s.Equal("Jul 1, 2018", s.resolve(dbField("joiningDate"), p, nil))
	s.Equal("EMP-77", s.resolve(dbField("teacherId"), p, nil))
}

func (s *ResolverSuite) TestZeroExperienceFallsThrough() {
	p := testTeacher()
	p.Teacher.ExperienceYears = 0

	f := dbField("Experience")
	f.Placeholder = "N/A"
	s.Equal("N/A", s.resolve(f, p, nil))
}

func (s *ResolverSuite) TestStaffFields() {
	p := testStaff()

	s.Equal("Senior Accountant", s.resolve(dbField("Position"), p, nil))
	s.Equal("Morning", s.resolve(dbField("shift"), p, nil))
	s.Equal("9-5", s.resolve(dbField("Working Hours"), p, nil))
	s.Equal("Jan 10, 2021", s.resolve(dbField("employmentDate"), p, nil))
	s.Equal("EMP-90", s.resolve(dbField("employeeId"), p, nil))
	s.Equal("Accountant", s.resolve(dbField("Designation"), p, nil))
}

func (s *ResolverSuite) TestSharedFieldsPreferTeacher() {
	p := testTeacher()
	p.Staff = testStaff().Staff

	s.Equal("EMP-77", s.resolve(dbField("Employee ID"), p, nil))
	s.Equal("Science", s.resolve(dbField("Department"), p, nil))
}

func (s *ResolverSuite) TestProfileMismatchResolvesEmpty() {
	// A student field on a teacher record resolves nothing and degrades
	// through placeholder then label.
	p := testTeacher()

	f := dbField("Roll Number")
	s.Equal("Field Label", s.resolve(f, p, nil))

	f.Placeholder = "Roll No."
	s.Equal("Roll No.", s.resolve(f, p, nil))
}

func (s *ResolverSuite) TestUnknownFieldFallsBack() {
	p := testStudent()

	f := dbField("No Such Field")
	f.Placeholder = "???"
	s.Equal("???", s.resolve(f, p, nil))
}

func (s *ResolverSuite) TestPhotoFolderFollowsSubjectType() {
	s.Equal("http://localhost:8080/files/students/asha.jpg",
		s.resolve(dbField("Photo"), testStudent(), nil))
	s.Equal("http://localhost:8080/files/teachers/daniel.jpg",
		s.resolve(dbField("photo"), testTeacher(), nil))
	s.Equal("http://localhost:8080/files/school-info/rita.jpg",
		s.resolve(dbField("Profile Picture"), testStaff(), nil))
}

func (s *ResolverSuite) TestExplicitPhotoFolders() {
	// The typed photo keys pin their folder regardless of the subject.
	p := testStaff()
	s.Equal("http://localhost:8080/files/students/rita.jpg",
		s.resolve(dbField("studentPhoto"), p, nil))
	s.Equal("http://localhost:8080/files/teachers/rita.jpg",
		s.resolve(dbField("Teacher Photo"), p, nil))
}

func (s *ResolverSuite) TestSchoolFields() {
	p := testStudent()
	info := &school.Info{
		Name:    "Hillside Public School",
		Logo:    "logo.png",
		Address: "1 Hill Street",
		Code:    "HPS-01",
	}

	s.Equal("Hillside Public School", s.resolve(dbField("School Name"), p, info))
	s.Equal("http://localhost:8080/files/school-info/logos/logo.png",
		s.resolve(dbField("schoolLogo"), p, info))
	s.Equal("1 Hill Street", s.resolve(dbField("School Address"), p, info))
	s.Equal("HPS-01", s.resolve(dbField("schoolCode"), p, info))
}

func (s *ResolverSuite) TestSchoolFallbacksWhenUnconfigured() {
	p := testStudent()

	s.Equal("School Name Not Set", s.resolve(dbField("School Name"), p, nil))
	s.Equal("School Address Not Set", s.resolve(dbField("schoolAddress"), p, nil))
	s.Equal("School Code Not Set", s.resolve(dbField("School Code"), p, nil))

	// The logo has no text fallback; it degrades to placeholder/label.
	f := dbField("School Logo")
	s.Equal("Field Label", s.resolve(f, p, nil))
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(nil); got != "" {
		t.Fatalf("nil date should format empty, got %q", got)
	}
	d := time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(&d); got != "Feb 3, 2026" {
		t.Fatalf("unexpected format: %q", got)
	}
}

func TestParseAndFormatDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"2026-02-03", "Feb 3, 2026"},
		{"2026-02-03T10:30:00Z", "Feb 3, 2026"},
		{"03/02/2026", "Feb 3, 2026"},
		{"not a date", ""},
	}
	for _, tt := range tests {
		if got := ParseAndFormatDate(tt.raw); got != tt.want {
			t.Errorf("ParseAndFormatDate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
