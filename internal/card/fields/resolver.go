// Package fields maps template field definitions onto subject records.
//
// The resolver is a pure function over (field, subject, school metadata).
// Database-sourced fields go through a fixed mapping table keyed both by the
// human-readable label ("Roll Number") and the camelCase alias used by
// imported templates ("rollNumber"); both keys yield the identical value.
// Unknown keys resolve to the empty string, never an error, and the
// placeholder-then-label fallback applies whenever nothing resolves.
package fields

import (
	"context"
	"strconv"
	"strings"
	"time"

	"campuscard/internal/card/models"
	"campuscard/internal/school"
	"campuscard/internal/subject"
	id "campuscard/pkg/domain"
	"campuscard/pkg/requestcontext"
)

// DisplayDateFormat is the card-facing date rendering.
const DisplayDateFormat = "Jan 2, 2006"

// FormatDate renders t for display; nil renders empty.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DisplayDateFormat)
}

// ParseAndFormatDate reformats a stored date string for display. Unparseable
// input renders empty rather than erroring; a card with a blank date beats a
// failed render.
func ParseAndFormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DisplayDateFormat)
		}
	}
	return ""
}

// Resolver resolves template field values against a subject.
type Resolver struct {
	images *ImageNormalizer
}

func NewResolver(images *ImageNormalizer) *Resolver {
	return &Resolver{images: images}
}

type resolveInput struct {
	ctx    context.Context
	person *subject.Person
	school *school.Info
	images *ImageNormalizer
}

type valueFn func(in resolveInput) string

var table = buildTable()

// Resolve computes the display value for one field. It never fails: missing
// data degrades through placeholder, then label, then empty.
func (r *Resolver) Resolve(ctx context.Context, field models.TemplateField, person *subject.Person, info *school.Info) string {
	var value string
	switch field.Source {
	case models.SourceStatic:
		value = strings.TrimSpace(field.StaticText)
		if value == "" {
			value = strings.TrimSpace(field.ImageURL)
		}
	default:
		if fn, ok := table[field.DatabaseField]; ok {
			value = fn(resolveInput{ctx: ctx, person: person, school: info, images: r.images})
		}
	}
	if value == "" {
		value = field.Placeholder
	}
	if value == "" {
		value = field.Label
	}
	return value
}

func buildTable() map[string]valueFn {
	m := make(map[string]valueFn)
	add := func(fn valueFn, keys ...string) {
		for _, k := range keys {
			m[k] = fn
		}
	}

	// Base profile.
	add(func(in resolveInput) string { return in.person.FirstName }, "First Name", "firstName")
	add(func(in resolveInput) string { return in.person.LastName }, "Last Name", "lastName")
	add(func(in resolveInput) string { return in.person.FullName() }, "Full Name", "fullName", "Name", "name")
	add(func(in resolveInput) string { return in.person.Email }, "Email", "email")
	add(func(in resolveInput) string { return in.person.Phone }, "Phone", "Phone Number", "phone", "phoneNumber")
	add(func(in resolveInput) string { return in.person.Address }, "Address", "address")
	add(func(in resolveInput) string { return FormatDate(in.person.DateOfBirth) }, "Date of Birth", "dateOfBirth", "dob")
	add(func(in resolveInput) string { return in.person.BloodGroup }, "Blood Group", "bloodGroup")
	add(photoValue, "Photo", "photo", "Profile Picture", "profilePicture")
	add(func(in resolveInput) string {
		return in.images.Normalize(in.person.Photo, FolderStudents)
	}, "Student Photo", "studentPhoto")
	add(func(in resolveInput) string {
		return in.images.Normalize(in.person.Photo, FolderTeachers)
	}, "Teacher Photo", "teacherPhoto")

	// Organization metadata, with per-field fallbacks when none is set.
	add(func(in resolveInput) string {
		if in.school == nil || in.school.Name == "" {
			return "School Name Not Set"
		}
		return in.school.Name
	}, "School Name", "schoolName")
	add(func(in resolveInput) string {
		if in.school == nil {
			return ""
		}
		return in.images.Normalize(in.school.Logo, FolderLogos)
	}, "School Logo", "schoolLogo")
	add(func(in resolveInput) string {
		if in.school == nil || in.school.Address == "" {
			return "School Address Not Set"
		}
		return in.school.Address
	}, "School Address", "schoolAddress")
	add(func(in resolveInput) string {
		if in.school == nil || in.school.Code == "" {
			return "School Code Not Set"
		}
		return in.school.Code
	}, "School Code", "schoolCode")

	// Student profile.
	addStudent := func(fn func(*subject.StudentProfile, resolveInput) string, keys ...string) {
		add(func(in resolveInput) string {
			if in.person.Student == nil {
				return ""
			}
			return fn(in.person.Student, in)
		}, keys...)
	}
	addStudent(func(s *subject.StudentProfile, _ resolveInput) string { return s.StudentID }, "Student ID", "studentId")
	addStudent(func(s *subject.StudentProfile, _ resolveInput) string { return s.RollNumber }, "Roll Number", "rollNumber")
	addStudent(func(s *subject.StudentProfile, _ resolveInput) string { return s.AdmissionNumber }, "Admission Number", "admissionNumber")
	addStudent(func(s *subject.StudentProfile, _ resolveInput) string { return s.Class }, "Class", "Class Name", "class", "className")
	addStudent(func(s *subject.StudentProfile, _ resolveInput) string { return s.Section }, "Section", "section")
	addStudent(func(_ *subject.StudentProfile, in resolveInput) string {
		return strconv.Itoa(requestcontext.Now(in.ctx).Year())
	}, "Academic Year", "academicYear")
	// Guardian fields prefer the father's details, then the mother's.
	addStudent(func(s *subject.StudentProfile, _ resolveInput) string {
		if s.FatherName != "" {
			return s.FatherName
		}
		return s.MotherName
	}, "Guardian Name", "guardianName")
	addStudent(func(s *subject.StudentProfile, _ resolveInput) string {
		if s.FatherPhone != "" {
			return s.FatherPhone
		}
		return s.MotherPhone
	}, "Guardian Contact", "guardianContact", "guardianPhone")

	// Teacher profile.
	addTeacher := func(fn func(*subject.TeacherProfile) string, keys ...string) {
		add(func(in resolveInput) string {
			if in.person.Teacher == nil {
				return ""
			}
			return fn(in.person.Teacher)
		}, keys...)
	}
	addTeacher(func(t *subject.TeacherProfile) string { return strings.Join(t.Subjects, ", ") }, "Subjects", "subjects", "subjectsTaught")
	addTeacher(func(t *subject.TeacherProfile) string { return t.Qualification }, "Qualification", "qualification")
	addTeacher(func(t *subject.TeacherProfile) string {
		if t.ExperienceYears == 0 {
			return ""
		}
		return strconv.Itoa(t.ExperienceYears) + " years"
	}, "Experience", "experience")
	addTeacher(func(t *subject.TeacherProfile) string { return FormatDate(t.JoiningDate) }, "Joining Date", "joiningDate")

	// Staff profile.
	addStaff := func(fn func(*subject.StaffProfile) string, keys ...string) {
		add(func(in resolveInput) string {
			if in.person.Staff == nil {
				return ""
			}
			return fn(in.person.Staff)
		}, keys...)
	}
	addStaff(func(s *subject.StaffProfile) string { return s.Position }, "Position", "position")
	addStaff(func(s *subject.StaffProfile) string { return s.Shift }, "Shift", "shift")
	addStaff(func(s *subject.StaffProfile) string { return s.WorkingHours }, "Working Hours", "workingHours")
	addStaff(func(s *subject.StaffProfile) string { return FormatDate(s.EmploymentDate) }, "Employment Date", "employmentDate")

	// Fields shared by teachers and staff; teacher wins when a record
	// somehow carries both profiles.
	add(func(in resolveInput) string {
		if in.person.Teacher != nil {
			return in.person.Teacher.EmployeeID
		}
		if in.person.Staff != nil {
			return in.person.Staff.EmployeeID
		}
		return ""
	}, "Employee ID", "employeeId", "teacherId")
	add(func(in resolveInput) string {
		if in.person.Teacher != nil {
			return in.person.Teacher.Designation
		}
		if in.person.Staff != nil {
			return in.person.Staff.Designation
		}
		return ""
	}, "Designation", "designation")
	add(func(in resolveInput) string {
		if in.person.Teacher != nil {
			return in.person.Teacher.Department
		}
		if in.person.Staff != nil {
			return in.person.Staff.Department
		}
		return ""
	}, "Department", "department")

	return m
}

// photoValue files the generic photo keys by the subject's own type.
func photoValue(in resolveInput) string {
	folder := FolderDefault
	switch in.person.Type() {
	case id.SubjectStudent:
		folder = FolderStudents
	case id.SubjectTeacher:
		folder = FolderTeachers
	}
	return in.images.Normalize(in.person.Photo, folder)
}
