// Package subject models the people credentials are issued to.
//
// A Person is a tagged union: one base profile shared by everyone plus at
// most one of the Student/Teacher/Staff sub-profiles. Renderer and verifier
// branch on the sub-profile explicitly; there is no inheritance hierarchy.
// Subjects are owned by an external management system and read-only here.
package subject

import (
	"strings"
	"time"

	id "campuscard/pkg/domain"
)

// Person is the base identity record for any card subject.
type Person struct {
	ID          id.SubjectID
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	DateOfBirth *time.Time
	BloodGroup  string
	// Photo is the raw stored value (absolute URL, upload path, or bare
	// filename). Rendering normalizes it to a public URL.
	Photo string

	Student *StudentProfile
	Teacher *TeacherProfile
	Staff   *StaffProfile

	DeletedAt *time.Time
}

// StudentProfile holds the student-specific attributes.
type StudentProfile struct {
	StudentID       string
	RollNumber      string
	AdmissionNumber string
	Class           string
	Section         string
	FatherName      string
	FatherPhone     string
	MotherName      string
	MotherPhone     string
}

// TeacherProfile holds the teacher-specific attributes.
type TeacherProfile struct {
	EmployeeID      string
	Designation     string
	Department      string
	Subjects        []string
	Qualification   string
	ExperienceYears int
	JoiningDate     *time.Time
}

// StaffProfile holds the non-teaching staff attributes.
type StaffProfile struct {
	EmployeeID     string
	Designation    string
	Department     string
	Position       string
	Shift          string
	WorkingHours   string
	EmploymentDate *time.Time
}

// FullName joins first and last name, tolerating either being empty.
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// IsDeleted reports whether the record is soft-deleted. Deleted subjects are
// invisible to both issuance and verification.
func (p *Person) IsDeleted() bool {
	return p.DeletedAt != nil
}

// HasProfileFor reports whether the person carries the sub-profile a
// template of type t renders from. Both staff types need a staff profile.
func (p *Person) HasProfileFor(t id.SubjectType) bool {
	switch {
	case t == id.SubjectStudent:
		return p.Student != nil
	case t == id.SubjectTeacher:
		return p.Teacher != nil
	case t.IsStaffLike():
		return p.Staff != nil
	}
	return false
}

// Type returns the subject type implied by the person's sub-profiles, with
// student taking precedence for the rare record that carries several.
func (p *Person) Type() id.SubjectType {
	switch {
	case p.Student != nil:
		return id.SubjectStudent
	case p.Teacher != nil:
		return id.SubjectTeacher
	default:
		return id.SubjectStaff
	}
}
