package domain

import "strings"

// SubjectType discriminates the union of people a credential can identify.
// STAFF_NO_LOGIN is a staff member without a portal account; for rendering
// and verification it behaves exactly like STAFF.
type SubjectType string

const (
	SubjectStudent      SubjectType = "STUDENT"
	SubjectTeacher      SubjectType = "TEACHER"
	SubjectStaff        SubjectType = "STAFF"
	SubjectStaffNoLogin SubjectType = "STAFF_NO_LOGIN"
)

// Valid reports whether t is one of the known subject types.
func (t SubjectType) Valid() bool {
	switch t {
	case SubjectStudent, SubjectTeacher, SubjectStaff, SubjectStaffNoLogin:
		return true
	}
	return false
}

// IsStaffLike reports whether t requires a staff profile on the subject.
func (t SubjectType) IsStaffLike() bool {
	return t == SubjectStaff || t == SubjectStaffNoLogin
}

// PathPrefix is the URL segment form of the type: lowercased with
// underscores replaced by hyphens (STAFF_NO_LOGIN -> staff-no-login).
func (t SubjectType) PathPrefix() string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", "-")
}
