// Package qrcode encodes and decodes the verification payload carried in a
// card's QR field.
//
// The payload is a bare URL: the only state that survives from issuance to
// verification is the string printed on the card, so it must decode without
// any session or database round-trip. Rasterizing the QR image is an
// external concern; this package deals only in the URL.
package qrcode

import (
	"errors"
	"net/url"
	"strings"

	id "campuscard/pkg/domain"
)

// Type segments understood by the decoder. "employee" is a legacy segment
// from before teacher/staff cards were disambiguated; verification resolves
// it by trying teachers first, then staff.
const (
	TypeStudent  = "student"
	TypeTeacher  = "teacher"
	TypeStaff    = "staff"
	TypeEmployee = "employee"
)

var (
	// ErrInvalidFormat reports input that is not a parseable verify URL.
	ErrInvalidFormat = errors.New("invalid qr payload format")
	// ErrUnknownSubjectType reports a verify URL with an unrecognized type
	// segment.
	ErrUnknownSubjectType = errors.New("unknown subject type in qr payload")
)

// Payload is the decoded triple: which kind of subject, which identifier
// kind, and the identifier value.
type Payload struct {
	Type  string
	Kind  id.IdentifierKind
	Value string
}

// ForBinding maps a QR field's database binding to the payload type segment
// and identifier kind to encode. The employeeId binding deliberately encodes
// the legacy "employee" segment for both teacher and staff cards; teacherId
// pins the teacher segment. ok is false for bindings with no defined
// payload; callers fall back to the generic subject-ID payload.
func ForBinding(binding string) (typeSegment string, kind id.IdentifierKind, ok bool) {
	switch binding {
	case "studentId":
		return TypeStudent, id.IdentStudentID, true
	case "rollNumber":
		return TypeStudent, id.IdentRollNumber, true
	case "admissionNumber":
		return TypeStudent, id.IdentAdmissionNumber, true
	case "employeeId":
		return TypeEmployee, id.IdentEmployeeID, true
	case "teacherId":
		return TypeTeacher, id.IdentEmployeeID, true
	}
	return "", "", false
}

// Encode renders the payload as {base}/verify/... . Student roll and
// admission identifiers get an extra kind segment; everything else encodes
// as {base}/verify/{type}/{value}.
func Encode(p Payload, base string) string {
	base = strings.TrimRight(base, "/")
	value := url.PathEscape(p.Value)
	if p.Type == TypeStudent {
		switch p.Kind {
		case id.IdentRollNumber:
			return base + "/verify/student/roll/" + value
		case id.IdentAdmissionNumber:
			return base + "/verify/student/admission/" + value
		}
	}
	return base + "/verify/" + p.Type + "/" + value
}

// Decode parses a scanned URL back into its payload triple.
func Decode(raw string) (Payload, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Payload{}, ErrInvalidFormat
	}
	segs := splitPath(u.Path)
	if len(segs) < 3 || segs[0] != "verify" {
		return Payload{}, ErrInvalidFormat
	}

	switch segs[1] {
	case TypeStudent:
		if len(segs) >= 4 && segs[2] == "roll" {
			return Payload{Type: TypeStudent, Kind: id.IdentRollNumber, Value: segs[3]}, nil
		}
		if len(segs) >= 4 && segs[2] == "admission" {
			return Payload{Type: TypeStudent, Kind: id.IdentAdmissionNumber, Value: segs[3]}, nil
		}
		return Payload{Type: TypeStudent, Kind: id.IdentStudentID, Value: segs[2]}, nil
	case TypeTeacher, TypeStaff, TypeEmployee:
		return Payload{Type: segs[1], Kind: id.IdentEmployeeID, Value: segs[2]}, nil
	default:
		return Payload{}, ErrUnknownSubjectType
	}
}

func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
