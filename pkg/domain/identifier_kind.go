package domain

// IdentifierKind names which identifier a QR payload carries. The kind is
// chosen at encode time from the template field's database binding and
// re-derived at decode time from the URL path.
type IdentifierKind string

const (
	// IdentStudentID is the default student identifier.
	IdentStudentID IdentifierKind = "studentId"
	// IdentRollNumber is the alternate student identifier encoded under /roll/.
	IdentRollNumber IdentifierKind = "rollNumber"
	// IdentAdmissionNumber is the alternate student identifier encoded under /admission/.
	IdentAdmissionNumber IdentifierKind = "admissionNumber"
	// IdentEmployeeID is the default identifier for teachers and staff.
	IdentEmployeeID IdentifierKind = "employeeId"
	// IdentSubjectID is the generic fallback: the subject's own row ID.
	IdentSubjectID IdentifierKind = "subjectId"
)
