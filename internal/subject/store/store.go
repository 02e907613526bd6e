// Package store provides subject lookups for issuance and verification.
// All lookups exclude soft-deleted rows.
package store

import (
	"context"

	"campuscard/internal/subject"
	id "campuscard/pkg/domain"
)

// Store is the read-side contract over subject records. Implementations
// return sentinel.ErrNotFound when no live row matches.
type Store interface {
	// FindByID returns any subject by its row ID.
	FindByID(ctx context.Context, subjectID id.SubjectID) (*subject.Person, error)

	// FindStudent looks up a student by one of the three student
	// identifier kinds.
	FindStudent(ctx context.Context, kind id.IdentifierKind, value string) (*subject.Person, error)

	// FindTeacher looks up a teacher by employee ID or, failing that, by
	// subject row ID.
	FindTeacher(ctx context.Context, identifier string) (*subject.Person, error)

	// FindStaff looks up a staff member by employee ID or, failing that,
	// by subject row ID.
	FindStaff(ctx context.Context, identifier string) (*subject.Person, error)
}
