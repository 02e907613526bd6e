// Package domain holds identifiers and enums shared across feature packages.
//
// IDs are distinct uuid-backed types so the compiler catches a template ID
// being passed where a subject ID is expected. Parse helpers enforce the
// invariant that IDs are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "campuscard/pkg/domain-errors"
)

type (
	// SubjectID identifies a person (student, teacher, or staff member).
	SubjectID uuid.UUID

	// TemplateID identifies a card layout template.
	TemplateID uuid.UUID

	// CredentialID identifies one issued-credential row.
	CredentialID uuid.UUID
)

func (id SubjectID) String() string    { return uuid.UUID(id).String() }
func (id TemplateID) String() string   { return uuid.UUID(id).String() }
func (id CredentialID) String() string { return uuid.UUID(id).String() }

func (id SubjectID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TemplateID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CredentialID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseSubjectID parses a subject ID from its string form.
func ParseSubjectID(s string) (SubjectID, error) {
	u, err := parseUUID(s)
	return SubjectID(u), err
}

// ParseTemplateID parses a template ID from its string form.
func ParseTemplateID(s string) (TemplateID, error) {
	u, err := parseUUID(s)
	return TemplateID(u), err
}

// ParseCredentialID parses a credential ID from its string form.
func ParseCredentialID(s string) (CredentialID, error) {
	u, err := parseUUID(s)
	return CredentialID(u), err
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
