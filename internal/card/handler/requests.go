package handler

import (
	"time"

	id "campuscard/pkg/domain"
	dErrors "campuscard/pkg/domain-errors"
)

// RenderRequest is the wire shape of a single-card render.
type RenderRequest struct {
	TemplateID string `json:"template_id"`
	SubjectID  string `json:"subject_id"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	BatchName  string `json:"batch_name,omitempty"`
}

func (r RenderRequest) Validate() error {
	if r.TemplateID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "template_id is required")
	}
	if r.SubjectID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "subject_id is required")
	}
	if _, err := r.ParsedExpiry(); err != nil {
		return err
	}
	return nil
}

// ParsedExpiry parses the optional RFC 3339 expiry date.
func (r RenderRequest) ParsedExpiry() (*time.Time, error) {
	if r.ExpiryDate == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, r.ExpiryDate)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "expiry_date must be RFC 3339")
	}
	return &t, nil
}

// ParsedTemplateID parses the template ID.
func (r RenderRequest) ParsedTemplateID() (id.TemplateID, error) {
	return id.ParseTemplateID(r.TemplateID)
}

// ParsedSubjectID parses the subject ID.
func (r RenderRequest) ParsedSubjectID() (id.SubjectID, error) {
	return id.ParseSubjectID(r.SubjectID)
}

// BatchRequest is the wire shape of a bulk issuance.
type BatchRequest struct {
	TemplateID string   `json:"template_id"`
	SubjectIDs []string `json:"subject_ids"`
	ExpiryDate string   `json:"expiry_date,omitempty"`
	BatchName  string   `json:"batch_name,omitempty"`
}

func (r BatchRequest) Validate() error {
	if r.TemplateID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "template_id is required")
	}
	if len(r.SubjectIDs) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "subject_ids must not be empty")
	}
	if r.ExpiryDate != "" {
		if _, err := time.Parse(time.RFC3339, r.ExpiryDate); err != nil {
			return dErrors.New(dErrors.CodeBadRequest, "expiry_date must be RFC 3339")
		}
	}
	return nil
}

// ParsedExpiry parses the optional RFC 3339 expiry date.
func (r BatchRequest) ParsedExpiry() *time.Time {
	if r.ExpiryDate == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, r.ExpiryDate)
	if err != nil {
		return nil
	}
	return &t
}
