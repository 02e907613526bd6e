package handler

import (
	"time"

	"campuscard/internal/card/models"
	"campuscard/internal/card/service"
)

// RenderedFieldResponse mirrors models.RenderedField on the wire.
type RenderedFieldResponse struct {
	FieldID   string           `json:"field_id"`
	FieldType models.FieldType `json:"field_type"`
	Label     string           `json:"label"`
	Value     string           `json:"value"`
	Geometry  models.Geometry  `json:"geometry"`
	Style     models.Style     `json:"style"`
}

// RenderResponse is the issued card returned to the rasterizer.
type RenderResponse struct {
	CredentialID string                  `json:"credential_id"`
	SubjectID    string                  `json:"subject_id"`
	TemplateID   string                  `json:"template_id"`
	IssuedAt     time.Time               `json:"issued_at"`
	ExpiryDate   *time.Time              `json:"expiry_date,omitempty"`
	BatchName    string                  `json:"batch_name,omitempty"`
	Fields       []RenderedFieldResponse `json:"fields"`
}

// FromRenderedCard converts the service result to its wire shape.
func FromRenderedCard(card *models.RenderedCard) RenderResponse {
	resp := RenderResponse{
		CredentialID: card.Credential.ID.String(),
		SubjectID:    card.Credential.SubjectID.String(),
		TemplateID:   card.Credential.TemplateID.String(),
		IssuedAt:     card.Credential.IssuedAt,
		ExpiryDate:   card.Credential.ExpiryDate,
		BatchName:    card.Credential.BatchName,
		Fields:       make([]RenderedFieldResponse, 0, len(card.Fields)),
	}
	for _, f := range card.Fields {
		resp.Fields = append(resp.Fields, RenderedFieldResponse{
			FieldID:   f.FieldID,
			FieldType: f.FieldType,
			Label:     f.Label,
			Value:     f.Value,
			Geometry:  f.Geometry,
			Style:     f.Style,
		})
	}
	return resp
}

// BatchOutcomeResponse is one per-subject outcome of a bulk issuance.
type BatchOutcomeResponse struct {
	SubjectID    string `json:"subject_id"`
	CredentialID string `json:"credential_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BatchResponse summarizes a bulk issuance.
type BatchResponse struct {
	Issued   int                    `json:"issued"`
	Failed   int                    `json:"failed"`
	Outcomes []BatchOutcomeResponse `json:"outcomes"`
}

// FromBatchOutcomes converts service outcomes to their wire shape.
func FromBatchOutcomes(outcomes []service.BatchOutcome) BatchResponse {
	resp := BatchResponse{Outcomes: make([]BatchOutcomeResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		out := BatchOutcomeResponse{SubjectID: o.SubjectID.String()}
		if o.Err != nil {
			out.Error = o.Err.Error()
			resp.Failed++
		} else {
			out.CredentialID = o.CredentialID.String()
			resp.Issued++
		}
		resp.Outcomes = append(resp.Outcomes, out)
	}
	return resp
}
