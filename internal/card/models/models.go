// Package models defines the card template aggregate and the issued
// credential record.
package models

import (
	"time"

	id "campuscard/pkg/domain"
	dErrors "campuscard/pkg/domain-errors"
)

// TemplateStatus is the template lifecycle state. Only ACTIVE templates may
// be rendered.
type TemplateStatus string

const (
	TemplateDraft    TemplateStatus = "DRAFT"
	TemplateActive   TemplateStatus = "ACTIVE"
	TemplateArchived TemplateStatus = "ARCHIVED"
)

// FieldType classifies what a template field renders.
type FieldType string

const (
	FieldText  FieldType = "TEXT"
	FieldImage FieldType = "IMAGE"
	FieldLogo  FieldType = "LOGO"
	FieldQR    FieldType = "QR_CODE"
)

// DataSource says where a field's value comes from.
type DataSource string

const (
	SourceDatabase DataSource = "database"
	SourceStatic   DataSource = "static"
)

// Geometry places a field on the card in layout units.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Style carries the optional text styling for a field.
type Style struct {
	FontSize        int    `json:"font_size,omitempty"`
	FontFamily      string `json:"font_family,omitempty"`
	FontWeight      string `json:"font_weight,omitempty"`
	TextAlign       string `json:"text_align,omitempty"`
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
}

// TemplateField is one positioned field definition. Exactly one of
// DatabaseField / StaticText / ImageURL is meaningful depending on Source;
// Placeholder then Label are the ordered fallback when nothing resolves.
type TemplateField struct {
	ID            string     `json:"id"`
	FieldType     FieldType  `json:"field_type"`
	Source        DataSource `json:"source"`
	DatabaseField string     `json:"database_field,omitempty"`
	StaticText    string     `json:"static_text,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Placeholder   string     `json:"placeholder,omitempty"`
	Label         string     `json:"label"`
	Geometry      Geometry   `json:"geometry"`
	Style         Style      `json:"style"`
}

// Template is a reusable card layout for one subject type.
//
// Invariants:
//   - only Status == ACTIVE templates render
//   - UsageCount increments exactly once per successful issuance, never on
//     verification or a failed render
//
// Templates are created and edited by an external workflow; this service
// mutates them only through the usage counter.
type Template struct {
	ID          id.TemplateID
	Name        string
	SubjectType id.SubjectType
	Status      TemplateStatus
	WidthMM     float64
	HeightMM    float64
	Orientation string
	Fields      []TemplateField
	UsageCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanRender checks the render precondition on the template itself.
func (t *Template) CanRender() error {
	if t.Status != TemplateActive {
		return dErrors.Newf(dErrors.CodeInvalidState, "template %s is %s, not ACTIVE", t.ID, t.Status)
	}
	return nil
}

// IssuedCredential records one card generation event. Rows are append-only;
// superseding touches SupersededAt but never deletes.
type IssuedCredential struct {
	ID           id.CredentialID
	SubjectID    id.SubjectID
	SubjectType  id.SubjectType
	TemplateID   id.TemplateID
	ExpiryDate   *time.Time
	BatchName    string
	IssuedAt     time.Time
	SupersededAt *time.Time
}

// ActiveAt applies the single validity rule: a credential is active when it
// has no expiry date or the expiry is after now. There is no revocation
// list and no status flag beyond expiry.
func (c *IssuedCredential) ActiveAt(now time.Time) bool {
	return c.ExpiryDate == nil || c.ExpiryDate.After(now)
}

// RenderedField is the renderer's per-field output, consumed by an external
// rasterizer. For QR fields Value is the payload URL itself, not an image.
type RenderedField struct {
	FieldID   string    `json:"field_id"`
	FieldType FieldType `json:"field_type"`
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	Geometry  Geometry  `json:"geometry"`
	Style     Style     `json:"style"`
}

// RenderedCard bundles the ordered rendered fields with the credential
// persisted for this issuance.
type RenderedCard struct {
	Fields     []RenderedField
	Credential IssuedCredential
}
