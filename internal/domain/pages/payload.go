package pages

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Payload is the variant-specific half of a page. Implementations embed
// PayloadBase so the payload row is keyed by its node's ID.
type Payload interface {
	VariantType() string
	PageNodeID() uuid.UUID
	SetPageNodeID(id uuid.UUID)
}

type PayloadBase struct {
	NodeID uuid.UUID `gorm:"type:uuid;primaryKey;column:node_id" json:"node_id"`
}

func (p *PayloadBase) PageNodeID() uuid.UUID      { return p.NodeID }
func (p *PayloadBase) SetPageNodeID(id uuid.UUID) { p.NodeID = id }

const (
	VariantRichText = "richtextpage"
	VariantLink     = "link"
	VariantForm     = "form"
)

type RichTextPage struct {
	PayloadBase
	Content string `gorm:"column:content;type:text" json:"content"`
}

func (RichTextPage) TableName() string    { return "page_richtext" }
func (*RichTextPage) VariantType() string { return VariantRichText }

type LinkPage struct {
	PayloadBase
	URL string `gorm:"column:url;not null" json:"url"`
}

func (LinkPage) TableName() string    { return "page_link" }
func (*LinkPage) VariantType() string { return VariantLink }

type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldTextarea FieldKind = "textarea"
	FieldCheckbox FieldKind = "checkbox"
)

type FormField struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
}

type FormPage struct {
	PayloadBase
	Intro      string         `gorm:"column:intro;type:text" json:"intro"`
	Response   string         `gorm:"column:response;type:text" json:"response"`
	ButtonText string         `gorm:"column:button_text" json:"button_text"`
	Fields     datatypes.JSON `gorm:"column:fields;type:jsonb" json:"fields"`
}

func (FormPage) TableName() string    { return "page_form" }
func (*FormPage) VariantType() string { return VariantForm }

// FormEntry is one stored submission of a form page.
type FormEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	NodeID    uuid.UUID      `gorm:"type:uuid;column:node_id;not null;index" json:"node_id"`
	Values    datatypes.JSON `gorm:"column:field_values;type:jsonb" json:"values"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (FormEntry) TableName() string { return "page_form_entry" }

func (f *FormPage) FieldList() ([]FormField, error) {
	if len(f.Fields) == 0 {
		return nil, nil
	}
	var out []FormField
	if err := json.Unmarshal(f.Fields, &out); err != nil {
		return nil, fmt.Errorf("decode form fields: %w", err)
	}
	return out, nil
}

func (f *FormPage) SetFields(fields []FormField) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	f.Fields = datatypes.JSON(raw)
	return nil
}
