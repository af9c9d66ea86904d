package pages

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Node is a single position in the content tree. The payload for a node
// lives in the table of its variant and shares the node's ID.
type Node struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID      *uuid.UUID `gorm:"type:uuid;column:parent_id;index;uniqueIndex:idx_page_node_sibling_slug,priority:1" json:"parent_id,omitempty"`
	Slug          string     `gorm:"column:slug;not null;uniqueIndex:idx_page_node_sibling_slug,priority:2" json:"slug"`
	Title         string     `gorm:"column:title;not null" json:"title"`
	Description   string     `gorm:"column:description;type:text" json:"description,omitempty"`
	Position      int        `gorm:"column:position;not null;default:0" json:"position"`
	Status        Status     `gorm:"column:status;not null;default:'draft'" json:"status"`
	PublishAt     *time.Time `gorm:"column:publish_at" json:"publish_at,omitempty"`
	ExpireAt      *time.Time `gorm:"column:expire_at" json:"expire_at,omitempty"`
	VariantType   string     `gorm:"column:variant_type;not null;index" json:"variant_type"`
	InMenus       bool       `gorm:"column:in_menus;not null" json:"in_menus"`
	LoginRequired bool       `gorm:"column:login_required;not null;default:false" json:"login_required"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Node) TableName() string { return "page_node" }

func (n *Node) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (n *Node) IsRoot() bool { return n != nil && n.ParentID == nil }

// VisibleAt reports whether the node is published and inside its
// publication window at t.
func (n *Node) VisibleAt(t time.Time) bool {
	if n == nil || n.Status != StatusPublished {
		return false
	}
	if n.PublishAt != nil && t.Before(*n.PublishAt) {
		return false
	}
	if n.ExpireAt != nil && !t.Before(*n.ExpireAt) {
		return false
	}
	return true
}

func SameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
