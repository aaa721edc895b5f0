package notes

import (
	"time"

	"github.com/google/uuid"
)

// Page is a titled content unit inside a notebook, optionally nested under
// another page of the same notebook. Version starts at 1 and grows by one on
// every content-affecting write.
type Page struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	NotebookID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"notebook_id"`
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	ParentPageID *uuid.UUID `gorm:"type:uuid;column:parent_page_id;index" json:"parent_page_id,omitempty"`
	Position     int        `gorm:"column:position;not null;default:0" json:"position"`
	Title        string     `gorm:"column:title;not null" json:"title"`
	Content      string     `gorm:"column:content;type:text" json:"content"`
	Version      int        `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Page) TableName() string { return "page" }

// HasParent reports whether the page declares a parent.
func (p *Page) HasParent() bool {
	return p != nil && p.ParentPageID != nil && *p.ParentPageID != uuid.Nil
}
