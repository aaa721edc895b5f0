package notes

import (
	"time"

	"github.com/google/uuid"
)

// PageVersion is an immutable snapshot of a page's title and content as
// they were at Version. (page_id, version) is unique.
type PageVersion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PageID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_page_version,priority:1" json:"page_id"`
	Version   int       `gorm:"column:version;not null;uniqueIndex:idx_page_version,priority:2" json:"version"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (PageVersion) TableName() string { return "page_version" }
