package notes

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Notebook struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Settings  datatypes.JSON `gorm:"column:settings" json:"settings,omitempty"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Notebook) TableName() string { return "notebook" }

// NotebookSettings is the decoded form of Notebook.Settings.
type NotebookSettings struct {
	// KeepLatestVersions overrides the global snapshot retention when > 0.
	KeepLatestVersions int `json:"keep_latest_versions,omitempty"`
}

// DecodeSettings never fails on empty or malformed settings; it returns the zero value.
func (n *Notebook) DecodeSettings() NotebookSettings {
	var s NotebookSettings
	if n == nil || len(n.Settings) == 0 {
		return s
	}
	_ = json.Unmarshal(n.Settings, &s)
	return s
}

func EncodeSettings(s NotebookSettings) datatypes.JSON {
	raw, err := json.Marshal(s)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
