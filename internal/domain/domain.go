package domain

import (
	"gorm.io/datatypes"

	"github.com/yungbote/notebook-backend/internal/domain/notes"
)

type Notebook = notes.Notebook
type NotebookSettings = notes.NotebookSettings
type Page = notes.Page
type PageVersion = notes.PageVersion

func EncodeSettings(s NotebookSettings) datatypes.JSON { return notes.EncodeSettings(s) }
