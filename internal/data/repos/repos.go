package repos

import (
	"github.com/yungbote/notebook-backend/internal/data/repos/notes"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type NotebookRepo = notes.NotebookRepo
type PageRepo = notes.PageRepo
type PageVersionRepo = notes.PageVersionRepo

func NewNotebookRepo(db *gorm.DB, log *logger.Logger) NotebookRepo {
	return notes.NewNotebookRepo(db, log)
}

func NewPageRepo(db *gorm.DB, log *logger.Logger) PageRepo {
	return notes.NewPageRepo(db, log)
}

func NewPageVersionRepo(db *gorm.DB, log *logger.Logger) PageVersionRepo {
	return notes.NewPageVersionRepo(db, log)
}
