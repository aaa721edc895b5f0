package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/notebook-backend/internal/data/repos"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
)

type Repos struct {
	Notebook    repos.NotebookRepo
	Page        repos.PageRepo
	PageVersion repos.PageVersionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Notebook:    repos.NewNotebookRepo(db, log),
		Page:        repos.NewPageRepo(db, log),
		PageVersion: repos.NewPageVersionRepo(db, log),
	}
}
