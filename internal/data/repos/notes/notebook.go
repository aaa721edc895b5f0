package notes

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/notebook-backend/internal/domain"
	"github.com/yungbote/notebook-backend/internal/platform/dbctx"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
)

type NotebookRepo interface {
	Create(dbc dbctx.Context, rows []*types.Notebook) ([]*types.Notebook, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Notebook, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Notebook, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type notebookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotebookRepo(db *gorm.DB, baseLog *logger.Logger) NotebookRepo {
	return &notebookRepo{db: db, log: baseLog.With("repo", "NotebookRepo")}
}

func (r *notebookRepo) Create(dbc dbctx.Context, rows []*types.Notebook) ([]*types.Notebook, error) {
	if len(rows) == 0 {
		return []*types.Notebook{}, nil
	}
	for _, row := range rows {
		if row != nil && row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *notebookRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Notebook, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Notebook
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *notebookRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Notebook, error) {
	var out []*types.Notebook
	if ownerID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notebookRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Notebook{}).Where("id = ?", id).Updates(updates).Error
}

func (r *notebookRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Notebook{}).Error
}
