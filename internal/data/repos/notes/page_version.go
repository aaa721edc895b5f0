package notes

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/notebook-backend/internal/domain"
	"github.com/yungbote/notebook-backend/internal/platform/dbctx"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
)

type PageVersionRepo interface {
	Create(dbc dbctx.Context, rows []*types.PageVersion) ([]*types.PageVersion, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PageVersion, error)
	GetByPageAndVersion(dbc dbctx.Context, pageID uuid.UUID, version int) (*types.PageVersion, error)
	ListByPageID(dbc dbctx.Context, pageID uuid.UUID, limit int) ([]*types.PageVersion, error)
	CountByPageID(dbc dbctx.Context, pageID uuid.UUID) (int64, error)
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	FullDeleteByPageIDs(dbc dbctx.Context, pageIDs []uuid.UUID) (int64, error)
}

type pageVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageVersionRepo(db *gorm.DB, baseLog *logger.Logger) PageVersionRepo {
	return &pageVersionRepo{db: db, log: baseLog.With("repo", "PageVersionRepo")}
}

func (r *pageVersionRepo) Create(dbc dbctx.Context, rows []*types.PageVersion) ([]*types.PageVersion, error) {
	if len(rows) == 0 {
		return []*types.PageVersion{}, nil
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

func (r *pageVersionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PageVersion, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.PageVersion
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *pageVersionRepo) GetByPageAndVersion(dbc dbctx.Context, pageID uuid.UUID, version int) (*types.PageVersion, error) {
	if pageID == uuid.Nil {
		return nil, nil
	}
	var out []*types.PageVersion
	if err := dbc.DB(r.db).Where("page_id = ? AND version = ?", pageID, version).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// ListByPageID returns snapshots newest first.
func (r *pageVersionRepo) ListByPageID(dbc dbctx.Context, pageID uuid.UUID, limit int) ([]*types.PageVersion, error) {
	var out []*types.PageVersion
	if pageID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("page_id = ?", pageID).Order("version DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pageVersionRepo) CountByPageID(dbc dbctx.Context, pageID uuid.UUID) (int64, error) {
	var n int64
	if pageID == uuid.Nil {
		return 0, nil
	}
	err := dbc.DB(r.db).Model(&types.PageVersion{}).Where("page_id = ?", pageID).Count(&n).Error
	return n, err
}

func (r *pageVersionRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.PageVersion{})
	return res.RowsAffected, res.Error
}

func (r *pageVersionRepo) FullDeleteByPageIDs(dbc dbctx.Context, pageIDs []uuid.UUID) (int64, error) {
	if len(pageIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("page_id IN ?", pageIDs).Delete(&types.PageVersion{})
	return res.RowsAffected, res.Error
}
