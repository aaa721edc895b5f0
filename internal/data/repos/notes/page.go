package notes

import (
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/notebook-backend/internal/domain"
	"github.com/yungbote/notebook-backend/internal/platform/dbctx"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
)

// pageOrder is the persisted sibling order; the tree builder relies on it.
const pageOrder = "position ASC, created_at ASC, id ASC"

type PageRepo interface {
	Create(dbc dbctx.Context, rows []*types.Page) ([]*types.Page, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Page, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Page, error)
	ListByNotebookID(dbc dbctx.Context, notebookID uuid.UUID) ([]*types.Page, error)
	ListByParentID(dbc dbctx.Context, parentID uuid.UUID) ([]*types.Page, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Page, error)
	MaxPosition(dbc dbctx.Context, notebookID uuid.UUID, parentID *uuid.UUID) (int, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdatePositions(dbc dbctx.Context, orderedIDs []uuid.UUID) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	FullDeleteByNotebookIDs(dbc dbctx.Context, notebookIDs []uuid.UUID) (int64, error)
}

type pageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageRepo(db *gorm.DB, baseLog *logger.Logger) PageRepo {
	return &pageRepo{db: db, log: baseLog.With("repo", "PageRepo")}
}

func (r *pageRepo) Create(dbc dbctx.Context, rows []*types.Page) ([]*types.Page, error) {
	if len(rows) == 0 {
		return []*types.Page{}, nil
	}
	for _, row := range rows {
		if row == nil {
			continue
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.Version < 1 {
			row.Version = 1
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *pageRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Page, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *pageRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Page, error) {
	var out []*types.Page
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order(pageOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pageRepo) ListByNotebookID(dbc dbctx.Context, notebookID uuid.UUID) ([]*types.Page, error) {
	var out []*types.Page
	if notebookID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("notebook_id = ?", notebookID).Order(pageOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pageRepo) ListByParentID(dbc dbctx.Context, parentID uuid.UUID) ([]*types.Page, error) {
	var out []*types.Page
	if parentID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("parent_page_id = ?", parentID).Order(pageOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pageRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Page, error) {
	var out []*types.Page
	if ownerID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("owner_id = ?", ownerID).Order("notebook_id ASC, " + pageOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MaxPosition returns the highest sibling position under parentID (roots
// when nil), or -1 when there are no siblings yet.
func (r *pageRepo) MaxPosition(dbc dbctx.Context, notebookID uuid.UUID, parentID *uuid.UUID) (int, error) {
	q := dbc.DB(r.db).Model(&types.Page{}).Where("notebook_id = ?", notebookID)
	if parentID == nil {
		q = q.Where("parent_page_id IS NULL")
	} else {
		q = q.Where("parent_page_id = ?", *parentID)
	}
	var max sql.NullInt64
	if err := q.Select("MAX(position)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

func (r *pageRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Page{}).Where("id = ?", id).Updates(updates).Error
}

// UpdatePositions writes position = index for every id in order.
func (r *pageRepo) UpdatePositions(dbc dbctx.Context, orderedIDs []uuid.UUID) error {
	db := dbc.DB(r.db)
	for i, id := range orderedIDs {
		if err := db.Model(&types.Page{}).Where("id = ?", id).UpdateColumn("position", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *pageRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Page{})
	return res.RowsAffected, res.Error
}

func (r *pageRepo) FullDeleteByNotebookIDs(dbc dbctx.Context, notebookIDs []uuid.UUID) (int64, error) {
	if len(notebookIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("notebook_id IN ?", notebookIDs).Delete(&types.Page{})
	return res.RowsAffected, res.Error
}
