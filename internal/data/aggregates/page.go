package aggregates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/notebook-backend/internal/data/repos"
	types "github.com/yungbote/notebook-backend/internal/domain"
	domainagg "github.com/yungbote/notebook-backend/internal/domain/aggregates"
	"github.com/yungbote/notebook-backend/internal/modules/notes"
	"github.com/yungbote/notebook-backend/internal/platform/dbctx"
)

const (
	pageTable = "page"
	// pruneBatchSize bounds each delete statement issued by PruneVersions.
	pruneBatchSize = 200
)

type PageAggregateDeps struct {
	Base BaseDeps

	Notebooks repos.NotebookRepo
	Pages     repos.PageRepo
	Versions  repos.PageVersionRepo
}

type pageAggregate struct {
	deps PageAggregateDeps
}

func NewPageAggregate(deps PageAggregateDeps) domainagg.PageAggregate {
	deps.Base = deps.Base.withDefaults()
	return &pageAggregate{deps: deps}
}

func (a *pageAggregate) Contract() domainagg.Contract {
	return domainagg.PageAggregateContract
}

func (a *pageAggregate) configured(op string) error {
	if a.deps.Notebooks == nil || a.deps.Pages == nil || a.deps.Versions == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "page aggregate repos not configured", nil)
	}
	return nil
}

func (a *pageAggregate) CreatePage(ctx context.Context, in domainagg.CreatePageInput) (*types.Page, error) {
	const op = "Notes.Page.CreatePage"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if in.OwnerID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing owner_id", nil)
	}
	if in.NotebookID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing notebook_id", nil)
	}
	title, err := notes.NormalizeTitle(in.Title)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	parentID := in.ParentPageID
	if parentID != nil && *parentID == uuid.Nil {
		parentID = nil
	}

	var out *types.Page
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		nb, err := a.deps.Notebooks.GetByID(dbc, in.NotebookID)
		if err != nil {
			return err
		}
		if nb == nil || nb.OwnerID != in.OwnerID {
			return NotFoundError(fmt.Sprintf("notebook not found: %s", in.NotebookID))
		}
		if parentID != nil {
			h, err := a.loadHierarchy(dbc, in.NotebookID)
			if err != nil {
				return err
			}
			if reason, ok := notes.ValidateParent(h, uuid.Nil, parentID); !ok {
				return rejectionError(reason, fmt.Sprintf("parent page %s", parentID))
			}
		}
		maxPos, err := a.deps.Pages.MaxPosition(dbc, in.NotebookID, parentID)
		if err != nil {
			return err
		}
		created, err := a.deps.Pages.Create(dbc, []*types.Page{{
			ID:           uuid.New(),
			NotebookID:   in.NotebookID,
			OwnerID:      in.OwnerID,
			ParentPageID: parentID,
			Position:     maxPos + 1,
			Title:        title,
			Content:      in.Content,
		}})
		if err != nil {
			return err
		}
		if len(created) == 0 {
			return errors.New("page insert returned no rows")
		}
		out = created[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *pageAggregate) CommitUpdate(ctx context.Context, in domainagg.CommitUpdateInput) (domainagg.CommitUpdateResult, error) {
	const op = "Notes.Page.CommitUpdate"
	var out domainagg.CommitUpdateResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if in.PageID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing page_id", nil)
	}
	if in.ExpectedVersion < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "expected_version must be >= 0", nil)
	}
	edit := notes.Edit{Title: in.Title, Content: in.Content}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		page, err := a.ownedPage(dbc, in.OwnerID, in.PageID)
		if err != nil {
			return err
		}
		if err := RequireVersionMatch(page.Version, in.ExpectedVersion); err != nil {
			return err
		}
		title, content, changed, err := edit.Apply(page)
		if err != nil {
			return ValidationError(err.Error())
		}
		if !changed {
			out.Page = page
			return nil
		}

		snap := notes.BeforeUpdate(page)
		if _, err := a.deps.Versions.Create(dbc, []*types.PageVersion{snap}); err != nil {
			return err
		}
		next := notes.NextVersion(page.Version)
		now := time.Now().UTC()
		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, pageTable, page.ID, page.Version, map[string]any{
			"title":      title,
			"content":    content,
			"version":    next,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "page version changed concurrently"); err != nil {
			return err
		}

		page.Title, page.Content, page.Version, page.UpdatedAt = title, content, next, now
		out.Page = page
		out.Snapshot = snap
		return nil
	})
	if err != nil {
		return domainagg.CommitUpdateResult{}, err
	}
	return out, nil
}

func (a *pageAggregate) ApplyMove(ctx context.Context, in domainagg.ApplyMoveInput) (*types.Page, error) {
	const op = "Notes.Page.ApplyMove"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	if in.PageID == uuid.Nil || in.TargetID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing page_id or target_id", nil)
	}
	rel, ok := notes.ParseMoveRelation(in.Relation)
	if !ok {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown move relation %q", in.Relation), nil)
	}
	if in.PageID == in.TargetID {
		return nil, domainagg.NewError(domainagg.CodeCycleRejected, op, "page cannot be dropped onto itself", nil)
	}

	var out *types.Page
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		page, err := a.ownedPage(dbc, in.OwnerID, in.PageID)
		if err != nil {
			return err
		}
		target, err := a.ownedPage(dbc, in.OwnerID, in.TargetID)
		if err != nil {
			return err
		}
		if target.NotebookID != page.NotebookID {
			return ValidationError("pages belong to different notebooks")
		}
		h, err := a.loadHierarchy(dbc, page.NotebookID)
		if err != nil {
			return err
		}
		dec := notes.PlanMove(h, page.ID, target.ID, rel)
		if !dec.Accepted {
			return rejectionError(dec.Reason, fmt.Sprintf("move %s %s %s", page.ID, rel, target.ID))
		}

		var parent any
		if dec.NewParentID != nil {
			parent = *dec.NewParentID
		}
		if err := a.deps.Pages.UpdateFields(dbc, page.ID, map[string]interface{}{
			"parent_page_id": parent,
		}); err != nil {
			return err
		}
		if err := a.deps.Pages.UpdatePositions(dbc, dec.SiblingOrder); err != nil {
			return err
		}
		out, err = a.deps.Pages.GetByID(dbc, page.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RestoreVersion snapshots the live state first, so every restore adds a
// snapshot row in addition to the new page version.
func (a *pageAggregate) RestoreVersion(ctx context.Context, in domainagg.RestoreVersionInput) (domainagg.RestoreVersionResult, error) {
	const op = "Notes.Page.RestoreVersion"
	var out domainagg.RestoreVersionResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if in.PageID == uuid.Nil || in.VersionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing page_id or version_id", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		page, err := a.ownedPage(dbc, in.OwnerID, in.PageID)
		if err != nil {
			return err
		}
		from, err := a.deps.Versions.GetByID(dbc, in.VersionID)
		if err != nil {
			return err
		}
		plan, err := notes.PlanRestore(page, from)
		if err != nil {
			return NotFoundError(fmt.Sprintf("version %s: %v", in.VersionID, err))
		}
		if _, err := a.deps.Versions.Create(dbc, []*types.PageVersion{plan.Snapshot}); err != nil {
			return err
		}
		now := time.Now().UTC()
		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, pageTable, page.ID, page.Version, map[string]any{
			"title":      plan.Title,
			"content":    plan.Content,
			"version":    plan.NewVersion,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "page version changed concurrently"); err != nil {
			return err
		}

		page.Title, page.Content, page.Version, page.UpdatedAt = plan.Title, plan.Content, plan.NewVersion, now
		out = domainagg.RestoreVersionResult{Page: page, Snapshot: plan.Snapshot, RestoredFrom: plan.RestoredFrom}
		return nil
	})
	if err != nil {
		return domainagg.RestoreVersionResult{}, err
	}
	return out, nil
}

// PruneVersions deletes in batches without an enclosing transaction. When a
// batch fails, the count of rows already removed is returned with the error.
func (a *pageAggregate) PruneVersions(ctx context.Context, in domainagg.PruneVersionsInput) (int, error) {
	const op = "Notes.Page.PruneVersions"
	if err := a.configured(op); err != nil {
		return 0, err
	}
	if in.PageID == uuid.Nil {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "missing page_id", nil)
	}
	if in.KeepLatest < 0 {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "keep_latest must be >= 0", nil)
	}

	deleted := 0
	err := executeBestEffort(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if _, err := a.ownedPage(dbc, in.OwnerID, in.PageID); err != nil {
			return err
		}
		versions, err := a.deps.Versions.ListByPageID(dbc, in.PageID, 0)
		if err != nil {
			return err
		}
		_, pruned := notes.SelectPrunable(versions, in.KeepLatest)
		for start := 0; start < len(pruned); start += pruneBatchSize {
			end := min(start+pruneBatchSize, len(pruned))
			ids := make([]uuid.UUID, 0, end-start)
			for _, v := range pruned[start:end] {
				ids = append(ids, v.ID)
			}
			n, err := a.deps.Versions.FullDeleteByIDs(dbc, ids)
			deleted += int(n)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return deleted, err
}

func (a *pageAggregate) DeletePage(ctx context.Context, in domainagg.DeletePageInput) (domainagg.DeletePageResult, error) {
	const op = "Notes.Page.DeletePage"
	var out domainagg.DeletePageResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if in.PageID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing page_id", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		page, err := a.ownedPage(dbc, in.OwnerID, in.PageID)
		if err != nil {
			return err
		}
		h, err := a.loadHierarchy(dbc, page.NotebookID)
		if err != nil {
			return err
		}
		ids := append([]uuid.UUID{page.ID}, h.Descendants(page.ID)...)
		res, err := a.deletePages(dbc, ids)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return domainagg.DeletePageResult{}, err
	}
	return out, nil
}

func (a *pageAggregate) DeleteNotebook(ctx context.Context, in domainagg.DeleteNotebookInput) (domainagg.DeletePageResult, error) {
	const op = "Notes.Page.DeleteNotebook"
	var out domainagg.DeletePageResult
	if err := a.configured(op); err != nil {
		return out, err
	}
	if in.NotebookID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing notebook_id", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		nb, err := a.deps.Notebooks.GetByID(dbc, in.NotebookID)
		if err != nil {
			return err
		}
		if nb == nil || nb.OwnerID != in.OwnerID {
			return NotFoundError(fmt.Sprintf("notebook not found: %s", in.NotebookID))
		}
		pages, err := a.deps.Pages.ListByNotebookID(dbc, nb.ID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(pages))
		for _, p := range pages {
			ids = append(ids, p.ID)
		}
		res, err := a.deletePages(dbc, ids)
		if err != nil {
			return err
		}
		if err := a.deps.Notebooks.FullDeleteByIDs(dbc, []uuid.UUID{nb.ID}); err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return domainagg.DeletePageResult{}, err
	}
	return out, nil
}

func (a *pageAggregate) deletePages(dbc dbctx.Context, ids []uuid.UUID) (domainagg.DeletePageResult, error) {
	res := domainagg.DeletePageResult{PageIDs: ids}
	if len(ids) == 0 {
		return res, nil
	}
	n, err := a.deps.Versions.FullDeleteByPageIDs(dbc, ids)
	if err != nil {
		return res, err
	}
	res.DeletedVersions = int(n)
	if _, err := a.deps.Pages.FullDeleteByIDs(dbc, ids); err != nil {
		return res, err
	}
	return res, nil
}

// ownedPage hides pages of other owners behind not found.
func (a *pageAggregate) ownedPage(dbc dbctx.Context, ownerID, pageID uuid.UUID) (*types.Page, error) {
	page, err := a.deps.Pages.GetByID(dbc, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil || page.ID == uuid.Nil || page.OwnerID != ownerID {
		return nil, NotFoundError(fmt.Sprintf("page not found: %s", pageID))
	}
	return page, nil
}

func (a *pageAggregate) loadHierarchy(dbc dbctx.Context, notebookID uuid.UUID) (*notes.Hierarchy, error) {
	pages, err := a.deps.Pages.ListByNotebookID(dbc, notebookID)
	if err != nil {
		return nil, err
	}
	return notes.BuildHierarchy(pages), nil
}

func rejectionError(reason notes.RejectReason, subject string) error {
	switch reason {
	case notes.RejectSelfDrop, notes.RejectCycle:
		return CycleRejectedError(fmt.Sprintf("%s: %s", subject, reason))
	case notes.RejectUnknownPage:
		return NotFoundError(fmt.Sprintf("%s: %s", subject, reason))
	default:
		return ValidationError(fmt.Sprintf("%s: %s", subject, reason))
	}
}
