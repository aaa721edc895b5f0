package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/notebook-backend/internal/data/repos"
	types "github.com/yungbote/notebook-backend/internal/domain"
	domainagg "github.com/yungbote/notebook-backend/internal/domain/aggregates"
	"github.com/yungbote/notebook-backend/internal/modules/notes"
	"github.com/yungbote/notebook-backend/internal/observability"
	"github.com/yungbote/notebook-backend/internal/platform/dbctx"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
	"github.com/yungbote/notebook-backend/internal/realtime"
	"github.com/yungbote/notebook-backend/internal/realtime/bus"
)

// CurrentRef names the live page state in diff requests.
const CurrentRef = "current"

const publishTimeout = 2 * time.Second

type PageService interface {
	Create(ctx context.Context, notebookID uuid.UUID, in CreatePageInput) (*types.Page, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Page, error)
	ListByNotebook(ctx context.Context, notebookID uuid.UUID) ([]*types.Page, error)
	Tree(ctx context.Context, notebookID uuid.UUID) ([]*notes.TreeNode, error)
	Update(ctx context.Context, id uuid.UUID, in UpdatePageInput) (*types.Page, error)
	PlanMove(ctx context.Context, id, targetID uuid.UUID, relation string) (notes.MoveDecision, error)
	Move(ctx context.Context, id, targetID uuid.UUID, relation string) (*types.Page, error)
	Delete(ctx context.Context, id uuid.UUID) (domainagg.DeletePageResult, error)

	ListVersions(ctx context.Context, pageID uuid.UUID, limit int) ([]*types.PageVersion, error)
	GetVersion(ctx context.Context, pageID, versionID uuid.UUID) (*types.PageVersion, error)
	Diff(ctx context.Context, pageID uuid.UUID, fromRef, toRef string) (notes.DiffResult, error)
	Patch(ctx context.Context, pageID uuid.UUID, fromRef, toRef string) ([]byte, error)
	Restore(ctx context.Context, pageID, versionID uuid.UUID) (domainagg.RestoreVersionResult, error)
	Prune(ctx context.Context, pageID uuid.UUID, keepLatest int) (int, error)
}

type CreatePageInput struct {
	Title        string
	Content      string
	ParentPageID *uuid.UUID
}

type UpdatePageInput struct {
	Title           *string
	Content         *string
	ExpectedVersion int
}

type pageService struct {
	log        *logger.Logger
	notebooks  repos.NotebookRepo
	pages      repos.PageRepo
	versions   repos.PageVersionRepo
	pageAgg    domainagg.PageAggregate
	events     bus.Bus
	metrics    *observability.Metrics
	keepLatest int
}

// NewPageService wires page reads to the repos and page writes to the
// aggregate. keepLatest is the global retention (0 = unlimited); a
// notebook's own setting takes precedence.
func NewPageService(
	log *logger.Logger,
	notebookRepo repos.NotebookRepo,
	pageRepo repos.PageRepo,
	versionRepo repos.PageVersionRepo,
	pageAgg domainagg.PageAggregate,
	events bus.Bus,
	metrics *observability.Metrics,
	keepLatest int,
) PageService {
	serviceLog := log.With("service", "PageService")
	if events == nil {
		events = bus.NewNoopBus()
	}
	return &pageService{
		log:        serviceLog,
		notebooks:  notebookRepo,
		pages:      pageRepo,
		versions:   versionRepo,
		pageAgg:    pageAgg,
		events:     events,
		metrics:    metrics,
		keepLatest: keepLatest,
	}
}

func (s *pageService) Create(ctx context.Context, notebookID uuid.UUID, in CreatePageInput) (*types.Page, error) {
	const op = "PageService.Create"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}
	page, err := s.pageAgg.CreatePage(ctx, domainagg.CreatePageInput{
		OwnerID:      owner,
		NotebookID:   notebookID,
		ParentPageID: in.ParentPageID,
		Title:        in.Title,
		Content:      in.Content,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.EventPageCreated, page, page.ID)
	return page, nil
}

func (s *pageService) Get(ctx context.Context, id uuid.UUID) (*types.Page, error) {
	const op = "PageService.Get"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}
	return s.ownedPage(ctx, op, owner, id)
}

func (s *pageService) ListByNotebook(ctx context.Context, notebookID uuid.UUID) ([]*types.Page, error) {
	const op = "PageService.ListByNotebook"
	if _, err := s.ownedNotebook(ctx, op, notebookID); err != nil {
		return nil, err
	}
	pages, err := s.pages.ListByNotebookID(dbctx.Context{Ctx: ctx}, notebookID)
	if err != nil {
		return nil, readErr(op, err)
	}
	return pages, nil
}

func (s *pageService) Tree(ctx context.Context, notebookID uuid.UUID) ([]*notes.TreeNode, error) {
	h, err := s.hierarchy(ctx, notebookID)
	if err != nil {
		return nil, err
	}
	return h.Tree(), nil
}

func (s *pageService) Update(ctx context.Context, id uuid.UUID, in UpdatePageInput) (*types.Page, error) {
	const op = "PageService.Update"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}
	res, err := s.pageAgg.CommitUpdate(ctx, domainagg.CommitUpdateInput{
		OwnerID:         owner,
		PageID:          id,
		Title:           in.Title,
		Content:         in.Content,
		ExpectedVersion: in.ExpectedVersion,
	})
	if err != nil {
		return nil, err
	}
	if res.Snapshot != nil {
		s.publish(ctx, realtime.EventPageUpdated, res.Page, res.Page.ID)
		s.autoPrune(ctx, owner, res.Page)
	}
	return res.Page, nil
}

func (s *pageService) PlanMove(ctx context.Context, id, targetID uuid.UUID, relation string) (notes.MoveDecision, error) {
	const op = "PageService.PlanMove"
	rel, ok := notes.ParseMoveRelation(relation)
	if !ok {
		return notes.MoveDecision{}, validation(op, "relation must be one of before, after, child")
	}
	page, err := s.Get(ctx, id)
	if err != nil {
		return notes.MoveDecision{}, err
	}
	h, err := s.hierarchy(ctx, page.NotebookID)
	if err != nil {
		return notes.MoveDecision{}, err
	}
	return notes.PlanMove(h, id, targetID, rel), nil
}

func (s *pageService) Move(ctx context.Context, id, targetID uuid.UUID, relation string) (*types.Page, error) {
	const op = "PageService.Move"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}
	page, err := s.pageAgg.ApplyMove(ctx, domainagg.ApplyMoveInput{
		OwnerID:  owner,
		PageID:   id,
		TargetID: targetID,
		Relation: relation,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.EventPageMoved, page, page.ID)
	return page, nil
}

func (s *pageService) Delete(ctx context.Context, id uuid.UUID) (domainagg.DeletePageResult, error) {
	const op = "PageService.Delete"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return domainagg.DeletePageResult{}, err
	}
	page, err := s.ownedPage(ctx, op, owner, id)
	if err != nil {
		return domainagg.DeletePageResult{}, err
	}
	res, err := s.pageAgg.DeletePage(ctx, domainagg.DeletePageInput{OwnerID: owner, PageID: id})
	if err != nil {
		return res, err
	}
	s.publish(ctx, realtime.EventPageDeleted, page, res.PageIDs...)
	return res, nil
}

func (s *pageService) ListVersions(ctx context.Context, pageID uuid.UUID, limit int) ([]*types.PageVersion, error) {
	const op = "PageService.ListVersions"
	if _, err := s.Get(ctx, pageID); err != nil {
		return nil, err
	}
	out, err := s.versions.ListByPageID(dbctx.Context{Ctx: ctx}, pageID, limit)
	if err != nil {
		return nil, readErr(op, err)
	}
	return out, nil
}

func (s *pageService) GetVersion(ctx context.Context, pageID, versionID uuid.UUID) (*types.PageVersion, error) {
	const op = "PageService.GetVersion"
	if _, err := s.Get(ctx, pageID); err != nil {
		return nil, err
	}
	return s.versionOf(ctx, op, pageID, versionID)
}

// Diff resolves both refs concurrently. A ref is a version id or
// CurrentRef; an empty toRef means CurrentRef.
func (s *pageService) Diff(ctx context.Context, pageID uuid.UUID, fromRef, toRef string) (notes.DiffResult, error) {
	const op = "PageService.Diff"
	page, err := s.Get(ctx, pageID)
	if err != nil {
		return notes.DiffResult{}, err
	}
	if strings.TrimSpace(toRef) == "" {
		toRef = CurrentRef
	}

	var from, to *types.PageVersion
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.resolveRef(gctx, op, page, fromRef)
		from = v
		return err
	})
	g.Go(func() error {
		v, err := s.resolveRef(gctx, op, page, toRef)
		to = v
		return err
	})
	if err := g.Wait(); err != nil {
		return notes.DiffResult{}, err
	}
	return notes.DiffVersions(from, to), nil
}

func (s *pageService) Patch(ctx context.Context, pageID uuid.UUID, fromRef, toRef string) ([]byte, error) {
	const op = "PageService.Patch"
	res, err := s.Diff(ctx, pageID, fromRef, toRef)
	if err != nil {
		return nil, err
	}
	out, err := notes.UnifiedPatch(pageID.String(), res)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "render patch", err)
	}
	return out, nil
}

func (s *pageService) Restore(ctx context.Context, pageID, versionID uuid.UUID) (domainagg.RestoreVersionResult, error) {
	const op = "PageService.Restore"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return domainagg.RestoreVersionResult{}, err
	}
	res, err := s.pageAgg.RestoreVersion(ctx, domainagg.RestoreVersionInput{
		OwnerID:   owner,
		PageID:    pageID,
		VersionID: versionID,
	})
	if err != nil {
		return res, err
	}
	s.log.Info("page restored", "page_id", pageID, "from_version", res.RestoredFrom, "version", res.Page.Version)
	s.publish(ctx, realtime.EventPageRestored, res.Page, res.Page.ID)
	s.autoPrune(ctx, owner, res.Page)
	return res, nil
}

func (s *pageService) Prune(ctx context.Context, pageID uuid.UUID, keepLatest int) (int, error) {
	const op = "PageService.Prune"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return 0, err
	}
	page, err := s.ownedPage(ctx, op, owner, pageID)
	if err != nil {
		return 0, err
	}
	n, err := s.pageAgg.PruneVersions(ctx, domainagg.PruneVersionsInput{OwnerID: owner, PageID: pageID, KeepLatest: keepLatest})
	s.metrics.AddVersionsPruned(n)
	if n > 0 {
		s.publish(ctx, realtime.EventVersionPruned, page, page.ID)
	}
	return n, err
}

// autoPrune applies retention after a write has committed. Failures are
// logged only; the write itself already succeeded.
func (s *pageService) autoPrune(ctx context.Context, owner uuid.UUID, page *types.Page) {
	if page == nil {
		return
	}
	nb, err := s.notebooks.GetByID(dbctx.Context{Ctx: ctx}, page.NotebookID)
	if err != nil {
		s.log.Warn("retention lookup failed", "page_id", page.ID, "error", err)
		return
	}
	keep := notes.EffectiveRetention(nb, s.keepLatest)
	if keep <= 0 {
		return
	}
	n, err := s.pageAgg.PruneVersions(ctx, domainagg.PruneVersionsInput{OwnerID: owner, PageID: page.ID, KeepLatest: keep})
	s.metrics.AddVersionsPruned(n)
	if err != nil {
		s.log.Warn("auto prune failed", "page_id", page.ID, "deleted", n, "error", err)
		return
	}
	if n > 0 {
		s.log.Debug("auto pruned snapshots", "page_id", page.ID, "deleted", n, "keep", keep)
	}
}

func (s *pageService) publish(ctx context.Context, typ realtime.EventType, page *types.Page, ids ...uuid.UUID) {
	if page == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := s.events.Publish(pctx, realtime.PageEvent{
		Type:       typ,
		OwnerID:    page.OwnerID,
		NotebookID: page.NotebookID,
		PageIDs:    ids,
		Version:    page.Version,
		At:         time.Now().UTC(),
	})
	s.metrics.IncEventPublished(string(typ), err == nil)
	if err != nil {
		s.log.Warn("page event publish failed", "type", typ, "page_id", page.ID, "error", err)
	}
}

func (s *pageService) resolveRef(ctx context.Context, op string, page *types.Page, ref string) (*types.PageVersion, error) {
	ref = strings.TrimSpace(ref)
	if strings.EqualFold(ref, CurrentRef) {
		return notes.CurrentAsVersion(page), nil
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, validation(op, "version ref must be a version id or \""+CurrentRef+"\"")
	}
	return s.versionOf(ctx, op, page.ID, id)
}

func (s *pageService) versionOf(ctx context.Context, op string, pageID, versionID uuid.UUID) (*types.PageVersion, error) {
	v, err := s.versions.GetByID(dbctx.Context{Ctx: ctx}, versionID)
	if err != nil {
		return nil, readErr(op, err)
	}
	if v == nil || v.PageID != pageID {
		return nil, notFound(op, "version", versionID)
	}
	return v, nil
}

func (s *pageService) ownedPage(ctx context.Context, op string, owner, id uuid.UUID) (*types.Page, error) {
	page, err := s.pages.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, readErr(op, err)
	}
	if page == nil || page.OwnerID != owner {
		return nil, notFound(op, "page", id)
	}
	return page, nil
}

func (s *pageService) ownedNotebook(ctx context.Context, op string, id uuid.UUID) (*types.Notebook, error) {
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}
	nb, err := s.notebooks.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, readErr(op, err)
	}
	if nb == nil || nb.OwnerID != owner {
		return nil, notFound(op, "notebook", id)
	}
	return nb, nil
}

func (s *pageService) hierarchy(ctx context.Context, notebookID uuid.UUID) (*notes.Hierarchy, error) {
	pages, err := s.ListByNotebook(ctx, notebookID)
	if err != nil {
		return nil, err
	}
	return notes.BuildHierarchy(pages), nil
}
