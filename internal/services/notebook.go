package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/notebook-backend/internal/data/repos"
	types "github.com/yungbote/notebook-backend/internal/domain"
	domainagg "github.com/yungbote/notebook-backend/internal/domain/aggregates"
	"github.com/yungbote/notebook-backend/internal/platform/dbctx"
	"github.com/yungbote/notebook-backend/internal/platform/logger"
)

type NotebookService interface {
	Create(ctx context.Context, title string) (*types.Notebook, error)
	List(ctx context.Context) ([]*types.Notebook, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Notebook, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateNotebookInput) (*types.Notebook, error)
	Delete(ctx context.Context, id uuid.UUID) (domainagg.DeletePageResult, error)
}

type UpdateNotebookInput struct {
	Title *string
	// KeepLatestVersions overrides the global retention; 0 clears the override.
	KeepLatestVersions *int
}

type notebookService struct {
	log       *logger.Logger
	notebooks repos.NotebookRepo
	pageAgg   domainagg.PageAggregate
}

func NewNotebookService(log *logger.Logger, notebookRepo repos.NotebookRepo, pageAgg domainagg.PageAggregate) NotebookService {
	serviceLog := log.With("service", "NotebookService")
	return &notebookService{
		log:       serviceLog,
		notebooks: notebookRepo,
		pageAgg:   pageAgg,
	}
}

func (s *notebookService) Create(ctx context.Context, title string) (*types.Notebook, error) {
	const op = "NotebookService.Create"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validation(op, "title must not be empty")
	}
	created, err := s.notebooks.Create(dbctx.Context{Ctx: ctx}, []*types.Notebook{{
		ID:      uuid.New(),
		OwnerID: owner,
		Title:   title,
	}})
	if err != nil {
		return nil, readErr(op, err)
	}
	s.log.Info("notebook created", "notebook_id", created[0].ID, "owner_id", owner)
	return created[0], nil
}

func (s *notebookService) List(ctx context.Context) ([]*types.Notebook, error) {
	const op = "NotebookService.List"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return nil, err
	}
	out, err := s.notebooks.ListByOwner(dbctx.Context{Ctx: ctx}, owner)
	if err != nil {
		return nil, readErr(op, err)
	}
	return out, nil
}

func (s *notebookService) Get(ctx context.Context, id uuid.UUID) (*types.Notebook, error) {
	const op = "NotebookService.Get"
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

func (s *notebookService) Update(ctx context.Context, id uuid.UUID, in UpdateNotebookInput) (*types.Notebook, error) {
	const op = "NotebookService.Update"
	nb, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, validation(op, "title must not be empty")
		}
		updates["title"] = title
	}
	if in.KeepLatestVersions != nil {
		if *in.KeepLatestVersions < 0 {
			return nil, validation(op, "keep_latest_versions must be >= 0")
		}
		settings := nb.DecodeSettings()
		settings.KeepLatestVersions = *in.KeepLatestVersions
		updates["settings"] = types.EncodeSettings(settings)
	}
	if len(updates) == 0 {
		return nb, nil
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.notebooks.UpdateFields(dbc, nb.ID, updates); err != nil {
		return nil, readErr(op, err)
	}
	out, err := s.notebooks.GetByID(dbc, nb.ID)
	if err != nil {
		return nil, readErr(op, err)
	}
	if out == nil {
		return nil, notFound(op, "notebook", id)
	}
	return out, nil
}

func (s *notebookService) Delete(ctx context.Context, id uuid.UUID) (domainagg.DeletePageResult, error) {
	const op = "NotebookService.Delete"
	owner, err := requireOwner(ctx, op)
	if err != nil {
		return domainagg.DeletePageResult{}, err
	}
	res, err := s.pageAgg.DeleteNotebook(ctx, domainagg.DeleteNotebookInput{OwnerID: owner, NotebookID: id})
	if err != nil {
		return res, err
	}
	s.log.Info("notebook deleted", "notebook_id", id, "pages", len(res.PageIDs), "versions", res.DeletedVersions)
	return res, nil
}
