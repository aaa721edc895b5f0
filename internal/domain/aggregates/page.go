package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/notebook-backend/internal/domain/notes"
)

var PageAggregateContract = Contract{
	Name:             "Notes.PageAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns page tree acyclicity and the snapshot/version numbering of page history.",
}

// PageAggregate owns page write invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeCycleRejected, CodeConflict, CodeUnavailable, CodeInternal.
type PageAggregate interface {
	Aggregate

	// CreatePage inserts a page at version 1 under an optional parent of the same notebook.
	CreatePage(ctx context.Context, in CreatePageInput) (*notes.Page, error)

	// CommitUpdate snapshots the current page state and writes the new
	// title/content with version+1, guarded by compare-and-set.
	CommitUpdate(ctx context.Context, in CommitUpdateInput) (CommitUpdateResult, error)

	// ApplyMove re-plans the move against the committed tree and persists
	// the new parent and sibling order.
	ApplyMove(ctx context.Context, in ApplyMoveInput) (*notes.Page, error)

	// RestoreVersion reinstates a snapshot's title/content as a new version.
	RestoreVersion(ctx context.Context, in RestoreVersionInput) (RestoreVersionResult, error)

	// PruneVersions keeps only the KeepLatest highest-numbered snapshots.
	PruneVersions(ctx context.Context, in PruneVersionsInput) (int, error)

	// DeletePage removes the page, its descendants and all their snapshots.
	DeletePage(ctx context.Context, in DeletePageInput) (DeletePageResult, error)

	// DeleteNotebook removes a notebook with every page and snapshot in it.
	DeleteNotebook(ctx context.Context, in DeleteNotebookInput) (DeletePageResult, error)
}

type CreatePageInput struct {
	OwnerID      uuid.UUID
	NotebookID   uuid.UUID
	ParentPageID *uuid.UUID
	Title        string
	Content      string
}

type CommitUpdateInput struct {
	OwnerID uuid.UUID
	PageID  uuid.UUID
	// Nil fields are left unchanged.
	Title   *string
	Content *string
	// ExpectedVersion 0 means "whatever version is read inside the transaction".
	ExpectedVersion int
}

type CommitUpdateResult struct {
	Page     *notes.Page
	Snapshot *notes.PageVersion // nil when nothing changed
}

type ApplyMoveInput struct {
	OwnerID  uuid.UUID
	PageID   uuid.UUID
	TargetID uuid.UUID
	Relation string
}

type RestoreVersionInput struct {
	OwnerID   uuid.UUID
	PageID    uuid.UUID
	VersionID uuid.UUID
}

type RestoreVersionResult struct {
	Page         *notes.Page
	Snapshot     *notes.PageVersion
	RestoredFrom int
}

type PruneVersionsInput struct {
	OwnerID    uuid.UUID
	PageID     uuid.UUID
	KeepLatest int
}

type DeletePageInput struct {
	OwnerID uuid.UUID
	PageID  uuid.UUID
}

type DeletePageResult struct {
	PageIDs         []uuid.UUID
	DeletedVersions int
}

type DeleteNotebookInput struct {
	OwnerID    uuid.UUID
	NotebookID uuid.UUID
}
