package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/notebook-backend/internal/domain"
)

func SeedNotebook(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) *types.Notebook {
	tb.Helper()
	nb := &types.Notebook{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Title:   "notebook",
	}
	if err := tx.WithContext(ctx).Create(nb).Error; err != nil {
		tb.Fatalf("seed notebook: %v", err)
	}
	return nb
}

func SeedPage(tb testing.TB, ctx context.Context, tx *gorm.DB, nb *types.Notebook, parentID *uuid.UUID, position int, title string) *types.Page {
	tb.Helper()
	p := &types.Page{
		ID:           uuid.New(),
		NotebookID:   nb.ID,
		OwnerID:      nb.OwnerID,
		ParentPageID: parentID,
		Position:     position,
		Title:        title,
		Content:      title + " body",
		Version:      1,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed page: %v", err)
	}
	return p
}

func SeedPageVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, pageID uuid.UUID, version int, content string) *types.PageVersion {
	tb.Helper()
	v := &types.PageVersion{
		ID:      uuid.New(),
		PageID:  pageID,
		Version: version,
		Title:   "v",
		Content: content,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed page version: %v", err)
	}
	return v
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }
