package notes

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/notebook-backend/internal/domain"
)

func TestBeforeUpdateCapturesPreUpdateState(t *testing.T) {
	p := &types.Page{ID: uuid.New(), Title: "old", Content: "body", Version: 4}
	snap := BeforeUpdate(p)
	if snap.ID == uuid.Nil || snap.PageID != p.ID {
		t.Fatalf("ids: %+v", snap)
	}
	if snap.Version != 4 || snap.Title != "old" || snap.Content != "body" {
		t.Fatalf("snapshot must copy current state, got %+v", snap)
	}
	if BeforeUpdate(nil) != nil {
		t.Fatalf("nil page yields nil snapshot")
	}
}

func TestNextVersion(t *testing.T) {
	if NextVersion(1) != 2 || NextVersion(9) != 10 {
		t.Fatalf("NextVersion must add one")
	}
	if NextVersion(0) != InitialVersion {
		t.Fatalf("NextVersion(0) must clamp to the initial version")
	}
}

func TestEditApply(t *testing.T) {
	p := &types.Page{Title: "t", Content: "c"}
	blank := "   "
	if _, _, _, err := (Edit{Title: &blank}).Apply(p); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	same := "c"
	if _, _, changed, err := (Edit{Content: &same}).Apply(p); err != nil || changed {
		t.Fatalf("identical content must not count as change: changed=%v err=%v", changed, err)
	}
	title := "  New  "
	got, content, changed, err := (Edit{Title: &title}).Apply(p)
	if err != nil || !changed || got != "New" || content != "c" {
		t.Fatalf("title edit: title=%q content=%q changed=%v err=%v", got, content, changed, err)
	}
}

func TestPlanRestoreCreatesNewVersion(t *testing.T) {
	p := &types.Page{ID: uuid.New(), Title: "t3", Content: "c", Version: 3}
	v1 := &types.PageVersion{ID: uuid.New(), PageID: p.ID, Version: 1, Title: "t1", Content: "a"}
	plan, err := PlanRestore(p, v1)
	if err != nil {
		t.Fatalf("PlanRestore: %v", err)
	}
	if plan.NewVersion != 4 || plan.Content != "a" || plan.Title != "t1" || plan.RestoredFrom != 1 {
		t.Fatalf("plan: %+v", plan)
	}
	if plan.Snapshot.Version != 3 || plan.Snapshot.Content != "c" {
		t.Fatalf("live state must be preserved, got %+v", plan.Snapshot)
	}

	other := &types.PageVersion{ID: uuid.New(), PageID: uuid.New(), Version: 1}
	if _, err := PlanRestore(p, other); !errors.Is(err, ErrVersionPageMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}
