package aggregates_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"github.com/yungbote/notebook-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/notebook-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/notebook-backend/internal/data/repos"
	repotest "github.com/yungbote/notebook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/notebook-backend/internal/domain"
	domainagg "github.com/yungbote/notebook-backend/internal/domain/aggregates"
	"github.com/yungbote/notebook-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

type pageFixture struct {
	db       *gorm.DB
	agg      domainagg.PageAggregate
	hooks    *aggtest.HooksRecorder
	pages    repos.PageRepo
	versions repos.PageVersionRepo
	nb       *types.Notebook
}

func newPageFixture(t *testing.T) *pageFixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	hooks := &aggtest.HooksRecorder{}
	f := &pageFixture{
		db:       db,
		hooks:    hooks,
		pages:    repos.NewPageRepo(db, log),
		versions: repos.NewPageVersionRepo(db, log),
		nb:       repotest.SeedNotebook(t, context.Background(), db, uuid.New()),
	}
	f.agg = aggregates.NewPageAggregate(aggregates.PageAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks},
		Notebooks: repos.NewNotebookRepo(db, log),
		Pages:     f.pages,
		Versions:  f.versions,
	})
	return f
}

func (f *pageFixture) create(t *testing.T, parent *types.Page, title string) *types.Page {
	t.Helper()
	in := domainagg.CreatePageInput{OwnerID: f.nb.OwnerID, NotebookID: f.nb.ID, Title: title, Content: title}
	if parent != nil {
		in.ParentPageID = &parent.ID
	}
	p, err := f.agg.CreatePage(context.Background(), in)
	if err != nil {
		t.Fatalf("CreatePage(%s): %v", title, err)
	}
	return p
}

func (f *pageFixture) commit(t *testing.T, p *types.Page, content string) domainagg.CommitUpdateResult {
	t.Helper()
	res, err := f.agg.CommitUpdate(context.Background(), domainagg.CommitUpdateInput{
		OwnerID: f.nb.OwnerID,
		PageID:  p.ID,
		Content: &content,
	})
	if err != nil {
		t.Fatalf("CommitUpdate(%q): %v", content, err)
	}
	return res
}

func (f *pageFixture) aggregateWith(t *testing.T, base aggregates.BaseDeps, versions repos.PageVersionRepo) domainagg.PageAggregate {
	t.Helper()
	log := repotest.Logger(t)
	base.Log = log
	return aggregates.NewPageAggregate(aggregates.PageAggregateDeps{
		Base:      base,
		Notebooks: repos.NewNotebookRepo(f.db, log),
		Pages:     f.pages,
		Versions:  versions,
	})
}

// failingDeleteVersions fails the failOnCall-th FullDeleteByIDs.
type failingDeleteVersions struct {
	repos.PageVersionRepo
	failOnCall int
	calls      int
	err        error
}

func (r *failingDeleteVersions) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	r.calls++
	if r.calls == r.failOnCall {
		return 0, r.err
	}
	return r.PageVersionRepo.FullDeleteByIDs(dbc, ids)
}

func (f *pageFixture) reload(t *testing.T, id uuid.UUID) *types.Page {
	t.Helper()
	p, err := f.pages.GetByID(dbctx.Context{Ctx: context.Background()}, id)
	if err != nil || p == nil {
		t.Fatalf("reload %s: page=%v err=%v", id, p, err)
	}
	return p
}

func TestPageAggregateCreatePageAppendsUnderParent(t *testing.T) {
	f := newPageFixture(t)
	root := f.create(t, nil, "root")
	a := f.create(t, root, "a")
	b := f.create(t, root, "b")

	if root.Version != 1 || a.Version != 1 {
		t.Fatalf("initial version: want=1 got root=%d a=%d", root.Version, a.Version)
	}
	if a.ParentPageID == nil || *a.ParentPageID != root.ID {
		t.Fatalf("parent of a: want=%s got=%v", root.ID, a.ParentPageID)
	}
	if a.Position != 0 || b.Position != 1 {
		t.Fatalf("positions: want=0,1 got=%d,%d", a.Position, b.Position)
	}
}

func TestPageAggregateCreatePageRejectsBadInput(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	_, err := f.agg.CreatePage(ctx, domainagg.CreatePageInput{OwnerID: f.nb.OwnerID, NotebookID: f.nb.ID, Title: "   "})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("empty title: want=validation got=%v", err)
	}
	missing := uuid.New()
	_, err = f.agg.CreatePage(ctx, domainagg.CreatePageInput{OwnerID: f.nb.OwnerID, NotebookID: f.nb.ID, ParentPageID: &missing, Title: "x"})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown parent: want=not_found got=%v", err)
	}
	_, err = f.agg.CreatePage(ctx, domainagg.CreatePageInput{OwnerID: uuid.New(), NotebookID: f.nb.ID, Title: "x"})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign notebook: want=not_found got=%v", err)
	}
}

func TestPageAggregateCommitUpdateSnapshotsPriorState(t *testing.T) {
	f := newPageFixture(t)
	ctx := dbctx.Context{Ctx: context.Background()}
	p := f.create(t, nil, "page")

	for i, content := range []string{"one", "two", "three"} {
		res := f.commit(t, p, content)
		if res.Page.Version != i+2 {
			t.Fatalf("version after commit %d: want=%d got=%d", i, i+2, res.Page.Version)
		}
		if res.Snapshot == nil || res.Snapshot.Version != i+1 {
			t.Fatalf("snapshot after commit %d: %+v", i, res.Snapshot)
		}
	}

	got := f.reload(t, p.ID)
	if got.Version != 4 || got.Content != "three" {
		t.Fatalf("page: want=v4/three got=v%d/%s", got.Version, got.Content)
	}
	versions, err := f.versions.ListByPageID(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("ListByPageID: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("snapshot count: want=3 got=%d", len(versions))
	}
	want := []string{"two", "one", "page"}
	for i, v := range versions {
		if v.Version != 3-i || v.Content != want[i] {
			t.Fatalf("snapshot[%d]: want=v%d/%s got=v%d/%s", i, 3-i, want[i], v.Version, v.Content)
		}
	}
}

func TestPageAggregateCommitUpdateNoChangeKeepsVersion(t *testing.T) {
	f := newPageFixture(t)
	p := f.create(t, nil, "same")

	res := f.commit(t, p, "same")
	if res.Snapshot != nil || res.Page.Version != 1 {
		t.Fatalf("no-op commit: snapshot=%v version=%d", res.Snapshot, res.Page.Version)
	}
}

func TestPageAggregateCommitUpdateStaleVersionConflicts(t *testing.T) {
	f := newPageFixture(t)
	p := f.create(t, nil, "page")
	f.commit(t, p, "first")

	content := "second"
	_, err := f.agg.CommitUpdate(context.Background(), domainagg.CommitUpdateInput{
		OwnerID:         f.nb.OwnerID,
		PageID:          p.ID,
		Content:         &content,
		ExpectedVersion: 1,
	})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("stale write: want=conflict got=%v", err)
	}
	if len(f.hooks.Conflicts) != 1 {
		t.Fatalf("conflict counter: want=1 got=%v", f.hooks.Conflicts)
	}
	if got := f.reload(t, p.ID); got.Version != 2 || got.Content != "first" {
		t.Fatalf("page after conflict: v%d/%s", got.Version, got.Content)
	}
}

func TestPageAggregateCommitUpdateDuplicateSnapshotConflicts(t *testing.T) {
	f := newPageFixture(t)
	p := f.create(t, nil, "page")
	// A snapshot for v1 already exists, as if another writer got there first.
	repotest.SeedPageVersion(t, context.Background(), f.db, p.ID, 1, "racer")

	content := "mine"
	_, err := f.agg.CommitUpdate(context.Background(), domainagg.CommitUpdateInput{OwnerID: f.nb.OwnerID, PageID: p.ID, Content: &content})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("duplicate snapshot: want=conflict got=%v", err)
	}
	if got := f.reload(t, p.ID); got.Version != 1 {
		t.Fatalf("page version must be untouched, got=%d", got.Version)
	}
}

func TestPageAggregateRestoreCreatesNewVersion(t *testing.T) {
	f := newPageFixture(t)
	ctx := dbctx.Context{Ctx: context.Background()}
	p := f.create(t, nil, "page")
	f.commit(t, p, "a")
	f.commit(t, p, "b")
	f.commit(t, p, "c")

	// page is v4 "c"; snapshots v1 "page", v2 "a", v3 "b".
	v2, err := f.versions.GetByPageAndVersion(ctx, p.ID, 2)
	if err != nil || v2 == nil {
		t.Fatalf("GetByPageAndVersion: v=%v err=%v", v2, err)
	}
	res, err := f.agg.RestoreVersion(context.Background(), domainagg.RestoreVersionInput{
		OwnerID:   f.nb.OwnerID,
		PageID:    p.ID,
		VersionID: v2.ID,
	})
	if err != nil {
		t.Fatalf("RestoreVersion: %v", err)
	}
	if res.Page.Version != 5 || res.Page.Content != "a" || res.RestoredFrom != 2 {
		t.Fatalf("restore result: v%d/%s from=%d", res.Page.Version, res.Page.Content, res.RestoredFrom)
	}
	if res.Snapshot == nil || res.Snapshot.Version != 4 || res.Snapshot.Content != "c" {
		t.Fatalf("restore snapshot: %+v", res.Snapshot)
	}
	if v5, _ := f.versions.GetByPageAndVersion(ctx, p.ID, 5); v5 != nil {
		t.Fatalf("no snapshot should exist for the live version")
	}
	if got := f.reload(t, p.ID); got.Version != 5 || got.Content != "a" {
		t.Fatalf("page after restore: v%d/%s", got.Version, got.Content)
	}
}

func TestPageAggregateRestoreRejectsForeignVersion(t *testing.T) {
	f := newPageFixture(t)
	p := f.create(t, nil, "p")
	q := f.create(t, nil, "q")
	f.commit(t, q, "q2")
	qv, err := f.versions.GetByPageAndVersion(dbctx.Context{Ctx: context.Background()}, q.ID, 1)
	if err != nil || qv == nil {
		t.Fatalf("seed version: %v", err)
	}

	_, err = f.agg.RestoreVersion(context.Background(), domainagg.RestoreVersionInput{OwnerID: f.nb.OwnerID, PageID: p.ID, VersionID: qv.ID})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign version: want=not_found got=%v", err)
	}
	_, err = f.agg.RestoreVersion(context.Background(), domainagg.RestoreVersionInput{OwnerID: f.nb.OwnerID, PageID: p.ID, VersionID: uuid.New()})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing version: want=not_found got=%v", err)
	}
}

func TestPageAggregateApplyMove(t *testing.T) {
	f := newPageFixture(t)
	a := f.create(t, nil, "A")
	b := f.create(t, a, "B")
	c := f.create(t, b, "C")
	d := f.create(t, nil, "D")
	ctx := context.Background()

	t.Run("rejects drop onto descendant", func(t *testing.T) {
		_, err := f.agg.ApplyMove(ctx, domainagg.ApplyMoveInput{OwnerID: f.nb.OwnerID, PageID: a.ID, TargetID: c.ID, Relation: "child"})
		if !domainagg.IsCode(err, domainagg.CodeCycleRejected) {
			t.Fatalf("want=cycle_rejected got=%v", err)
		}
		if got := f.reload(t, a.ID); got.ParentPageID != nil {
			t.Fatalf("A must stay a root, got parent=%v", got.ParentPageID)
		}
	})

	t.Run("rejects self drop", func(t *testing.T) {
		_, err := f.agg.ApplyMove(ctx, domainagg.ApplyMoveInput{OwnerID: f.nb.OwnerID, PageID: b.ID, TargetID: b.ID, Relation: "child"})
		if !domainagg.IsCode(err, domainagg.CodeCycleRejected) {
			t.Fatalf("want=cycle_rejected got=%v", err)
		}
	})

	t.Run("rejects unknown relation", func(t *testing.T) {
		_, err := f.agg.ApplyMove(ctx, domainagg.ApplyMoveInput{OwnerID: f.nb.OwnerID, PageID: b.ID, TargetID: d.ID, Relation: "inside"})
		if !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("want=validation got=%v", err)
		}
	})

	t.Run("moves subtree under another root", func(t *testing.T) {
		moved, err := f.agg.ApplyMove(ctx, domainagg.ApplyMoveInput{OwnerID: f.nb.OwnerID, PageID: b.ID, TargetID: d.ID, Relation: "child"})
		if err != nil {
			t.Fatalf("ApplyMove: %v", err)
		}
		if moved.ParentPageID == nil || *moved.ParentPageID != d.ID {
			t.Fatalf("B parent: want=%s got=%v", d.ID, moved.ParentPageID)
		}
		if moved.Version != b.Version {
			t.Fatalf("move must not bump version: want=%d got=%d", b.Version, moved.Version)
		}
		if got := f.reload(t, c.ID); got.ParentPageID == nil || *got.ParentPageID != b.ID {
			t.Fatalf("C must follow B, got parent=%v", got.ParentPageID)
		}
	})

	t.Run("before places page as previous root sibling", func(t *testing.T) {
		moved, err := f.agg.ApplyMove(ctx, domainagg.ApplyMoveInput{OwnerID: f.nb.OwnerID, PageID: c.ID, TargetID: a.ID, Relation: "before"})
		if err != nil {
			t.Fatalf("ApplyMove: %v", err)
		}
		if moved.ParentPageID != nil {
			t.Fatalf("C should be a root, got parent=%v", moved.ParentPageID)
		}
		roots, err := f.pages.ListByNotebookID(dbctx.Context{Ctx: ctx}, f.nb.ID)
		if err != nil {
			t.Fatalf("ListByNotebookID: %v", err)
		}
		var order []string
		for _, p := range roots {
			if p.ParentPageID == nil {
				order = append(order, p.Title)
			}
		}
		if len(order) != 3 || order[0] != "C" || order[1] != "A" || order[2] != "D" {
			t.Fatalf("root order: want=[C A D] got=%v", order)
		}
	})
}

func TestPageAggregatePruneVersionsKeepsNewest(t *testing.T) {
	f := newPageFixture(t)
	ctx := dbctx.Context{Ctx: context.Background()}
	p := f.create(t, nil, "page")
	for _, c := range []string{"1", "2", "3", "4", "5"} {
		f.commit(t, p, c)
	}

	n, err := f.agg.PruneVersions(context.Background(), domainagg.PruneVersionsInput{OwnerID: f.nb.OwnerID, PageID: p.ID, KeepLatest: 2})
	if err != nil {
		t.Fatalf("PruneVersions: %v", err)
	}
	if n != 3 {
		t.Fatalf("deleted: want=3 got=%d", n)
	}
	left, err := f.versions.ListByPageID(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("ListByPageID: %v", err)
	}
	if len(left) != 2 || left[0].Version != 5 || left[1].Version != 4 {
		t.Fatalf("remaining snapshots: %+v", left)
	}

	n, err = f.agg.PruneVersions(context.Background(), domainagg.PruneVersionsInput{OwnerID: f.nb.OwnerID, PageID: p.ID, KeepLatest: 10})
	if err != nil || n != 0 {
		t.Fatalf("keep above total: n=%d err=%v", n, err)
	}

	_, err = f.agg.PruneVersions(context.Background(), domainagg.PruneVersionsInput{OwnerID: f.nb.OwnerID, PageID: p.ID, KeepLatest: -1})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("negative keep: want=validation got=%v", err)
	}
}

func TestPageAggregateDeletePageCascades(t *testing.T) {
	f := newPageFixture(t)
	ctx := dbctx.Context{Ctx: context.Background()}
	a := f.create(t, nil, "A")
	b := f.create(t, a, "B")
	c := f.create(t, b, "C")
	keep := f.create(t, nil, "keep")
	f.commit(t, b, "b2")
	f.commit(t, c, "c2")
	f.commit(t, keep, "k2")

	res, err := f.agg.DeletePage(context.Background(), domainagg.DeletePageInput{OwnerID: f.nb.OwnerID, PageID: a.ID})
	if err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if len(res.PageIDs) != 3 || res.DeletedVersions != 2 {
		t.Fatalf("delete result: pages=%d versions=%d", len(res.PageIDs), res.DeletedVersions)
	}
	left, err := f.pages.ListByNotebookID(ctx, f.nb.ID)
	if err != nil {
		t.Fatalf("ListByNotebookID: %v", err)
	}
	if len(left) != 1 || left[0].ID != keep.ID {
		t.Fatalf("remaining pages: %+v", left)
	}
	if n, _ := f.versions.CountByPageID(ctx, keep.ID); n != 1 {
		t.Fatalf("unrelated snapshots must survive, got=%d", n)
	}
}

func TestPageAggregateDeleteNotebook(t *testing.T) {
	f := newPageFixture(t)
	ctx := dbctx.Context{Ctx: context.Background()}
	a := f.create(t, nil, "A")
	f.create(t, a, "B")
	f.commit(t, a, "a2")

	_, err := f.agg.DeleteNotebook(context.Background(), domainagg.DeleteNotebookInput{OwnerID: uuid.New(), NotebookID: f.nb.ID})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign owner: want=not_found got=%v", err)
	}
	res, err := f.agg.DeleteNotebook(context.Background(), domainagg.DeleteNotebookInput{OwnerID: f.nb.OwnerID, NotebookID: f.nb.ID})
	if err != nil {
		t.Fatalf("DeleteNotebook: %v", err)
	}
	if len(res.PageIDs) != 2 || res.DeletedVersions != 1 {
		t.Fatalf("delete result: %+v", res)
	}
	if left, _ := f.pages.ListByNotebookID(ctx, f.nb.ID); len(left) != 0 {
		t.Fatalf("pages left: %d", len(left))
	}
}

func TestPageAggregateStoreOutageIsUnavailable(t *testing.T) {
	f := newPageFixture(t)
	p := f.create(t, nil, "page")
	hooks := &aggtest.HooksRecorder{}
	runner := &aggtest.FaultyTxRunner{FailBegin: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}
	agg := f.aggregateWith(t, aggregates.BaseDeps{DB: f.db, Runner: runner, Hooks: hooks}, f.versions)

	content := "x"
	_, err := agg.CommitUpdate(context.Background(), domainagg.CommitUpdateInput{OwnerID: f.nb.OwnerID, PageID: p.ID, Content: &content})
	if !domainagg.IsCode(err, domainagg.CodeUnavailable) {
		t.Fatalf("want=unavailable got=%v", err)
	}
	if begins, _, _ := runner.Counts(); len(hooks.Unavailable) != 1 || begins != 1 {
		t.Fatalf("unavailable=%v begin=%d", hooks.Unavailable, begins)
	}
}

func TestPageAggregateCommitFailureRollsBackSnapshot(t *testing.T) {
	f := newPageFixture(t)
	ctx := dbctx.Context{Ctx: context.Background()}
	p := f.create(t, nil, "page")

	tp := sdktrace.NewTracerProvider()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	runner := &aggtest.FaultyTxRunner{
		Inner:         aggregates.NewGormTxRunner(f.db),
		FailAfterBody: errors.New("commit failed"),
	}
	agg := f.aggregateWith(t, aggregates.BaseDeps{DB: f.db, Runner: runner}, f.versions)

	content := "lost"
	_, err := agg.CommitUpdate(context.Background(), domainagg.CommitUpdateInput{OwnerID: f.nb.OwnerID, PageID: p.ID, Content: &content})
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("want=internal got=%v", err)
	}
	if _, commits, rollbacks := runner.Counts(); commits != 0 || rollbacks != 1 {
		t.Fatalf("commits=%d rollbacks=%d", commits, rollbacks)
	}
	if !trace.SpanContextFromContext(runner.LastCtx()).IsValid() {
		t.Fatalf("tx should run under the operation span")
	}
	if got := f.reload(t, p.ID); got.Version != 1 || got.Content != "page" {
		t.Fatalf("page must be untouched: v%d/%s", got.Version, got.Content)
	}
	if n, err := f.versions.CountByPageID(ctx, p.ID); err != nil || n != 0 {
		t.Fatalf("snapshot must be rolled back: n=%d err=%v", n, err)
	}
}

func TestPageAggregatePruneVersionsReportsPartialProgress(t *testing.T) {
	f := newPageFixture(t)
	ctx := dbctx.Context{Ctx: context.Background()}
	p := f.create(t, nil, "page")
	for v := 1; v <= 450; v++ {
		repotest.SeedPageVersion(t, context.Background(), f.db, p.ID, v, "c")
	}

	hooks := &aggtest.HooksRecorder{}
	versions := &failingDeleteVersions{
		PageVersionRepo: f.versions,
		failOnCall:      2,
		err:             &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
	}
	agg := f.aggregateWith(t, aggregates.BaseDeps{DB: f.db, Hooks: hooks}, versions)

	n, err := agg.PruneVersions(context.Background(), domainagg.PruneVersionsInput{OwnerID: f.nb.OwnerID, PageID: p.ID, KeepLatest: 10})
	if !domainagg.IsCode(err, domainagg.CodeUnavailable) {
		t.Fatalf("want=unavailable got=%v", err)
	}
	if n != 200 {
		t.Fatalf("deleted before failure: want=200 got=%d", n)
	}
	if versions.calls != 2 {
		t.Fatalf("delete batches attempted: want=2 got=%d", versions.calls)
	}
	left, err := f.versions.CountByPageID(ctx, p.ID)
	if err != nil {
		t.Fatalf("CountByPageID: %v", err)
	}
	if left != 250 {
		t.Fatalf("remaining snapshots: want=250 got=%d", left)
	}
	if len(hooks.Unavailable) != 1 {
		t.Fatalf("unavailable hooks: %v", hooks.Unavailable)
	}
}

func TestPageAggregateRestoreSameVersionTwice(t *testing.T) {
	f := newPageFixture(t)
	ctx := dbctx.Context{Ctx: context.Background()}
	p := f.create(t, nil, "page")
	f.commit(t, p, "a")
	f.commit(t, p, "b")
	f.commit(t, p, "c")

	v2, err := f.versions.GetByPageAndVersion(ctx, p.ID, 2)
	if err != nil || v2 == nil {
		t.Fatalf("GetByPageAndVersion: v=%v err=%v", v2, err)
	}
	in := domainagg.RestoreVersionInput{OwnerID: f.nb.OwnerID, PageID: p.ID, VersionID: v2.ID}

	first, err := f.agg.RestoreVersion(context.Background(), in)
	if err != nil {
		t.Fatalf("first restore: %v", err)
	}
	second, err := f.agg.RestoreVersion(context.Background(), in)
	if err != nil {
		t.Fatalf("second restore: %v", err)
	}
	if first.Page.Version != 5 || second.Page.Version != 6 {
		t.Fatalf("page versions: want=5,6 got=%d,%d", first.Page.Version, second.Page.Version)
	}
	if second.Page.Content != "a" || second.RestoredFrom != 2 {
		t.Fatalf("second restore: %s from=%d", second.Page.Content, second.RestoredFrom)
	}
	if first.Snapshot.Version != 4 || second.Snapshot.Version != 5 {
		t.Fatalf("snapshot versions: want=4,5 got=%d,%d", first.Snapshot.Version, second.Snapshot.Version)
	}
	if second.Snapshot.Content != "a" {
		t.Fatalf("second snapshot should hold the first restore: %s", second.Snapshot.Content)
	}

	all, err := f.versions.ListByPageID(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("ListByPageID: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("snapshot count: want=5 got=%d", len(all))
	}
	// ListByPageID is newest first.
	for i := 1; i < len(all); i++ {
		if all[i-1].Version <= all[i].Version {
			t.Fatalf("snapshot versions not strictly decreasing at %d: %d then %d", i, all[i-1].Version, all[i].Version)
		}
	}
	if all[0].Version != 5 || all[len(all)-1].Version != 1 {
		t.Fatalf("snapshot range: %d..%d", all[len(all)-1].Version, all[0].Version)
	}
}

func TestPageAggregateContract(t *testing.T) {
	f := newPageFixture(t)
	if !f.agg.Contract().RequiresAggregateOwnedTx() {
		t.Fatalf("page aggregate must own its write transactions")
	}
}
