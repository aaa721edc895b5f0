package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/notebook-backend/internal/data/aggregates"
	"github.com/yungbote/notebook-backend/internal/platform/dbctx"
)

// FaultyTxRunner wraps a real runner and injects store faults around a page
// write. With a nil Inner the body runs against a context without a tx.
type FaultyTxRunner struct {
	Inner aggregates.TxRunner

	// FailBegin is returned before the body runs.
	FailBegin error
	// FailAfterBody is returned from inside the transaction once the body
	// succeeded, so Inner rolls back everything the body wrote.
	FailAfterBody error

	mu        sync.Mutex
	begins    int
	commits   int
	rollbacks int
	lastCtx   context.Context
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.begins++
	r.lastCtx = ctx
	r.mu.Unlock()

	if r.FailBegin != nil {
		return r.FailBegin
	}
	err := r.run(ctx, func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return r.FailAfterBody
	})
	r.mu.Lock()
	if err != nil {
		r.rollbacks++
	} else {
		r.commits++
	}
	r.mu.Unlock()
	return err
}

func (r *FaultyTxRunner) run(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r.Inner == nil {
		return fn(dbctx.Context{Ctx: ctx})
	}
	return r.Inner.InTx(ctx, fn)
}

// Counts reports begin, commit and rollback totals.
func (r *FaultyTxRunner) Counts() (begins, commits, rollbacks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.begins, r.commits, r.rollbacks
}

// LastCtx is the context handed to the most recent InTx call.
func (r *FaultyTxRunner) LastCtx() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCtx
}
