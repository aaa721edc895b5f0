package aggregates

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/notebook-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_TaggedErrors(t *testing.T) {
	cases := []struct {
		in   error
		want domainagg.ErrorCode
	}{
		{ValidationError("bad input"), domainagg.CodeValidation},
		{NotFoundError("gone"), domainagg.CodeNotFound},
		{CycleRejectedError("loop"), domainagg.CodeCycleRejected},
		{ConflictError("stale"), domainagg.CodeConflict},
		{UnavailableError("down"), domainagg.CodeUnavailable},
		{gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		{context.DeadlineExceeded, domainagg.CodeUnavailable},
		{errors.New("something odd"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		err := MapError("op", tc.in)
		if !domainagg.IsCode(err, tc.want) {
			t.Fatalf("%v: want=%s got=%q", tc.in, tc.want, domainagg.CodeOf(err))
		}
	}
}

func TestMapError_PgCodes(t *testing.T) {
	cases := map[string]domainagg.ErrorCode{
		"23505": domainagg.CodeConflict,
		"40001": domainagg.CodeUnavailable,
		"23503": domainagg.CodeNotFound,
		"08006": domainagg.CodeUnavailable,
		"57P01": domainagg.CodeUnavailable,
	}
	for code, want := range cases {
		err := MapError("op", fmt.Errorf("insert: %w", &pgconn.PgError{Code: code}))
		if !domainagg.IsCode(err, want) {
			t.Fatalf("pg %s: want=%s got=%q", code, want, domainagg.CodeOf(err))
		}
	}
}

func TestMapError_SQLiteMessages(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: page_version.page_id, page_version.version"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("unique: want=conflict got=%q", domainagg.CodeOf(err))
	}
	err = MapError("op", errors.New("database is locked"))
	if !domainagg.IsCode(err, domainagg.CodeUnavailable) {
		t.Fatalf("locked: want=unavailable got=%q", domainagg.CodeOf(err))
	}
}

func TestMapError_NetworkError(t *testing.T) {
	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
	err := MapError("op", netErr)
	if !domainagg.IsCode(err, domainagg.CodeUnavailable) {
		t.Fatalf("want=unavailable got=%q", domainagg.CodeOf(err))
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeUnavailable, "op", "down", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}
