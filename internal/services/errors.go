package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/notebook-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/notebook-backend/internal/domain/aggregates"
	"github.com/yungbote/notebook-backend/internal/platform/ctxutil"
)

func requireOwner(ctx context.Context, op string) (uuid.UUID, error) {
	owner := ctxutil.OwnerID(ctx)
	if owner == uuid.Nil {
		return uuid.Nil, domainagg.NewError(domainagg.CodeValidation, op, "missing owner in request context", nil)
	}
	return owner, nil
}

func notFound(op, what string, id uuid.UUID) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, what+" not found: "+id.String(), nil)
}

func validation(op, msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
}

// readErr gives read-path store failures the same codes as writes.
func readErr(op string, err error) error {
	return aggregates.MapError(op, err)
}
