package bus

import (
	"context"

	"github.com/yungbote/notebook-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, ev realtime.PageEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev realtime.PageEvent)) error
	Close() error
}

type noopBus struct{}

// NewNoopBus drops every event. Used when REDIS_ADDR is not configured.
func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, realtime.PageEvent) error { return nil }

func (noopBus) StartForwarder(context.Context, func(realtime.PageEvent)) error { return nil }

func (noopBus) Close() error { return nil }
