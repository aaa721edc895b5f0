package realtime

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPageCreated   EventType = "page.created"
	EventPageUpdated   EventType = "page.updated"
	EventPageMoved     EventType = "page.moved"
	EventPageRestored  EventType = "page.restored"
	EventPageDeleted   EventType = "page.deleted"
	EventVersionPruned EventType = "page.versions_pruned"
)

// PageEvent announces a committed change. It never carries page content.
type PageEvent struct {
	Type       EventType   `json:"type"`
	OwnerID    uuid.UUID   `json:"owner_id"`
	NotebookID uuid.UUID   `json:"notebook_id"`
	PageIDs    []uuid.UUID `json:"page_ids"`
	Version    int         `json:"version,omitempty"`
	At         time.Time   `json:"at"`
}
