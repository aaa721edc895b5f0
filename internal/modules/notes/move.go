package notes

import (
	"strings"

	"github.com/google/uuid"
)

type MoveRelation string

const (
	MoveBefore MoveRelation = "before"
	MoveAfter  MoveRelation = "after"
	MoveChild  MoveRelation = "child"
)

func ParseMoveRelation(raw string) (MoveRelation, bool) {
	switch r := MoveRelation(strings.ToLower(strings.TrimSpace(raw))); r {
	case MoveBefore, MoveAfter, MoveChild:
		return r, true
	default:
		return "", false
	}
}

type RejectReason string

const (
	RejectSelfDrop        RejectReason = "self_drop"
	RejectCycle           RejectReason = "cycle"
	RejectUnknownPage     RejectReason = "unknown_page"
	RejectInvalidRelation RejectReason = "invalid_relation"
)

// MoveDecision is either an accepted reparent or a rejection reason.
type MoveDecision struct {
	Accepted    bool         `json:"accepted"`
	Reason      RejectReason `json:"reason,omitempty"`
	NewParentID *uuid.UUID   `json:"new_parent_id,omitempty"`
	// SiblingOrder is the full child order of NewParentID (or of the roots)
	// once the dragged page has been placed.
	SiblingOrder []uuid.UUID `json:"sibling_order,omitempty"`
}

func reject(r RejectReason) MoveDecision { return MoveDecision{Reason: r} }

// IsCycle reports rejections that map to CycleRejected.
func (d MoveDecision) IsCycle() bool {
	return d.Reason == RejectSelfDrop || d.Reason == RejectCycle
}

// PlanMove decides where dragged lands when dropped on target. It performs
// no I/O. "before" and "after" make dragged a sibling of target; "child"
// appends it under target.
func PlanMove(h *Hierarchy, draggedID, targetID uuid.UUID, rel MoveRelation) MoveDecision {
	if draggedID == targetID {
		return reject(RejectSelfDrop)
	}
	if h == nil || !h.Contains(draggedID) || !h.Contains(targetID) {
		return reject(RejectUnknownPage)
	}
	if h.IsDescendant(draggedID, targetID) {
		return reject(RejectCycle)
	}

	switch rel {
	case MoveChild:
		parent := targetID
		order := removeID(h.SiblingIDs(&parent), draggedID)
		order = append(order, draggedID)
		return MoveDecision{Accepted: true, NewParentID: &parent, SiblingOrder: order}
	case MoveBefore, MoveAfter:
		var parent *uuid.UUID
		if pid, ok := h.Parent(targetID); ok {
			parent = &pid
		}
		siblings := removeID(h.SiblingIDs(parent), draggedID)
		order := make([]uuid.UUID, 0, len(siblings)+1)
		for _, id := range siblings {
			if id == targetID && rel == MoveBefore {
				order = append(order, draggedID)
			}
			order = append(order, id)
			if id == targetID && rel == MoveAfter {
				order = append(order, draggedID)
			}
		}
		return MoveDecision{Accepted: true, NewParentID: parent, SiblingOrder: order}
	default:
		return reject(RejectInvalidRelation)
	}
}

// ValidateParent checks that pageID may hang under parentID. A nil parent
// (root) is always valid. pageID may be uuid.Nil for a page not yet created.
func ValidateParent(h *Hierarchy, pageID uuid.UUID, parentID *uuid.UUID) (RejectReason, bool) {
	if parentID == nil || *parentID == uuid.Nil {
		return "", true
	}
	if *parentID == pageID {
		return RejectSelfDrop, false
	}
	if h == nil || !h.Contains(*parentID) {
		return RejectUnknownPage, false
	}
	if pageID != uuid.Nil && h.IsDescendant(pageID, *parentID) {
		return RejectCycle, false
	}
	return "", true
}
