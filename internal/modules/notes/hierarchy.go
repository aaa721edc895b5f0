package notes

import (
	"github.com/google/uuid"

	types "github.com/yungbote/notebook-backend/internal/domain"
)

// PageNode is one arena slot: the page plus the ids of its children in
// input order. Nodes never point at each other directly.
type PageNode struct {
	Page     *types.Page
	ChildIDs []uuid.UUID
}

// Hierarchy is a forest rebuilt from a flat page list on every read.
type Hierarchy struct {
	nodes  map[uuid.UUID]*PageNode
	index  map[uuid.UUID]int
	parent map[uuid.UUID]uuid.UUID
	roots  []uuid.UUID
}

// BuildHierarchy nests pages under their parents. A page whose parent is
// absent from the input becomes a root, so partial subsets still render.
// Roots and children keep input order. Duplicate ids keep the first
// occurrence; nil pages are skipped.
func BuildHierarchy(pages []*types.Page) *Hierarchy {
	h := &Hierarchy{
		nodes:  make(map[uuid.UUID]*PageNode, len(pages)),
		index:  make(map[uuid.UUID]int, len(pages)),
		parent: make(map[uuid.UUID]uuid.UUID, len(pages)),
	}
	order := make([]uuid.UUID, 0, len(pages))
	for _, p := range pages {
		if p == nil {
			continue
		}
		if _, dup := h.nodes[p.ID]; dup {
			continue
		}
		h.index[p.ID] = len(order)
		h.nodes[p.ID] = &PageNode{Page: p}
		order = append(order, p.ID)
	}

	for _, id := range order {
		p := h.nodes[id].Page
		if p.HasParent() && *p.ParentPageID != id {
			if parent, ok := h.nodes[*p.ParentPageID]; ok {
				parent.ChildIDs = append(parent.ChildIDs, id)
				h.parent[id] = *p.ParentPageID
				continue
			}
		}
		h.roots = append(h.roots, id)
	}

	h.detachCycles(order)
	return h
}

// detachCycles promotes pages stuck in a stored parent cycle to roots so
// that every input page stays reachable exactly once.
func (h *Hierarchy) detachCycles(order []uuid.UUID) {
	reached := make(map[uuid.UUID]bool, len(order))
	for _, r := range h.roots {
		h.walk(r, func(id uuid.UUID) { reached[id] = true })
	}
	if len(reached) == len(order) {
		return
	}
	for _, id := range order {
		if reached[id] {
			continue
		}
		if pid, ok := h.parent[id]; ok {
			h.nodes[pid].ChildIDs = removeID(h.nodes[pid].ChildIDs, id)
			delete(h.parent, id)
		}
		h.insertRoot(id)
		h.walk(id, func(d uuid.UUID) { reached[d] = true })
	}
}

func (h *Hierarchy) insertRoot(id uuid.UUID) {
	at := len(h.roots)
	for i, r := range h.roots {
		if h.index[r] > h.index[id] {
			at = i
			break
		}
	}
	h.roots = append(h.roots, uuid.Nil)
	copy(h.roots[at+1:], h.roots[at:])
	h.roots[at] = id
}

// walk visits id and its subtree depth-first, pre-order.
func (h *Hierarchy) walk(id uuid.UUID, visit func(uuid.UUID)) {
	if _, ok := h.nodes[id]; !ok {
		return
	}
	seen := map[uuid.UUID]bool{}
	stack := []uuid.UUID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		visit(cur)
		kids := h.nodes[cur].ChildIDs
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// Len is the number of pages in the hierarchy.
func (h *Hierarchy) Len() int { return len(h.nodes) }

// Contains reports whether id is a page of this notebook.
func (h *Hierarchy) Contains(id uuid.UUID) bool {
	_, ok := h.nodes[id]
	return ok
}

// Node returns the node for id, or nil.
func (h *Hierarchy) Node(id uuid.UUID) *PageNode { return h.nodes[id] }

// Roots returns the top-level nodes in sibling order.
func (h *Hierarchy) Roots() []*PageNode { return h.resolve(h.roots) }

// RootIDs returns a copy of the ordered root ids.
func (h *Hierarchy) RootIDs() []uuid.UUID { return append([]uuid.UUID(nil), h.roots...) }

// Children returns the ordered child nodes of id, or nil when id is unknown.
func (h *Hierarchy) Children(id uuid.UUID) []*PageNode {
	n := h.nodes[id]
	if n == nil {
		return nil
	}
	return h.resolve(n.ChildIDs)
}

// Parent returns the in-tree parent. Roots (including orphans) have none.
func (h *Hierarchy) Parent(id uuid.UUID) (uuid.UUID, bool) {
	pid, ok := h.parent[id]
	return pid, ok
}

// SiblingIDs returns the ordered children of parent, or the roots when parent is nil.
func (h *Hierarchy) SiblingIDs(parent *uuid.UUID) []uuid.UUID {
	if parent == nil {
		return h.RootIDs()
	}
	n := h.nodes[*parent]
	if n == nil {
		return nil
	}
	return append([]uuid.UUID(nil), n.ChildIDs...)
}

// Descendants lists the subtree below id (excluding id) in depth-first pre-order.
func (h *Hierarchy) Descendants(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	h.walk(id, func(d uuid.UUID) {
		if d != id {
			out = append(out, d)
		}
	})
	return out
}

// IsDescendant reports whether id sits strictly below ancestor.
func (h *Hierarchy) IsDescendant(ancestor, id uuid.UUID) bool {
	if ancestor == id {
		return false
	}
	found := false
	h.walk(ancestor, func(d uuid.UUID) {
		if d == id {
			found = true
		}
	})
	return found
}

func (h *Hierarchy) resolve(ids []uuid.UUID) []*PageNode {
	out := make([]*PageNode, 0, len(ids))
	for _, id := range ids {
		if n := h.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// TreeNode is the nested, JSON friendly projection of a Hierarchy.
type TreeNode struct {
	*types.Page
	Children []*TreeNode `json:"children"`
}

// Tree projects the hierarchy into nested nodes rooted at Roots.
func (h *Hierarchy) Tree() []*TreeNode {
	out := make([]*TreeNode, 0, len(h.roots))
	for _, r := range h.roots {
		out = append(out, h.project(r))
	}
	return out
}

func (h *Hierarchy) project(id uuid.UUID) *TreeNode {
	n := h.nodes[id]
	tn := &TreeNode{Page: n.Page, Children: make([]*TreeNode, 0, len(n.ChildIDs))}
	for _, c := range n.ChildIDs {
		tn.Children = append(tn.Children, h.project(c))
	}
	return tn
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
