package notes

import (
	"strings"

	types "github.com/yungbote/notebook-backend/internal/domain"
)

type DiffKind string

const (
	DiffAdded     DiffKind = "added"
	DiffRemoved   DiffKind = "removed"
	DiffUnchanged DiffKind = "unchanged"
)

// DiffLine carries 1-based line numbers for the sides it appears on.
type DiffLine struct {
	Kind    DiffKind `json:"kind"`
	Text    string   `json:"text"`
	OldLine *int     `json:"old_line,omitempty"`
	NewLine *int     `json:"new_line,omitempty"`
}

type DiffResult struct {
	FromVersion int        `json:"from_version"`
	ToVersion   int        `json:"to_version"`
	Lines       []DiffLine `json:"lines"`
	Added       int        `json:"added"`
	Removed     int        `json:"removed"`
	Unchanged   int        `json:"unchanged"`
}

// SplitLines splits content on "\n" and drops a trailing "\r" from each
// line. Empty content has no lines; a trailing newline yields a final
// empty line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// DiffVersions compares two snapshots line by line.
func DiffVersions(a, b *types.PageVersion) DiffResult {
	var out DiffResult
	var left, right string
	if a != nil {
		out.FromVersion, left = a.Version, a.Content
	}
	if b != nil {
		out.ToVersion, right = b.Version, b.Content
	}
	out.Lines = DiffLines(SplitLines(left), SplitLines(right))
	for _, l := range out.Lines {
		switch l.Kind {
		case DiffAdded:
			out.Added++
		case DiffRemoved:
			out.Removed++
		default:
			out.Unchanged++
		}
	}
	return out
}

// DiffLines is a positional diff: line i of a is only ever compared with
// line i of b. An inserted or deleted line therefore shows every later line
// as changed. This is a known limitation kept for display stability; it is
// not a minimal edit script.
func DiffLines(a, b []string) []DiffLine {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]DiffLine, 0, n)
	for i := 0; i < n; i++ {
		inA, inB := i < len(a), i < len(b)
		switch {
		case inA && inB && a[i] == b[i]:
			out = append(out, DiffLine{Kind: DiffUnchanged, Text: a[i], OldLine: lineNo(i), NewLine: lineNo(i)})
		case inA && inB:
			out = append(out,
				DiffLine{Kind: DiffRemoved, Text: a[i], OldLine: lineNo(i)},
				DiffLine{Kind: DiffAdded, Text: b[i], NewLine: lineNo(i)},
			)
		case inA:
			out = append(out, DiffLine{Kind: DiffRemoved, Text: a[i], OldLine: lineNo(i)})
		default:
			out = append(out, DiffLine{Kind: DiffAdded, Text: b[i], NewLine: lineNo(i)})
		}
	}
	return out
}

func lineNo(i int) *int {
	n := i + 1
	return &n
}

// CurrentAsVersion presents the live page as a pseudo snapshot so it can
// be diffed against history. It is never persisted.
func CurrentAsVersion(page *types.Page) *types.PageVersion {
	if page == nil {
		return nil
	}
	return &types.PageVersion{
		PageID:    page.ID,
		Version:   page.Version,
		Title:     page.Title,
		Content:   page.Content,
		CreatedAt: page.UpdatedAt,
	}
}
