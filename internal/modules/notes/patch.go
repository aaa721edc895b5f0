package notes

import (
	"bytes"
	"fmt"

	"github.com/sourcegraph/go-diff/diff"
)

// UnifiedPatch renders a DiffResult as a single-hunk unified diff. The hunk
// mirrors the positional result, so removed/added pairs stay interleaved.
func UnifiedPatch(name string, res DiffResult) ([]byte, error) {
	fd := &diff.FileDiff{
		OrigName: fmt.Sprintf("a/%s@v%d", name, res.FromVersion),
		NewName:  fmt.Sprintf("b/%s@v%d", name, res.ToVersion),
	}
	if res.Added > 0 || res.Removed > 0 {
		fd.Hunks = []*diff.Hunk{buildHunk(res.Lines)}
	}
	return diff.PrintFileDiff(fd)
}

func buildHunk(lines []DiffLine) *diff.Hunk {
	var body bytes.Buffer
	h := &diff.Hunk{}
	for _, l := range lines {
		switch l.Kind {
		case DiffUnchanged:
			body.WriteByte(' ')
			h.OrigLines++
			h.NewLines++
		case DiffRemoved:
			body.WriteByte('-')
			h.OrigLines++
		case DiffAdded:
			body.WriteByte('+')
			h.NewLines++
		}
		body.WriteString(l.Text)
		body.WriteByte('\n')
	}
	if h.OrigLines > 0 {
		h.OrigStartLine = 1
	}
	if h.NewLines > 0 {
		h.NewStartLine = 1
	}
	h.Body = body.Bytes()
	return h
}
