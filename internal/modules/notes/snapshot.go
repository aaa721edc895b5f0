package notes

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/notebook-backend/internal/domain"
)

var ErrEmptyTitle = errors.New("title must not be empty")

// InitialVersion is the version of a freshly created page.
const InitialVersion = 1

// NormalizeTitle trims a title and rejects empty ones.
func NormalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ErrEmptyTitle
	}
	return t, nil
}

// BeforeUpdate captures the page's current title, content and version.
// It must be persisted together with the version increment.
func BeforeUpdate(page *types.Page) *types.PageVersion {
	if page == nil {
		return nil
	}
	return &types.PageVersion{
		ID:      uuid.New(),
		PageID:  page.ID,
		Version: page.Version,
		Title:   page.Title,
		Content: page.Content,
	}
}

// NextVersion is the only numbering rule: one past the current version.
func NextVersion(current int) int {
	if current < InitialVersion {
		return InitialVersion
	}
	return current + 1
}

// Edit is a requested change; nil fields stay as they are.
type Edit struct {
	Title   *string
	Content *string
}

// Apply resolves the edit against page. changed is false when the edit
// would leave title and content untouched.
func (e Edit) Apply(page *types.Page) (title, content string, changed bool, err error) {
	title, content = page.Title, page.Content
	if e.Title != nil {
		if title, err = NormalizeTitle(*e.Title); err != nil {
			return "", "", false, err
		}
	}
	if e.Content != nil {
		content = *e.Content
	}
	return title, content, title != page.Title || content != page.Content, nil
}
