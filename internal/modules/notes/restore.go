package notes

import (
	"errors"

	types "github.com/yungbote/notebook-backend/internal/domain"
)

var ErrVersionPageMismatch = errors.New("version does not belong to page")

// RestorePlan is the state a page takes when a snapshot is reinstated.
type RestorePlan struct {
	// Snapshot preserves the live state being replaced.
	Snapshot     *types.PageVersion
	Title        string
	Content      string
	NewVersion   int
	RestoredFrom int
}

// PlanRestore never rewinds numbering: the restored content becomes
// NextVersion(page.Version). Running it twice yields two new versions.
func PlanRestore(page *types.Page, from *types.PageVersion) (RestorePlan, error) {
	if page == nil || from == nil || from.PageID != page.ID {
		return RestorePlan{}, ErrVersionPageMismatch
	}
	return RestorePlan{
		Snapshot:     BeforeUpdate(page),
		Title:        from.Title,
		Content:      from.Content,
		NewVersion:   NextVersion(page.Version),
		RestoredFrom: from.Version,
	}, nil
}
