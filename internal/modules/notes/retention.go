package notes

import (
	"sort"

	types "github.com/yungbote/notebook-backend/internal/domain"
)

// SelectPrunable orders versions newest first and splits them into the
// keepLatest rows to retain and the rest. keepLatest <= 0 prunes all.
func SelectPrunable(versions []*types.PageVersion, keepLatest int) (kept, pruned []*types.PageVersion) {
	sorted := make([]*types.PageVersion, 0, len(versions))
	for _, v := range versions {
		if v != nil {
			sorted = append(sorted, v)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Version > sorted[j].Version })
	if keepLatest < 0 {
		keepLatest = 0
	}
	if len(sorted) <= keepLatest {
		return sorted, nil
	}
	return sorted[:keepLatest], sorted[keepLatest:]
}

// EffectiveRetention picks the notebook override when set, else the global limit.
// Zero means unlimited.
func EffectiveRetention(notebook *types.Notebook, global int) int {
	if keep := notebook.DecodeSettings().KeepLatestVersions; keep > 0 {
		return keep
	}
	if global > 0 {
		return global
	}
	return 0
}
