package catalog

import (
	"sort"
	"strings"

	"asset-catalog/schema"
)

// TagCount is one histogram entry: a tag and the number of qualifying
// assets currently holding it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagHistogram computes per-tag usage counts over the visibility-gated
// asset set. With include_zero, tags that were ever applied but currently
// count zero still surface.
func (ix *Index) TagHistogram(r Requester, q *schema.TagsListQuery) []TagCount {
	ix.mu.RLock()

	counts := make(map[string]int, len(ix.byTag))
	for _, asset := range ix.assets {
		if !asset.VisibleTo(r, q.IncludePublic) {
			continue
		}
		for _, tag := range asset.Tags {
			counts[tag]++
		}
	}

	if q.IncludeZero {
		for tag := range ix.vocabulary {
			if _, ok := counts[tag]; !ok {
				counts[tag] = 0
			}
		}
	}

	ix.mu.RUnlock()

	entries := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		if q.Prefix != "" && !strings.HasPrefix(tag, q.Prefix) {
			continue
		}
		entries = append(entries, TagCount{Name: tag, Count: count})
	}

	sortTagCounts(entries, q.Order)

	return paginateTags(entries, q.Offset, q.Limit)
}

// TagsRefine suggests the next most relevant tags by co-occurrence: counts
// are computed only over assets that already satisfy the current
// include/exclude selection, and tags already selected or excluded are
// never suggested.
func (ix *Index) TagsRefine(r Requester, q *schema.TagsRefineQuery) []TagCount {
	ix.mu.RLock()
	matches := ix.filterLocked(
		r, q.IncludePublic, q.IncludeTags, q.ExcludeTags, nil,
	)
	ix.mu.RUnlock()

	selected := make(map[string]struct{}, len(q.IncludeTags)+len(q.ExcludeTags))
	for _, tag := range q.IncludeTags {
		selected[tag] = struct{}{}
	}
	for _, tag := range q.ExcludeTags {
		selected[tag] = struct{}{}
	}

	counts := make(map[string]int)
	for _, asset := range matches {
		for _, tag := range asset.Tags {
			if _, skip := selected[tag]; skip {
				continue
			}
			counts[tag]++
		}
	}

	entries := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		entries = append(entries, TagCount{Name: tag, Count: count})
	}

	sortTagCounts(entries, schema.TagOrderCountDesc)

	return paginateTags(entries, 0, q.Limit)
}

func sortTagCounts(entries []TagCount, order schema.TagOrder) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if order == schema.TagOrderCountDesc && a.Count != b.Count {
			return a.Count > b.Count
		}

		return a.Name < b.Name
	})
}

func paginateTags(entries []TagCount, offset, limit int) []TagCount {
	if offset >= len(entries) {
		return []TagCount{}
	}

	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}

	return entries[offset:end]
}
