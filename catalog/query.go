package catalog

import (
	"bytes"
	"encoding/json"
	"sort"

	"asset-catalog/schema"
)

// ListResult carries one page of assets plus the pre-pagination match
// count so callers can compute page counts.
type ListResult struct {
	Assets []*Asset
	Total  int
}

// ListAssets evaluates a normalized list query against the index: the
// visibility gate first, then include tags (every tag must be present),
// exclude tags (none may be present), metadata equality, a deterministic
// sort, and finally the offset/limit slice. An empty result is not an
// error.
func (ix *Index) ListAssets(r Requester, q *schema.ListAssetsQuery) *ListResult {
	ix.mu.RLock()
	matches := ix.filterLocked(
		r, q.IncludePublic, q.IncludeTags, q.ExcludeTags, q.MetadataFilter,
	)
	ix.mu.RUnlock()

	sortAssets(matches, q.Sort, q.Order)

	return &ListResult{
		Assets: paginate(matches, q.Offset, q.Limit),
		Total:  len(matches),
	}
}

// MatchesMetadata checks top-level equality: every key in the filter must
// be present in the metadata with an equal value. Values compare as whole
// JSON documents, so an object-valued filter entry matches an equal object.
// Nested path matching is a deliberate extension point, not supported here.
func MatchesMetadata(metadata, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if !jsonEqual(got, want) {
			return false
		}
	}

	return true
}

// jsonEqual compares two decoded JSON values by their canonical encoding,
// which tolerates int-vs-float64 representations of the same number.
func jsonEqual(a, b any) bool {
	aBytes, errA := json.Marshal(a)
	bBytes, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}

	return bytes.Equal(aBytes, bBytes)
}

// sortAssets orders by the requested field, then by id ascending so that
// pagination is stable across equal keys.
func sortAssets(assets []*Asset, field schema.SortField, order schema.SortOrder) {
	sort.Slice(assets, func(i, j int) bool {
		a, b := assets[i], assets[j]

		var less, equal bool
		switch field {
		case schema.SortName:
			less, equal = a.Name < b.Name, a.Name == b.Name
		case schema.SortCreatedAt:
			fallthrough
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
			equal = a.CreatedAt.Equal(b.CreatedAt)
		}

		if equal {
			return bytes.Compare(a.ID[:], b.ID[:]) < 0
		}
		if order == schema.OrderDesc {
			return !less
		}

		return less
	})
}

func paginate(assets []*Asset, offset, limit int) []*Asset {
	if offset >= len(assets) {
		return []*Asset{}
	}

	end := offset + limit
	if end > len(assets) {
		end = len(assets)
	}

	return assets[offset:end]
}
